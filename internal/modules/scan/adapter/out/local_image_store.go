package out

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"daing/internal/modules/scan/domain"
	scanout "daing/internal/modules/scan/port/out"
	apperrors "daing/internal/platform/errors"
)

type LocalImageStore struct{}

func NewLocalImageStore() scanout.ImageStore {
	return LocalImageStore{}
}

// Load reads a photo from disk and sniffs its type from the first bytes
// rather than trusting the extension.
func (LocalImageStore) Load(_ context.Context, path string) (domain.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Image{}, fmt.Errorf("image %s: %w", path, apperrors.ErrNotFound)
		}
		return domain.Image{}, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return domain.Image{}, fmt.Errorf("%w: %s is a directory", apperrors.ErrInvalidInput, path)
	}
	if info.Size() > domain.MaxImageBytes {
		return domain.Image{}, fmt.Errorf("%w: %s is %s, limit is %s", apperrors.ErrInvalidInput, path,
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(domain.MaxImageBytes))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Image{}, fmt.Errorf("read image: %w", err)
	}
	return domain.Image{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

func (LocalImageStore) SaveAnnotated(_ context.Context, path string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write annotated image: %w", err)
	}
	return path, nil
}
