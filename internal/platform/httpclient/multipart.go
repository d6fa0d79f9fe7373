package httpclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// FormFile is the single file part of a multipart body.
type FormFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// FormField is a plain text part; order is preserved on the wire.
type FormField struct {
	Name  string
	Value string
}

// Multipart encodes file and fields into a replayable body and returns the
// matching Content-Type header value.
func Multipart(file FormFile, fields ...FormField) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	for _, field := range fields {
		if err := w.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
