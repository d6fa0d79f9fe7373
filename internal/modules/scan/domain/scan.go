package domain

import (
	"fmt"
	"strings"
	"time"

	"daing/internal/platform/slug"
)

// FileField is the multipart field the backend reads the photo from.
const FileField = "file"

// MaxImageBytes bounds the photos the client will send.
const MaxImageBytes = 20 << 20

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Condition is the quality label attached to a dataset sample.
type Condition string

const (
	ConditionGood Condition = "good"
	ConditionBad  Condition = "bad"
)

func ParseCondition(raw string) (Condition, error) {
	c := Condition(slug.Label(raw))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Condition) Validate() error {
	switch c {
	case ConditionGood, ConditionBad:
		return nil
	default:
		return fmt.Errorf("unsupported condition %q (want good or bad)", string(c))
	}
}

// FishType is a species label in wire form, e.g. "dried_squid".
type FishType string

// KnownFishTypes are the labels the grading model is trained on. Other
// non-empty labels are accepted so new species can be collected.
var KnownFishTypes = []FishType{"danggit", "dilis", "espada", "galunggong", "pusit", "tuyo"}

func ParseFishType(raw string) (FishType, error) {
	f := FishType(slug.Label(raw))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

func (f FishType) Validate() error {
	if strings.TrimSpace(string(f)) == "" {
		return fmt.Errorf("fish type is required")
	}
	if string(f) != slug.Label(string(f)) {
		return fmt.Errorf("fish type %q is not in label form", string(f))
	}
	return nil
}

func (f FishType) Known() bool {
	for _, known := range KnownFishTypes {
		if f == known {
			return true
		}
	}
	return false
}

// Image is a local photo ready to upload.
type Image struct {
	Path        string
	Name        string
	ContentType string
	Data        []byte
}

func (i Image) Validate() error {
	if len(i.Data) == 0 {
		return fmt.Errorf("image %s is empty", i.Path)
	}
	if len(i.Data) > MaxImageBytes {
		return fmt.Errorf("image %s is %d bytes, limit is %d", i.Path, len(i.Data), MaxImageBytes)
	}
	if !strings.HasPrefix(i.ContentType, "image/") {
		return fmt.Errorf("%s is not an image (%s)", i.Path, i.ContentType)
	}
	return nil
}

type ColorConsistency struct {
	Score float64
	Grade string
}

// ScanResult is the backend's verdict for one photo. ResultImage holds the
// annotated JPEG when the backend sent one.
type ScanResult struct {
	Status           string
	IsDaing          bool
	FishType         FishType
	Confidence       float64
	Grade            string
	ColorConsistency *ColorConsistency
	ResultImage      []byte
	Message          string
	SavedToDataset   bool
}

type UploadResult struct {
	Success bool
	Message string
}

// ScanRecord is one journal row per analyze call made from this client.
type ScanRecord struct {
	ID             string
	ImagePath      string
	Endpoint       string
	Attempts       int
	IsDaing        bool
	FishType       FishType
	Confidence     float64
	Grade          string
	SavedToDataset bool
	ErrorKind      string
	ErrorMessage   string
	CreatedAt      time.Time
}

func (r ScanRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("record time is required")
	}
	return nil
}

func (r ScanRecord) Failed() bool { return r.ErrorKind != "" }
