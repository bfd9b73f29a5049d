package ocr

import (
	"context"
	"errors"
)

// Extractor turns a stored ticket image into text.
type Extractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

var (
	// ErrNoText means the service answered but found no text in the image.
	ErrNoText = errors.New("no text found")
	// ErrService covers transport and service-side failures.
	ErrService = errors.New("OCR service failure")
)
