package object

import (
	"context"
	"io"
)

// Object describes a stored upload.
type Object struct {
	Key       string
	Path      string
	SizeBytes int64
	MimeType  string
}

// ObjectStore defines the contract for request-scoped binary objects.
type ObjectStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (Object, error)
	Remove(ctx context.Context, key string) error
}
