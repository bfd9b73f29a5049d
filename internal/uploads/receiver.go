package uploads

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"reclamala-backend/internal/shared/storage/object"
	"reclamala-backend/internal/shared/telemetry"
)

// DefaultMaxBytes is the largest accepted ticket image (5 MiB).
const DefaultMaxBytes = 5 << 20

var (
	ErrMissingImage = errors.New("missing image")
	ErrTooLarge     = errors.New("image exceeds size limit")
	ErrNotImage     = errors.New("file is not an image")
)

// Image is an accepted upload stored on disk for the duration of one request.
type Image struct {
	object.Object
	FileName     string
	DeclaredType string
}

// Receiver validates multipart image uploads and stores them in a temp store.
type Receiver struct {
	Store    object.ObjectStore
	MaxBytes int64
}

// NewReceiver constructs a Receiver; maxBytes <= 0 selects DefaultMaxBytes.
func NewReceiver(store object.ObjectStore, maxBytes int64) *Receiver {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Receiver{Store: store, MaxBytes: maxBytes}
}

// Validate checks the declared metadata of an upload without reading it.
func (r *Receiver) Validate(fh *multipart.FileHeader) error {
	if fh == nil {
		return ErrMissingImage
	}
	declared := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if !strings.HasPrefix(declared, "image/") {
		return ErrNotImage
	}
	if fh.Size > r.MaxBytes {
		return ErrTooLarge
	}
	return nil
}

// Receive validates the upload and writes it to the store. The caller owns the
// returned image and must Release it.
func (r *Receiver) Receive(ctx context.Context, fh *multipart.FileHeader) (Image, error) {
	if err := r.Validate(fh); err != nil {
		return Image{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	obj, err := r.Store.Save(ctx, fh.Filename, src)
	if err != nil {
		return Image{}, fmt.Errorf("store upload: %w", err)
	}

	img := Image{
		Object:       obj,
		FileName:     fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
	}

	switch {
	case obj.SizeBytes > r.MaxBytes:
		err = ErrTooLarge
	case !strings.HasPrefix(obj.MimeType, "image/"):
		err = ErrNotImage
	}
	if err != nil {
		_ = r.Release(ctx, img)
		return Image{}, err
	}
	return img, nil
}

// Release deletes the stored image.
func (r *Receiver) Release(ctx context.Context, img Image) error {
	if img.Key == "" {
		return nil
	}
	return r.Store.Remove(context.WithoutCancel(ctx), img.Key)
}

// With stores the upload, runs fn and always releases the file afterwards.
// Cleanup failures are logged and never replace fn's result.
func (r *Receiver) With(ctx context.Context, fh *multipart.FileHeader, fn func(Image) error) error {
	img, err := r.Receive(ctx, fh)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := r.Release(ctx, img); rmErr != nil {
			telemetry.Error("uploads.cleanup.failed", map[string]any{
				"key": img.Key,
				"err": rmErr.Error(),
			})
		}
	}()
	return fn(img)
}
