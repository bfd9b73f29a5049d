package uploads

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"reclamala-backend/internal/shared/storage/object"
	"reclamala-backend/internal/shared/storage/object/local"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngOfSize(n int) []byte {
	data := make([]byte, n)
	copy(data, pngHeader)
	return data
}

func newFileHeader(t *testing.T, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="imagen"; filename="multa.png"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["imagen"][0]
}

func newTestReceiver(t *testing.T) (*Receiver, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := local.New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return NewReceiver(store, DefaultMaxBytes), dir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty uploads dir, found %d entries", len(entries))
	}
}

func TestReceiveSizeBoundary(t *testing.T) {
	r, dir := newTestReceiver(t)

	img, err := r.Receive(context.Background(), newFileHeader(t, "image/png", pngOfSize(DefaultMaxBytes)))
	if err != nil {
		t.Fatalf("image at the ceiling should be accepted: %v", err)
	}
	if img.SizeBytes != DefaultMaxBytes {
		t.Fatalf("expected size %d, got %d", DefaultMaxBytes, img.SizeBytes)
	}
	if err := r.Release(context.Background(), img); err != nil {
		t.Fatalf("release: %v", err)
	}

	_, err = r.Receive(context.Background(), newFileHeader(t, "image/png", pngOfSize(DefaultMaxBytes+1)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestReceiveRejectsNonImages(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		data        []byte
	}{
		{name: "declared pdf", contentType: "application/pdf", data: []byte("%PDF-1.4")},
		{name: "image declared but text content", contentType: "image/jpeg", data: []byte("just some text")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, dir := newTestReceiver(t)
			_, err := r.Receive(context.Background(), newFileHeader(t, tt.contentType, tt.data))
			if !errors.Is(err, ErrNotImage) {
				t.Fatalf("expected ErrNotImage, got %v", err)
			}
			assertDirEmpty(t, dir)
		})
	}
}

func TestReceiveMissingImage(t *testing.T) {
	r, _ := newTestReceiver(t)
	if _, err := r.Receive(context.Background(), nil); !errors.Is(err, ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
}

func TestWithAlwaysReleases(t *testing.T) {
	tests := []struct {
		name  string
		fnErr error
	}{
		{name: "success"},
		{name: "failure", fnErr: errors.New("ocr exploded")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, dir := newTestReceiver(t)
			var seenPath string
			err := r.With(context.Background(), newFileHeader(t, "image/png", pngHeader), func(img Image) error {
				seenPath = img.Path
				if _, statErr := os.Stat(img.Path); statErr != nil {
					t.Fatalf("expected stored file during fn: %v", statErr)
				}
				return tt.fnErr
			})
			if !errors.Is(err, tt.fnErr) {
				t.Fatalf("expected %v, got %v", tt.fnErr, err)
			}
			if seenPath == "" {
				t.Fatalf("fn was not called")
			}
			assertDirEmpty(t, dir)
		})
	}
}

type failingRemoveStore struct {
	object.ObjectStore
}

func (failingRemoveStore) Remove(ctx context.Context, key string) error {
	return errors.New("permission denied")
}

func TestWithCleanupFailureDoesNotMaskResult(t *testing.T) {
	store, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	r := NewReceiver(failingRemoveStore{ObjectStore: store}, 0)

	err = r.With(context.Background(), newFileHeader(t, "image/png", pngHeader), func(Image) error {
		return nil
	})
	if err != nil {
		t.Fatalf("cleanup failure must not surface, got %v", err)
	}
}
