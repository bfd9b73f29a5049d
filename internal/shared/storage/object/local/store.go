package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"

	"reclamala-backend/internal/shared/storage/object"
	"reclamala-backend/internal/shared/util"
)

const sniffLen = 3072

// Store implements ObjectStore on a local directory.
type Store struct {
	baseDir string
}

var _ object.ObjectStore = (*Store)(nil)

// New creates the directory if absent and returns a store rooted at it.
func New(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("local store: base dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// Save writes the reader to a uniquely named file and sniffs its content type.
func (s *Store) Save(ctx context.Context, fileName string, r io.Reader) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	ext := ""
	if sanitized, err := util.SanitizeFileName(fileName); err == nil {
		ext = strings.ToLower(filepath.Ext(sanitized))
	}
	key := ulid.Make().String() + ext
	fullPath := filepath.Join(s.baseDir, key)

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return object.Object{}, fmt.Errorf("open file: %w", err)
	}

	obj, err := writeSniffed(f, r)
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return object.Object{}, err
	}

	obj.Key = key
	obj.Path = fullPath
	return obj, nil
}

func writeSniffed(f *os.File, r io.Reader) (object.Object, error) {
	var sniff [sniffLen]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return object.Object{}, fmt.Errorf("read sniff: %w", readErr)
	}

	mimeType := mimetype.Detect(sniff[:n]).String()

	size := int64(0)
	if n > 0 {
		if _, err := f.Write(sniff[:n]); err != nil {
			return object.Object{}, fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		return object.Object{}, fmt.Errorf("write body: %w", err)
	}
	size += written

	return object.Object{SizeBytes: size, MimeType: mimeType}, nil
}

// Remove deletes a stored object. Removing a missing object is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	_ = ctx
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) || strings.ContainsRune(clean, filepath.Separator) {
		return fmt.Errorf("invalid storage key")
	}
	err := os.Remove(filepath.Join(s.baseDir, clean))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Sweep removes regular files last modified before now-olderThan and returns
// how many were deleted.
func (s *Store) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read dir: %w", err)
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
