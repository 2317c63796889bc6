package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ErrBadReference means an upload reference is unsafe or does not resolve to
// a stored file.
var ErrBadReference = errors.New("invalid upload reference")

// Store keeps uploaded documents on local disk and optionally mirrors them to
// S3 in the background.
type Store struct {
	dir    string
	mirror *Mirror
	logger *zap.Logger
}

// NewStore creates the upload directory if needed. mirror may be nil.
func NewStore(dir string, mirror *Mirror, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir, mirror: mirror, logger: logger}, nil
}

// Save writes payload under a generated name and returns the reference the
// client uses in later requests. The S3 mirror runs asynchronously; a mirror
// failure never fails the upload.
func (s *Store) Save(originalName string, payload []byte) (string, error) {
	name := buildFileName(originalName)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}

	if s.mirror != nil {
		contentType := detectContentType(originalName, payload)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
			defer cancel()
			if err := s.mirror.Upload(ctx, "uploads/"+name, payload, contentType); err != nil {
				s.logger.Warn("s3 mirror upload failed", zap.String("name", name), zap.Error(err))
			}
		}()
	}
	return name, nil
}

// Resolve maps a client-supplied reference back to an absolute path inside
// the upload directory.
func (s *Store) Resolve(ref string) (string, error) {
	name := safeName(ref)
	if name == "" {
		return "", ErrBadReference
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrBadReference
	}
	return path, nil
}

// Remove deletes a stored document. Missing files are not an error.
func (s *Store) Remove(ref string) error {
	name := safeName(ref)
	if name == "" {
		return ErrBadReference
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
