// Package storage is the file-storage collaborator for ticket attachments.
// Upload failures never block ticket creation; callers treat them as scoped
// warnings.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spec-kit/opsdesk-service/internal/config"
)

// Store abstracts attachment storage operations.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// AttachmentKey derives the object key for a ticket attachment:
// {ticketID}/{unixMillis}-{originalName}.
func AttachmentKey(ticketID, originalName string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s", ticketID, now.UnixMilli(), filepath.Base(originalName))
}

// New selects the S3-compatible store when a bucket is configured, otherwise
// the local filesystem store.
func New(cfg config.StorageConfig) (Store, error) {
	if cfg.Bucket != "" {
		return newS3Store(cfg)
	}
	return &localStore{baseDir: cfg.LocalDir}, nil
}

// localStore keeps attachments on the local filesystem for development.
type localStore struct {
	baseDir string
}

func (l *localStore) Upload(_ context.Context, key string, body io.Reader, _ string, _ int64) error {
	fullPath := filepath.Join(l.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create attachment dir: %w", err)
	}
	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create attachment file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, body); err != nil {
		return fmt.Errorf("write attachment: %w", err)
	}
	return nil
}

func (l *localStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		return nil, "", fmt.Errorf("open attachment: %w", err)
	}
	return file, "application/octet-stream", nil
}

func (l *localStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "/" + filepath.Join(l.baseDir, key), nil
}
