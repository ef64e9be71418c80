package storage

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/opsdesk-service/internal/config"
)

func TestAttachmentKeyLayout(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := AttachmentKey("ticket-42", "evidence.csv", at)
	assert.Equal(t, "ticket-42/1748779200000-evidence.csv", key)
}

func TestAttachmentKeyStripsDirectories(t *testing.T) {
	at := time.Unix(0, 0).UTC()
	key := AttachmentKey("t-1", "../../etc/passwd", at)
	assert.Equal(t, "t-1/0-passwd", key)
}

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.StorageConfig{LocalDir: dir})
	require.NoError(t, err)

	key := AttachmentKey("t-1", "note.txt", time.Now())
	require.NoError(t, store.Upload(context.Background(), key, bytes.NewReader([]byte("hello")), "text/plain", 5))

	reader, _, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	url, err := store.SignedURL(context.Background(), key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/"+filepath.Join(dir, key), url)
}
