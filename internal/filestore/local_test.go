package filestore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/config"
)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func TestLocalStore_SaveAndOpen(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)

	payload := []byte("%PDF-1.4 snapshot bytes")
	err = store.Save(context.Background(), "v1.pdf", memFile{bytes.NewReader(payload)}, int64(len(payload)))
	require.NoError(t, err)

	f, err := store.Open(context.Background(), "v1.pdf")
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestLocalStore_RejectsBadKeys(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		err := store.Save(context.Background(), key, memFile{bytes.NewReader([]byte("x"))}, 1)
		require.Error(t, err, "key: %q", key)
		_, err = store.Open(context.Background(), key)
		require.Error(t, err, "key: %q", key)
	}
}

func TestReadAll(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)

	payload := []byte("archived source text")
	err = store.Save(context.Background(), "v2.txt", memFile{bytes.NewReader(payload)}, int64(len(payload)))
	require.NoError(t, err)

	got, err := ReadAll(context.Background(), store, "v2.txt")
	require.NoError(t, err)
	require.Equal(t, payload, got)

	_, err = ReadAll(context.Background(), store, "missing.txt")
	require.Error(t, err)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
}

func TestNew_LocalRequiresDir(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "local"})
	require.Error(t, err)
}
