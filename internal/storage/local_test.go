package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "processed")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte(`{"id":"civil_0001"}` + "\n")

	require.NoError(t, store.Put(ctx, "civil_chunks.jsonl", data, ContentTypeJSONL))

	got, err := store.Get(ctx, "civil_chunks.jsonl")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, filepath.Join(dir, "civil_chunks.jsonl"), store.Location("civil_chunks.jsonl"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestLocalStore_Overwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a.jsonl", []byte("old"), ContentTypeJSONL))
	require.NoError(t, store.Put(ctx, "a.jsonl", []byte("new"), ContentTypeJSONL))

	got, err := store.Get(ctx, "a.jsonl")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestLocalStore_GetMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing.jsonl")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArtifactNotFound))
}

func TestLocalStore_Head(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a.jsonl", []byte("hello"), ContentTypeJSONL))

	meta, err := store.Head(ctx, "a.jsonl")
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.ContentLength)
	assert.Equal(t, ContentTypeJSONL, meta.ContentType)
	assert.Len(t, meta.ETag, 64)

	_, err = store.Head(ctx, "b.jsonl")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestLocalStore_RejectsPathKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for _, key := range []string{"", "..", "../escape.jsonl", "nested/a.jsonl"} {
		err := store.Put(ctx, key, []byte("x"), ContentTypeJSONL)
		assert.Error(t, err, key)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "a.jsonl", nil, ContentTypeJSONL), context.Canceled)
}
