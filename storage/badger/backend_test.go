package badger

import (
	"context"
	"testing"

	"github.com/poiesic/retrievit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	b := NewMemoryBlobStore()
	defer b.Close()

	ctx := context.Background()
	payload := []byte("snapshot payload")

	require.NoError(t, b.Save(ctx, "corpus", payload))

	got, err := b.Load(ctx, "corpus")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLoadMissingKey(t *testing.T) {
	b := NewMemoryBlobStore()
	defer b.Close()

	_, err := b.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveOverwrites(t *testing.T) {
	b := NewMemoryBlobStore()
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Save(ctx, "corpus", []byte("first")))
	require.NoError(t, b.Save(ctx, "corpus", []byte("second")))

	got, err := b.Load(ctx, "corpus")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestClosedBackend(t *testing.T) {
	b := NewMemoryBlobStore()
	require.NoError(t, b.Close())

	err := b.Save(context.Background(), "k", []byte("v"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = b.Load(context.Background(), "k")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestOpenBackendOnDisk(t *testing.T) {
	dir := t.TempDir()

	b, err := OpenBackend(dir, false)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Save(ctx, "k", []byte("persisted")))
	require.NoError(t, b.Close())

	b2, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer b2.Close()

	got, err := b2.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}
