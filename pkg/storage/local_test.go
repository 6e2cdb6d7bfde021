package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetdeck/assetdeck/pkg/types"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Store(ctx, "ws1/2024-photo.jpg", strings.NewReader("hello"))
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "ws1/2024-photo.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Retrieve(ctx, "ws1/2024-photo.jpg")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalStoreRefusesOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "ws1/a.txt", strings.NewReader("first")))

	err := store.Store(ctx, "ws1/a.txt", strings.NewReader("second"))
	require.Error(t, err)
	assert.True(t, types.IsStorage(err))

	rc, err := store.Retrieve(ctx, "ws1/a.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "first", string(data))
}

func TestLocalStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "ws1/b.txt", strings.NewReader("x")))
	require.NoError(t, store.Delete(ctx, "ws1/b.txt"))

	exists, err := store.Exists(ctx, "ws1/b.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting a missing object is not an error
	assert.NoError(t, store.Delete(ctx, "ws1/b.txt"))
}

func TestLocalStoreRejectsEscapingPaths(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"../outside.txt", "/etc/passwd", "ws1/../../x"} {
		err := store.Store(ctx, path, strings.NewReader("x"))
		assert.Error(t, err, "path %q should be rejected", path)
	}
}

func TestLocalStoreURL(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t,
		"http://localhost:8080/files/ws1/my%20photo.jpg",
		store.URL("ws1/my photo.jpg"))
}
