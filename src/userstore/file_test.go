package userstore

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := OpenFileStore(fs, "users.json")
	require.NoError(t, err)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFileStoreAddPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	store, err := OpenFileStore(fs, "users.json")
	require.NoError(t, err)

	added, err := store.Add(ctx, 100)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add(ctx, 100)
	require.NoError(t, err)
	assert.False(t, added, "re-adding a known user is a no-op")

	added, err = store.Add(ctx, 200)
	require.NoError(t, err)
	assert.True(t, added)

	data, err := afero.ReadFile(fs, "users.json")
	require.NoError(t, err)

	var ids []int64
	require.NoError(t, json.Unmarshal(data, &ids))
	assert.Equal(t, []int64{100, 200}, ids)
}

func TestFileStoreReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	store, err := OpenFileStore(fs, "users.json")
	require.NoError(t, err)
	_, err = store.Add(ctx, 7)
	require.NoError(t, err)

	reloaded, err := OpenFileStore(fs, "users.json")
	require.NoError(t, err)

	count, err := reloaded.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	added, err := reloaded.Add(ctx, 7)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestFileStoreCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "users.json", []byte("not json"), 0o644))

	_, err := OpenFileStore(fs, "users.json")
	assert.Error(t, err)
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	store, err := OpenFileStore(fs, "data/bot/users.json")
	require.NoError(t, err)

	_, err = store.Add(ctx, 1)
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "data/bot/users.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileStoreConcurrentAdds(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	store, err := OpenFileStore(fs, "users.json")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := int64(0); i < 32; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := store.Add(ctx, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 32, count)
}
