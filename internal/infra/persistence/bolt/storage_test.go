package bolt

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	domainerrors "credcore/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "credcore.bolt")
	storage, err := New(path)
	require.NoError(t, err)

	return storage, path
}

func TestStorage_CreateAndFindByEmail(t *testing.T) {
	storage, _ := newTestStorage(t)
	t.Cleanup(func() { _ = storage.Close() })
	ctx := context.Background()

	created, err := storage.Create(ctx, "asdf@gmail.com", "aa.bb")
	require.NoError(t, err)

	found, err := storage.FindByEmail(ctx, "asdf@gmail.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
	assert.Equal(t, "aa.bb", found[0].PasswordRecord)
	assert.True(t, created.CreatedAt.Equal(found[0].CreatedAt))

	none, err := storage.FindByEmail(ctx, "asdfo@gmail.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStorage_Create_DuplicateEmail(t *testing.T) {
	storage, _ := newTestStorage(t)
	t.Cleanup(func() { _ = storage.Close() })
	ctx := context.Background()

	first, err := storage.Create(ctx, "asdf@gmail.com", "aa.bb")
	require.NoError(t, err)

	_, err = storage.Create(ctx, "asdf@gmail.com", "cc.dd")
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))

	found, err := storage.FindByEmail(ctx, "asdf@gmail.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)
	assert.Equal(t, "aa.bb", found[0].PasswordRecord)
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	storage, path := newTestStorage(t)
	ctx := context.Background()

	created, err := storage.Create(ctx, "asdf@gmail.com", "aa.bb")
	require.NoError(t, err)
	require.NoError(t, storage.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	found, err := reopened.FindByEmail(ctx, "asdf@gmail.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
}

func TestStorage_Create_ConcurrentSameEmail(t *testing.T) {
	storage, _ := newTestStorage(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := storage.Create(ctx, "race@gmail.com", fmt.Sprintf("%02x.ff", i))

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, domainerrors.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	found, err := storage.FindByEmail(ctx, "race@gmail.com")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
