package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	domainerrors "credcore/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStore_CreateAndFind(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "asdf@gmail.com", "aa.bb")
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", created.ID.String())
	assert.False(t, created.CreatedAt.IsZero())

	found, err := store.FindByEmail(ctx, "asdf@gmail.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
	assert.Equal(t, "aa.bb", found[0].PasswordRecord)

	none, err := store.FindByEmail(ctx, "ASDF@gmail.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCredentialStore_DuplicateEmail(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "asdf@gmail.com", "aa.bb")
	require.NoError(t, err)

	_, err = store.Create(ctx, "asdf@gmail.com", "cc.dd")
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))

	found, err := store.FindByEmail(ctx, "asdf@gmail.com")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCredentialStore_ReturnsCopies(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	created, err := store.Create(ctx, "asdf@gmail.com", "aa.bb")
	require.NoError(t, err)
	created.PasswordRecord = "tampered"

	found, err := store.FindByEmail(ctx, "asdf@gmail.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "aa.bb", found[0].PasswordRecord)
}

func TestCredentialStore_ConcurrentCreateSameEmail(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, "race@gmail.com", fmt.Sprintf("%02x.ff", i))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	found, err := store.FindByEmail(ctx, "race@gmail.com")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCredentialStore_CanceledContext(t *testing.T) {
	store := NewCredentialStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, "asdf@gmail.com", "aa.bb")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.FindByEmail(ctx, "asdf@gmail.com")
	assert.ErrorIs(t, err, context.Canceled)
}
