package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory returns a fresh store plus a hook that makes userID valid for
// stores that enforce a users foreign key.
type storeFactory func(t *testing.T) (Repository, func(t *testing.T, userID string))

func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("insert then find", func(t *testing.T) {
		store, seed := newStore(t)
		seed(t, "u1")

		rec, err := store.Insert(ctx, "u1", "acc-1", "ref-1")
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.False(t, rec.IssuedAt.IsZero())

		got, err := store.FindByRefreshToken(ctx, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, "acc-1", got.AccessToken)
		assert.Equal(t, "ref-1", got.RefreshToken)
		assert.WithinDuration(t, rec.IssuedAt, got.IssuedAt, time.Millisecond)
	})

	t.Run("find missing", func(t *testing.T) {
		store, _ := newStore(t)

		_, err := store.FindByRefreshToken(ctx, "never-issued")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("rotation succeeds once", func(t *testing.T) {
		store, seed := newStore(t)
		seed(t, "u1")

		_, err := store.Insert(ctx, "u1", "acc-1", "ref-1")
		require.NoError(t, err)

		require.NoError(t, store.UpdateRotation(ctx, "u1", "ref-1", "acc-2", "ref-2"))

		err = store.UpdateRotation(ctx, "u1", "ref-1", "acc-3", "ref-3")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		_, err = store.FindByRefreshToken(ctx, "ref-1")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		got, err := store.FindByRefreshToken(ctx, "ref-2")
		require.NoError(t, err)
		assert.Equal(t, "acc-2", got.AccessToken)
		assert.Equal(t, "u1", got.UserID)
	})

	t.Run("rotation requires owner", func(t *testing.T) {
		store, seed := newStore(t)
		seed(t, "u1")
		seed(t, "u2")

		_, err := store.Insert(ctx, "u1", "acc-1", "ref-1")
		require.NoError(t, err)

		err = store.UpdateRotation(ctx, "u2", "ref-1", "acc-2", "ref-2")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		_, err = store.FindByRefreshToken(ctx, "ref-1")
		assert.NoError(t, err)
	})

	t.Run("delete all for user", func(t *testing.T) {
		store, seed := newStore(t)
		seed(t, "u1")
		seed(t, "u2")

		for i := 0; i < 3; i++ {
			_, err := store.Insert(ctx, "u1", fmt.Sprintf("acc-%d", i), fmt.Sprintf("ref-%d", i))
			require.NoError(t, err)
		}
		_, err := store.Insert(ctx, "u2", "acc-x", "ref-x")
		require.NoError(t, err)

		n, err := store.DeleteAllForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		for i := 0; i < 3; i++ {
			_, err := store.FindByRefreshToken(ctx, fmt.Sprintf("ref-%d", i))
			assert.ErrorIs(t, err, common.ErrorNotFound)
		}
		_, err = store.FindByRefreshToken(ctx, "ref-x")
		assert.NoError(t, err, "other users keep their tokens")

		n, err = store.DeleteAllForUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("revoked token cannot rotate", func(t *testing.T) {
		store, seed := newStore(t)
		seed(t, "u1")

		_, err := store.Insert(ctx, "u1", "acc-1", "ref-1")
		require.NoError(t, err)
		_, err = store.DeleteAllForUser(ctx, "u1")
		require.NoError(t, err)

		err = store.UpdateRotation(ctx, "u1", "ref-1", "acc-2", "ref-2")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("concurrent rotation has one winner", func(t *testing.T) {
		store, seed := newStore(t)
		seed(t, "u1")

		_, err := store.Insert(ctx, "u1", "acc-0", "ref-0")
		require.NoError(t, err)

		const workers = 16
		var (
			wg       sync.WaitGroup
			winners  atomic.Int32
			notFound atomic.Int32
		)
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				err := store.UpdateRotation(ctx, "u1", "ref-0", fmt.Sprintf("acc-%d", i+1), fmt.Sprintf("ref-%d", i+1))
				switch {
				case err == nil:
					winners.Add(1)
				case errors.Is(err, common.ErrorNotFound):
					notFound.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load())
		assert.Equal(t, int32(workers-1), notFound.Load())
	})
}
