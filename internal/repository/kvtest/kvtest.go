// Package kvtest holds the behaviour every repository.KV backend must share.
package kvtest

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
)

// Run exercises kv against the KV contract. kv must start empty.
func Run(t *testing.T, kv repository.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("get absent", func(t *testing.T) {
		_, err := kv.Get(ctx, "absent")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "k1", []byte("v1")))
		require.NoError(t, kv.Set(ctx, "k1", []byte("v2")))

		got, err := kv.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		require.NoError(t, kv.Delete(ctx, "k1"))
		require.NoError(t, kv.Delete(ctx, "k1"), "deleting an absent key is not an error")
		_, err = kv.Get(ctx, "k1")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("update creates and modifies", func(t *testing.T) {
		err := kv.Update(ctx, "u1", func(cur []byte, exists bool) ([]byte, error) {
			assert.False(t, exists)
			return []byte("1"), nil
		})
		require.NoError(t, err)

		err = kv.Update(ctx, "u1", func(cur []byte, exists bool) ([]byte, error) {
			assert.True(t, exists)
			return append(cur, '2'), nil
		})
		require.NoError(t, err)

		got, err := kv.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []byte("12"), got)
	})

	t.Run("update skip write", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "s1", []byte("keep")))
		err := kv.Update(ctx, "s1", func([]byte, bool) ([]byte, error) {
			return nil, repository.ErrSkipWrite
		})
		require.NoError(t, err)

		got, err := kv.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []byte("keep"), got)
	})

	t.Run("update error leaves value", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "e1", []byte("keep")))
		boom := errors.New("boom")
		err := kv.Update(ctx, "e1", func([]byte, bool) ([]byte, error) {
			return []byte("lost"), boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := kv.Get(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, []byte("keep"), got)
	})
}

// RunConcurrent checks that parallel updates of one key are not lost.
func RunConcurrent(t *testing.T, kv repository.KV, workers int) {
	t.Helper()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- kv.Update(ctx, "counter", func(cur []byte, exists bool) ([]byte, error) {
				n := 0
				if exists {
					var err error
					if n, err = strconv.Atoi(string(cur)); err != nil {
						return nil, err
					}
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrConflict)
		}
	}

	got, err := kv.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(succeeded), string(got))
}
