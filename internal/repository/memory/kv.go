// Package memory is an in-process KV used by tests and single-instance
// deployments.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
)

// KV is a mutex-guarded map.
type KV struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewKV creates an empty store.
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (k *KV) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = append([]byte(nil), value...)
	return nil
}

func (k *KV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}

// Update holds the lock for the whole read-modify-write.
func (k *KV) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	cur, ok := k.data[key]
	next, err := fn(append([]byte(nil), cur...), ok)
	if errors.Is(err, repository.ErrSkipWrite) {
		return nil
	}
	if err != nil {
		return err
	}
	k.data[key] = next
	return nil
}

// Len reports the number of stored keys.
func (k *KV) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.data)
}
