package repository

import (
	"context"
	"errors"
	"strconv"

	apperrors "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/errors"
)

var (
	// ErrNotFound is returned by KV.Get for an absent key.
	ErrNotFound = errors.New("kv: key not found")

	// ErrSkipWrite, returned from an Update callback, ends the update
	// without writing. Update then returns nil.
	ErrSkipWrite = errors.New("kv: skip write")

	// ErrConflict is returned when an optimistic update kept losing races.
	ErrConflict = apperrors.Conflict("the reviews were modified concurrently, please retry")
)

// UpdateFunc receives the current value (nil when absent) and returns the
// value to store. It may run more than once, so it must not have side
// effects beyond its return values.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// KV is the persistent key/value store every repository writes through.
type KV interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error
	// Update applies fn as one atomic read-modify-write of key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Key helpers.
func ReviewsKey(productID string) string {
	return "reviews:" + productID
}

func CurrentUserKey(clientID string) string {
	return "current_user:" + clientID
}

// SessionKey length-prefixes clientID so ids containing ':' cannot make two
// (client, product) pairs share a key.
func SessionKey(clientID, productID string) string {
	return "review_session:" + strconv.Itoa(len(clientID)) + ":" + clientID + ":" + productID
}
