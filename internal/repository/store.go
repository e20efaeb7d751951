package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	apperrors "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/errors"
)

var (
	errStoreUnavailable = apperrors.Unavailable("the review store is unavailable, please retry shortly")
	errNewerSchema      = apperrors.Conflict("these reviews were saved by a newer version of the service and cannot be changed yet")
)

// storeFailure maps a failed store operation to the error callers see.
// Errors raised by the caller's own mutation (fnErr) and AppErrors pass
// through; data in a newer schema is a 409; anything else means the backend
// failed and is a 503.
func storeFailure(op string, err, fnErr error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	var appErr *apperrors.AppError
	switch {
	case fnErr != nil && errors.Is(err, fnErr):
		return wrapped
	case errors.Is(err, ErrUnsupportedSchema):
		return errNewerSchema.WithCause(wrapped)
	case errors.As(err, &appErr):
		return wrapped
	}
	return errStoreUnavailable.WithCause(wrapped)
}

// ReviewStore implements ReviewRepository over a KV.
type ReviewStore struct {
	kv     KV
	logger *slog.Logger
}

// NewReviewStore creates a review store.
func NewReviewStore(kv KV, logger *slog.Logger) *ReviewStore {
	return &ReviewStore{kv: kv, logger: logger}
}

// Load reads the review list of productID. An absent key is an empty list.
func (s *ReviewStore) Load(ctx context.Context, productID string) (LoadResult, error) {
	data, err := s.kv.Get(ctx, ReviewsKey(productID))
	if errors.Is(err, ErrNotFound) {
		return LoadResult{Reviews: []domain.Review{}}, nil
	}
	if err != nil {
		return LoadResult{}, storeFailure("load reviews", err, nil)
	}
	res, err := s.decode(ctx, productID, data)
	if err != nil {
		return LoadResult{}, storeFailure("load reviews", err, nil)
	}
	return res, nil
}

// Save overwrites the review list of productID.
func (s *ReviewStore) Save(ctx context.Context, productID string, list []domain.Review) error {
	data, err := EncodeReviews(list)
	if err != nil {
		return fmt.Errorf("encode reviews: %w", err)
	}
	if err := s.kv.Set(ctx, ReviewsKey(productID), data); err != nil {
		return storeFailure("save reviews", err, nil)
	}
	return nil
}

// Mutate applies fn to the stored list atomically. fn returning
// ErrSkipWrite leaves the stored list untouched.
func (s *ReviewStore) Mutate(ctx context.Context, productID string, fn ReviewMutation) ([]domain.Review, error) {
	var (
		result []domain.Review
		fnErr  error
	)
	err := s.kv.Update(ctx, ReviewsKey(productID), func(current []byte, exists bool) ([]byte, error) {
		list := []domain.Review{}
		if exists {
			res, err := s.decode(ctx, productID, current)
			if err != nil {
				return nil, err
			}
			list = res.Reviews
		}

		next, err := fn(list)
		if err != nil {
			if errors.Is(err, ErrSkipWrite) {
				result = list
			} else {
				fnErr = err
			}
			return nil, err
		}
		result = next
		return EncodeReviews(next)
	})
	if err != nil {
		return nil, storeFailure("mutate reviews", err, fnErr)
	}
	return result, nil
}

func (s *ReviewStore) decode(ctx context.Context, productID string, data []byte) (LoadResult, error) {
	res, err := DecodeReviews(data)
	if err != nil {
		return LoadResult{}, fmt.Errorf("decode reviews of %s: %w", productID, err)
	}
	if res.Recovered {
		s.logger.WarnContext(ctx, "stored reviews unreadable, starting from an empty list",
			slog.String("product_id", productID),
			slog.Int("bytes", len(data)),
		)
	}
	return res, nil
}

// UserStore implements UserRepository over a KV.
type UserStore struct {
	kv     KV
	logger *slog.Logger
}

// NewUserStore creates a user store.
func NewUserStore(kv KV, logger *slog.Logger) *UserStore {
	return &UserStore{kv: kv, logger: logger}
}

// Active returns the client's active user, or nil.
func (s *UserStore) Active(ctx context.Context, clientID string) (*domain.User, error) {
	data, err := s.kv.Get(ctx, CurrentUserKey(clientID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure("load active user", err, nil)
	}
	u, ok := DecodeUser(data)
	if !ok {
		s.logger.WarnContext(ctx, "stored user unreadable, treating client as logged out",
			slog.String("client_id", clientID),
		)
		return nil, nil
	}
	return &u, nil
}

// SetActive makes user the client's active user.
func (s *UserStore) SetActive(ctx context.Context, clientID string, user domain.User) error {
	data, err := EncodeUser(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, CurrentUserKey(clientID), data); err != nil {
		return storeFailure("save active user", err, nil)
	}
	return nil
}

// Clear removes the client's active user.
func (s *UserStore) Clear(ctx context.Context, clientID string) error {
	if err := s.kv.Delete(ctx, CurrentUserKey(clientID)); err != nil {
		return storeFailure("clear active user", err, nil)
	}
	return nil
}

// SessionStore implements SessionRepository over a KV.
type SessionStore struct {
	kv KV
}

// NewSessionStore creates a session store.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Load returns the stored session, or an idle one.
func (s *SessionStore) Load(ctx context.Context, clientID, productID string) (domain.Session, error) {
	data, err := s.kv.Get(ctx, SessionKey(clientID, productID))
	if errors.Is(err, ErrNotFound) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, storeFailure("load session", err, nil)
	}
	sess, _ := DecodeSession(data)
	return sess, nil
}

// Save overwrites the stored session.
func (s *SessionStore) Save(ctx context.Context, clientID, productID string, sess domain.Session) error {
	data, err := EncodeSession(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, SessionKey(clientID, productID), data); err != nil {
		return storeFailure("save session", err, nil)
	}
	return nil
}

// Mutate applies fn to the stored session atomically.
func (s *SessionStore) Mutate(ctx context.Context, clientID, productID string, fn SessionMutation) (domain.Session, error) {
	var (
		result domain.Session
		fnErr  error
	)
	err := s.kv.Update(ctx, SessionKey(clientID, productID), func(current []byte, exists bool) ([]byte, error) {
		var sess domain.Session
		if exists {
			sess, _ = DecodeSession(current)
		}
		if err := fn(&sess); err != nil {
			if errors.Is(err, ErrSkipWrite) {
				result = sess
			} else {
				fnErr = err
			}
			return nil, err
		}
		result = sess
		return EncodeSession(sess)
	})
	if err != nil {
		return domain.Session{}, storeFailure("mutate session", err, fnErr)
	}
	return result, nil
}
