package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository/memory"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) ReviewCreated(ctx context.Context, productID string, rv domain.Review) {
	m.Called(ctx, productID, rv)
}

func (m *mockPublisher) ReviewUpdated(ctx context.Context, productID string, rv domain.Review) {
	m.Called(ctx, productID, rv)
}

func (m *mockPublisher) ReviewDeleted(ctx context.Context, productID, reviewID, userID string) {
	m.Called(ctx, productID, reviewID, userID)
}

func (m *mockPublisher) ReviewReacted(ctx context.Context, productID string, rv domain.Review, userID string, reaction domain.Reaction) {
	m.Called(ctx, productID, rv, userID, reaction)
}

func (m *mockPublisher) ReviewReported(ctx context.Context, productID string, rv domain.Review) {
	m.Called(ctx, productID, rv)
}

// --- Fixture ---

type fixture struct {
	kv       *memory.KV
	reviews  *repository.ReviewStore
	users    *repository.UserStore
	sessions *repository.SessionStore
	events   *mockPublisher
	review   *ReviewService
	session  *SessionService
	user     *UserService
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := memory.NewKV()
	f := &fixture{
		kv:       kv,
		reviews:  repository.NewReviewStore(kv, newTestLogger()),
		users:    repository.NewUserStore(kv, newTestLogger()),
		sessions: repository.NewSessionStore(kv),
		events:   new(mockPublisher),
		clock:    time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC),
	}
	f.review = NewReviewService(f.reviews, f.users, f.sessions, f.events, 3*time.Second, newTestLogger())
	f.session = NewSessionService(f.reviews, f.users, f.sessions, f.events, newTestLogger())
	f.user = NewUserService(f.users, newTestLogger())
	now := func() time.Time { return f.clock }
	f.review.now = now
	f.session.now = now
	return f
}

// login registers name on clientID and returns the user.
func (f *fixture) login(t *testing.T, clientID, name string) *domain.User {
	t.Helper()
	u, err := f.user.Register(context.Background(), clientID, name)
	require.NoError(t, err)
	return u
}

// add stores a review by the client's active user.
func (f *fixture) add(t *testing.T, clientID, productID string, rating int, comment string) *ReviewView {
	t.Helper()
	f.events.On("ReviewCreated", mock.Anything, productID, mock.Anything).Return().Once()
	rv, err := f.review.Add(context.Background(), clientID, productID, AddReviewInput{Rating: rating, Comment: comment})
	require.NoError(t, err)
	return rv
}

// seed writes reviews directly, bypassing the services.
func (f *fixture) seed(t *testing.T, productID string, list ...domain.Review) {
	t.Helper()
	require.NoError(t, f.reviews.Save(context.Background(), productID, list))
}
