package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_RegisterCurrentLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.user.Register(ctx, "c1", "  Ana  ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.NotEmpty(t, u.ID)

	again, err := f.user.Register(ctx, "c1", "Ana")
	require.NoError(t, err)
	assert.NotEqual(t, u.ID, again.ID, "each registration is a new user")

	cur, err := f.user.Current(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, again.ID, cur.ID)

	require.NoError(t, f.user.Logout(ctx, "c1"))
	require.NoError(t, f.user.Logout(ctx, "c1"))

	_, err = f.user.Current(ctx, "c1")
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestUser_RegisterBlankName(t *testing.T) {
	f := newFixture(t)

	_, err := f.user.Register(context.Background(), "c1", "   ")
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, "name must not be empty", appErr.Message)

	_, err = f.user.Current(context.Background(), "c1")
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestCatalog(t *testing.T) {
	svc := NewCatalogService()

	list := svc.List(context.Background())
	require.Len(t, list, 6)

	p, err := svc.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "R$ 1069,00", p.PriceLabel())

	_, err = svc.Get(context.Background(), "99")
	requireAppError(t, err, http.StatusNotFound)
}
