package service

import (
	"context"
	"net/http"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
)

func mutationCount(t *testing.T, op string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, reviewMutations.WithLabelValues(op).Write(m))

	require.Len(t, m.GetLabel(), 1)
	assert.Equal(t, "operation", m.GetLabel()[0].GetName())
	assert.Equal(t, op, m.GetLabel()[0].GetValue())
	return m.GetCounter().GetValue()
}

func TestReviewMutations_CountsOnlySuccesses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "1", domain.Review{ID: "a", AuthorID: "u9", Rating: 4})
	f.login(t, "c1", "Ana")
	f.events.On("ReviewReacted", mock.Anything, "1", mock.Anything, mock.Anything, mock.Anything).Return()

	likes := mutationCount(t, opLike)
	dislikes := mutationCount(t, opDislike)

	_, err := f.review.ToggleLike(ctx, "c1", "1", "a")
	require.NoError(t, err)
	_, err = f.review.ToggleDislike(ctx, "c1", "1", "a")
	require.NoError(t, err)

	_, err = f.review.ToggleLike(ctx, "c1", "1", "missing")
	requireAppError(t, err, http.StatusNotFound)
	_, err = f.review.ToggleLike(ctx, "nobody", "1", "a")
	requireAppError(t, err, http.StatusUnauthorized)

	assert.Equal(t, likes+1, mutationCount(t, opLike))
	assert.Equal(t, dislikes+1, mutationCount(t, opDislike))
}
