package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
)

func TestDelete_RequestConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "to delete")
	keep := f.add(t, "c1", "1", 5, "keep")

	sess, err := f.session.RequestDelete(ctx, "c1", "1", rv.ID)
	require.NoError(t, err)
	assert.Equal(t, rv.ID, sess.PendingDeleteID)

	f.events.On("ReviewDeleted", mock.Anything, "1", rv.ID, user.ID).Return().Once()
	res, err := f.session.ConfirmDelete(ctx, "c1", "1")
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, rv.ID, res.ReviewID)

	loaded, err := f.reviews.Load(ctx, "1")
	require.NoError(t, err)
	require.Len(t, loaded.Reviews, 1)
	assert.Equal(t, keep.ID, loaded.Reviews[0].ID)

	sess, err = f.session.Get(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Empty(t, sess.PendingDeleteID)
	f.events.AssertExpectations(t)
}

func TestDelete_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "stay")

	_, err := f.session.RequestDelete(ctx, "c1", "1", rv.ID)
	require.NoError(t, err)
	sess, err := f.session.CancelDelete(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Empty(t, sess.PendingDeleteID)

	res, err := f.session.ConfirmDelete(ctx, "c1", "1")
	require.NoError(t, err)
	assert.False(t, res.Deleted)

	loaded, err := f.reviews.Load(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, loaded.Reviews, 1)
}

func TestDelete_NewRequestReplacesPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	a := f.add(t, "c1", "1", 4, "a")
	b := f.add(t, "c1", "1", 4, "b")

	_, err := f.session.RequestDelete(ctx, "c1", "1", a.ID)
	require.NoError(t, err)
	sess, err := f.session.RequestDelete(ctx, "c1", "1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, sess.PendingDeleteID)

	f.events.On("ReviewDeleted", mock.Anything, "1", b.ID, mock.Anything).Return().Once()
	res, err := f.session.ConfirmDelete(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, res.ReviewID)

	loaded, err := f.reviews.Load(ctx, "1")
	require.NoError(t, err)
	require.Len(t, loaded.Reviews, 1)
	assert.Equal(t, a.ID, loaded.Reviews[0].ID)
}

func TestDelete_AlreadyGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "x")

	_, err := f.session.RequestDelete(ctx, "c1", "1", rv.ID)
	require.NoError(t, err)
	f.seed(t, "1")

	res, err := f.session.ConfirmDelete(ctx, "c1", "1")
	require.NoError(t, err)
	assert.False(t, res.Deleted)
	f.events.AssertNotCalled(t, "ReviewDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "mine")
	f.login(t, "c2", "Bia")

	_, err := f.session.RequestDelete(ctx, "c2", "1", rv.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.session.RequestDelete(ctx, "c2", "1", "missing")
	requireAppError(t, err, http.StatusNotFound)

	_, err = f.session.RequestDelete(ctx, "c3", "1", rv.ID)
	requireAppError(t, err, http.StatusUnauthorized)
}

func TestEdit_SaveFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "original")

	sess, err := f.session.BeginEdit(ctx, "c1", "1", rv.ID)
	require.NoError(t, err)
	assert.Equal(t, rv.ID, sess.EditingReviewID)
	assert.Equal(t, "original", sess.Draft)

	sess, err = f.session.UpdateDraft(ctx, "c1", "1", "  edited ")
	require.NoError(t, err)
	assert.Equal(t, "  edited ", sess.Draft)

	f.events.On("ReviewUpdated", mock.Anything, "1", mock.MatchedBy(func(r domain.Review) bool {
		return r.ID == rv.ID
	})).Return().Once()
	saved, err := f.session.SaveEdit(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Equal(t, "  edited ", saved.Comment)

	sess, err = f.session.Get(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Empty(t, sess.EditingReviewID)
	assert.Empty(t, sess.Draft)

	loaded, err := f.reviews.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "  edited ", loaded.Reviews[0].Comment)
	assert.Equal(t, 4.0, loaded.Reviews[0].Rating)
	f.events.AssertExpectations(t)
}

func TestEdit_BlankDraftRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "original")

	_, err := f.session.BeginEdit(ctx, "c1", "1", rv.ID)
	require.NoError(t, err)
	_, err = f.session.UpdateDraft(ctx, "c1", "1", "   ")
	require.NoError(t, err)

	_, err = f.session.SaveEdit(ctx, "c1", "1")
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, "comment must not be empty", appErr.Message)

	sess, err := f.session.Get(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Equal(t, rv.ID, sess.EditingReviewID, "edit stays open")

	loaded, err := f.reviews.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded.Reviews[0].Comment)
}

func TestEdit_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "original")

	_, err := f.session.BeginEdit(ctx, "c1", "1", rv.ID)
	require.NoError(t, err)
	_, err = f.session.UpdateDraft(ctx, "c1", "1", "changed")
	require.NoError(t, err)
	sess, err := f.session.CancelEdit(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Empty(t, sess.EditingReviewID)

	loaded, err := f.reviews.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "original", loaded.Reviews[0].Comment)
}

func TestEdit_NotEditing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")

	_, err := f.session.UpdateDraft(ctx, "c1", "1", "text")
	requireAppError(t, err, http.StatusConflict)

	_, err = f.session.SaveEdit(ctx, "c1", "1")
	requireAppError(t, err, http.StatusConflict)
}

func TestEdit_AuthorOnlyAndDeletedMeanwhile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t, "c1", "Ana")
	rv := f.add(t, "c1", "1", 4, "original")
	f.login(t, "c2", "Bia")

	_, err := f.session.BeginEdit(ctx, "c2", "1", rv.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = f.session.BeginEdit(ctx, "c1", "1", rv.ID)
	require.NoError(t, err)
	f.seed(t, "1")

	_, err = f.session.SaveEdit(ctx, "c1", "1")
	requireAppError(t, err, http.StatusNotFound)

	sess, err := f.session.Get(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Empty(t, sess.EditingReviewID, "edit of a deleted review is dropped")
}
