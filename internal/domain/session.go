package domain

import (
	"errors"
	"time"
)

// ErrNotEditing is returned when a draft is changed or saved with no edit in
// progress.
var ErrNotEditing = errors.New("no edit in progress")

// SuccessMessage is the notice shown after a review is submitted.
const SuccessMessage = "review submitted successfully"

// DeleteState is the two-phase delete state machine:
// idle -> pending(reviewID) -> idle.
type DeleteState struct {
	PendingID string `json:"pending_id,omitempty"`
}

// Pending reports the review awaiting confirmation, if any.
func (d DeleteState) Pending() (string, bool) {
	return d.PendingID, d.PendingID != ""
}

// Request marks reviewID as pending, replacing any earlier request.
func (d *DeleteState) Request(reviewID string) {
	d.PendingID = reviewID
}

// Confirm returns the pending review id and moves back to idle.
func (d *DeleteState) Confirm() (string, bool) {
	id, ok := d.Pending()
	d.PendingID = ""
	return id, ok
}

// Cancel moves back to idle without deleting anything.
func (d *DeleteState) Cancel() {
	d.PendingID = ""
}

// EditState holds the scratch buffer of an in-progress comment edit.
type EditState struct {
	ReviewID string `json:"review_id,omitempty"`
	Draft    string `json:"draft,omitempty"`
}

// Editing reports whether an edit is in progress.
func (e EditState) Editing() bool {
	return e.ReviewID != ""
}

// Begin starts editing reviewID with its current comment as the draft.
func (e *EditState) Begin(reviewID, comment string) {
	e.ReviewID = reviewID
	e.Draft = comment
}

// SetDraft replaces the scratch text.
func (e *EditState) SetDraft(text string) error {
	if !e.Editing() {
		return ErrNotEditing
	}
	e.Draft = text
	return nil
}

// Cancel discards the draft.
func (e *EditState) Cancel() {
	e.ReviewID = ""
	e.Draft = ""
}

// Notice is a transient message that disappears at ExpiresAt.
type Notice struct {
	Message   string    `json:"message,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the notice should still be shown at now.
func (n Notice) Active(now time.Time) bool {
	return n.Message != "" && now.Before(n.ExpiresAt)
}

// NewNotice creates a notice visible for ttl from now.
func NewNotice(message string, now time.Time, ttl time.Duration) Notice {
	return Notice{Message: message, ExpiresAt: now.Add(ttl)}
}

// Session is one client's transient widget state for one product.
type Session struct {
	Delete DeleteState `json:"delete"`
	Edit   EditState   `json:"edit"`
	Notice Notice      `json:"notice"`
}
