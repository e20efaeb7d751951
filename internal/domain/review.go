package domain

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the day/month/year layout review dates are stored in.
const DateLayout = "02/01/2006"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Validation failures reported back to the author verbatim.
var (
	ErrIncompleteReview = errors.New("please select a rating and write a comment")
	ErrInvalidRating    = errors.New("invalid rating")
	ErrEmptyComment     = errors.New("comment must not be empty")
)

// Reaction is one user's stance on one review. A user holds at most one
// reaction per review, so liking and disliking are mutually exclusive by
// construction.
type Reaction int

const (
	ReactionNone Reaction = iota
	ReactionLiked
	ReactionDisliked
)

func (r Reaction) String() string {
	switch r {
	case ReactionLiked:
		return "liked"
	case ReactionDisliked:
		return "disliked"
	default:
		return "none"
	}
}

// Review is one rating plus comment left on a product.
type Review struct {
	ID         string
	AuthorName string
	AuthorID   string
	Rating     float64
	Comment    string
	Date       string
	Reports    int
	// Reactions maps user id to that user's reaction. ReactionNone is never
	// stored.
	Reactions map[string]Reaction
}

// NewReview builds a review dated today with no reactions or reports.
func NewReview(author User, rating int, comment string, now time.Time) Review {
	return Review{
		ID:         uuid.New().String(),
		AuthorName: author.Name,
		AuthorID:   author.ID,
		Rating:     float64(rating),
		Comment:    strings.TrimSpace(comment),
		Date:       now.Format(DateLayout),
		Reactions:  map[string]Reaction{},
	}
}

// ValidateNewReview checks a submission before it becomes a review.
func ValidateNewReview(rating int, comment string) error {
	if rating == 0 || strings.TrimSpace(comment) == "" {
		return ErrIncompleteReview
	}
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// ValidateComment rejects an empty or whitespace-only comment.
func ValidateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyComment
	}
	return nil
}

// ReactionOf returns userID's reaction to r.
func (r *Review) ReactionOf(userID string) Reaction {
	return r.Reactions[userID]
}

func (r *Review) setReaction(userID string, reaction Reaction) {
	if r.Reactions == nil {
		r.Reactions = map[string]Reaction{}
	}
	if reaction == ReactionNone {
		delete(r.Reactions, userID)
		return
	}
	r.Reactions[userID] = reaction
}

// ToggleLike likes the review for userID, or takes the like back if the user
// already liked it. A previous dislike is replaced.
func (r *Review) ToggleLike(userID string) Reaction {
	next := ReactionLiked
	if r.ReactionOf(userID) == ReactionLiked {
		next = ReactionNone
	}
	r.setReaction(userID, next)
	return next
}

// ToggleDislike mirrors ToggleLike.
func (r *Review) ToggleDislike(userID string) Reaction {
	next := ReactionDisliked
	if r.ReactionOf(userID) == ReactionDisliked {
		next = ReactionNone
	}
	r.setReaction(userID, next)
	return next
}

// Report counts one more report. Reports are not deduplicated per user.
func (r *Review) Report() {
	r.Reports++
}

// Likes is the size of the like set.
func (r *Review) Likes() int { return r.count(ReactionLiked) }

// Dislikes is the size of the dislike set.
func (r *Review) Dislikes() int { return r.count(ReactionDisliked) }

// LikedBy returns the users who liked the review, sorted.
func (r *Review) LikedBy() []string { return r.members(ReactionLiked) }

// DislikedBy returns the users who disliked the review, sorted.
func (r *Review) DislikedBy() []string { return r.members(ReactionDisliked) }

func (r *Review) count(want Reaction) int {
	n := 0
	for _, got := range r.Reactions {
		if got == want {
			n++
		}
	}
	return n
}

func (r *Review) members(want Reaction) []string {
	out := []string{}
	for id, got := range r.Reactions {
		if got == want {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Stars is the rating truncated toward zero, the bucket a review counts in.
func (r *Review) Stars() int {
	return int(math.Trunc(r.Rating))
}

// ParsedDate parses Date. Unparseable dates yield the zero time.
func (r *Review) ParsedDate() time.Time {
	t, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone returns a deep copy.
func (r Review) Clone() Review {
	reactions := make(map[string]Reaction, len(r.Reactions))
	for k, v := range r.Reactions {
		reactions[k] = v
	}
	r.Reactions = reactions
	return r
}

// Prepend returns list with rv inserted at the front, newest first.
func Prepend(list []Review, rv Review) []Review {
	out := make([]Review, 0, len(list)+1)
	out = append(out, rv)
	return append(out, list...)
}

// FindReview returns the index of the review with id, or -1.
func FindReview(list []Review, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveReview returns list without the review with id and whether one was
// removed.
func RemoveReview(list []Review, id string) ([]Review, bool) {
	idx := FindReview(list, id)
	if idx < 0 {
		return list, false
	}
	out := make([]Review, 0, len(list)-1)
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...), true
}
