package service

import (
	"time"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
)

// ReviewView is a review as shown to one viewer.
type ReviewView struct {
	ID         string  `json:"id"`
	AuthorName string  `json:"author_name"`
	AuthorID   string  `json:"author_id"`
	Rating     float64 `json:"rating"`
	Stars      int     `json:"stars"`
	Comment    string  `json:"comment"`
	Date       string  `json:"date"`
	Likes      int     `json:"likes"`
	Dislikes   int     `json:"dislikes"`
	Reports    int     `json:"reports"`
	// ViewerReaction is the viewer's own reaction: none, liked or disliked.
	ViewerReaction string `json:"viewer_reaction"`
	// IsAuthor tells the viewer whether edit and delete are offered.
	IsAuthor bool `json:"is_author"`
}

// NewReviewView renders rv for viewerID. An empty viewerID is anonymous.
func NewReviewView(rv domain.Review, viewerID string) ReviewView {
	reaction := domain.ReactionNone
	if viewerID != "" {
		reaction = rv.ReactionOf(viewerID)
	}
	return ReviewView{
		ID:             rv.ID,
		AuthorName:     rv.AuthorName,
		AuthorID:       rv.AuthorID,
		Rating:         rv.Rating,
		Stars:          rv.Stars(),
		Comment:        rv.Comment,
		Date:           rv.Date,
		Likes:          rv.Likes(),
		Dislikes:       rv.Dislikes(),
		Reports:        rv.Reports,
		ViewerReaction: reaction.String(),
		IsAuthor:       viewerID != "" && rv.AuthorID == viewerID,
	}
}

// BucketView is one histogram row with its display label.
type BucketView struct {
	Stars        int     `json:"stars"`
	Count        int     `json:"count"`
	Percent      float64 `json:"percent"`
	PercentLabel string  `json:"percent_label"`
}

// SummaryView is the rating summary shown above the list.
type SummaryView struct {
	Average      float64      `json:"average"`
	AverageLabel string       `json:"average_label"`
	Total        int          `json:"total"`
	Histogram    []BucketView `json:"histogram"`
}

// NewSummaryView renders s, histogram rows from 5 stars down to 1.
func NewSummaryView(s domain.Summary) SummaryView {
	out := SummaryView{
		Average:      s.Average,
		AverageLabel: s.AverageLabel(),
		Total:        s.Total,
		Histogram:    make([]BucketView, 0, len(s.Histogram)),
	}
	for _, b := range s.Histogram {
		out.Histogram = append(out.Histogram, BucketView{
			Stars:        b.Stars,
			Count:        b.Count,
			Percent:      b.Percent,
			PercentLabel: b.PercentLabel(),
		})
	}
	return out
}

// ReviewPage is a filtered, sorted review list plus the summary of the whole
// list.
type ReviewPage struct {
	ProductID string       `json:"product_id"`
	Stars     int          `json:"stars"`
	Order     string       `json:"order"`
	Reviews   []ReviewView `json:"reviews"`
	Summary   SummaryView  `json:"summary"`
}

// SessionView is a client's widget state for one product.
type SessionView struct {
	PendingDeleteID string `json:"pending_delete_id,omitempty"`
	EditingReviewID string `json:"editing_review_id,omitempty"`
	Draft           string `json:"draft,omitempty"`
	Notice          string `json:"notice,omitempty"`
}

// NewSessionView renders s at now. An expired notice is not shown.
func NewSessionView(s domain.Session, now time.Time) SessionView {
	v := SessionView{
		PendingDeleteID: s.Delete.PendingID,
		EditingReviewID: s.Edit.ReviewID,
		Draft:           s.Edit.Draft,
	}
	if s.Notice.Active(now) {
		v.Notice = s.Notice.Message
	}
	return v
}
