package domain

import "fmt"

// Bucket is one histogram row.
type Bucket struct {
	Stars   int     `json:"stars"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// PercentLabel renders Percent rounded to a whole number, e.g. "67%".
func (b Bucket) PercentLabel() string {
	return fmt.Sprintf("%.0f%%", b.Percent)
}

// Summary aggregates the ratings of a review list.
type Summary struct {
	Average float64 `json:"average"`
	Total   int     `json:"total"`
	// Histogram is ordered 5 stars down to 1 star.
	Histogram [MaxRating]Bucket `json:"histogram"`
}

// AverageLabel renders the average with one decimal, e.g. "3.7".
func (s Summary) AverageLabel() string {
	return fmt.Sprintf("%.1f", s.Average)
}

// Summarize computes the average and per-star histogram of list. Ratings are
// truncated toward zero before bucketing; out-of-range ratings count in the
// average and total but in no bucket.
func Summarize(list []Review) Summary {
	var s Summary
	for i := range s.Histogram {
		s.Histogram[i].Stars = MaxRating - i
	}

	s.Total = len(list)
	if s.Total == 0 {
		return s
	}

	var sum float64
	for i := range list {
		sum += list[i].Rating
		if stars := list[i].Stars(); stars >= MinRating && stars <= MaxRating {
			s.Histogram[MaxRating-stars].Count++
		}
	}
	s.Average = sum / float64(s.Total)

	for i := range s.Histogram {
		s.Histogram[i].Percent = float64(s.Histogram[i].Count) / float64(s.Total) * 100
	}
	return s
}

// Bucket returns the histogram row for stars (1-5).
func (s Summary) Bucket(stars int) Bucket {
	if stars < MinRating || stars > MaxRating {
		return Bucket{Stars: stars}
	}
	return s.Histogram[MaxRating-stars]
}
