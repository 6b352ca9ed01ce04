package domain

import (
	"fmt"
	"time"
)

// DefaultReviewerName is used when the catalog omits a reviewer name.
const DefaultReviewerName = "Anonymous"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single product review. MarkedHelpful is a local overlay: it is
// never persisted or sent to the catalog.
type Review struct {
	ID            int64      `json:"id"`
	ReviewerName  string     `json:"reviewerName"`
	Rating        int        `json:"rating"`
	Comment       string     `json:"comment"`
	HelpfulCount  int        `json:"helpfulCount"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	MarkedHelpful bool       `json:"-"`
}

// ToggleHelpful returns a copy with the helpful overlay flipped and the
// displayed helpful count moved by one in the same direction.
func (r Review) ToggleHelpful() Review {
	if r.MarkedHelpful {
		r.MarkedHelpful = false
		r.HelpfulCount--
	} else {
		r.MarkedHelpful = true
		r.HelpfulCount++
	}
	return r
}

// RelativeTime describes how long ago the review was written, relative to now.
func (r Review) RelativeTime(now time.Time) string {
	if r.CreatedAt == nil {
		return "Recently"
	}
	elapsed := now.Sub(*r.CreatedAt)
	days := int64(elapsed / (24 * time.Hour))
	hours := int64(elapsed / time.Hour)
	minutes := int64(elapsed / time.Minute)

	switch {
	case days > 30:
		return plural(days/30, "month")
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	case minutes > 0:
		return plural(minutes, "minute")
	default:
		return "Just now"
	}
}

// FormattedDate renders the creation date as "Jan 02, 2006", or "Unknown".
func (r Review) FormattedDate() string {
	if r.CreatedAt == nil {
		return "Unknown"
	}
	return r.CreatedAt.Format("Jan 02, 2006")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// ValidRating reports whether r is a star value between MinRating and MaxRating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
