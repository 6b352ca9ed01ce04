package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCategory is used when the catalog omits a product's category.
const DefaultCategory = "Other"

// Product is an immutable catalog snapshot. It is replaced wholesale on
// refetch, never patched.
type Product struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	AverageRating   float64         `json:"averageRating"`
	ReviewCount     int             `json:"reviewCount"`
	RatingBreakdown map[int]int     `json:"ratingBreakdown"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	AISummary       *string         `json:"aiSummary,omitempty"`
}

// FormattedPrice renders the price as dollars with two decimals, e.g. "$12.50".
func (p Product) FormattedPrice() string {
	return "$" + p.Price.StringFixed(2)
}

// HasReviews reports whether at least one review exists.
func (p Product) HasReviews() bool {
	return p.ReviewCount > 0
}

// RatingShare returns the fraction of reviews carrying the given star value,
// or 0 when there are no reviews.
func (p Product) RatingShare(stars int) float64 {
	if p.ReviewCount <= 0 {
		return 0
	}
	return float64(p.RatingBreakdown[stars]) / float64(p.ReviewCount)
}

// String implements fmt.Stringer.
func (p Product) String() string {
	return fmt.Sprintf("#%d %s (%s) %s", p.ID, p.Name, p.Category, p.FormattedPrice())
}

// Matches reports whether query occurs case-insensitively in the product's
// name, description or category. A blank query matches everything.
func (p Product) Matches(query string) bool {
	if blankQuery(query) {
		return true
	}
	q := strings.ToLower(query)
	return containsFold(p.Name, q) || containsFold(p.Description, q) || containsFold(p.Category, q)
}
