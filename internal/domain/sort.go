package domain

import "strings"

// SortOption pairs a display label with the catalog's "field,direction" key.
type SortOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Sort options offered for the product list.
var (
	SortNameAsc     = SortOption{Label: "Name (A-Z)", Value: "name,asc"}
	SortNameDesc    = SortOption{Label: "Name (Z-A)", Value: "name,desc"}
	SortRatingDesc  = SortOption{Label: "Top Rated", Value: "averageRating,desc"}
	SortRatingAsc   = SortOption{Label: "Low Rated", Value: "averageRating,asc"}
	SortPriceAsc    = SortOption{Label: "Price: Low-High", Value: "price,asc"}
	SortPriceDesc   = SortOption{Label: "Price: High-Low", Value: "price,desc"}
	SortReviewsDesc = SortOption{Label: "Most Reviewed", Value: "reviewCount,desc"}
)

// DefaultSort is applied until the user picks another option.
var DefaultSort = SortNameAsc

// ReviewSort is the fixed ordering for review pages: newest first.
const ReviewSort = "createdAt,desc"

// SortOptions returns every sort option in display order.
func SortOptions() []SortOption {
	return []SortOption{
		SortNameAsc,
		SortNameDesc,
		SortRatingDesc,
		SortRatingAsc,
		SortPriceAsc,
		SortPriceDesc,
		SortReviewsDesc,
	}
}

// ParseSortOption accepts either a value ("price,asc") or a label
// ("Price: Low-High"), case-insensitively.
func ParseSortOption(s string) (SortOption, bool) {
	s = strings.TrimSpace(s)
	for _, o := range SortOptions() {
		if strings.EqualFold(o.Value, s) || strings.EqualFold(o.Label, s) {
			return o, true
		}
	}
	return SortOption{}, false
}

// Field returns the field half of the sort value.
func (o SortOption) Field() string {
	field, _, _ := strings.Cut(o.Value, ",")
	return field
}

// Descending reports whether the sort direction is descending.
func (o SortOption) Descending() bool {
	_, dir, _ := strings.Cut(o.Value, ",")
	return strings.EqualFold(dir, "desc")
}
