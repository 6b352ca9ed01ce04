package domain

import "strings"

// Category constants. CategoryAll is the wildcard that suppresses the
// server-side category filter.
const (
	CategoryAll         = "All"
	CategoryElectronics = "Electronics"
	CategoryLaptops     = "Laptops"
	CategoryTablets     = "Tablets"
	CategoryWearables   = "Wearables"
	CategoryGaming      = "Gaming"
	CategoryAudio       = "Audio"
	CategoryAccessories = "Accessories"
)

// Categories returns the closed set of selectable categories, wildcard first.
func Categories() []string {
	return []string{
		CategoryAll,
		CategoryElectronics,
		CategoryLaptops,
		CategoryTablets,
		CategoryWearables,
		CategoryGaming,
		CategoryAudio,
		CategoryAccessories,
	}
}

// ParseCategory resolves s case-insensitively to a known category. A blank
// string resolves to CategoryAll.
func ParseCategory(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryAll, true
	}
	for _, c := range Categories() {
		if strings.EqualFold(c, s) {
			return c, true
		}
	}
	return "", false
}

// CategoryFilter returns the value to send to the catalog for c, or nil when
// c is the wildcard.
func CategoryFilter(c string) *string {
	if c == "" || c == CategoryAll {
		return nil
	}
	return &c
}
