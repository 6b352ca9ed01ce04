package domain

import "strings"

// blankQuery reports whether q has no searchable content. Non-blank queries
// are matched as typed, surrounding spaces included.
func blankQuery(q string) bool {
	return strings.TrimSpace(q) == ""
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// FilterProducts returns the products matching query, preserving order.
// A blank query returns a copy of the full slice.
func FilterProducts(products []Product, query string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out
}
