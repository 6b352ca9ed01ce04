package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem is a denormalized snapshot of a product taken when it was
// saved. Re-adding a product replaces the snapshot.
type WishlistItem struct {
	ProductID     int64           `json:"productId"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
	AverageRating float64         `json:"averageRating"`
	AddedAt       time.Time       `json:"addedAt"`
}

// NewWishlistItem snapshots p at addedAt.
func NewWishlistItem(p Product, addedAt time.Time) WishlistItem {
	return WishlistItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		AverageRating: p.AverageRating,
		AddedAt:       addedAt,
	}
}

// FormattedPrice renders the saved price as "$12.50".
func (w WishlistItem) FormattedPrice() string {
	return "$" + w.Price.StringFixed(2)
}
