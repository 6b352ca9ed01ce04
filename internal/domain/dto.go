package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/productreview/pkg/pagination"
)

// ProductDTO is the catalog's wire representation of a product. Optional
// fields are pointers so that absence can be told apart from zero. Price
// decodes from either a JSON number or a numeric string.
type ProductDTO struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        *string         `json:"category,omitempty"`
	Price           decimal.Decimal `json:"price"`
	AverageRating   *float64        `json:"averageRating,omitempty"`
	ReviewCount     *int            `json:"reviewCount,omitempty"`
	RatingBreakdown map[int]int     `json:"ratingBreakdown,omitempty"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	AISummary       *string         `json:"aiSummary,omitempty"`
}

// ReviewDTO is the catalog's wire representation of a review.
type ReviewDTO struct {
	ID           *int64  `json:"id,omitempty"`
	ReviewerName *string `json:"reviewerName,omitempty"`
	Rating       int     `json:"rating"`
	Comment      string  `json:"comment"`
	HelpfulCount *int    `json:"helpfulCount,omitempty"`
	CreatedAt    *string `json:"createdAt,omitempty"`
}

// CreateReviewRequest is the body sent to create a review.
type CreateReviewRequest struct {
	ReviewerName string `json:"reviewerName" validate:"required,max=100"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Comment      string `json:"comment" validate:"required,max=2000"`
}

// Normalize trims surrounding whitespace from the free-text fields.
func (r CreateReviewRequest) Normalize() CreateReviewRequest {
	r.ReviewerName = strings.TrimSpace(r.ReviewerName)
	r.Comment = strings.TrimSpace(r.Comment)
	return r
}

// ToDomain maps the DTO, applying catalog defaults for absent fields.
func (d ProductDTO) ToDomain() Product {
	p := Product{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		Category:        DefaultCategory,
		Price:           d.Price,
		RatingBreakdown: make(map[int]int, len(d.RatingBreakdown)),
		ImageURL:        d.ImageURL,
		AISummary:       d.AISummary,
	}
	if d.Category != nil {
		p.Category = *d.Category
	}
	if d.AverageRating != nil {
		p.AverageRating = *d.AverageRating
	}
	if d.ReviewCount != nil {
		p.ReviewCount = *d.ReviewCount
	}
	for stars, count := range d.RatingBreakdown {
		p.RatingBreakdown[stars] = count
	}
	return p
}

// ToDomain maps the DTO. An unparseable timestamp leaves CreatedAt nil.
func (d ReviewDTO) ToDomain() Review {
	r := Review{
		ReviewerName: DefaultReviewerName,
		Rating:       d.Rating,
		Comment:      d.Comment,
	}
	if d.ID != nil {
		r.ID = *d.ID
	}
	if d.ReviewerName != nil {
		r.ReviewerName = *d.ReviewerName
	}
	if d.HelpfulCount != nil {
		r.HelpfulCount = *d.HelpfulCount
	}
	if d.CreatedAt != nil {
		if t, ok := ParseTimestamp(*d.CreatedAt); ok {
			r.CreatedAt = &t
		}
	}
	return r
}

// NewProductDTO builds the wire form of p.
func NewProductDTO(p Product) ProductDTO {
	category := p.Category
	rating := p.AverageRating
	count := p.ReviewCount
	breakdown := make(map[int]int, len(p.RatingBreakdown))
	for k, v := range p.RatingBreakdown {
		breakdown[k] = v
	}
	return ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Category:        &category,
		Price:           p.Price,
		AverageRating:   &rating,
		ReviewCount:     &count,
		RatingBreakdown: breakdown,
		ImageURL:        p.ImageURL,
		AISummary:       p.AISummary,
	}
}

// NewReviewDTO builds the wire form of r. CreatedAt is written as RFC 3339.
func NewReviewDTO(r Review) ReviewDTO {
	id := r.ID
	name := r.ReviewerName
	helpful := r.HelpfulCount
	dto := ReviewDTO{
		ID:           &id,
		ReviewerName: &name,
		Rating:       r.Rating,
		Comment:      r.Comment,
		HelpfulCount: &helpful,
	}
	if r.CreatedAt != nil {
		ts := r.CreatedAt.UTC().Format(time.RFC3339)
		dto.CreatedAt = &ts
	}
	return dto
}

// timestampLayouts lists the ISO-8601 forms accepted for review timestamps,
// zoned first. Zone-less values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimestamp parses an ISO-8601 date-time.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ProductsFromDTOs maps a page of product DTOs to domain products.
func ProductsFromDTOs(page pagination.Page[ProductDTO]) pagination.Page[Product] {
	return pagination.Map(page, ProductDTO.ToDomain)
}

// ReviewsFromDTOs maps a page of review DTOs to domain reviews.
func ReviewsFromDTOs(page pagination.Page[ReviewDTO]) pagination.Page[Review] {
	return pagination.Map(page, ReviewDTO.ToDomain)
}
