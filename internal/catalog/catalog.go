// Package catalog talks to the remote product/review catalog over its REST
// API and returns wire DTOs or typed AppErrors.
package catalog

import (
	"context"

	"github.com/utafrali/productreview/internal/domain"
	"github.com/utafrali/productreview/pkg/pagination"
)

// ProductQuery selects one page of the product list.
type ProductQuery struct {
	Page     int
	Size     int
	Sort     string
	Category *string // nil means no server-side filter
}

// ReviewQuery selects one page of a product's reviews.
type ReviewQuery struct {
	Page   int
	Size   int
	Sort   string
	Rating *int // nil means every rating
}

// Catalog is the remote catalog surface used by the state machines.
type Catalog interface {
	// ListProducts returns one page of products.
	ListProducts(ctx context.Context, q ProductQuery) (pagination.Page[domain.ProductDTO], error)

	// GetProduct returns a single product snapshot.
	GetProduct(ctx context.Context, id int64) (domain.ProductDTO, error)

	// ListReviews returns one page of reviews for a product.
	ListReviews(ctx context.Context, productID int64, q ReviewQuery) (pagination.Page[domain.ReviewDTO], error)

	// CreateReview submits a new review and returns it as stored.
	CreateReview(ctx context.Context, productID int64, req domain.CreateReviewRequest) (domain.ReviewDTO, error)

	// MarkReviewHelpful increments a review's helpful count on the server.
	MarkReviewHelpful(ctx context.Context, reviewID int64) (domain.ReviewDTO, error)
}
