// Package catalogstub serves the catalog REST contract from memory. It backs
// the catalog client in tests and `productreview stub` in local development.
package catalogstub

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/productreview/internal/domain"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/pagination"
)

// Store is a concurrency-safe in-memory catalog.
type Store struct {
	mu           sync.RWMutex
	products     map[int64]domain.Product
	reviews      map[int64][]domain.Review // by product id
	reviewOwner  map[int64]int64           // review id -> product id
	nextProduct  int64
	nextReviewID int64
	now          func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used to stamp new reviews.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		products:     make(map[int64]domain.Product),
		reviews:      make(map[int64][]domain.Review),
		reviewOwner:  make(map[int64]int64),
		nextProduct:  1,
		nextReviewID: 1,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddProduct stores p with a fresh id, ignoring p.ID and any aggregate
// fields; those are derived from the product's reviews.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextProduct
	s.nextProduct++
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	s.products[p.ID] = p
	s.recomputeLocked(p.ID)
	return s.products[p.ID]
}

// AddReview appends r to the product's reviews. A nil CreatedAt is stamped
// with the store clock.
func (s *Store) AddReview(productID int64, r domain.Review) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return domain.Review{}, productNotFound(productID)
	}
	if !domain.ValidRating(r.Rating) {
		return domain.Review{}, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	r.ID = s.nextReviewID
	s.nextReviewID++
	r.MarkedHelpful = false
	if r.ReviewerName == "" {
		r.ReviewerName = domain.DefaultReviewerName
	}
	if r.CreatedAt == nil {
		at := s.now().UTC().Truncate(time.Second)
		r.CreatedAt = &at
	}

	s.reviews[productID] = append(s.reviews[productID], r)
	s.reviewOwner[r.ID] = productID
	s.recomputeLocked(productID)
	return r, nil
}

// Product returns the product with the given id.
func (s *Store) Product(id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, productNotFound(id)
	}
	return p, nil
}

// Len returns the number of products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// ListProducts returns one page of products, optionally restricted to a
// category, ordered by sortBy ("field,dir").
func (s *Store) ListProducts(params pagination.Params, sortBy string, category *string) (pagination.Page[domain.Product], error) {
	less, err := productOrder(sortBy)
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}

	s.mu.RLock()
	items := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != nil && !strings.EqualFold(p.Category, *category) {
			continue
		}
		items = append(items, p)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(items, func(a, b domain.Product) int {
		if c := less(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return pagination.Slice(items, params), nil
}

// Reviews returns one page of a product's reviews, optionally restricted to
// a single star rating.
func (s *Store) Reviews(productID int64, params pagination.Params, sortBy string, rating *int) (pagination.Page[domain.Review], error) {
	order, err := reviewOrder(sortBy)
	if err != nil {
		return pagination.Page[domain.Review]{}, err
	}

	s.mu.RLock()
	if _, ok := s.products[productID]; !ok {
		s.mu.RUnlock()
		return pagination.Page[domain.Review]{}, productNotFound(productID)
	}
	items := make([]domain.Review, 0, len(s.reviews[productID]))
	for _, r := range s.reviews[productID] {
		if rating != nil && r.Rating != *rating {
			continue
		}
		items = append(items, r)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(items, func(a, b domain.Review) int {
		if c := order(a, b); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return pagination.Slice(items, params), nil
}

// MarkHelpful increments a review's helpful count.
func (s *Store) MarkHelpful(reviewID int64) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	productID, ok := s.reviewOwner[reviewID]
	if !ok {
		return domain.Review{}, apperrors.NotFound("review", strconv.FormatInt(reviewID, 10))
	}
	reviews := s.reviews[productID]
	for i := range reviews {
		if reviews[i].ID == reviewID {
			reviews[i].HelpfulCount++
			return reviews[i], nil
		}
	}
	return domain.Review{}, apperrors.NotFound("review", strconv.FormatInt(reviewID, 10))
}

// recomputeLocked refreshes the product's average rating, review count and
// breakdown from its stored reviews. The average is rounded to one decimal.
func (s *Store) recomputeLocked(productID int64) {
	p := s.products[productID]
	reviews := s.reviews[productID]

	breakdown := make(map[int]int, domain.MaxRating)
	sum := 0
	for _, r := range reviews {
		breakdown[r.Rating]++
		sum += r.Rating
	}

	p.ReviewCount = len(reviews)
	p.RatingBreakdown = breakdown
	p.AverageRating = 0
	if len(reviews) > 0 {
		p.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	s.products[productID] = p
}

func productNotFound(id int64) error {
	return apperrors.NotFound("product", strconv.FormatInt(id, 10))
}

func parseSort(sortBy, fallback string) (field string, desc bool, err error) {
	if strings.TrimSpace(sortBy) == "" {
		sortBy = fallback
	}
	field, dir, _ := strings.Cut(sortBy, ",")
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return "", false, apperrors.InvalidInput("invalid sort direction: " + dir)
	}
	return strings.TrimSpace(field), desc, nil
}

func productOrder(sortBy string) (func(a, b domain.Product) int, error) {
	field, desc, err := parseSort(sortBy, domain.DefaultSort.Value)
	if err != nil {
		return nil, err
	}

	var order func(a, b domain.Product) int
	switch field {
	case "id":
		order = func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) }
	case "name":
		order = func(a, b domain.Product) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case "price":
		order = func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case "averageRating":
		order = func(a, b domain.Product) int { return cmp.Compare(a.AverageRating, b.AverageRating) }
	case "reviewCount":
		order = func(a, b domain.Product) int { return cmp.Compare(a.ReviewCount, b.ReviewCount) }
	default:
		return nil, apperrors.InvalidInput("unsupported sort field: " + field)
	}
	if desc {
		return func(a, b domain.Product) int { return order(b, a) }, nil
	}
	return order, nil
}

func reviewOrder(sortBy string) (func(a, b domain.Review) int, error) {
	field, desc, err := parseSort(sortBy, domain.ReviewSort)
	if err != nil {
		return nil, err
	}

	var order func(a, b domain.Review) int
	switch field {
	case "createdAt":
		order = func(a, b domain.Review) int { return createdAt(a).Compare(createdAt(b)) }
	case "rating":
		order = func(a, b domain.Review) int { return cmp.Compare(a.Rating, b.Rating) }
	case "helpfulCount":
		order = func(a, b domain.Review) int { return cmp.Compare(a.HelpfulCount, b.HelpfulCount) }
	default:
		return nil, apperrors.InvalidInput("unsupported sort field: " + field)
	}
	if desc {
		return func(a, b domain.Review) int { return order(b, a) }, nil
	}
	return order, nil
}

func createdAt(r domain.Review) time.Time {
	if r.CreatedAt == nil {
		return time.Time{}
	}
	return *r.CreatedAt
}
