// Package productdetail holds the product detail screen state: one product
// snapshot, its paged reviews with an optional star filter, review
// submission, and the local "helpful" overlay.
package productdetail

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/utafrali/productreview/internal/catalog"
	"github.com/utafrali/productreview/internal/domain"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/stream"
	"github.com/utafrali/productreview/pkg/validator"
)

// DefaultPageSize is the number of reviews requested per page.
const DefaultPageSize = 10

// State is an immutable snapshot of the detail screen.
type State struct {
	Loading           bool
	Product           *domain.Product
	Reviews           []domain.Review
	Error             string
	CurrentReviewPage int
	TotalReviewPages  int
	HasMoreReviews    bool
	LoadingReviews    bool
	SelectedRating    *int
	Submitting        bool
	ReviewSubmitted   bool
	SubmitError       string
}

// Machine owns the detail state. Transitions happen under mu and are
// published to subscribers; remote calls run without the lock held.
type Machine struct {
	catalog  catalog.Catalog
	logger   *slog.Logger
	pageSize int

	mu            sync.Mutex
	state         State
	productID     int64
	productGen    uint64
	reviewGen     uint64
	reviewsLoaded bool
	live          *stream.Value[State]
}

// Option configures a Machine.
type Option func(*Machine)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// New creates an empty detail machine.
func New(c catalog.Catalog, logger *slog.Logger, opts ...Option) *Machine {
	m := &Machine{
		catalog:  c,
		logger:   logger,
		pageSize: DefaultPageSize,
		state:    State{Reviews: []domain.Review{}},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.live = stream.NewValue(m.state)
	return m
}

// State returns the current snapshot.
func (m *Machine) State() State {
	return m.live.Get()
}

// Subscribe streams state snapshots: the current one first, then every
// transition. The channel closes when ctx is done.
func (m *Machine) Subscribe(ctx context.Context) <-chan State {
	return m.live.Subscribe(ctx)
}

// LoadProduct fetches the product snapshot and, on success, its first page
// of reviews. A failed product fetch sets Error and skips the reviews.
func (m *Machine) LoadProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	if id != m.productID {
		m.switchProductLocked(id)
	}
	m.productGen++
	gen := m.productGen
	m.state.Loading = true
	m.state.Error = ""
	m.publishLocked()
	m.mu.Unlock()

	dto, err := m.catalog.GetProduct(ctx, id)

	m.mu.Lock()
	if gen != m.productGen || id != m.productID {
		m.mu.Unlock()
		return err
	}
	if err != nil {
		m.state.Loading = false
		m.state.Error = apperrors.Message(err, "Unknown error")
		m.logger.WarnContext(ctx, "failed to load product",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		m.publishLocked()
		m.mu.Unlock()
		return err
	}
	// Loading stays set until the first review page is applied.
	product := dto.ToDomain()
	m.state.Product = &product
	m.publishLocked()
	m.mu.Unlock()

	return m.LoadReviews(ctx, id, true)
}

// switchProductLocked forgets everything about the previous product.
func (m *Machine) switchProductLocked(id int64) {
	m.productID = id
	m.reviewGen++
	m.reviewsLoaded = false
	m.state = State{Reviews: []domain.Review{}}
}

// LoadReviews fetches a page of reviews for product id under the current
// rating filter, newest first. With resetPage it discards the reviews
// fetched so far and fetches page 0; otherwise it fetches the page after the
// last one applied.
func (m *Machine) LoadReviews(ctx context.Context, id int64, resetPage bool) error {
	req, ok := m.beginReviews(id, resetPage, false)
	if !ok {
		return nil
	}
	return m.fetchReviews(ctx, req)
}

// LoadNextReviews fetches the next page of reviews unless a fetch is running,
// the last page has been reached, or no product is loaded.
func (m *Machine) LoadNextReviews(ctx context.Context) error {
	m.mu.Lock()
	id := m.productID
	m.mu.Unlock()

	req, ok := m.beginReviews(id, false, true)
	if !ok {
		return nil
	}
	return m.fetchReviews(ctx, req)
}

// FilterByRating restricts reviews to one star value (nil for every rating)
// and reloads them from page 0. It does nothing until a product is loaded.
func (m *Machine) FilterByRating(ctx context.Context, rating *int) error {
	if rating != nil && !domain.ValidRating(*rating) {
		return apperrors.InvalidInput("rating must be between 1 and 5")
	}

	m.mu.Lock()
	if m.state.Product == nil {
		m.mu.Unlock()
		return nil
	}
	if rating != nil {
		r := *rating
		rating = &r
	}
	m.state.SelectedRating = rating
	id := m.productID
	m.mu.Unlock()

	return m.LoadReviews(ctx, id, true)
}

type reviewRequest struct {
	productID  int64
	generation uint64
	page       int
	reset      bool
	query      catalog.ReviewQuery
}

func (m *Machine) beginReviews(id int64, reset, guarded bool) (reviewRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if guarded && (m.state.Product == nil || m.state.LoadingReviews || !m.state.HasMoreReviews) {
		return reviewRequest{}, false
	}

	if id != m.productID {
		m.switchProductLocked(id)
		reset = true
	}
	if reset {
		m.reviewGen++
		m.reviewsLoaded = false
		m.state.Reviews = []domain.Review{}
		m.state.CurrentReviewPage = 0
		m.state.TotalReviewPages = 0
		m.state.HasMoreReviews = false
	}

	m.state.LoadingReviews = true
	m.state.Error = ""
	m.publishLocked()

	page := m.nextReviewPageLocked()
	return reviewRequest{
		productID:  id,
		generation: m.reviewGen,
		page:       page,
		reset:      reset,
		query: catalog.ReviewQuery{
			Page:   page,
			Size:   m.pageSize,
			Sort:   domain.ReviewSort,
			Rating: m.state.SelectedRating,
		},
	}, true
}

func (m *Machine) nextReviewPageLocked() int {
	if !m.reviewsLoaded {
		return 0
	}
	return m.state.CurrentReviewPage + 1
}

func (m *Machine) fetchReviews(ctx context.Context, req reviewRequest) error {
	page, err := m.catalog.ListReviews(ctx, req.productID, req.query)

	m.mu.Lock()
	defer m.mu.Unlock()

	if req.generation != m.reviewGen || (!req.reset && req.page != m.nextReviewPageLocked()) {
		m.logger.DebugContext(ctx, "discarding stale review page",
			slog.Int64("product_id", req.productID),
			slog.Int("page", req.page),
		)
		return err
	}

	m.state.LoadingReviews = false
	if req.reset {
		m.state.Loading = false
	}
	if err != nil {
		m.state.Error = apperrors.Message(err, "Unknown error")
		m.logger.WarnContext(ctx, "failed to load reviews",
			slog.Int64("product_id", req.productID),
			slog.Int("page", req.page),
			slog.String("error", err.Error()),
		)
		m.publishLocked()
		return err
	}

	reviews := domain.ReviewsFromDTOs(page).Content
	m.state.Reviews = slices.Concat(m.state.Reviews, reviews)
	m.reviewsLoaded = true
	m.state.CurrentReviewPage = req.page
	m.state.TotalReviewPages = page.TotalPages
	m.state.HasMoreReviews = page.HasMore()
	m.publishLocked()
	return nil
}

// SubmitReview validates and creates a review for the loaded product. On
// success it sets ReviewSubmitted and reloads the product so the aggregate
// rating reflects the new review; the accumulated reviews are never edited
// locally.
func (m *Machine) SubmitReview(ctx context.Context, name string, rating int, comment string) error {
	m.mu.Lock()
	if m.state.Product == nil {
		m.mu.Unlock()
		return apperrors.InvalidInput("no product loaded")
	}
	if m.state.Submitting {
		m.mu.Unlock()
		return nil
	}
	id := m.productID
	m.state.Submitting = true
	m.state.ReviewSubmitted = false
	m.state.SubmitError = ""
	m.publishLocked()
	m.mu.Unlock()

	req := domain.CreateReviewRequest{
		ReviewerName: name,
		Rating:       rating,
		Comment:      comment,
	}.Normalize()

	err := validator.Validate(req)
	if err == nil {
		_, err = m.catalog.CreateReview(ctx, id, req)
	}

	m.mu.Lock()
	m.state.Submitting = false
	if err != nil {
		m.state.SubmitError = apperrors.Message(err, "Failed to submit review")
		m.publishLocked()
		m.mu.Unlock()
		m.logger.WarnContext(ctx, "review submission failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		return err
	}
	m.state.ReviewSubmitted = true
	m.publishLocked()
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "review submitted",
		slog.Int64("product_id", id),
		slog.Int("rating", req.Rating),
	)

	if err := m.LoadProduct(ctx, id); err != nil {
		m.logger.WarnContext(ctx, "reload after review submission failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ResetReviewSubmitted clears the one-shot submitted flag and any submit
// error.
func (m *Machine) ResetReviewSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.ReviewSubmitted = false
	m.state.SubmitError = ""
	m.publishLocked()
}

// MarkReviewAsHelpful toggles the local helpful overlay on a loaded review,
// moving its displayed count by one. Nothing is sent to the catalog and the
// next reload reverts it. It reports whether the review was found.
func (m *Machine) MarkReviewAsHelpful(reviewID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.state.Reviews, func(r domain.Review) bool { return r.ID == reviewID })
	if i < 0 {
		return false
	}
	reviews := slices.Clone(m.state.Reviews)
	reviews[i] = reviews[i].ToggleHelpful()
	m.state.Reviews = reviews
	m.publishLocked()
	return true
}

func (m *Machine) publishLocked() {
	m.live.Set(m.state)
}
