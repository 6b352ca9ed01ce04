package catalogstub

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/productreview/internal/domain"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/httputil"
	"github.com/utafrali/productreview/pkg/middleware"
	"github.com/utafrali/productreview/pkg/pagination"
	"github.com/utafrali/productreview/pkg/validator"
)

// Handler serves the catalog endpoints from a Store.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

// NewHandler creates a catalog HTTP handler.
func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RouterOption configures NewRouter.
type RouterOption func(*routerOptions)

type routerOptions struct {
	metrics  *middleware.HTTPMetrics
	gatherer prometheus.Gatherer
}

// WithMetrics records request metrics on every route.
func WithMetrics(m *middleware.HTTPMetrics) RouterOption {
	return func(o *routerOptions) { o.metrics = m }
}

// WithMetricsEndpoint serves the metrics in g at GET /metrics.
func WithMetricsEndpoint(g prometheus.Gatherer) RouterOption {
	return func(o *routerOptions) { o.gatherer = g }
}

// NewRouter creates a chi router with every catalog route registered.
func NewRouter(store *Store, logger *slog.Logger, opts ...RouterOption) http.Handler {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("catalog-stub"))
	r.Use(middleware.RequestLogger(logger))
	if o.metrics != nil {
		r.Use(o.metrics.Middleware)
	}

	if o.gatherer != nil {
		r.Get("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	}

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	h := NewHandler(store, logger)
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Put("/reviews/{reviewId}/helpful", h.MarkHelpful)
		r.Get("/{id}", h.GetProduct)
		r.Get("/{id}/reviews", h.ListReviews)
		r.Post("/{id}/reviews", h.CreateReview)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, apperrors.NotFound("route", r.URL.Path), logger)
	})

	return r
}

// ListProducts handles GET /api/products?page&size&sort&category.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var category *string
	if v := r.URL.Query().Get("category"); v != "" {
		category = &v
	}

	page, err := h.store.ListProducts(pageParams(r), r.URL.Query().Get("sort"), category)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.Map(page, domain.NewProductDTO))
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.store.Product(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.NewProductDTO(p))
}

// ListReviews handles GET /api/products/{id}/reviews?page&size&sort&rating.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	rating, ok := httputil.QueryInt(w, r, "rating")
	if !ok {
		return
	}
	if rating != nil && !domain.ValidRating(*rating) {
		httputil.WriteError(w, r, apperrors.InvalidInput("rating must be between 1 and 5"), h.logger)
		return
	}

	page, err := h.store.Reviews(id, pageParams(r), r.URL.Query().Get("sort"), rating)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.Map(page, domain.NewReviewDTO))
}

// CreateReview handles POST /api/products/{id}/reviews.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req domain.CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	// Whitespace-only fields pass the raw check.
	req = req.Normalize()
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	review, err := h.store.AddReview(id, domain.Review{
		ReviewerName: req.ReviewerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "review created",
		slog.Int64("product_id", id),
		slog.Int64("review_id", review.ID),
		slog.Int("rating", review.Rating),
	)
	httputil.WriteJSON(w, http.StatusCreated, domain.NewReviewDTO(review))
}

// MarkHelpful handles PUT /api/products/reviews/{reviewId}/helpful.
func (h *Handler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, r, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	review, err := h.store.MarkHelpful(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, domain.NewReviewDTO(review))
}

// pageParams reads page and size, clamping oversized pages to the maximum
// instead of falling back to the default.
func pageParams(r *http.Request) pagination.Params {
	p := pagination.FromRequest(r)
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > pagination.MaxSize {
		p.Size = pagination.MaxSize
		p.Offset = p.Page * p.Size
	}
	return p
}
