// Package productlist holds the product list screen state: a paged,
// category-filtered, sorted product list from the catalog with a local text
// search over everything fetched so far.
package productlist

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/utafrali/productreview/internal/catalog"
	"github.com/utafrali/productreview/internal/domain"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/stream"
)

// DefaultPageSize is the number of products requested per page.
const DefaultPageSize = 10

// State is an immutable snapshot of the list. Products is the visible,
// search-filtered subset of everything fetched in the current cycle.
type State struct {
	Loading     bool
	Products    []domain.Product
	Error       string
	CurrentPage int
	TotalPages  int
	HasMore     bool
	Category    string
	Sort        domain.SortOption
	SearchQuery string
}

// Machine owns the list state. All transitions happen under mu and are
// published to subscribers; remote calls run without the lock held.
type Machine struct {
	catalog  catalog.Catalog
	logger   *slog.Logger
	pageSize int

	mu          sync.Mutex
	state       State
	accumulated []domain.Product
	loaded      bool   // a page has been applied in this generation
	generation  uint64 // bumped by every reset
	live        *stream.Value[State]
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

// WithCategory sets the initial category filter. Unknown categories are
// ignored.
func WithCategory(category string) Option {
	return func(m *Machine) {
		if c, ok := domain.ParseCategory(category); ok {
			m.state.Category = c
		}
	}
}

// WithSort sets the initial sort order.
func WithSort(sort domain.SortOption) Option {
	return func(m *Machine) { m.state.Sort = sort }
}

// New creates a list machine, by default with the wildcard category and the
// default sort.
// Nothing is fetched until Load is called.
func New(c catalog.Catalog, logger *slog.Logger, opts ...Option) *Machine {
	m := &Machine{
		catalog:  c,
		logger:   logger,
		pageSize: DefaultPageSize,
		state: State{
			Products: []domain.Product{},
			Category: domain.CategoryAll,
			Sort:     domain.DefaultSort,
		},
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

// Accumulated returns every product fetched in the current cycle,
// regardless of the search query.
func (m *Machine) Accumulated() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.accumulated)
}

// Load fetches a page. With resetPage it discards everything fetched so far
// and fetches page 0; otherwise it fetches the page after the last one
// applied (page 0 if none was). It blocks until the response has been
// applied or discarded as stale and returns the fetch error, if any.
func (m *Machine) Load(ctx context.Context, resetPage bool) error {
	req, ok := m.begin(resetPage, false)
	if !ok {
		return nil
	}
	return m.fetch(ctx, req)
}

// LoadNextPage fetches the next page unless a fetch is already running or
// the last page has been reached.
func (m *Machine) LoadNextPage(ctx context.Context) error {
	req, ok := m.begin(false, true)
	if !ok {
		return nil
	}
	return m.fetch(ctx, req)
}

// Refresh reloads from page 0.
func (m *Machine) Refresh(ctx context.Context) error {
	return m.Load(ctx, true)
}

// SelectCategory switches the category filter and reloads from page 0.
// Unknown categories are rejected without touching state.
func (m *Machine) SelectCategory(ctx context.Context, category string) error {
	c, ok := domain.ParseCategory(category)
	if !ok {
		return apperrors.InvalidInput("unknown category: " + category)
	}

	m.mu.Lock()
	m.state.Category = c
	m.mu.Unlock()
	return m.Load(ctx, true)
}

// SetSortBy switches the sort order and reloads from page 0.
func (m *Machine) SetSortBy(ctx context.Context, sort domain.SortOption) error {
	m.mu.Lock()
	m.state.Sort = sort
	m.mu.Unlock()
	return m.Load(ctx, true)
}

// SetSearchQuery narrows the visible products to those matching query. It
// only searches what has been fetched and never calls the catalog.
func (m *Machine) SetSearchQuery(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.SearchQuery = query
	m.state.Products = domain.FilterProducts(m.accumulated, query)
	m.publishLocked()
}

type request struct {
	generation uint64
	page       int
	reset      bool
	query      catalog.ProductQuery
}

// begin moves the machine into the loading state and describes the fetch to
// run. guarded applies the LoadNextPage preconditions.
func (m *Machine) begin(reset, guarded bool) (request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if guarded && (m.state.Loading || !m.state.HasMore) {
		return request{}, false
	}

	if reset {
		m.generation++
		m.accumulated = nil
		m.loaded = false
		m.state.CurrentPage = 0
		m.state.TotalPages = 0
		m.state.HasMore = false
		m.state.Products = []domain.Product{}
	}

	m.state.Loading = true
	m.state.Error = ""
	m.publishLocked()

	page := m.nextPageLocked()
	return request{
		generation: m.generation,
		page:       page,
		reset:      reset,
		query: catalog.ProductQuery{
			Page:     page,
			Size:     m.pageSize,
			Sort:     m.state.Sort.Value,
			Category: domain.CategoryFilter(m.state.Category),
		},
	}, true
}

func (m *Machine) nextPageLocked() int {
	if !m.loaded {
		return 0
	}
	return m.state.CurrentPage + 1
}

func (m *Machine) fetch(ctx context.Context, req request) error {
	page, err := m.catalog.ListProducts(ctx, req.query)

	m.mu.Lock()
	defer m.mu.Unlock()

	if req.generation != m.generation || (!req.reset && req.page != m.nextPageLocked()) {
		m.logger.DebugContext(ctx, "discarding stale product page",
			slog.Int("page", req.page),
			slog.Uint64("generation", req.generation),
		)
		return err
	}

	m.state.Loading = false
	if err != nil {
		m.state.Error = apperrors.Message(err, "Unknown error")
		m.logger.WarnContext(ctx, "failed to load products",
			slog.Int("page", req.page),
			slog.String("error", err.Error()),
		)
		m.publishLocked()
		return err
	}

	products := domain.ProductsFromDTOs(page).Content
	m.accumulated = append(slices.Clip(m.accumulated), products...)
	m.loaded = true
	m.state.CurrentPage = req.page
	m.state.TotalPages = page.TotalPages
	m.state.HasMore = page.HasMore()
	m.state.Products = domain.FilterProducts(m.accumulated, m.state.SearchQuery)
	m.publishLocked()

	m.logger.DebugContext(ctx, "product page loaded",
		slog.Int("page", req.page),
		slog.Int("received", len(products)),
		slog.Int("accumulated", len(m.accumulated)),
	)
	return nil
}

func (m *Machine) publishLocked() {
	m.live.Set(m.state)
}
