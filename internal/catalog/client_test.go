package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"

	"github.com/utafrali/productreview/internal/catalog/catalogstub"
	"github.com/utafrali/productreview/internal/domain"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/httpclient"
	"github.com/utafrali/productreview/pkg/logger"
	"github.com/utafrali/productreview/pkg/tracing"
)

var testNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func testHTTPConfig() httpclient.Config {
	return httpclient.Config{
		Timeout:         5 * time.Second,
		MaxRetries:      0,
		MaxConnsPerHost: 4,
	}
}

// newStubClient starts the catalog stub over HTTP and returns a client for it.
func newStubClient(t *testing.T) (*Client, *catalogstub.Store) {
	t.Helper()
	store := catalogstub.NewSeededStore(testNow)
	srv := httptest.NewServer(catalogstub.NewRouter(store, logger.Discard()))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, httpclient.New(testHTTPConfig()), logger.Discard())
	require.NoError(t, err)
	return c, store
}

func newRawClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", httpclient.New(testHTTPConfig()), logger.Discard())
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost:8080", httpclient.New(testHTTPConfig()), logger.Discard())
	assert.Error(t, err)

	_, err = NewClient("/api", httpclient.New(testHTTPConfig()), logger.Discard())
	assert.Error(t, err)
}

func TestClient_ListProducts_Pages(t *testing.T) {
	c, store := newStubClient(t)

	first, err := c.ListProducts(context.Background(), ProductQuery{Page: 0, Size: 10, Sort: domain.SortNameAsc.Value})
	require.NoError(t, err)
	assert.Len(t, first.Content, 10)
	assert.Equal(t, store.Len(), first.TotalElements)
	assert.False(t, first.Last)

	second, err := c.ListProducts(context.Background(), ProductQuery{Page: 1, Size: 10, Sort: domain.SortNameAsc.Value})
	require.NoError(t, err)
	assert.Len(t, second.Content, store.Len()-10)
	assert.True(t, second.Last)

	products := domain.ProductsFromDTOs(first).Content
	for i := 1; i < len(products); i++ {
		assert.LessOrEqual(t, strings.ToLower(products[i-1].Name), strings.ToLower(products[i].Name))
	}
}

func TestClient_ListProducts_CategoryFilter(t *testing.T) {
	c, _ := newStubClient(t)

	page, err := c.ListProducts(context.Background(), ProductQuery{
		Page:     0,
		Size:     10,
		Category: domain.CategoryFilter(domain.CategoryAudio),
	})
	require.NoError(t, err)
	require.NotEmpty(t, page.Content)
	for _, p := range domain.ProductsFromDTOs(page).Content {
		assert.Equal(t, domain.CategoryAudio, p.Category)
	}
}

func TestClient_ListProducts_QueryEncoding(t *testing.T) {
	var got url.Values
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"content":[],"totalElements":0,"totalPages":0,"number":2,"size":10,"last":true}`))
	})

	_, err := c.ListProducts(context.Background(), ProductQuery{Page: 2, Size: 10, Sort: "price,desc"})
	require.NoError(t, err)
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "10", got.Get("size"))
	assert.Equal(t, "price,desc", got.Get("sort"))
	assert.False(t, got.Has("category"), "wildcard must not send a category")
}

func TestClient_GetProduct(t *testing.T) {
	c, store := newStubClient(t)
	want, err := store.Product(1)
	require.NoError(t, err)

	dto, err := c.GetProduct(context.Background(), 1)
	require.NoError(t, err)

	p := dto.ToDomain()
	assert.Equal(t, want.Name, p.Name)
	assert.True(t, want.Price.Equal(p.Price), "price %s != %s", want.Price, p.Price)
	assert.Equal(t, want.RatingBreakdown, p.RatingBreakdown)
}

func TestClient_GetProduct_NotFound(t *testing.T) {
	c, _ := newStubClient(t)

	_, err := c.GetProduct(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "product with id 999 not found", apperrors.Message(err, ""))
}

func TestClient_ListReviews_RatingFilter(t *testing.T) {
	c, _ := newStubClient(t)
	rating := 5

	page, err := c.ListReviews(context.Background(), 1, ReviewQuery{Page: 0, Size: 10, Sort: domain.ReviewSort, Rating: &rating})
	require.NoError(t, err)
	require.NotEmpty(t, page.Content)
	for _, r := range domain.ReviewsFromDTOs(page).Content {
		assert.Equal(t, 5, r.Rating)
		require.NotNil(t, r.CreatedAt)
	}
}

func TestClient_CreateReview_ThenProductReflectsIt(t *testing.T) {
	c, _ := newStubClient(t)
	ctx := context.Background()

	before, err := c.GetProduct(ctx, 3)
	require.NoError(t, err)

	created, err := c.CreateReview(ctx, 3, domain.CreateReviewRequest{ReviewerName: "Quinn", Rating: 4, Comment: "Nice"})
	require.NoError(t, err)
	r := created.ToDomain()
	assert.Equal(t, "Quinn", r.ReviewerName)
	assert.NotZero(t, r.ID)

	after, err := c.GetProduct(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, before.ToDomain().ReviewCount+1, after.ToDomain().ReviewCount)
}

func TestClient_CreateReview_ValidationError(t *testing.T) {
	c, _ := newStubClient(t)

	_, err := c.CreateReview(context.Background(), 1, domain.CreateReviewRequest{ReviewerName: "x", Rating: 9, Comment: "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, apperrors.Message(err, ""), "rating")
}

func TestClient_MarkReviewHelpful(t *testing.T) {
	c, _ := newStubClient(t)
	ctx := context.Background()

	page, err := c.ListReviews(ctx, 1, ReviewQuery{Page: 0, Size: 1, Sort: domain.ReviewSort})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	review := page.Content[0].ToDomain()

	updated, err := c.MarkReviewHelpful(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, review.HelpfulCount+1, updated.ToDomain().HelpfulCount)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(base, httpclient.New(testHTTPConfig()), logger.Discard())
	require.NoError(t, err)

	_, err = c.ListProducts(context.Background(), ProductQuery{Page: 0, Size: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
	assert.Equal(t, "Network error", apperrors.Message(err, ""))
}

func TestClient_DecodeError(t *testing.T) {
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := c.GetProduct(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnexpected)
	assert.Equal(t, "Unexpected response from catalog", apperrors.Message(err, ""))
}

func TestClient_ServerErrorBody(t *testing.T) {
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 500, "error": "Internal Server Error", "message": "index rebuilding", "path": r.URL.Path,
		})
	})

	_, err := c.ListReviews(context.Background(), 1, ReviewQuery{Page: 0, Size: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Equal(t, "index rebuilding", apperrors.Message(err, ""))
}

func TestClient_ContextCanceled(t *testing.T) {
	c, _ := newStubClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_CircuitOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cbCfg := httpclient.DefaultCircuitBreakerConfig("catalog-test-open")
	cbCfg.MinRequests = 2
	cbCfg.Timeout = time.Minute
	cb := httpclient.NewCircuitBreakerClient(httpclient.New(testHTTPConfig()), cbCfg, logger.Discard())

	c, err := NewClient(srv.URL, cb, logger.Discard())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := c.GetProduct(context.Background(), 1)
		require.Error(t, err)
	}

	_, err = c.GetProduct(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, "Catalog is temporarily unavailable, please try again shortly", apperrors.Message(err, ""))
}

func TestClient_CircuitOpenWithFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cbCfg := httpclient.DefaultCircuitBreakerConfig("catalog-test-fallback")
	cbCfg.MinRequests = 1
	cbCfg.Timeout = time.Minute
	cb := httpclient.NewCircuitBreakerClient(httpclient.New(testHTTPConfig()), cbCfg, logger.Discard()).
		WithFallback(CircuitOpenFallback)

	c, err := NewClient(srv.URL, cb, logger.Discard())
	require.NoError(t, err)

	_, err = c.ListProducts(context.Background(), ProductQuery{Size: 10})
	require.Error(t, err)

	_, err = c.ListProducts(context.Background(), ProductQuery{Size: 10})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestClient_RecordsSpans(t *testing.T) {
	rec, shutdown := tracing.NewRecorder()
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	c, _ := newStubClient(t)
	_, err := c.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.GetProduct(context.Background(), 404)
	require.Error(t, err)

	var spans []string
	var failed int
	for _, s := range rec.Ended() {
		if s.Name() != "catalog.GetProduct" {
			continue
		}
		spans = append(spans, s.Name())
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Len(t, spans, 2)
	assert.Equal(t, 1, failed)
}

func TestClient_ListProducts_LogsInconsistentPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Single page that still claims more follow.
		_, _ = w.Write([]byte(`{"content":[{"id":1,"name":"Solo"}],"totalElements":1,"totalPages":1,"number":0,"size":10,"last":false}`))
	}))
	t.Cleanup(srv.Close)

	var logs bytes.Buffer
	c, err := NewClient(srv.URL, httpclient.New(testHTTPConfig()), logger.NewWithWriter("catalog-test", "warn", "text", &logs))
	require.NoError(t, err)

	page, err := c.ListProducts(context.Background(), ProductQuery{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
	assert.True(t, page.HasMore(), "paging follows the Last flag")
	assert.Contains(t, logs.String(), "catalog page metadata inconsistent")
	assert.Contains(t, logs.String(), "operation=ListProducts")
}

func TestClient_ListReviews_ConsistentPageLogsNothing(t *testing.T) {
	c, _ := newStubClient(t)
	var logs bytes.Buffer
	c.logger = logger.NewWithWriter("catalog-test", "warn", "text", &logs)

	_, err := c.ListReviews(context.Background(), 1, ReviewQuery{Page: 0, Size: 2, Sort: domain.ReviewSort})
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "inconsistent")
}
