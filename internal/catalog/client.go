package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/productreview/internal/domain"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/httpclient"
	"github.com/utafrali/productreview/pkg/pagination"
	"github.com/utafrali/productreview/pkg/tracing"
)

const (
	serviceName = "catalog"
	tracerName  = "productreview/catalog"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback replaces the breaker's raw ErrCircuitOpen with a
// user-facing unavailability error.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("Catalog is temporarily unavailable, please try again shortly")
}

// Client implements Catalog over HTTP.
type Client struct {
	baseURL *url.URL
	http    HTTPDoer
	logger  *slog.Logger
}

var _ Catalog = (*Client)(nil)

// NewClient creates a catalog client rooted at baseURL (e.g.
// "http://localhost:8080/"). API paths are resolved relative to it.
func NewClient(baseURL string, doer HTTPDoer, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog url must be absolute, got %q", baseURL)
	}
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	return &Client{baseURL: u, http: doer, logger: logger}, nil
}

// ListProducts implements Catalog.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (pagination.Page[domain.ProductDTO], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Category != nil {
		params.Set("category", *q.Category)
	}

	ctx, span := tracing.Start(ctx, tracerName, "catalog.ListProducts",
		attribute.Int("page", q.Page),
		attribute.Int("size", q.Size),
		attribute.String("sort", q.Sort),
	)
	var page pagination.Page[domain.ProductDTO]
	err := c.call(ctx, http.MethodGet, "api/products", params, nil, &page)
	tracing.End(span, err)
	if err != nil {
		return pagination.Page[domain.ProductDTO]{}, err
	}
	checkPage(ctx, c.logger, "ListProducts", page)
	return page, nil
}

// GetProduct implements Catalog.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.ProductDTO, error) {
	ctx, span := tracing.Start(ctx, tracerName, "catalog.GetProduct", attribute.Int64("product_id", id))
	var dto domain.ProductDTO
	err := c.call(ctx, http.MethodGet, "api/products/"+strconv.FormatInt(id, 10), nil, nil, &dto)
	tracing.End(span, err)
	return dto, err
}

// ListReviews implements Catalog.
func (c *Client) ListReviews(ctx context.Context, productID int64, q ReviewQuery) (pagination.Page[domain.ReviewDTO], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Rating != nil {
		params.Set("rating", strconv.Itoa(*q.Rating))
	}

	ctx, span := tracing.Start(ctx, tracerName, "catalog.ListReviews",
		attribute.Int64("product_id", productID),
		attribute.Int("page", q.Page),
	)
	var page pagination.Page[domain.ReviewDTO]
	err := c.call(ctx, http.MethodGet, "api/products/"+strconv.FormatInt(productID, 10)+"/reviews", params, nil, &page)
	tracing.End(span, err)
	if err != nil {
		return pagination.Page[domain.ReviewDTO]{}, err
	}
	checkPage(ctx, c.logger, "ListReviews", page)
	return page, nil
}

// checkPage logs pages whose Last flag disagrees with Number and TotalPages.
// Paging follows Last, so such a page is still returned.
func checkPage[T any](ctx context.Context, logger *slog.Logger, op string, page pagination.Page[T]) {
	if page.Consistent() {
		return
	}
	logger.WarnContext(ctx, "catalog page metadata inconsistent",
		slog.String("operation", op),
		slog.Int("number", page.Number),
		slog.Int("total_pages", page.TotalPages),
		slog.Bool("last", page.Last),
	)
}

// CreateReview implements Catalog.
func (c *Client) CreateReview(ctx context.Context, productID int64, req domain.CreateReviewRequest) (domain.ReviewDTO, error) {
	ctx, span := tracing.Start(ctx, tracerName, "catalog.CreateReview",
		attribute.Int64("product_id", productID),
		attribute.Int("rating", req.Rating),
	)
	var dto domain.ReviewDTO
	err := c.call(ctx, http.MethodPost, "api/products/"+strconv.FormatInt(productID, 10)+"/reviews", nil, req, &dto)
	tracing.End(span, err)
	return dto, err
}

// MarkReviewHelpful implements Catalog.
func (c *Client) MarkReviewHelpful(ctx context.Context, reviewID int64) (domain.ReviewDTO, error) {
	ctx, span := tracing.Start(ctx, tracerName, "catalog.MarkReviewHelpful", attribute.Int64("review_id", reviewID))
	var dto domain.ReviewDTO
	err := c.call(ctx, http.MethodPut, "api/products/reviews/"+strconv.FormatInt(reviewID, 10)+"/helpful", nil, nil, &dto)
	tracing.End(span, err)
	return dto, err
}

// call performs one request and decodes a 2xx JSON body into out. Every
// failure comes back as an *apperrors.AppError except caller cancellation,
// which is returned as the context error.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	ref := &url.URL{Path: path}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	target := c.baseURL.ResolveReference(ref)

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("marshal %s request: %w", path, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("create %s request: %w", method, err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return c.transportError(ctx, method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := httpclient.ParseResponseError(resp, serviceName)
		level := slog.LevelWarn
		if httpclient.IsClientError(resp.StatusCode) {
			level = slog.LevelInfo
		}
		c.logger.Log(ctx, level, "catalog request rejected",
			slog.String("method", method),
			slog.String("url", target.String()),
			slog.Int("status", resp.StatusCode),
			slog.String("error", perr.Error()),
		)
		return perr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.WarnContext(ctx, "catalog response undecodable",
			slog.String("method", method),
			slog.String("url", target.String()),
			slog.String("error", err.Error()),
		)
		return &apperrors.AppError{
			Code:    "DECODE_ERROR",
			Message: "Unexpected response from catalog",
			Status:  http.StatusBadGateway,
			Err:     errors.Join(apperrors.ErrUnexpected, err),
		}
	}

	c.logger.DebugContext(ctx, "catalog request completed",
		slog.String("method", method),
		slog.String("url", target.String()),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}

func (c *Client) transportError(ctx context.Context, method string, target *url.URL, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if errors.Is(err, httpclient.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "catalog circuit open", slog.String("url", target.String()))
		_, fallbackErr := CircuitOpenFallback(ctx, err)
		return fallbackErr
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		// Parsed 5xx body from the breaker, or the open-circuit fallback.
		c.logger.WarnContext(ctx, "catalog request failed",
			slog.String("method", method),
			slog.String("url", target.String()),
			slog.String("error", err.Error()),
		)
		return appErr
	}

	c.logger.WarnContext(ctx, "catalog unreachable",
		slog.String("method", method),
		slog.String("url", target.String()),
		slog.String("error", err.Error()),
	)
	return apperrors.Network(err)
}
