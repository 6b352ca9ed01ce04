// Package app wires configuration, the catalog client, local stores and the
// screen state machines together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/productreview/internal/assistant"
	"github.com/utafrali/productreview/internal/catalog"
	"github.com/utafrali/productreview/internal/config"
	"github.com/utafrali/productreview/internal/notification"
	"github.com/utafrali/productreview/internal/preferences"
	"github.com/utafrali/productreview/internal/productdetail"
	"github.com/utafrali/productreview/internal/productlist"
	"github.com/utafrali/productreview/internal/wishlist"
	"github.com/utafrali/productreview/pkg/httpclient"
	"github.com/utafrali/productreview/pkg/tracing"
)

const breakerName = "catalog"

// App holds every long-lived component of the client.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	catalog       *catalog.Client
	wishlistStore *wishlist.Store
	wishlist      *wishlist.Coordinator
	preferences   *preferences.Store
	assistant     *assistant.Assistant
	notifications *notification.Inbox

	shutdownTracer tracing.ShutdownFunc
}

// New creates the application, opening the local stores under
// cfg.DataDir.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	registry := prometheus.NewRegistry()

	cat, err := newCatalogClient(cfg, registry, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}

	store, err := wishlist.Open(ctx, cfg.WishlistPath(), logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("open wishlist: %w", err)
	}
	logger.Debug("wishlist store opened", slog.String("path", cfg.WishlistPath()))

	prefs, err := preferences.Open(cfg.PreferencesPath(), logger)
	if err != nil {
		_ = store.Close()
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		registry:       registry,
		catalog:        cat,
		wishlistStore:  store,
		wishlist:       wishlist.NewCoordinator(store, logger),
		preferences:    prefs,
		assistant:      assistant.New(logger, assistant.WithLatency(cfg.AssistantLatency)),
		notifications:  notification.NewSeededInbox(time.Now(), logger),
		shutdownTracer: shutdownTracer,
	}, nil
}

// newCatalogClient builds the HTTP stack: pooled client with metrics, then
// the circuit breaker (unless disabled), then the typed catalog client.
func newCatalogClient(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*catalog.Client, error) {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	httpCfg.MaxRetries = cfg.HTTPMaxRetries

	client := httpclient.New(httpCfg).WithMetrics(httpclient.NewMetrics(reg, "productreview"))

	var doer catalog.HTTPDoer = client
	if cfg.BreakerEnabled {
		cbCfg := httpclient.DefaultCircuitBreakerConfig(breakerName)
		cbCfg.Timeout = cfg.BreakerTimeout
		cbCfg.MinRequests = cfg.BreakerMinRequest
		cbCfg.FailureRatio = cfg.BreakerRatio
		doer = httpclient.NewCircuitBreakerClient(client, cbCfg, logger).WithFallback(catalog.CircuitOpenFallback)
	}

	cat, err := catalog.NewClient(cfg.CatalogBaseURL(), doer, logger)
	if err != nil {
		return nil, fmt.Errorf("create catalog client: %w", err)
	}
	return cat, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Registry returns the registry holding the client metrics.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// Catalog returns the remote catalog client.
func (a *App) Catalog() *catalog.Client { return a.catalog }

// Wishlist returns the wishlist coordinator.
func (a *App) Wishlist() *wishlist.Coordinator { return a.wishlist }

// Preferences returns the preference store.
func (a *App) Preferences() *preferences.Store { return a.preferences }

// Assistant returns the shopping assistant.
func (a *App) Assistant() *assistant.Assistant { return a.assistant }

// Notifications returns the notification inbox.
func (a *App) Notifications() *notification.Inbox { return a.notifications }

// ProductList creates a product list state machine over the catalog.
func (a *App) ProductList(opts ...productlist.Option) *productlist.Machine {
	return productlist.New(a.catalog, a.logger, opts...)
}

// ProductDetail creates a product detail state machine over the catalog.
func (a *App) ProductDetail(opts ...productdetail.Option) *productdetail.Machine {
	return productdetail.New(a.catalog, a.logger, opts...)
}

// Close releases the local stores and flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.wishlistStore.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close wishlist: %w", err))
	}
	if err := a.shutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}
	return errors.Join(errs...)
}
