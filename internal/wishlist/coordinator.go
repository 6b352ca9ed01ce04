package wishlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/productreview/internal/domain"
)

// Repository is the storage surface the coordinator needs. *Store
// implements it.
type Repository interface {
	Upsert(ctx context.Context, item domain.WishlistItem) error
	Delete(ctx context.Context, productID int64) error
	Exists(ctx context.Context, productID int64) (bool, error)
	All(ctx context.Context) ([]domain.WishlistItem, error)
	WatchExists(ctx context.Context, productID int64) <-chan bool
	WatchAll(ctx context.Context) <-chan []domain.WishlistItem
}

var _ Repository = (*Store)(nil)

// Coordinator turns user intent (toggle, remove) into store commands and
// hands out the live views screens subscribe to.
type Coordinator struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates a coordinator over repo.
func NewCoordinator(repo Repository, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsInWishlist streams whether productID is saved. It re-emits whenever the
// wishlist changes and the answer differs.
func (c *Coordinator) IsInWishlist(ctx context.Context, productID int64) <-chan bool {
	return c.repo.WatchExists(ctx, productID)
}

// Items streams the saved items, most recently added first.
func (c *Coordinator) Items(ctx context.Context) <-chan []domain.WishlistItem {
	return c.repo.WatchAll(ctx)
}

// Toggle removes product when currentlyIn is true, otherwise saves a
// snapshot of it.
func (c *Coordinator) Toggle(ctx context.Context, product domain.Product, currentlyIn bool) error {
	if currentlyIn {
		return c.Remove(ctx, product.ID)
	}

	if err := c.repo.Upsert(ctx, domain.NewWishlistItem(product, c.now())); err != nil {
		c.logger.ErrorContext(ctx, "failed to add to wishlist",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		return err
	}
	c.logger.InfoContext(ctx, "added to wishlist", slog.Int64("product_id", product.ID))
	return nil
}

// Remove deletes productID from the wishlist.
func (c *Coordinator) Remove(ctx context.Context, productID int64) error {
	if err := c.repo.Delete(ctx, productID); err != nil {
		c.logger.ErrorContext(ctx, "failed to remove from wishlist",
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()),
		)
		return err
	}
	c.logger.InfoContext(ctx, "removed from wishlist", slog.Int64("product_id", productID))
	return nil
}

// Contains reports whether productID is saved right now.
func (c *Coordinator) Contains(ctx context.Context, productID int64) (bool, error) {
	return c.repo.Exists(ctx, productID)
}

// List returns the saved items right now, most recently added first.
func (c *Coordinator) List(ctx context.Context) ([]domain.WishlistItem, error) {
	return c.repo.All(ctx)
}
