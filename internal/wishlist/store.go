// Package wishlist keeps the user's saved products in a local SQLite
// database and exposes live views of it.
package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/productreview/internal/domain"
	"github.com/utafrali/productreview/internal/wishlist/migrations"
	"github.com/utafrali/productreview/pkg/database"
	apperrors "github.com/utafrali/productreview/pkg/errors"
	"github.com/utafrali/productreview/pkg/logger"
	"github.com/utafrali/productreview/pkg/stream"
)

// Store persists wishlist items in SQLite. Every successful write bumps a
// change version that drives the live queries.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	version *stream.Value[uint64]
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the wishlist database at path (database.MemoryPath for a
// throwaway store) and applies the embedded migrations.
func Open(ctx context.Context, path string, l *slog.Logger) (*Store, error) {
	if l == nil {
		l = logger.Discard()
	}
	db, err := database.OpenSQLite(ctx, database.DefaultSQLiteConfig(path), l)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, db, migrations.FS, l); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run wishlist migrations: %w", err)
	}
	return &Store{
		db:      db,
		logger:  l,
		version: stream.NewValue[uint64](0),
	}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upsert inserts item, replacing any existing row for the same product.
func (s *Store) Upsert(ctx context.Context, item domain.WishlistItem) error {
	if item.ProductID <= 0 {
		return apperrors.InvalidInput("product id must be positive")
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}

	var image sql.NullString
	if item.ImageURL != nil {
		image = sql.NullString{String: *item.ImageURL, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wishlist (product_id, name, price, category, image_url, average_rating, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(product_id) DO UPDATE SET
		   name = excluded.name,
		   price = excluded.price,
		   category = excluded.category,
		   image_url = excluded.image_url,
		   average_rating = excluded.average_rating,
		   added_at = excluded.added_at`,
		item.ProductID,
		item.Name,
		item.Price.String(),
		item.Category,
		image,
		item.AverageRating,
		toMillis(item.AddedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert wishlist item %d: %w", item.ProductID, err)
	}

	s.changed(ctx, "wishlist item saved", item.ProductID)
	return nil
}

// Delete removes the row for productID. Deleting an absent product is not
// an error.
func (s *Store) Delete(ctx context.Context, productID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wishlist WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("delete wishlist item %d: %w", productID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	s.changed(ctx, "wishlist item removed", productID)
	return nil
}

// Get returns the item for productID.
func (s *Store) Get(ctx context.Context, productID int64) (domain.WishlistItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT product_id, name, price, category, image_url, average_rating, added_at
		 FROM wishlist WHERE product_id = ?`, productID)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WishlistItem{}, apperrors.NotFound("wishlist item", strconv.FormatInt(productID, 10))
	}
	if err != nil {
		return domain.WishlistItem{}, fmt.Errorf("get wishlist item %d: %w", productID, err)
	}
	return item, nil
}

// Exists reports whether productID is saved.
func (s *Store) Exists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlist WHERE product_id = ?)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check wishlist item %d: %w", productID, err)
	}
	return exists, nil
}

// All returns every item, most recently added first.
func (s *Store) All(ctx context.Context) ([]domain.WishlistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, name, price, category, image_url, average_rating, added_at
		 FROM wishlist ORDER BY added_at DESC, product_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist: %w", err)
	}
	return items, nil
}

// WatchExists streams whether productID is saved: the current answer first,
// then every change. The channel closes when ctx is done.
func (s *Store) WatchExists(ctx context.Context, productID int64) <-chan bool {
	return watch(ctx, s, func(ctx context.Context) (bool, error) {
		return s.Exists(ctx, productID)
	}, func(a, b bool) bool { return a == b })
}

// WatchAll streams the full item list: the current list first, then every
// change. The channel closes when ctx is done.
func (s *Store) WatchAll(ctx context.Context) <-chan []domain.WishlistItem {
	return watch(ctx, s, s.All, itemsEqual)
}

func (s *Store) changed(ctx context.Context, msg string, productID int64) {
	v := s.version.Update(func(v uint64) uint64 { return v + 1 })
	s.logger.DebugContext(ctx, msg,
		slog.Int64("product_id", productID),
		slog.Uint64("version", v),
	)
}

// watch re-runs query after every change and forwards results that differ
// from the last one sent. Changes arriving while the consumer is busy
// collapse into a single re-query.
func watch[T any](ctx context.Context, s *Store, query func(context.Context) (T, error), equal func(a, b T) bool) <-chan T {
	out := make(chan T, 1)
	versions := s.version.Subscribe(ctx)

	go func() {
		defer close(out)

		var last T
		sent := false
		for range versions {
			v, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.WarnContext(ctx, "wishlist live query failed", slog.String("error", err.Error()))
				continue
			}
			if sent && equal(last, v) {
				continue
			}
			select {
			case out <- v:
				last, sent = v, true
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (domain.WishlistItem, error) {
	var (
		item    domain.WishlistItem
		price   string
		image   sql.NullString
		addedAt int64
	)
	if err := row.Scan(&item.ProductID, &item.Name, &price, &item.Category, &image, &item.AverageRating, &addedAt); err != nil {
		return domain.WishlistItem{}, err
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.WishlistItem{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	item.Price = p
	if image.Valid {
		url := image.String
		item.ImageURL = &url
	}
	item.AddedAt = fromMillis(addedAt)
	return item, nil
}

func itemsEqual(a, b []domain.WishlistItem) bool {
	return slices.EqualFunc(a, b, func(x, y domain.WishlistItem) bool {
		return x.ProductID == y.ProductID &&
			x.Name == y.Name &&
			x.Price.Equal(y.Price) &&
			x.Category == y.Category &&
			equalPtr(x.ImageURL, y.ImageURL) &&
			x.AverageRating == y.AverageRating &&
			x.AddedAt.Equal(y.AddedAt)
	})
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
