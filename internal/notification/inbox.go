// Package notification is the local notification inbox: a fixed set of
// seeded notifications with read tracking and deletion.
package notification

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/utafrali/productreview/internal/domain"
	"github.com/utafrali/productreview/pkg/stream"
)

type seed struct {
	id    string
	title string
	msg   string
	age   time.Duration
	kind  domain.NotificationType
	read  bool
}

var seeds = []seed{
	{"1", "New Review on Your Wishlist!", "Premium Wireless Headphones received a new 5-star review", time.Hour, domain.NotificationNewReview, false},
	{"2", "Price Drop Alert!", "Smart Fitness Watch Pro is now 15% off - $254.99", 2 * time.Hour, domain.NotificationPriceDrop, false},
	{"3", "Back in Stock", "Mechanical Gaming Keyboard is back in stock!", 6 * time.Hour, domain.NotificationWishlistUpdate, true},
	{"4", "Weekly Deals", "Check out this week's featured deals on electronics", 24 * time.Hour, domain.NotificationGeneral, true},
	{"5", "New Product Launch", "Ultra-Slim Power Bank 30,000mAh is now available", 48 * time.Hour, domain.NotificationGeneral, true},
	{"6", "Review Reminder", "How's your recent purchase? Leave a review and help others!", 72 * time.Hour, domain.NotificationGeneral, true},
	{"7", "Price Drop Alert!", "Portable Bluetooth Speaker is now $99.99 (23% off)", 96 * time.Hour, domain.NotificationPriceDrop, true},
	{"8", "New Review", "4K Webcam Pro received 10 new reviews this week", 120 * time.Hour, domain.NotificationNewReview, true},
}

// Seeded returns the built-in notifications, newest first, with timestamps
// relative to now.
func Seeded(now time.Time) []domain.Notification {
	out := make([]domain.Notification, len(seeds))
	for i, s := range seeds {
		out[i] = domain.Notification{
			ID:        s.id,
			Title:     s.title,
			Message:   s.msg,
			Timestamp: now.Add(-s.age),
			Type:      s.kind,
			Read:      s.read,
		}
	}
	return out
}

// Inbox holds notifications in display order. Unknown ids are ignored by
// every mutating operation.
type Inbox struct {
	mu     sync.Mutex
	logger *slog.Logger
	items  *stream.Value[[]domain.Notification]
}

// NewInbox creates an inbox holding items.
func NewInbox(items []domain.Notification, logger *slog.Logger) *Inbox {
	return &Inbox{
		logger: logger,
		items:  stream.NewValue(slices.Clone(items)),
	}
}

// NewSeededInbox creates an inbox with the built-in notifications.
func NewSeededInbox(now time.Time, logger *slog.Logger) *Inbox {
	return NewInbox(Seeded(now), logger)
}

// List returns every notification.
func (b *Inbox) List() []domain.Notification {
	return slices.Clone(b.items.Get())
}

// Watch streams the notification list after every change.
func (b *Inbox) Watch(ctx context.Context) <-chan []domain.Notification {
	return b.items.Subscribe(ctx)
}

// UnreadCount returns the number of unread notifications.
func (b *Inbox) UnreadCount() int {
	return countUnread(b.items.Get())
}

// WatchUnread streams the unread count, emitting only when it changes.
func (b *Inbox) WatchUnread(ctx context.Context) <-chan int {
	return stream.Map(ctx, b.items, countUnread, func(a, b int) bool { return a == b })
}

func countUnread(items []domain.Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkAsRead marks one notification read and reports whether it exists.
func (b *Inbox) MarkAsRead(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.items.Get()
	i := slices.IndexFunc(items, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	if items[i].Read {
		return true
	}
	next := slices.Clone(items)
	next[i].Read = true
	b.items.Set(next)
	b.logger.Debug("notification read", slog.String("notification_id", id))
	return true
}

// MarkAllAsRead marks every notification read.
func (b *Inbox) MarkAllAsRead() {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := slices.Clone(b.items.Get())
	for i := range next {
		next[i].Read = true
	}
	b.items.Set(next)
}

// Delete removes one notification and reports whether it existed.
func (b *Inbox) Delete(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.items.Get()
	next := slices.DeleteFunc(slices.Clone(items), func(n domain.Notification) bool { return n.ID == id })
	if len(next) == len(items) {
		return false
	}
	b.items.Set(next)
	b.logger.Debug("notification deleted", slog.String("notification_id", id))
	return true
}
