package notification

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/utafrali/productreview/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestSeeded(t *testing.T) {
	items := Seeded(baseTime)
	require.Len(t, items, 8)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, domain.NotificationNewReview, items[0].Type)
	assert.Equal(t, baseTime.Add(-time.Hour), items[0].Timestamp)
	assert.Equal(t, baseTime.Add(-120*time.Hour), items[7].Timestamp)

	for i := 1; i < len(items); i++ {
		assert.True(t, items[i].Timestamp.Before(items[i-1].Timestamp), "newest first")
	}
}

func TestInbox_UnreadCount(t *testing.T) {
	b := NewSeededInbox(baseTime, newTestLogger())
	assert.Equal(t, 2, b.UnreadCount())
}

func TestInbox_MarkAsRead(t *testing.T) {
	b := NewSeededInbox(baseTime, newTestLogger())
	before := b.List()

	assert.True(t, b.MarkAsRead("2"))
	assert.Equal(t, 1, b.UnreadCount())
	assert.False(t, before[1].Read, "earlier snapshots are not mutated")

	assert.True(t, b.MarkAsRead("2"))
	assert.Equal(t, 1, b.UnreadCount())

	assert.False(t, b.MarkAsRead("missing"))
	assert.Equal(t, 1, b.UnreadCount())
}

func TestInbox_MarkAllAsRead(t *testing.T) {
	b := NewSeededInbox(baseTime, newTestLogger())
	b.MarkAllAsRead()

	assert.Zero(t, b.UnreadCount())
	assert.Len(t, b.List(), 8)
}

func TestInbox_Delete(t *testing.T) {
	b := NewSeededInbox(baseTime, newTestLogger())

	assert.True(t, b.Delete("1"))
	items := b.List()
	require.Len(t, items, 7)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, 1, b.UnreadCount())

	assert.False(t, b.Delete("1"))
	assert.Len(t, b.List(), 7)
}

func TestInbox_Watch(t *testing.T) {
	b := NewSeededInbox(baseTime, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	updates := b.Watch(ctx)
	require.Len(t, <-updates, 8)

	b.Delete("8")
	select {
	case items := <-updates:
		assert.Len(t, items, 7)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}

	cancel()
	for range updates {
	}
}

func TestNewInbox_CopiesInput(t *testing.T) {
	items := []domain.Notification{{ID: "a", Title: "t"}}
	b := NewInbox(items, newTestLogger())

	items[0].Title = "changed"
	assert.Equal(t, "t", b.List()[0].Title)
}

func TestInbox_WatchUnread(t *testing.T) {
	b := NewSeededInbox(baseTime, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	counts := b.WatchUnread(ctx)

	next := func() int {
		t.Helper()
		select {
		case n := <-counts:
			return n
		case <-time.After(2 * time.Second):
			t.Fatal("timed out")
			return -1
		}
	}

	assert.Equal(t, 2, next())

	require.True(t, b.MarkAsRead("1"))
	assert.Equal(t, 1, next())

	// Deleting a read notification leaves the count unchanged, so nothing is sent.
	require.True(t, b.Delete("5"))
	b.MarkAllAsRead()
	assert.Equal(t, 0, next())

	cancel()
	for range counts {
	}
}
