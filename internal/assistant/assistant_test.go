package assistant

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestReply_KeywordOrder(t *testing.T) {
	tests := []struct {
		input string
		want  string // distinctive fragment of the expected reply
	}{
		{"Any good HEADPHONES?", "Premium Wireless Headphones"},
		{"best audio gear", "Premium Wireless Headphones"},
		{"fitness tracker please", "Smart Fitness Watch Pro is perfect"},
		{"compare watches", "Smart Fitness Watch Pro is perfect"},
		{"I need a laptop for gaming", "several excellent laptops"},
		{"mechanical keyboard", "Mechanical Gaming Keyboard"},
		{"compare two phones", "help you compare products"},
		{"any discount today?", "great deals right now"},
		{"what do you recommend", "find the perfect product"},
		{"thanks a lot", "You're very welcome"},
		{"hey", "great to hear from you"},
		{"is this any good", "great to hear from you"},
		{"order status", "interesting question"},
		{"", "interesting question"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Contains(t, Reply(tt.input), tt.want)
		})
	}
}

func TestNew_StartsWithGreeting(t *testing.T) {
	a := New(newTestLogger(), WithClock(func() time.Time { return fixedNow }))

	msgs := a.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Greeting, msgs[0].Text)
	assert.False(t, msgs[0].FromUser)
	assert.Equal(t, fixedNow, msgs[0].Timestamp)
	assert.NotEmpty(t, msgs[0].ID)
	assert.False(t, a.Typing())
}

func TestSend_AppendsUserMessageAndReply(t *testing.T) {
	a := New(newTestLogger(), WithLatency(0))

	reply, err := a.Send(context.Background(), "Show me headphones")
	require.NoError(t, err)
	assert.False(t, reply.FromUser)
	assert.Contains(t, reply.Text, "Premium Wireless Headphones")

	msgs := a.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Show me headphones", msgs[1].Text)
	assert.True(t, msgs[1].FromUser)
	assert.Equal(t, reply, msgs[2])
	assert.NotEqual(t, msgs[1].ID, msgs[2].ID)
	assert.False(t, a.Typing())
}

func TestSend_BlankIgnored(t *testing.T) {
	a := New(newTestLogger(), WithLatency(0))

	reply, err := a.Send(context.Background(), "   \n")
	require.NoError(t, err)
	assert.Empty(t, reply.ID)
	assert.Len(t, a.Messages(), 1)
}

func TestSend_TypingWhilePending(t *testing.T) {
	a := New(newTestLogger(), WithLatency(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	typing := a.WatchTyping(ctx)
	assert.False(t, <-typing)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := a.Send(context.Background(), "hello")
		assert.NoError(t, err)
	}()

	assert.True(t, <-typing)
	assert.False(t, <-typing)
	wg.Wait()
	assert.Len(t, a.Messages(), 3)

	cancel()
	for range typing {
	}
}

func TestSend_CanceledBeforeReply(t *testing.T) {
	a := New(newTestLogger(), WithLatency(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := a.Send(ctx, "deal?")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	msgs := a.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].FromUser)
	assert.False(t, a.Typing())
}

func TestSend_Concurrent(t *testing.T) {
	a := New(newTestLogger(), WithLatency(10*time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Send(context.Background(), "compare")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	msgs := a.Messages()
	assert.Len(t, msgs, 17)
	var user int
	for _, m := range msgs {
		if m.FromUser {
			user++
		}
	}
	assert.Equal(t, 8, user)
	assert.False(t, a.Typing())
}

func TestClear(t *testing.T) {
	a := New(newTestLogger(), WithLatency(0))
	_, err := a.Send(context.Background(), "thanks")
	require.NoError(t, err)

	a.Clear()
	msgs := a.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, ClearedGreeting, msgs[0].Text)
}

func TestWatchMessages(t *testing.T) {
	a := New(newTestLogger(), WithLatency(0))

	ctx, cancel := context.WithCancel(context.Background())
	updates := a.WatchMessages(ctx)
	require.Len(t, <-updates, 1)

	_, err := a.Send(ctx, "laptop")
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case msgs := <-updates:
			if len(msgs) == 3 {
				assert.True(t, strings.HasPrefix(msgs[2].Text, "We have several excellent laptops"))
				cancel()
				for range updates {
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out")
		}
	}
}
