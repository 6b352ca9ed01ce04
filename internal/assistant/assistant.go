// Package assistant is a scripted shopping assistant: keyword-matched
// replies delivered after a fixed delay, with a live conversation log.
package assistant

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/productreview/internal/domain"
	"github.com/utafrali/productreview/pkg/stream"
)

// DefaultLatency is the simulated thinking time before a reply.
const DefaultLatency = 1500 * time.Millisecond

// Assistant holds one conversation. Send may be called concurrently; the
// typing flag stays set while any reply is pending.
type Assistant struct {
	latency time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	pending  int
	messages *stream.Value[[]domain.ChatMessage]
	typing   *stream.Value[bool]
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLatency overrides DefaultLatency. Zero replies immediately.
func WithLatency(d time.Duration) Option {
	return func(a *Assistant) {
		if d >= 0 {
			a.latency = d
		}
	}
}

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// New starts a conversation holding only the greeting.
func New(logger *slog.Logger, opts ...Option) *Assistant {
	a := &Assistant{
		latency: DefaultLatency,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.messages = stream.NewValue([]domain.ChatMessage{domain.NewChatMessage(Greeting, false, a.now())})
	a.typing = stream.NewValue(false, stream.WithEqual(func(x, y bool) bool { return x == y }))
	return a
}

// Messages returns the conversation so far, oldest first.
func (a *Assistant) Messages() []domain.ChatMessage {
	return slices.Clone(a.messages.Get())
}

// WatchMessages streams the conversation after every change.
func (a *Assistant) WatchMessages(ctx context.Context) <-chan []domain.ChatMessage {
	return a.messages.Subscribe(ctx)
}

// Typing reports whether a reply is pending.
func (a *Assistant) Typing() bool {
	return a.typing.Get()
}

// WatchTyping streams the typing flag.
func (a *Assistant) WatchTyping(ctx context.Context) <-chan bool {
	return a.typing.Subscribe(ctx)
}

// Send appends text as a user message, waits the configured latency and
// appends the reply, which it also returns. Blank text is ignored. If ctx is
// done before the reply is due, the user message stays and no reply is
// added.
func (a *Assistant) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, nil
	}

	a.mu.Lock()
	a.appendLocked(domain.NewChatMessage(text, true, a.now()))
	a.pending++
	a.typing.Set(true)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.pending--
		a.typing.Set(a.pending > 0)
		a.mu.Unlock()
	}()

	if a.latency > 0 {
		timer := time.NewTimer(a.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			a.logger.DebugContext(ctx, "assistant reply abandoned", slog.String("error", ctx.Err().Error()))
			return domain.ChatMessage{}, ctx.Err()
		}
	}

	reply := domain.NewChatMessage(Reply(text), false, a.now())
	a.mu.Lock()
	a.appendLocked(reply)
	a.mu.Unlock()

	a.logger.DebugContext(ctx, "assistant replied", slog.Int("messages", len(a.messages.Get())))
	return reply, nil
}

// Clear resets the conversation to a single "chat cleared" message.
func (a *Assistant) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages.Set([]domain.ChatMessage{domain.NewChatMessage(ClearedGreeting, false, a.now())})
}

func (a *Assistant) appendLocked(msg domain.ChatMessage) {
	a.messages.Set(slices.Concat(a.messages.Get(), []domain.ChatMessage{msg}))
}
