package inmemory

import (
	"context"
	"sync"

	"feedctl/internal/service"
)

type EventKind int

const (
	EventRendered EventKind = iota
	EventFailed
)

// Event is either a fresh view of the feed or a failed operation.
type Event struct {
	Kind EventKind
	View service.FeedView
	Op   service.Operation
	Err  error
}

// FeedBus fans feed events out to subscribers. It is the Renderer and
// Notifier of the interactive UI.
type FeedBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	buf  int
}

var (
	_ service.Renderer = (*FeedBus)(nil)
	_ service.Notifier = (*FeedBus)(nil)
)

func New(buf int) *FeedBus {
	if buf <= 0 {
		buf = 64
	}
	return &FeedBus{
		subs: make(map[chan Event]struct{}),
		buf:  buf,
	}
}

// Subscribe returns a channel that is closed once ctx is done.
func (b *FeedBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, b.buf)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (b *FeedBus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
	b.mu.RUnlock()
	return nil
}

func (b *FeedBus) Render(ctx context.Context, view service.FeedView) {
	_ = b.Publish(ctx, Event{Kind: EventRendered, View: view})
}

func (b *FeedBus) NotifyFailure(ctx context.Context, op service.Operation, err error) {
	_ = b.Publish(ctx, Event{Kind: EventFailed, Op: op, Err: err})
}

// Subscribers is the number of live subscriptions.
func (b *FeedBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
