package mapsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/FACorreiaa/go-itinerary-mapsync/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/types"
)

// Sink receives map events. Publish must not block the pipeline for long;
// delivery is best effort.
type Sink interface {
	Publish(ctx context.Context, event types.MapEvent)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event types.MapEvent)

func (f SinkFunc) Publish(ctx context.Context, event types.MapEvent) { f(ctx, event) }

// Fanout publishes every event to each sink in order.
func Fanout(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, event types.MapEvent) {
		for _, s := range sinks {
			if s != nil {
				s.Publish(ctx, event)
			}
		}
	})
}

// ChannelSink forwards events to a channel, giving a slow consumer a bounded
// time before the event is dropped.
type ChannelSink struct {
	ch      chan<- types.MapEvent
	logger  *slog.Logger
	metrics *metrics.AppMetrics
	timeout time.Duration
}

func NewChannelSink(ch chan<- types.MapEvent, logger *slog.Logger, m *metrics.AppMetrics) *ChannelSink {
	return &ChannelSink{
		ch:      ch,
		logger:  logger,
		metrics: m,
		timeout: 2 * time.Second,
	}
}

func (c *ChannelSink) Publish(ctx context.Context, event types.MapEvent) {
	select {
	case <-ctx.Done():
		c.logger.WarnContext(ctx, "Context cancelled, not sending map event", slog.String("eventType", event.Type))
		c.metrics.RecordMapEvent(ctx, event.Type, false)
		return
	default:
	}

	select {
	case c.ch <- event:
		c.metrics.RecordMapEvent(ctx, event.Type, true)
	case <-ctx.Done():
		c.logger.WarnContext(ctx, "Context cancelled while trying to send map event", slog.String("eventType", event.Type))
		c.metrics.RecordMapEvent(ctx, event.Type, false)
	case <-time.After(c.timeout):
		c.logger.WarnContext(ctx, "Dropped map event due to slow consumer (timeout)", slog.String("eventType", event.Type))
		c.metrics.RecordMapEvent(ctx, event.Type, false)
	}
}

// Broadcaster fans events out to every subscriber of the event's session.
// Subscribers that fall behind lose events rather than slowing the pipeline.
type Broadcaster struct {
	logger  *slog.Logger
	metrics *metrics.AppMetrics
	buffer  int

	mu   sync.RWMutex
	subs map[string]map[chan types.MapEvent]struct{}
}

func NewBroadcaster(logger *slog.Logger, m *metrics.AppMetrics, buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 32
	}
	return &Broadcaster{
		logger:  logger,
		metrics: m,
		buffer:  buffer,
		subs:    make(map[string]map[chan types.MapEvent]struct{}),
	}
}

// Subscribe returns a channel of events for sessionID and a function that
// unsubscribes and closes it.
func (b *Broadcaster) Subscribe(sessionID string) (<-chan types.MapEvent, func()) {
	ch := make(chan types.MapEvent, b.buffer)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan types.MapEvent]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}

func (b *Broadcaster) Publish(ctx context.Context, event types.MapEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[event.SessionID] {
		select {
		case ch <- event:
			b.metrics.RecordMapEvent(ctx, event.Type, true)
		default:
			b.logger.WarnContext(ctx, "Dropped map event for slow subscriber",
				slog.String("session_id", event.SessionID),
				slog.String("eventType", event.Type))
			b.metrics.RecordMapEvent(ctx, event.Type, false)
		}
	}
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []types.MapEvent
}

func (r *Recorder) Publish(_ context.Context, event types.MapEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []types.MapEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.MapEvent, len(r.events))
	copy(out, r.events)
	return out
}
