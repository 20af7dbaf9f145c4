package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"foodcrimes/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes events into Redis. Without Redis, events are handed
// straight to the local sink so a single instance still feeds its dashboard.
type Notifier struct {
	rdb *redis.Client
	now func() time.Time

	mu   sync.RWMutex
	sink func(payload string)
}

// NewNotifier creates a new Notifier instance using the provided Redis client, which may be nil.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// Publish marshals an Event and sends it on EventsChannel.
func (n *Notifier) Publish(ctx context.Context, eventType string, payload any) error {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, At: n.now().UTC()})
	if err != nil {
		observability.EventsPublished.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("marshal event: %w", err)
	}

	if n.rdb == nil {
		n.mu.RLock()
		sink := n.sink
		n.mu.RUnlock()
		if sink != nil {
			sink(string(data))
		}
		observability.EventsPublished.WithLabelValues(eventType, "local").Inc()
		return nil
	}

	if err := n.rdb.Publish(ctx, EventsChannel, string(data)).Err(); err != nil {
		observability.EventsPublished.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	observability.EventsPublished.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// Subscribe calls onMessage for every payload received on EventsChannel until
// ctx is done. Without Redis, onMessage becomes the local sink.
func (n *Notifier) Subscribe(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		n.mu.Lock()
		n.sink = onMessage
		n.mu.Unlock()
		return nil
	}

	sub := n.rdb.Subscribe(ctx, EventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in event subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
