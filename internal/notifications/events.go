// Package notifications publishes moderation and daily image events and fans
// them out to connected admin dashboards.
package notifications

import (
	"context"
	"time"
)

// EventsChannel is the Redis channel every event is published on.
const EventsChannel = "foodcrimes:events"

// Event types.
const (
	EventSuggestionSubmitted = "suggestion.submitted"
	EventSuggestionApproved  = "suggestion.approved"
	EventSuggestionRejected  = "suggestion.rejected"
	EventSuggestionUpdated   = "suggestion.updated"
	EventDailyImageCreated   = "daily_image.created"
)

// Event is the JSON envelope sent to subscribers.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Publisher delivers events. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
