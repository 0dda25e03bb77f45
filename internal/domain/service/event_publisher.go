package service

import (
	"context"
	"time"
)

// AccountRegisteredEvent is emitted once a signup has been persisted.
type AccountRegisteredEvent struct {
	RequestID    string    `json:"request_id,omitempty"` // For distributed tracing
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAccountRegistered publishes an account registration event
	PublishAccountRegistered(ctx context.Context, event *AccountRegisteredEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
