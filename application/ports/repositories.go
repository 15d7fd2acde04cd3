package ports

import (
	"context"
	"time"

	"mathtree-backend/domain/core/entities"
	"mathtree-backend/domain/core/valueobjects"
	"mathtree-backend/domain/events"
)

// NodeRepository defines the interface for node persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation.
// Nodes are immutable, so the surface is insert-and-read only.
type NodeRepository interface {
	// Insert persists a new node. Implementations must verify that the
	// node's parent (if any) exists at write time and return a not-found
	// error otherwise.
	Insert(ctx context.Context, node *entities.Node) error

	// FindByID retrieves a node by its ID. Returns a not-found error when
	// no node with that id exists.
	FindByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)

	// ListAll retrieves every node, most recently created first.
	ListAll(ctx context.Context) ([]*entities.Node, error)
}

// UserRepository defines the interface for user account persistence
type UserRepository interface {
	// Save persists a new user. Returns a conflict error when the email
	// is already registered.
	Save(ctx context.Context, user *entities.User) error

	// GetByEmail retrieves a user by email address
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByID retrieves a user by its ID
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

// EventPublisher publishes domain events to interested consumers.
// Publishing is best effort: a failed publish must not fail the write
// that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, events []events.DomainEvent) error
}

// Cache provides short-lived storage for expensive read results
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
