package events

import (
	"time"

	"mathtree-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Node Events

// NodeCreated is raised when a node is attached to the forest. ParentID is
// nil for a root node.
type NodeCreated struct {
	BaseEvent
	NodeID   valueobjects.NodeID  `json:"node_id"`
	AuthorID string               `json:"author_id"`
	ParentID *valueobjects.NodeID `json:"parent_id,omitempty"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(nodeID valueobjects.NodeID, authorID string, parentID *valueobjects.NodeID, timestamp time.Time) NodeCreated {
	return NodeCreated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:   nodeID,
		AuthorID: authorID,
		ParentID: parentID,
	}
}

// User Events

// UserRegistered is raised when a new user account is created
type UserRegistered struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// NewUserRegistered creates a UserRegistered event
func NewUserRegistered(userID, email string, timestamp time.Time) UserRegistered {
	return UserRegistered{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   "user.registered",
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID: userID,
		Email:  email,
	}
}
