package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"mathtree-backend/domain/core/valueobjects"
	"mathtree-backend/domain/events"
	pkgerrors "mathtree-backend/pkg/errors"
)

// Node is one value in the collaborative number forest. A root node holds
// a starting value chosen by its author; every other node derives its value
// from a parent by applying one arithmetic operation to the parent's value.
// Nodes are immutable after creation: no updates, no deletes.
type Node struct {
	// Private fields ensure encapsulation
	id        valueobjects.NodeID
	value     decimal.Decimal
	operation *valueobjects.Operation
	operand   *decimal.Decimal
	parentID  *valueobjects.NodeID
	authorID  string
	createdAt time.Time

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewRootNode creates the origin of a new tree holding startingValue. The id
// is assigned by the caller so the API layer can return it without a second
// round trip.
func NewRootNode(id valueobjects.NodeID, authorID string, startingValue decimal.Decimal) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}

	now := time.Now().UTC()
	node := &Node{
		id:        id,
		value:     startingValue,
		authorID:  authorID,
		createdAt: now,
		events:    []events.DomainEvent{},
	}

	node.addEvent(events.NewNodeCreated(node.id, authorID, nil, now))

	return node, nil
}

// NewChildNode derives a new node from parent by applying operation with
// operand. Division by zero (and any tag that skipped ParseOperation) is
// rejected by Operation.Apply before anything is built.
func NewChildNode(id valueobjects.NodeID, authorID string, parent *Node, operation valueobjects.Operation, operand decimal.Decimal) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}
	if parent == nil {
		return nil, pkgerrors.NewValidationError("parent cannot be nil")
	}

	value, err := operation.Apply(parent.Value(), operand)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	parentID := parent.ID()
	node := &Node{
		id:        id,
		value:     value,
		operation: &operation,
		operand:   &operand,
		parentID:  &parentID,
		authorID:  authorID,
		createdAt: now,
		events:    []events.DomainEvent{},
	}

	node.addEvent(events.NewNodeCreated(node.id, authorID, &parentID, now))

	return node, nil
}

// ReconstructNode rebuilds a node from repository data with its original
// timestamp. The pairing invariants are re-checked so a corrupted item can
// never produce a half-derived node: operation and operand travel together,
// and both are present exactly when the node has a parent.
func ReconstructNode(
	id valueobjects.NodeID,
	value decimal.Decimal,
	operation *valueobjects.Operation,
	operand *decimal.Decimal,
	parentID *valueobjects.NodeID,
	authorID string,
	createdAt time.Time,
) (*Node, error) {
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}
	if (operation == nil) != (operand == nil) {
		return nil, pkgerrors.NewValidationError("operation and operand must be set together")
	}
	if (operation == nil) != (parentID == nil) {
		return nil, pkgerrors.NewValidationError("a derived node needs a parent; a root carries neither operation nor parent")
	}

	node := &Node{
		id:        id,
		value:     value,
		authorID:  authorID,
		createdAt: createdAt,
		events:    []events.DomainEvent{},
	}
	if operation != nil {
		op := *operation
		opnd := *operand
		pid := *parentID
		node.operation = &op
		node.operand = &opnd
		node.parentID = &pid
	}

	return node, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Value returns the numeric result held at this node
func (n *Node) Value() decimal.Decimal {
	return n.value
}

// Operation returns the derivation operation; ok is false for a root node.
func (n *Node) Operation() (valueobjects.Operation, bool) {
	if n.operation == nil {
		return "", false
	}
	return *n.operation, true
}

// Operand returns the derivation operand; ok is false for a root node.
func (n *Node) Operand() (decimal.Decimal, bool) {
	if n.operand == nil {
		return decimal.Decimal{}, false
	}
	return *n.operand, true
}

// ParentID returns the parent node's id; ok is false for a root node.
func (n *Node) ParentID() (valueobjects.NodeID, bool) {
	if n.parentID == nil {
		return valueobjects.NodeID{}, false
	}
	return *n.parentID, true
}

// IsRoot reports whether this node is the origin of a tree
func (n *Node) IsRoot() bool {
	return n.parentID == nil
}

// AuthorID returns the id of the user who created this node
func (n *Node) AuthorID() string {
	return n.authorID
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
