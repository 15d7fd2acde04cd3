package commands

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CreateRootNodeCommand starts a new tree with a caller-chosen value.
// The node id is generated by the API layer so the response can reference
// the node without waiting on a read.
type CreateRootNodeCommand struct {
	NodeID   string
	AuthorID string
	Value    decimal.Decimal
}

// Validate validates the CreateRootNodeCommand
func (c CreateRootNodeCommand) Validate() error {
	if c.NodeID == "" {
		return errors.New("node ID is required")
	}
	if c.AuthorID == "" {
		return errors.New("author ID is required")
	}
	return nil
}
