package commands

import (
	"errors"

	"github.com/shopspring/decimal"
)

// CreateChildNodeCommand derives a new node from an existing parent by
// applying an arithmetic operation. The operation tag is kept as a string
// here; the handler parses it so an unknown tag surfaces as a domain error
// rather than a transport one.
type CreateChildNodeCommand struct {
	NodeID    string
	AuthorID  string
	ParentID  string
	Operation string
	Operand   decimal.Decimal
}

// Validate validates the CreateChildNodeCommand
func (c CreateChildNodeCommand) Validate() error {
	if c.NodeID == "" {
		return errors.New("node ID is required")
	}
	if c.AuthorID == "" {
		return errors.New("author ID is required")
	}
	if c.ParentID == "" {
		return errors.New("parent ID is required")
	}
	if c.Operation == "" {
		return errors.New("operation is required")
	}
	return nil
}
