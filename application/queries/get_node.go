package queries

import "errors"

// GetNodeQuery represents a query to get a single node
type GetNodeQuery struct {
	NodeID string
}

// Validate validates the GetNodeQuery
func (q GetNodeQuery) Validate() error {
	if q.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// GetNodeResult represents a single node without its children
type GetNodeResult struct {
	ID        string  `json:"id"`
	Value     string  `json:"value"`
	Operation *string `json:"operation,omitempty"`
	Operand   *string `json:"operand,omitempty"`
	ParentID  *string `json:"parentId,omitempty"`
	AuthorID  string  `json:"authorId"`
	CreatedAt string  `json:"createdAt"`
}
