package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mathtree-backend/application/ports"
	"mathtree-backend/application/queries"
	"mathtree-backend/domain/core/entities"
	"mathtree-backend/domain/core/valueobjects"
)

// GetNodeHandler handles single node queries
type GetNodeHandler struct {
	nodeRepo ports.NodeRepository
	logger   *zap.Logger
}

// NewGetNodeHandler creates a new node query handler
func NewGetNodeHandler(nodeRepo ports.NodeRepository, logger *zap.Logger) *GetNodeHandler {
	return &GetNodeHandler{
		nodeRepo: nodeRepo,
		logger:   logger,
	}
}

// Handle executes the get node query
func (h *GetNodeHandler) Handle(ctx context.Context, query queries.GetNodeQuery) (*queries.GetNodeResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	nodeID, err := valueobjects.NewNodeIDFromString(query.NodeID)
	if err != nil {
		return nil, fmt.Errorf("invalid node ID: %w", err)
	}

	node, err := h.nodeRepo.FindByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	return renderNode(node), nil
}

func renderNode(node *entities.Node) *queries.GetNodeResult {
	result := &queries.GetNodeResult{
		ID:        node.ID().String(),
		Value:     node.Value().String(),
		AuthorID:  node.AuthorID(),
		CreatedAt: node.CreatedAt().Format(time.RFC3339Nano),
	}
	if op, ok := node.Operation(); ok {
		s := string(op)
		result.Operation = &s
	}
	if operand, ok := node.Operand(); ok {
		s := operand.String()
		result.Operand = &s
	}
	if parentID, ok := node.ParentID(); ok {
		s := parentID.String()
		result.ParentID = &s
	}
	return result
}
