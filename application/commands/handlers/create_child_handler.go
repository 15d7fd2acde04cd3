package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mathtree-backend/application/commands"
	"mathtree-backend/application/ports"
	"mathtree-backend/application/queries"
	"mathtree-backend/domain/core/entities"
	"mathtree-backend/domain/core/valueobjects"
)

// CreateChildNodeHandler handles child node creation commands
type CreateChildNodeHandler struct {
	nodeRepo  ports.NodeRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewCreateChildNodeHandler creates a new child node handler
func NewCreateChildNodeHandler(
	nodeRepo ports.NodeRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *CreateChildNodeHandler {
	return &CreateChildNodeHandler{
		nodeRepo:  nodeRepo,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the create child node command. The parent is loaded
// first so a missing parent surfaces as not-found before any arithmetic
// runs; the repository re-checks parent existence at write time, which
// closes the race with a concurrent out-of-band removal.
func (h *CreateChildNodeHandler) Handle(ctx context.Context, cmd commands.CreateChildNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node ID: %w", err)
	}

	parentID, err := valueobjects.NewNodeIDFromString(cmd.ParentID)
	if err != nil {
		return fmt.Errorf("invalid parent ID: %w", err)
	}

	operation, err := valueobjects.ParseOperation(cmd.Operation)
	if err != nil {
		return err
	}

	parent, err := h.nodeRepo.FindByID(ctx, parentID)
	if err != nil {
		return err
	}

	node, err := entities.NewChildNode(nodeID, cmd.AuthorID, parent, operation, cmd.Operand)
	if err != nil {
		return err
	}

	if err := h.nodeRepo.Insert(ctx, node); err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}

	if err := h.cache.Delete(ctx, queries.ForestCacheKey); err != nil {
		h.logger.Warn("Failed to invalidate forest cache", zap.Error(err))
	}

	if err := h.publisher.Publish(ctx, node.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish events",
			zap.String("nodeID", node.ID().String()),
			zap.Error(err),
		)
	}
	node.MarkEventsAsCommitted()

	h.logger.Info("Child node created",
		zap.String("nodeID", node.ID().String()),
		zap.String("parentID", cmd.ParentID),
		zap.String("operation", string(operation)),
		zap.String("value", node.Value().String()),
	)

	return nil
}
