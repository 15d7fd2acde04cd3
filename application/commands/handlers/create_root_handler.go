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

// CreateRootNodeHandler handles root node creation commands
type CreateRootNodeHandler struct {
	nodeRepo  ports.NodeRepository
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewCreateRootNodeHandler creates a new root node handler
func NewCreateRootNodeHandler(
	nodeRepo ports.NodeRepository,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *CreateRootNodeHandler {
	return &CreateRootNodeHandler{
		nodeRepo:  nodeRepo,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the create root node command
func (h *CreateRootNodeHandler) Handle(ctx context.Context, cmd commands.CreateRootNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node ID: %w", err)
	}

	node, err := entities.NewRootNode(nodeID, cmd.AuthorID, cmd.Value)
	if err != nil {
		return err
	}

	if err := h.nodeRepo.Insert(ctx, node); err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}

	// The stored list changed, so the cached forest is stale
	if err := h.cache.Delete(ctx, queries.ForestCacheKey); err != nil {
		h.logger.Warn("Failed to invalidate forest cache", zap.Error(err))
	}

	// Event publishing is best effort; the node is already durable
	if err := h.publisher.Publish(ctx, node.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish events",
			zap.String("nodeID", node.ID().String()),
			zap.Error(err),
		)
	}
	node.MarkEventsAsCommitted()

	h.logger.Info("Root node created",
		zap.String("nodeID", node.ID().String()),
		zap.String("authorID", cmd.AuthorID),
		zap.String("value", node.Value().String()),
	)

	return nil
}
