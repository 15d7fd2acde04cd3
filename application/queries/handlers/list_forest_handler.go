package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mathtree-backend/application/ports"
	"mathtree-backend/application/queries"
	"mathtree-backend/domain/trees"
)

// ListForestHandler handles forest listing queries
type ListForestHandler struct {
	nodeRepo ports.NodeRepository
	cache    ports.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewListForestHandler creates a new forest listing handler
func NewListForestHandler(
	nodeRepo ports.NodeRepository,
	cache ports.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ListForestHandler {
	return &ListForestHandler{
		nodeRepo: nodeRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Handle executes the forest listing query. The rendered forest is cached
// briefly; write handlers invalidate the entry, so the TTL only bounds
// staleness when an invalidation is lost.
func (h *ListForestHandler) Handle(ctx context.Context, query queries.ListForestQuery) (*queries.ListForestResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	if cached, found := h.cache.Get(ctx, queries.ForestCacheKey); found {
		var result queries.ListForestResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
		h.logger.Warn("Discarding undecodable forest cache entry")
	}

	nodes, err := h.nodeRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	roots, dangling := trees.BuildForest(nodes)
	for _, id := range dangling {
		// Should not happen with parent checks on the write path; a
		// dangling reference means the table was edited out of band.
		h.logger.Warn("Dropping node with missing parent from forest",
			zap.String("nodeID", id.String()),
		)
	}

	result := &queries.ListForestResult{
		Roots:     make([]queries.TreeNodeView, 0, len(roots)),
		NodeCount: len(nodes) - len(dangling),
	}
	for _, root := range roots {
		result.Roots = append(result.Roots, renderTree(root))
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := h.cache.Set(ctx, queries.ForestCacheKey, encoded, h.cacheTTL); err != nil {
			h.logger.Warn("Failed to cache forest", zap.Error(err))
		}
	}

	return result, nil
}

func renderTree(t *trees.TreeNode) queries.TreeNodeView {
	view := queries.TreeNodeView{
		ID:        t.Node.ID().String(),
		Value:     t.Node.Value().String(),
		AuthorID:  t.Node.AuthorID(),
		CreatedAt: t.Node.CreatedAt().Format(time.RFC3339Nano),
		Children:  make([]queries.TreeNodeView, 0, len(t.Children)),
	}
	if op, ok := t.Node.Operation(); ok {
		s := string(op)
		view.Operation = &s
	}
	if operand, ok := t.Node.Operand(); ok {
		s := operand.String()
		view.Operand = &s
	}
	if parentID, ok := t.Node.ParentID(); ok {
		s := parentID.String()
		view.ParentID = &s
	}
	for _, child := range t.Children {
		view.Children = append(view.Children, renderTree(child))
	}
	return view
}
