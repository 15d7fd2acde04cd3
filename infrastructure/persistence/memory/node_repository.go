package memory

import (
	"context"
	"sort"
	"sync"

	"mathtree-backend/domain/core/entities"
	"mathtree-backend/domain/core/valueobjects"
	pkgerrors "mathtree-backend/pkg/errors"
)

// NodeRepository provides an in-memory implementation of ports.NodeRepository.
// Used by local development and tests; behavior mirrors the DynamoDB
// implementation including the write-time parent check.
type NodeRepository struct {
	mu    sync.RWMutex
	nodes map[string]*entities.Node
	order []string // insertion order, oldest first
}

// NewNodeRepository creates a new in-memory node repository
func NewNodeRepository() *NodeRepository {
	return &NodeRepository{
		nodes: make(map[string]*entities.Node),
	}
}

// Insert persists a new node after verifying its parent exists
func (r *NodeRepository) Insert(ctx context.Context, node *entities.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := node.ID().String()
	if _, exists := r.nodes[id]; exists {
		return pkgerrors.NewConflictError("node already exists: " + id)
	}

	if parentID, ok := node.ParentID(); ok {
		if _, exists := r.nodes[parentID.String()]; !exists {
			return pkgerrors.NewNotFoundError("parent node " + parentID.String())
		}
	}

	r.nodes[id] = node
	r.order = append(r.order, id)
	return nil
}

// FindByID retrieves a node by its ID
func (r *NodeRepository) FindByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.nodes[id.String()]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("node " + id.String())
	}
	return node, nil
}

// ListAll retrieves every node, most recently created first
func (r *NodeRepository) ListAll(ctx context.Context) ([]*entities.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Node, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		result = append(result, r.nodes[r.order[i]])
	}

	// Insertion order already is creation order, but timestamps rule in
	// the durable store, so keep the contract explicit here too.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt().After(result[j].CreatedAt())
	})

	return result, nil
}
