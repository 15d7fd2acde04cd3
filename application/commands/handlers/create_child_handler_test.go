package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mathtree-backend/application/commands"
	"mathtree-backend/application/queries"
	"mathtree-backend/domain/core/valueobjects"
	"mathtree-backend/domain/events"
	"mathtree-backend/infrastructure/cache"
	"mathtree-backend/infrastructure/persistence/memory"
	pkgerrors "mathtree-backend/pkg/errors"
)

type capturingPublisher struct {
	published []events.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, evts []events.DomainEvent) error {
	p.published = append(p.published, evts...)
	return nil
}

type handlerFixture struct {
	repo      *memory.NodeRepository
	cache     *cache.MemoryCache
	publisher *capturingPublisher
	root      *CreateRootNodeHandler
	child     *CreateChildNodeHandler
}

func newHandlerFixture() *handlerFixture {
	repo := memory.NewNodeRepository()
	memCache := cache.NewMemoryCache()
	publisher := &capturingPublisher{}
	logger := zap.NewNop()
	return &handlerFixture{
		repo:      repo,
		cache:     memCache,
		publisher: publisher,
		root:      NewCreateRootNodeHandler(repo, publisher, memCache, logger),
		child:     NewCreateChildNodeHandler(repo, publisher, memCache, logger),
	}
}

func (f *handlerFixture) createRoot(t *testing.T, value string) string {
	t.Helper()
	id := uuid.New().String()
	err := f.root.Handle(context.Background(), commands.CreateRootNodeCommand{
		NodeID:   id,
		AuthorID: "user-1",
		Value:    decimal.RequireFromString(value),
	})
	require.NoError(t, err)
	return id
}

func TestCreateRootNodeHandler(t *testing.T) {
	f := newHandlerFixture()

	id := f.createRoot(t, "10")

	nodeID, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	node, err := f.repo.FindByID(context.Background(), nodeID)
	require.NoError(t, err)

	assert.True(t, node.IsRoot())
	assert.True(t, node.Value().Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "user-1", node.AuthorID())

	require.Len(t, f.publisher.published, 1)
	created, ok := f.publisher.published[0].(events.NodeCreated)
	require.True(t, ok)
	assert.Nil(t, created.ParentID)
}

func TestCreateChildNodeHandlerDerivesValue(t *testing.T) {
	f := newHandlerFixture()
	parentID := f.createRoot(t, "10")

	childID := uuid.New().String()
	err := f.child.Handle(context.Background(), commands.CreateChildNodeCommand{
		NodeID:    childID,
		AuthorID:  "user-2",
		ParentID:  parentID,
		Operation: "add",
		Operand:   decimal.RequireFromString("5"),
	})
	require.NoError(t, err)

	nodeID, err := valueobjects.NewNodeIDFromString(childID)
	require.NoError(t, err)
	node, err := f.repo.FindByID(context.Background(), nodeID)
	require.NoError(t, err)

	assert.True(t, node.Value().Equal(decimal.NewFromInt(15)))
	gotParent, ok := node.ParentID()
	require.True(t, ok)
	assert.Equal(t, parentID, gotParent.String())
}

func TestCreateChildNodeHandlerMissingParent(t *testing.T) {
	f := newHandlerFixture()

	err := f.child.Handle(context.Background(), commands.CreateChildNodeCommand{
		NodeID:    uuid.New().String(),
		AuthorID:  "user-1",
		ParentID:  uuid.New().String(),
		Operation: "add",
		Operand:   decimal.NewFromInt(1),
	})
	assert.True(t, pkgerrors.IsNotFound(err), "expected not-found, got %v", err)
}

func TestCreateChildNodeHandlerDivideByZero(t *testing.T) {
	f := newHandlerFixture()
	parentID := f.createRoot(t, "10")

	childID := uuid.New().String()
	err := f.child.Handle(context.Background(), commands.CreateChildNodeCommand{
		NodeID:    childID,
		AuthorID:  "user-1",
		ParentID:  parentID,
		Operation: "divide",
		Operand:   decimal.Zero,
	})
	assert.True(t, pkgerrors.IsInvalidOperation(err), "expected invalid operation, got %v", err)

	// Nothing must have been persisted
	nodeID, idErr := valueobjects.NewNodeIDFromString(childID)
	require.NoError(t, idErr)
	_, findErr := f.repo.FindByID(context.Background(), nodeID)
	assert.True(t, pkgerrors.IsNotFound(findErr))
}

func TestCreateChildNodeHandlerUnknownOperation(t *testing.T) {
	f := newHandlerFixture()
	parentID := f.createRoot(t, "10")

	err := f.child.Handle(context.Background(), commands.CreateChildNodeCommand{
		NodeID:    uuid.New().String(),
		AuthorID:  "user-1",
		ParentID:  parentID,
		Operation: "modulo",
		Operand:   decimal.NewFromInt(3),
	})
	assert.True(t, pkgerrors.IsInvalidOperation(err), "expected invalid operation, got %v", err)
}

func TestWriteHandlersInvalidateForestCache(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	require.NoError(t, f.cache.Set(ctx, queries.ForestCacheKey, []byte("{}"), time.Minute))
	f.createRoot(t, "1")

	_, found := f.cache.Get(ctx, queries.ForestCacheKey)
	assert.False(t, found, "root creation must invalidate the forest cache")
}
