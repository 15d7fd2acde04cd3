package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mathtree-backend/domain/core/valueobjects"
	"mathtree-backend/domain/events"
	pkgerrors "mathtree-backend/pkg/errors"
)

func TestNewRootNode(t *testing.T) {
	node, err := NewRootNode(valueobjects.NewNodeID(), "user-1", decimal.RequireFromString("10"))
	if err != nil {
		t.Fatalf("NewRootNode failed: %v", err)
	}

	if !node.IsRoot() {
		t.Error("expected a root node")
	}
	if !node.Value().Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected value 10, got %s", node.Value())
	}
	if _, ok := node.Operation(); ok {
		t.Error("root node must not carry an operation")
	}
	if _, ok := node.Operand(); ok {
		t.Error("root node must not carry an operand")
	}
	if _, ok := node.ParentID(); ok {
		t.Error("root node must not carry a parent id")
	}
	if node.AuthorID() != "user-1" {
		t.Errorf("expected author user-1, got %s", node.AuthorID())
	}

	uncommitted := node.GetUncommittedEvents()
	if len(uncommitted) != 1 {
		t.Fatalf("expected 1 uncommitted event, got %d", len(uncommitted))
	}
	created, ok := uncommitted[0].(events.NodeCreated)
	if !ok {
		t.Fatalf("expected NodeCreated event, got %T", uncommitted[0])
	}
	if created.ParentID != nil {
		t.Error("root creation event must not carry a parent id")
	}
}

func TestNewRootNodeRequiresAuthor(t *testing.T) {
	if _, err := NewRootNode(valueobjects.NewNodeID(), "", decimal.NewFromInt(1)); !pkgerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewChildNodeDerivesValue(t *testing.T) {
	root, err := NewRootNode(valueobjects.NewNodeID(), "user-1", decimal.RequireFromString("10"))
	if err != nil {
		t.Fatalf("NewRootNode failed: %v", err)
	}

	child, err := NewChildNode(valueobjects.NewNodeID(), "user-2", root, valueobjects.OperationAdd, decimal.RequireFromString("5"))
	if err != nil {
		t.Fatalf("NewChildNode failed: %v", err)
	}
	if !child.Value().Equal(decimal.NewFromInt(15)) {
		t.Errorf("expected derived value 15, got %s", child.Value())
	}

	grandchild, err := NewChildNode(valueobjects.NewNodeID(), "user-1", child, valueobjects.OperationMultiply, decimal.RequireFromString("3"))
	if err != nil {
		t.Fatalf("NewChildNode failed: %v", err)
	}
	if !grandchild.Value().Equal(decimal.NewFromInt(45)) {
		t.Errorf("expected derived value 45, got %s", grandchild.Value())
	}

	if grandchild.IsRoot() {
		t.Error("derived node must not be a root")
	}
	parentID, ok := grandchild.ParentID()
	if !ok || !parentID.Equals(child.ID()) {
		t.Errorf("expected parent %s, got %s", child.ID(), parentID)
	}
	op, ok := grandchild.Operation()
	if !ok || op != valueobjects.OperationMultiply {
		t.Errorf("expected multiply operation, got %s", op)
	}
	operand, ok := grandchild.Operand()
	if !ok || !operand.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected operand 3, got %s", operand)
	}
}

func TestNewChildNodeDivideByZero(t *testing.T) {
	root, err := NewRootNode(valueobjects.NewNodeID(), "user-1", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("NewRootNode failed: %v", err)
	}

	_, err = NewChildNode(valueobjects.NewNodeID(), "user-1", root, valueobjects.OperationDivide, decimal.Zero)
	if !pkgerrors.IsInvalidOperation(err) {
		t.Fatalf("expected invalid operation error, got %v", err)
	}
}

func TestNewChildNodeRequiresParent(t *testing.T) {
	if _, err := NewChildNode(valueobjects.NewNodeID(), "user-1", nil, valueobjects.OperationAdd, decimal.NewFromInt(1)); !pkgerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReconstructNodePairingInvariants(t *testing.T) {
	id := valueobjects.NewNodeID()
	parentID := valueobjects.NewNodeID()
	op := valueobjects.OperationAdd
	operand := decimal.NewFromInt(5)
	now := time.Now().UTC()

	tests := []struct {
		name     string
		op       *valueobjects.Operation
		operand  *decimal.Decimal
		parentID *valueobjects.NodeID
		wantErr  bool
	}{
		{"root", nil, nil, nil, false},
		{"derived", &op, &operand, &parentID, false},
		{"operation without operand", &op, nil, &parentID, true},
		{"operand without operation", nil, &operand, &parentID, true},
		{"derived without parent", &op, &operand, nil, true},
		{"parent without operation", nil, nil, &parentID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := ReconstructNode(id, decimal.NewFromInt(15), tt.op, tt.operand, tt.parentID, "user-1", now)
			if tt.wantErr {
				if !pkgerrors.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReconstructNode failed: %v", err)
			}
			if !node.CreatedAt().Equal(now) {
				t.Errorf("expected original timestamp preserved")
			}
			if len(node.GetUncommittedEvents()) != 0 {
				t.Error("reconstruction must not emit events")
			}
		})
	}
}

func TestMarkEventsAsCommitted(t *testing.T) {
	node, err := NewRootNode(valueobjects.NewNodeID(), "user-1", decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("NewRootNode failed: %v", err)
	}

	node.MarkEventsAsCommitted()
	if len(node.GetUncommittedEvents()) != 0 {
		t.Error("expected no events after commit")
	}
}
