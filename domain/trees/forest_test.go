package trees

import (
	"testing"

	"github.com/shopspring/decimal"

	"mathtree-backend/domain/core/entities"
	"mathtree-backend/domain/core/valueobjects"
)

func mustRoot(t *testing.T, value string) *entities.Node {
	t.Helper()
	node, err := entities.NewRootNode(valueobjects.NewNodeID(), "author-1", decimal.RequireFromString(value))
	if err != nil {
		t.Fatalf("NewRootNode failed: %v", err)
	}
	return node
}

func mustChild(t *testing.T, parent *entities.Node, op valueobjects.Operation, operand string) *entities.Node {
	t.Helper()
	node, err := entities.NewChildNode(valueobjects.NewNodeID(), "author-1", parent, op, decimal.RequireFromString(operand))
	if err != nil {
		t.Fatalf("NewChildNode failed: %v", err)
	}
	return node
}

func TestBuildForestChain(t *testing.T) {
	a := mustRoot(t, "10")
	b := mustChild(t, a, valueobjects.OperationAdd, "5")
	c := mustChild(t, b, valueobjects.OperationMultiply, "3")

	// Reads return most recent first, so feed the list in reverse.
	roots, dangling := BuildForest([]*entities.Node{c, b, a})

	if len(dangling) != 0 {
		t.Fatalf("expected no dangling nodes, got %v", dangling)
	}
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	root := roots[0]
	if !root.Node.ID().Equals(a.ID()) {
		t.Errorf("expected root %s, got %s", a.ID(), root.Node.ID())
	}
	if len(root.Children) != 1 || !root.Children[0].Node.ID().Equals(b.ID()) {
		t.Fatalf("expected single child %s under root", b.ID())
	}
	grandchild := root.Children[0]
	if len(grandchild.Children) != 1 || !grandchild.Children[0].Node.ID().Equals(c.ID()) {
		t.Fatalf("expected single child %s under %s", c.ID(), b.ID())
	}
	if got := root.Size(); got != 3 {
		t.Errorf("expected tree size 3, got %d", got)
	}
}

func TestBuildForestMultipleRoots(t *testing.T) {
	r1 := mustRoot(t, "1")
	r2 := mustRoot(t, "2")
	child := mustChild(t, r2, valueobjects.OperationSubtract, "1")

	roots, dangling := BuildForest([]*entities.Node{child, r2, r1})

	if len(dangling) != 0 {
		t.Fatalf("expected no dangling nodes, got %v", dangling)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	// Roots keep input order.
	if !roots[0].Node.ID().Equals(r2.ID()) || !roots[1].Node.ID().Equals(r1.ID()) {
		t.Errorf("roots out of input order")
	}
}

func TestBuildForestDanglingParentDropped(t *testing.T) {
	root := mustRoot(t, "7")
	orphanParent := mustRoot(t, "100")
	orphan := mustChild(t, orphanParent, valueobjects.OperationDivide, "4")

	// The orphan's parent is not part of the list.
	roots, dangling := BuildForest([]*entities.Node{orphan, root})

	if len(roots) != 1 || !roots[0].Node.ID().Equals(root.ID()) {
		t.Fatalf("expected only %s as root", root.ID())
	}
	if len(dangling) != 1 || !dangling[0].Equals(orphan.ID()) {
		t.Fatalf("expected %s reported dangling, got %v", orphan.ID(), dangling)
	}
}

func TestBuildForestEmpty(t *testing.T) {
	roots, dangling := BuildForest(nil)
	if len(roots) != 0 {
		t.Errorf("expected empty forest, got %d roots", len(roots))
	}
	if len(dangling) != 0 {
		t.Errorf("expected no dangling nodes, got %d", len(dangling))
	}
}

func TestBuildForestDeterministic(t *testing.T) {
	root := mustRoot(t, "3")
	c1 := mustChild(t, root, valueobjects.OperationAdd, "1")
	c2 := mustChild(t, root, valueobjects.OperationAdd, "2")
	input := []*entities.Node{c2, c1, root}

	first, _ := BuildForest(input)
	second, _ := BuildForest(input)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected a single root on both runs")
	}
	if len(first[0].Children) != 2 || len(second[0].Children) != 2 {
		t.Fatalf("expected both children attached on both runs")
	}
	for i := range first[0].Children {
		if !first[0].Children[i].Node.ID().Equals(second[0].Children[i].Node.ID()) {
			t.Errorf("child order differs between runs at index %d", i)
		}
	}
}
