package trees

import (
	"mathtree-backend/domain/core/entities"
	"mathtree-backend/domain/core/valueobjects"
)

// TreeNode is one node of a reconstructed tree with its direct children
// attached. Children keep the order of the flat input list.
type TreeNode struct {
	Node     *entities.Node
	Children []*TreeNode
}

// BuildForest groups a flat, unordered node list into its trees and returns
// the roots. Input order does not affect which tree a node lands in, only
// the order of sibling children.
//
// Every node gets an index entry (with an empty child list) before any
// parent lookup happens, since a child may appear before its parent in the
// input. A node whose parent id is missing from the input cannot be placed
// anywhere; it is left out of the forest and its id is reported back so the
// caller can log the integrity gap. The write path checks parent existence
// before insert, so dangling references only appear if the store was
// modified out of band.
//
// Two passes, O(n) in the number of nodes.
func BuildForest(nodes []*entities.Node) (roots []*TreeNode, dangling []valueobjects.NodeID) {
	index := make(map[string]*TreeNode, len(nodes))
	for _, n := range nodes {
		index[n.ID().String()] = &TreeNode{Node: n, Children: []*TreeNode{}}
	}

	roots = []*TreeNode{}
	for _, n := range nodes {
		tn := index[n.ID().String()]

		parentID, ok := n.ParentID()
		if !ok {
			roots = append(roots, tn)
			continue
		}

		parent, found := index[parentID.String()]
		if !found {
			dangling = append(dangling, n.ID())
			continue
		}
		parent.Children = append(parent.Children, tn)
	}

	return roots, dangling
}

// Size returns the number of nodes in the tree rooted at t, itself included.
func (t *TreeNode) Size() int {
	total := 1
	for _, child := range t.Children {
		total += child.Size()
	}
	return total
}
