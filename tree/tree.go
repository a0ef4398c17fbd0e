// Package tree provides the linked binary tree that expressions are stored in.
//
// A nil *Node is the absent tree. The type does not enforce any grammar: a
// node may have a single child, which lets callers build malformed trees and
// hand them to a validator.
package tree

// Node is a position in a linked binary tree.
type Node struct {
	Label string `json:"label"`
	Left  *Node  `json:"left,omitempty"`
	Right *Node  `json:"right,omitempty"`
}

// New returns a single-node tree.
func New(label string) *Node { return &Node{Label: label} }

// Attach returns a new root labelled label with left and right as its
// subtrees. The subtrees are linked, not copied.
func Attach(label string, left, right *Node) *Node {
	return &Node{Label: label, Left: left, Right: right}
}

func (n *Node) IsLeaf() bool     { return n != nil && n.Left == nil && n.Right == nil }
func (n *Node) IsInternal() bool { return n != nil && (n.Left != nil || n.Right != nil) }

// NumChildren reports how many of the two child positions are occupied.
func (n *Node) NumChildren() int {
	if n == nil {
		return 0
	}
	c := 0
	if n.Left != nil {
		c++
	}
	if n.Right != nil {
		c++
	}
	return c
}

// Size is the total number of nodes; zero for the absent tree.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	return 1 + n.Left.Size() + n.Right.Size()
}

// Height is the number of edges on the longest root-to-leaf path. The absent
// tree has height -1.
func (n *Node) Height() int {
	if n == nil {
		return -1
	}
	return 1 + max(n.Left.Height(), n.Right.Height())
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{Label: n.Label, Left: n.Left.Clone(), Right: n.Right.Clone()}
}

// Walk visits every node in pre-order. Returning false from fn stops the
// walk below that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	n.Left.Walk(fn)
	n.Right.Walk(fn)
}
