package octree

import (
	"github.com/jdimyadi/bimrl/internal/cellid"
)

// Node is one cell of a traversal. Nodes live in an arena and refer to each
// other by index; -1 means none.
type Node struct {
	Cell       cellid.ID
	Parent     int
	FirstChild int // children occupy FirstChild..FirstChild+7
	State      State
	// Pruned is set when the node was subdivided and its children were then
	// dropped because they carried no extra information.
	Pruned bool
}

// Depth returns the level of the node's cell.
func (n Node) Depth() int { return n.Cell.Depth() }

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.FirstChild < 0 }

// arena stores the nodes of one traversal, or of one detached branch while it
// is processed by its own goroutine.
type arena struct {
	nodes []Node
}

func newArena(root Node) *arena {
	root.Parent = -1
	root.FirstChild = -1
	return &arena{nodes: []Node{root}}
}

// addChildren appends the eight children of idx and returns the index of the
// first one.
func (a *arena) addChildren(idx int, states [8]State) int {
	first := len(a.nodes)
	cell := a.nodes[idx].Cell
	for i := 0; i < 8; i++ {
		a.nodes = append(a.nodes, Node{
			Cell:       cell.Child(i),
			Parent:     idx,
			FirstChild: -1,
			State:      states[i],
		})
	}
	a.nodes[idx].FirstChild = first
	return first
}

// collapse drops the children of idx and gives it state s. Everything stored
// after the first child belongs to the subtree of idx, so the arena is
// truncated there.
func (a *arena) collapse(idx int, s State) {
	n := &a.nodes[idx]
	if n.FirstChild >= 0 {
		a.nodes = a.nodes[:n.FirstChild]
	}
	n.State = s
	n.FirstChild = -1
	n.Pruned = true
}

// detach copies node idx into a fresh arena as its root.
func (a *arena) detach(idx int) *arena {
	return newArena(a.nodes[idx])
}

// graft replaces node idx with the root of sub and appends the rest of sub,
// shifting its indices.
func (a *arena) graft(idx int, sub *arena) {
	root := sub.nodes[0]
	n := &a.nodes[idx]
	n.State = root.State
	n.Pruned = root.Pruned
	n.FirstChild = -1
	if root.FirstChild < 0 {
		return
	}
	off := len(a.nodes) - 1
	n.FirstChild = root.FirstChild + off
	for _, c := range sub.nodes[1:] {
		if c.Parent == 0 {
			c.Parent = idx
		} else {
			c.Parent += off
		}
		if c.FirstChild >= 0 {
			c.FirstChild += off
		}
		a.nodes = append(a.nodes, c)
	}
}

// collect walks the tree below idx in post-order and appends every emitted
// leaf: Inside leaves as interior cells, the other non-disjoint leaves with
// the border flag set.
func (a *arena) collect(out []cellid.ID, idx int) []cellid.ID {
	n := a.nodes[idx]
	if n.FirstChild >= 0 {
		for i := 0; i < 8; i++ {
			out = a.collect(out, n.FirstChild+i)
		}
		return out
	}
	switch {
	case n.State == Disjoint:
		return out
	case n.State.IsBorder():
		return append(out, n.Cell.WithBorder(true))
	default:
		return append(out, n.Cell)
	}
}
