package hierarchy

import (
	"fmt"
	"sort"
	"strings"
)

// Tree is an index over one registry snapshot: parent and ordered-children
// lookups for every node. It is built once per invocation and never mutated.
type Tree struct {
	nodes    map[int]Node
	children map[int][]int
	preorder []int
}

// Build indexes the flat registry into a Tree. Every node's parent must be
// RootID or another node in the registry, ids must be unique and distinct from
// RootID, and the parent relation must be acyclic; any violation returns an
// error wrapping ErrIntegrity. Siblings are ordered by case-insensitive name,
// then id, so repeated builds over the same snapshot render identically.
func Build(nodes []Node) (*Tree, error) {
	t := &Tree{
		nodes:    make(map[int]Node, len(nodes)),
		children: make(map[int][]int),
	}

	for _, n := range nodes {
		if n.ID == RootID {
			return nil, fmt.Errorf("node %q uses the reserved root id %d: %w", n.Name, RootID, ErrIntegrity)
		}
		if prev, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate id %d (%q and %q): %w", n.ID, prev.Name, n.Name, ErrIntegrity)
		}
		t.nodes[n.ID] = n
	}

	for _, n := range nodes {
		if n.ParentID != RootID {
			if _, ok := t.nodes[n.ParentID]; !ok {
				return nil, fmt.Errorf("node %d (%q): parent %d not in registry: %w", n.ID, n.Name, n.ParentID, ErrIntegrity)
			}
		}
		t.children[n.ParentID] = append(t.children[n.ParentID], n.ID)
	}

	for pid := range t.children {
		kids := t.children[pid]
		sort.Slice(kids, func(i, j int) bool {
			a, b := t.nodes[kids[i]], t.nodes[kids[j]]
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
			return a.ID < b.ID
		})
	}

	// Depth-first walk from the root. Since every parent reference resolves,
	// any node we cannot reach sits on (or below) a cycle.
	t.preorder = make([]int, 0, len(nodes))
	stack := make([]int, 0, len(nodes))
	for i := len(t.children[RootID]) - 1; i >= 0; i-- {
		stack = append(stack, t.children[RootID][i])
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.preorder = append(t.preorder, id)
		kids := t.children[id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	if len(t.preorder) != len(t.nodes) {
		return nil, fmt.Errorf("%d of %d nodes unreachable from root, parent cycle: %w",
			len(t.nodes)-len(t.preorder), len(t.nodes), ErrIntegrity)
	}

	return t, nil
}

// Len returns the number of nodes in the registry, excluding the root sentinel.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given id.
func (t *Tree) Node(id int) (Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Parent returns the parent id of the given node, RootID for top-level nodes.
func (t *Tree) Parent(id int) (int, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return RootID, false
	}
	return n.ParentID, true
}

// Children returns the ordered child ids of the given node. RootID yields the
// top-level nodes.
func (t *Tree) Children(id int) []int {
	return t.children[id]
}

// Match returns the ids of nodes whose name contains filter, case-insensitive,
// in tree pre-order. Archived nodes are skipped unless includeArchived is set.
// An empty filter is a caller-level mode ("render from root"), not "match
// everything", and yields no ids here.
func (t *Tree) Match(filter string, includeArchived bool) []int {
	if filter == "" {
		return nil
	}
	needle := strings.ToLower(filter)
	var ids []int
	for _, id := range t.preorder {
		n := t.nodes[id]
		if n.Archived && !includeArchived {
			continue
		}
		if strings.Contains(strings.ToLower(n.Name), needle) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Path returns the ancestor chain for id: the node directly under root first,
// each following node the child of the one before, ending with the target
// itself. The root sentinel is not included. Traversal is bounded by the
// registry size, so a parent cycle that slipped past Build still fails with
// ErrIntegrity instead of looping.
func (t *Tree) Path(id int) ([]Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node id %d: %w", id, ErrValidation)
	}
	chain := []Node{n}
	for steps := 0; n.ParentID != RootID; steps++ {
		if steps >= len(t.nodes) {
			return nil, fmt.Errorf("ancestor chain of node %d exceeds registry size: %w", id, ErrIntegrity)
		}
		parent, ok := t.nodes[n.ParentID]
		if !ok {
			return nil, fmt.Errorf("node %d: parent %d not in registry: %w", n.ID, n.ParentID, ErrIntegrity)
		}
		chain = append(chain, parent)
		n = parent
	}
	// Reverse into root-to-target order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
