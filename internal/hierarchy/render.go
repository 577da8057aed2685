package hierarchy

import (
	"fmt"
	"sort"
	"strings"
)

// RenderNode is one node of the assembled output tree. It is built fresh per
// invocation and handed to the text and JSON renderers as-is; neither mutates
// it further.
type RenderNode struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Archived bool          `json:"archived,omitempty"`
	IsMatch  bool          `json:"is_match,omitempty"`
	Path     []string      `json:"path,omitempty"`
	PathIDs  []int         `json:"path_ids,omitempty"`
	Children []*RenderNode `json:"children,omitempty"`
}

// Options controls assembly of the output tree.
type Options struct {
	// Filter is the case-insensitive substring to match node names against.
	// Empty means "render the root's neighborhood" rather than "match all".
	Filter string
	// Depth bounds descendant expansion below each match (or below root in
	// no-filter mode). 0 renders the node itself with no children.
	Depth int
	// IncludeArchived includes archived nodes in matching and descendant
	// expansion. Ancestor chains always include archived ancestors: a path
	// must be complete to be meaningful.
	IncludeArchived bool
}

// Result is the assembled output. Root is nil when a filter was supplied and
// nothing matched; that is a well-formed empty result, not an error.
type Result struct {
	Root    *RenderNode
	Matches []int
}

// Descendants returns the subtree rooted at id, truncated depth levels below
// it. Depth 0 yields the node alone; depth 1 adds direct children with no
// grandchildren, and so on. id may be RootID. Sibling order follows the
// tree's deterministic ordering. A negative depth fails with ErrValidation.
func (t *Tree) Descendants(id, depth int, includeArchived bool) (*RenderNode, error) {
	if depth < 0 {
		return nil, fmt.Errorf("depth must be >= 0, got %d: %w", depth, ErrValidation)
	}
	rn, ok := t.renderNode(id)
	if !ok {
		return nil, fmt.Errorf("unknown node id %d: %w", id, ErrValidation)
	}
	t.expand(rn, depth, includeArchived)
	return rn, nil
}

func (t *Tree) renderNode(id int) (*RenderNode, bool) {
	if id == RootID {
		return &RenderNode{ID: RootID, Name: RootName}, true
	}
	n, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return &RenderNode{ID: n.ID, Name: n.Name, Archived: n.Archived}, true
}

func (t *Tree) expand(rn *RenderNode, depth int, includeArchived bool) {
	if depth == 0 {
		return
	}
	for _, cid := range t.children[rn.ID] {
		c := t.nodes[cid]
		if c.Archived && !includeArchived {
			continue
		}
		child := &RenderNode{ID: c.ID, Name: c.Name, Archived: c.Archived}
		t.expand(child, depth-1, includeArchived)
		rn.Children = append(rn.Children, child)
	}
}

// Assemble builds the combined output tree: the root, the ancestor chain of
// every match, and each match's bounded descendant subtree, merged into one
// deduplicated structure. Nodes on no chain and within no match's depth radius
// are omitted, keeping output proportional to the matches rather than to the
// whole registry. With an empty filter it renders the root's neighborhood to
// the configured depth instead.
func Assemble(t *Tree, opts Options) (*Result, error) {
	if opts.Depth < 0 {
		return nil, fmt.Errorf("depth must be >= 0, got %d: %w", opts.Depth, ErrValidation)
	}

	if opts.Filter == "" {
		root, err := t.Descendants(RootID, opts.Depth, opts.IncludeArchived)
		if err != nil {
			return nil, err
		}
		return &Result{Root: root}, nil
	}

	matches := t.Match(opts.Filter, opts.IncludeArchived)
	if len(matches) == 0 {
		return &Result{Matches: []int{}}, nil
	}

	root := &RenderNode{ID: RootID, Name: RootName}
	arena := map[int]*RenderNode{RootID: root}

	for _, id := range matches {
		chain, err := t.Path(id)
		if err != nil {
			return nil, err
		}

		// Insert the chain, reusing nodes already placed by earlier matches.
		parent := root
		for _, n := range chain {
			rn, ok := arena[n.ID]
			if !ok {
				rn = &RenderNode{ID: n.ID, Name: n.Name, Archived: n.Archived}
				arena[n.ID] = rn
				parent.Children = append(parent.Children, rn)
			}
			parent = rn
		}

		// parent is now the match's own node.
		parent.IsMatch = true
		parent.Path = make([]string, len(chain))
		parent.PathIDs = make([]int, len(chain))
		for i, n := range chain {
			parent.Path[i] = n.Name
			parent.PathIDs[i] = n.ID
		}

		sub, err := t.Descendants(id, opts.Depth, opts.IncludeArchived)
		if err != nil {
			return nil, err
		}
		for _, child := range sub.Children {
			graft(arena, parent, child)
		}
	}

	sortChildren(root)
	return &Result{Root: root, Matches: matches}, nil
}

// graft merges a freshly computed subtree into the arena under parent. A node
// already present (placed by another match's chain or subtree) is reused and
// its children unioned, so overlapping views never duplicate a node.
func graft(arena map[int]*RenderNode, parent, node *RenderNode) {
	existing, ok := arena[node.ID]
	if !ok {
		arena[node.ID] = node
		parent.Children = append(parent.Children, node)
		register(arena, node)
		return
	}
	for _, child := range node.Children {
		graft(arena, existing, child)
	}
}

func register(arena map[int]*RenderNode, node *RenderNode) {
	for _, child := range node.Children {
		arena[child.ID] = child
		register(arena, child)
	}
}

// sortChildren restores the deterministic sibling order after chain insertion,
// which appends in match order.
func sortChildren(rn *RenderNode) {
	sort.Slice(rn.Children, func(i, j int) bool {
		a, b := rn.Children[i], rn.Children[j]
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	for _, c := range rn.Children {
		sortChildren(c)
	}
}
