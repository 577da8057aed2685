package hierarchy

import (
	"errors"
	"testing"
)

// sample builds the registry used by most tests:
//
//	root
//	├── Analytics (1)
//	│   └── Sales Reports (2)
//	│       └── Monthly (3)
//	└── Ops (4, archived)
//	    └── Runbooks (5)
func sample() []Node {
	return []Node{
		{ID: 1, Name: "Analytics", ParentID: RootID},
		{ID: 2, Name: "Sales Reports", ParentID: 1},
		{ID: 3, Name: "Monthly", ParentID: 2},
		{ID: 4, Name: "Ops", ParentID: RootID, Archived: true},
		{ID: 5, Name: "Runbooks", ParentID: 4},
	}
}

func mustBuild(t *testing.T, nodes []Node) *Tree {
	t.Helper()
	tree, err := Build(nodes)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestBuildLookups(t *testing.T) {
	tree := mustBuild(t, sample())

	if tree.Len() != 5 {
		t.Errorf("Len = %d, want 5", tree.Len())
	}

	n, ok := tree.Node(2)
	if !ok || n.Name != "Sales Reports" {
		t.Errorf("Node(2) = %+v, %v", n, ok)
	}

	pid, ok := tree.Parent(3)
	if !ok || pid != 2 {
		t.Errorf("Parent(3) = %d, %v, want 2", pid, ok)
	}

	top := tree.Children(RootID)
	if len(top) != 2 || top[0] != 1 || top[1] != 4 {
		t.Errorf("Children(root) = %v, want [1 4]", top)
	}
}

func TestBuildSiblingOrder(t *testing.T) {
	// Name order is case-insensitive; equal names fall back to id.
	tree := mustBuild(t, []Node{
		{ID: 9, Name: "zebra", ParentID: RootID},
		{ID: 7, Name: "Apple", ParentID: RootID},
		{ID: 8, Name: "apple", ParentID: RootID},
		{ID: 2, Name: "Banana", ParentID: RootID},
	})
	got := tree.Children(RootID)
	want := []int{7, 8, 2, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Children(root) = %v, want %v", got, want)
		}
	}
}

func TestBuildIntegrityErrors(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
	}{
		{
			name: "dangling parent",
			nodes: []Node{
				{ID: 1, Name: "A", ParentID: RootID},
				{ID: 2, Name: "B", ParentID: 99},
			},
		},
		{
			name: "two-node cycle",
			nodes: []Node{
				{ID: 1, Name: "A", ParentID: 2},
				{ID: 2, Name: "B", ParentID: 1},
			},
		},
		{
			name: "self cycle",
			nodes: []Node{
				{ID: 1, Name: "A", ParentID: 1},
			},
		},
		{
			name: "cycle below valid nodes",
			nodes: []Node{
				{ID: 1, Name: "A", ParentID: RootID},
				{ID: 2, Name: "B", ParentID: 3},
				{ID: 3, Name: "C", ParentID: 2},
			},
		},
		{
			name: "duplicate id",
			nodes: []Node{
				{ID: 1, Name: "A", ParentID: RootID},
				{ID: 1, Name: "B", ParentID: RootID},
			},
		},
		{
			name: "reserved root id",
			nodes: []Node{
				{ID: RootID, Name: "A", ParentID: RootID},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.nodes)
			if !errors.Is(err, ErrIntegrity) {
				t.Errorf("Build error = %v, want ErrIntegrity", err)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tree := mustBuild(t, sample())

	tests := []struct {
		name            string
		filter          string
		includeArchived bool
		want            []int
	}{
		{name: "substring case-insensitive", filter: "sales", want: []int{2}},
		{name: "multiple hits in preorder", filter: "o", want: []int{2, 3, 5}},
		{name: "archived excluded by default", filter: "ops", want: nil},
		{name: "archived included on request", filter: "ops", includeArchived: true, want: []int{4}},
		{name: "child of archived still matches", filter: "runbooks", want: []int{5}},
		{name: "no hits", filter: "zzz", want: nil},
		{name: "empty filter is not match-all", filter: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tree.Match(tt.filter, tt.includeArchived)
			if len(got) != len(tt.want) {
				t.Fatalf("Match(%q) = %v, want %v", tt.filter, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Match(%q) = %v, want %v", tt.filter, got, tt.want)
				}
			}
		})
	}
}

func TestMatchPreorderAcrossBranches(t *testing.T) {
	// "report" hits nodes in two branches; result order must follow the
	// tree walk (Analytics branch sorts before Marketing).
	tree := mustBuild(t, []Node{
		{ID: 1, Name: "Marketing", ParentID: RootID},
		{ID: 2, Name: "Ad Reports", ParentID: 1},
		{ID: 3, Name: "Analytics", ParentID: RootID},
		{ID: 4, Name: "Sales Reports", ParentID: 3},
	})
	got := tree.Match("report", false)
	want := []int{4, 2}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Match = %v, want %v", got, want)
	}
}

func TestPath(t *testing.T) {
	tree := mustBuild(t, sample())

	chain, err := tree.Path(3)
	if err != nil {
		t.Fatalf("Path(3): %v", err)
	}
	wantIDs := []int{1, 2, 3}
	if len(chain) != len(wantIDs) {
		t.Fatalf("Path(3) = %v", chain)
	}
	for i, id := range wantIDs {
		if chain[i].ID != id {
			t.Fatalf("Path(3)[%d].ID = %d, want %d", i, chain[i].ID, id)
		}
	}

	// Round trip: walking Parent from the target back up reproduces the
	// chain in reverse.
	cur := 3
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].ID != cur {
			t.Fatalf("round trip mismatch at %d: chain %d, parent walk %d", i, chain[i].ID, cur)
		}
		cur, _ = tree.Parent(cur)
	}
	if cur != RootID {
		t.Errorf("parent walk ended at %d, want root", cur)
	}
}

func TestPathTopLevel(t *testing.T) {
	tree := mustBuild(t, sample())
	chain, err := tree.Path(1)
	if err != nil {
		t.Fatalf("Path(1): %v", err)
	}
	if len(chain) != 1 || chain[0].ID != 1 {
		t.Errorf("Path(1) = %v, want just node 1", chain)
	}
}

func TestPathUnknownID(t *testing.T) {
	tree := mustBuild(t, sample())
	_, err := tree.Path(42)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Path(42) error = %v, want ErrValidation", err)
	}
}

func TestPathIncludesArchivedAncestors(t *testing.T) {
	// Runbooks sits under the archived Ops; its path must still be complete.
	tree := mustBuild(t, sample())
	chain, err := tree.Path(5)
	if err != nil {
		t.Fatalf("Path(5): %v", err)
	}
	if len(chain) != 2 || chain[0].ID != 4 || !chain[0].Archived {
		t.Errorf("Path(5) = %v, want archived Ops then Runbooks", chain)
	}
}
