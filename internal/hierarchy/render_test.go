package hierarchy

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestDescendantsDepthZero(t *testing.T) {
	tree := mustBuild(t, sample())
	rn, err := tree.Descendants(1, 0, false)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if rn.ID != 1 || len(rn.Children) != 0 {
		t.Errorf("depth 0 = %+v, want bare node 1", rn)
	}
}

func TestDescendantsDepthBound(t *testing.T) {
	tree := mustBuild(t, sample())

	// Depth 1 from Analytics: Sales Reports appears, Monthly does not.
	rn, err := tree.Descendants(1, 1, false)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if len(rn.Children) != 1 || rn.Children[0].ID != 2 {
		t.Fatalf("depth 1 children = %+v", rn.Children)
	}
	if len(rn.Children[0].Children) != 0 {
		t.Errorf("depth 1 leaked grandchildren: %+v", rn.Children[0].Children)
	}

	// Depth larger than the subtree is harmless.
	rn, err = tree.Descendants(1, 10, false)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if maxDepth(rn) != 2 {
		t.Errorf("max depth = %d, want 2", maxDepth(rn))
	}
}

func maxDepth(rn *RenderNode) int {
	deepest := 0
	for _, c := range rn.Children {
		if d := maxDepth(c) + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

func TestDescendantsFromRoot(t *testing.T) {
	tree := mustBuild(t, sample())
	rn, err := tree.Descendants(RootID, 1, false)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if rn.ID != RootID || rn.Name != RootName {
		t.Errorf("root node = %+v", rn)
	}
	// Archived Ops is filtered out at depth 1.
	if len(rn.Children) != 1 || rn.Children[0].ID != 1 {
		t.Errorf("root children = %+v, want [Analytics]", rn.Children)
	}
}

func TestDescendantsArchived(t *testing.T) {
	tree := mustBuild(t, sample())
	rn, err := tree.Descendants(RootID, 2, true)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if len(rn.Children) != 2 {
		t.Fatalf("root children with archived = %+v", rn.Children)
	}
	ops := rn.Children[1]
	if ops.ID != 4 || !ops.Archived || len(ops.Children) != 1 {
		t.Errorf("Ops subtree = %+v", ops)
	}
}

func TestDescendantsNegativeDepth(t *testing.T) {
	tree := mustBuild(t, sample())
	_, err := tree.Descendants(1, -1, false)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAssembleScenario(t *testing.T) {
	// registry = Analytics > Sales Reports > Monthly, filter "sales", depth 1.
	tree := mustBuild(t, []Node{
		{ID: 1, Name: "Analytics", ParentID: RootID},
		{ID: 2, Name: "Sales Reports", ParentID: 1},
		{ID: 3, Name: "Monthly", ParentID: 2},
	})

	res, err := Assemble(tree, Options{Filter: "sales", Depth: 1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !reflect.DeepEqual(res.Matches, []int{2}) {
		t.Fatalf("Matches = %v, want [2]", res.Matches)
	}

	root := res.Root
	if root.ID != RootID || len(root.Children) != 1 {
		t.Fatalf("root = %+v", root)
	}
	analytics := root.Children[0]
	if analytics.ID != 1 || analytics.IsMatch || len(analytics.Children) != 1 {
		t.Fatalf("analytics = %+v", analytics)
	}
	sales := analytics.Children[0]
	if sales.ID != 2 || !sales.IsMatch {
		t.Fatalf("sales = %+v", sales)
	}
	if !reflect.DeepEqual(sales.Path, []string{"Analytics", "Sales Reports"}) {
		t.Errorf("sales.Path = %v", sales.Path)
	}
	if !reflect.DeepEqual(sales.PathIDs, []int{1, 2}) {
		t.Errorf("sales.PathIDs = %v", sales.PathIDs)
	}
	if len(sales.Children) != 1 || sales.Children[0].ID != 3 {
		t.Fatalf("sales children = %+v", sales.Children)
	}
	monthly := sales.Children[0]
	if monthly.IsMatch || len(monthly.Children) != 0 {
		t.Errorf("monthly = %+v", monthly)
	}
}

func TestAssembleNoFilter(t *testing.T) {
	tree := mustBuild(t, []Node{
		{ID: 1, Name: "Analytics", ParentID: RootID},
		{ID: 2, Name: "Sales Reports", ParentID: 1},
		{ID: 3, Name: "Monthly", ParentID: 2},
	})
	res, err := Assemble(tree, Options{Depth: 1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Matches != nil {
		t.Errorf("Matches = %v, want nil in no-filter mode", res.Matches)
	}
	root := res.Root
	if len(root.Children) != 1 || root.Children[0].ID != 1 {
		t.Fatalf("root children = %+v", root.Children)
	}
	if len(root.Children[0].Children) != 0 {
		t.Errorf("depth 1 leaked grandchildren")
	}
	if hasMatchFlag(root) {
		t.Error("no-filter tree has is_match flags set")
	}
}

func TestAssembleNoHits(t *testing.T) {
	tree := mustBuild(t, sample())
	res, err := Assemble(tree, Options{Filter: "zzz", Depth: 1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Root != nil {
		t.Errorf("Root = %+v, want nil for no hits", res.Root)
	}
	if res.Matches == nil || len(res.Matches) != 0 {
		t.Errorf("Matches = %v, want empty non-nil set", res.Matches)
	}
}

func TestAssembleNegativeDepth(t *testing.T) {
	tree := mustBuild(t, sample())
	_, err := Assemble(tree, Options{Filter: "sales", Depth: -2})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func hasMatchFlag(rn *RenderNode) bool {
	if rn.IsMatch {
		return true
	}
	for _, c := range rn.Children {
		if hasMatchFlag(c) {
			return true
		}
	}
	return false
}

func collectMatches(rn *RenderNode, into map[int]bool) {
	if rn.IsMatch {
		into[rn.ID] = true
	}
	for _, c := range rn.Children {
		collectMatches(c, into)
	}
}

func TestAssembleMatchFlagExactness(t *testing.T) {
	// Two matches sharing an ancestor chain; flags must land on exactly the
	// matched ids no matter how the chains overlap.
	tree := mustBuild(t, []Node{
		{ID: 1, Name: "Analytics", ParentID: RootID},
		{ID: 2, Name: "Sales Reports", ParentID: 1},
		{ID: 3, Name: "Sales Targets", ParentID: 1},
		{ID: 4, Name: "Monthly", ParentID: 2},
	})
	res, err := Assemble(tree, Options{Filter: "sales", Depth: 1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !reflect.DeepEqual(res.Matches, []int{2, 3}) {
		t.Fatalf("Matches = %v, want [2 3]", res.Matches)
	}
	flagged := map[int]bool{}
	collectMatches(res.Root, flagged)
	if len(flagged) != 2 || !flagged[2] || !flagged[3] {
		t.Errorf("flagged ids = %v, want exactly {2, 3}", flagged)
	}
	// The shared ancestor appears once.
	if len(res.Root.Children) != 1 || len(res.Root.Children[0].Children) != 2 {
		t.Errorf("shared ancestor duplicated: %+v", res.Root.Children)
	}
}

func TestAssembleNestedMatches(t *testing.T) {
	// A match inside another match's subtree: the inner node carries its own
	// flag and full-depth expansion, and appears exactly once.
	tree := mustBuild(t, []Node{
		{ID: 1, Name: "Sales", ParentID: RootID},
		{ID: 2, Name: "Sales Reports", ParentID: 1},
		{ID: 3, Name: "Archive 2024", ParentID: 2},
	})
	res, err := Assemble(tree, Options{Filter: "sales", Depth: 1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !reflect.DeepEqual(res.Matches, []int{1, 2}) {
		t.Fatalf("Matches = %v, want [1 2]", res.Matches)
	}
	outer := res.Root.Children[0]
	if outer.ID != 1 || !outer.IsMatch || len(outer.Children) != 1 {
		t.Fatalf("outer = %+v", outer)
	}
	inner := outer.Children[0]
	if inner.ID != 2 || !inner.IsMatch {
		t.Fatalf("inner = %+v", inner)
	}
	// Inner match got its own depth-1 expansion even though the outer
	// match's depth budget stopped at it.
	if len(inner.Children) != 1 || inner.Children[0].ID != 3 {
		t.Errorf("inner children = %+v, want [Archive 2024]", inner.Children)
	}
}

func TestAssembleArchivedAncestorInPath(t *testing.T) {
	// A non-archived match below an archived ancestor: the chain still shows
	// the archived node, while descendant expansion keeps honoring the flag.
	tree := mustBuild(t, sample())
	res, err := Assemble(tree, Options{Filter: "runbooks", Depth: 1})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !reflect.DeepEqual(res.Matches, []int{5}) {
		t.Fatalf("Matches = %v, want [5]", res.Matches)
	}
	if len(res.Root.Children) != 1 || res.Root.Children[0].ID != 4 {
		t.Fatalf("root children = %+v, want archived Ops on the chain", res.Root.Children)
	}
	runbooks := res.Root.Children[0].Children[0]
	if !reflect.DeepEqual(runbooks.Path, []string{"Ops", "Runbooks"}) {
		t.Errorf("path = %v", runbooks.Path)
	}
}

func TestAssembleDeterminism(t *testing.T) {
	// Identical registries in different input orders produce byte-identical
	// assembled trees.
	nodes := []Node{
		{ID: 1, Name: "Analytics", ParentID: RootID},
		{ID: 2, Name: "Sales Reports", ParentID: 1},
		{ID: 3, Name: "Sales Targets", ParentID: 1},
		{ID: 4, Name: "Monthly", ParentID: 2},
		{ID: 5, Name: "Marketing", ParentID: RootID},
		{ID: 6, Name: "Campaign Sales", ParentID: 5},
	}

	var want []byte
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]Node, len(nodes))
		copy(shuffled, nodes)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		tree := mustBuild(t, shuffled)
		res, err := Assemble(tree, Options{Filter: "sales", Depth: 2})
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		got, err := json.Marshal(res.Root)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if want == nil {
			want = got
			continue
		}
		if string(got) != string(want) {
			t.Fatalf("trial %d differs:\n%s\nvs\n%s", trial, got, want)
		}
	}
}
