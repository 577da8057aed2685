package output

import (
	"fmt"
	"io"

	"github.com/scbrown/mbx/internal/hierarchy"
)

// DrawTree writes a box-drawing rendering of the assembled tree. Matched
// nodes are marked with an asterisk and archived ones annotated, so the text
// view carries the same information as the JSON form.
//
//	Root
//	└── Analytics [1]
//	    └── * Sales Reports [2]
//	        └── Monthly [3]
func DrawTree(w io.Writer, root *hierarchy.RenderNode) {
	fmt.Fprintln(w, root.Name)
	drawChildren(w, root, "")
}

func drawChildren(w io.Writer, rn *hierarchy.RenderNode, prefix string) {
	for i, child := range rn.Children {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(rn.Children)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, label(child))
		drawChildren(w, child, childPrefix)
	}
}

func label(rn *hierarchy.RenderNode) string {
	s := ""
	if rn.IsMatch {
		s = "* "
	}
	s += fmt.Sprintf("%s [%d]", rn.Name, rn.ID)
	if rn.Archived {
		s += " (archived)"
	}
	return s
}
