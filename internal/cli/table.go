package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// bold wraps s in ANSI bold escape codes.
func bold(s string, color bool) string {
	if !color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

// truncate shortens a string to max characters, appending "..." if truncated.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max < 4 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// table writes column-aligned output using text/tabwriter with consistent
// formatting across all commands. Headers are bold when output is a TTY.
type table struct {
	tw    *tabwriter.Writer
	color bool
}

// newTable creates a table that writes to w, with a bold header row when w is
// a TTY.
func newTable(w io.Writer, headers ...string) *table {
	color := isTTY(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	t := &table{tw: tw, color: color}

	if len(headers) > 0 {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = bold(h, color)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return t
}

// row writes a data row with tab-separated values.
func (t *table) row(vals ...string) {
	fmt.Fprintln(t.tw, strings.Join(vals, "\t"))
}

// flush flushes the underlying tabwriter.
func (t *table) flush() error {
	return t.tw.Flush()
}
