package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/mbx/internal/api"
	"github.com/scbrown/mbx/internal/hierarchy"
	"github.com/scbrown/mbx/internal/model"
	"github.com/scbrown/mbx/internal/output"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Browse and manage collections",
	Long: `Collections are the folders Metabase organizes cards and dashboards
into. The tree subcommand renders the hierarchy; the rest are plain CRUD.`,
}

var (
	treeSearch          string
	treeLevels          int
	treeIncludeArchived bool
)

var collectionsTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the collection hierarchy as a tree",
	Long: `Tree renders the collection hierarchy. Without --search it shows the
collections directly under the root, --levels deep. With --search it finds
every collection whose name contains the term (case-insensitive), then renders
one combined tree holding each match's full path from the root plus its
descendants down to --levels below the match.

Archived collections are excluded unless --include-archived is set; archived
ancestors of a match always stay on its path so the path is complete.`,
	Example: `  mbx collections tree
  mbx collections tree --levels 2
  mbx collections tree --search sales
  mbx collections tree --search sales --levels 3 --include-archived
  mbx collections tree --search sales --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return fail(err)
		}

		ctx := context.Background()
		nodes, err := client.FetchHierarchy(ctx, treeIncludeArchived)
		if err != nil {
			return fail(err)
		}

		res, err := resolveTree(nodes, hierarchy.Options{
			Filter:          treeSearch,
			Depth:           treeLevels,
			IncludeArchived: treeIncludeArchived,
		})
		if err != nil {
			return fail(err)
		}

		if jsonOutput {
			if err := writeTreeJSON(os.Stdout, treeSearch, res); err != nil {
				return fail(err)
			}
			return nil
		}
		writeTreeText(os.Stdout, treeSearch, res, nodes)
		return nil
	},
}

// resolveTree builds the hierarchy index and assembles the render tree. Split
// from the command so tests can drive it without a server.
func resolveTree(nodes []hierarchy.Node, opts hierarchy.Options) (*hierarchy.Result, error) {
	tree, err := hierarchy.Build(nodes)
	if err != nil {
		return nil, err
	}
	return hierarchy.Assemble(tree, opts)
}

// treeDoc is the JSON shape of a tree invocation.
type treeDoc struct {
	Search  string                `json:"search,omitempty"`
	Matches int                   `json:"matches"`
	Tree    *hierarchy.RenderNode `json:"tree,omitempty"`
}

func writeTreeJSON(w io.Writer, search string, res *hierarchy.Result) error {
	return output.WriteJSON(w, treeDoc{
		Search:  search,
		Matches: len(res.Matches),
		Tree:    res.Root,
	})
}

func writeTreeText(w io.Writer, search string, res *hierarchy.Result, nodes []hierarchy.Node) {
	if res.Root == nil {
		fmt.Fprintf(w, "No collections match %q.\n", search)
		names := make([]string, len(nodes))
		for i, n := range nodes {
			names[i] = n.Name
		}
		if s := suggest(search, names); len(s) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(s, ", "))
		}
		return
	}
	if len(res.Matches) > 0 {
		fmt.Fprintf(w, "%d matching collection(s) for %q:\n\n", len(res.Matches), search)
	}
	output.DrawTree(w, res.Root)
}

var collectionsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get collection details",
	Long:  `Get fetches one collection by numeric id, or "root" for the root collection.`,
	Example: `  mbx collections get 42
  mbx collections get root --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateCollectionID(args[0]); err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		col, err := client.GetCollection(context.Background(), args[0])
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, col); err != nil {
				return fail(err)
			}
			return nil
		}
		writeCollectionText(os.Stdout, col)
		return nil
	},
}

// validateCollectionID accepts a positive integer or the literal "root".
func validateCollectionID(s string) error {
	if s == "root" {
		return nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return fmt.Errorf("collection id must be a positive integer or \"root\", got %q: %w",
			s, hierarchy.ErrValidation)
	}
	return nil
}

func writeCollectionText(w io.Writer, col *model.Collection) {
	fmt.Fprintf(w, "Collection: %s\n", col.Name)
	fmt.Fprintf(w, "  ID: %s\n", strings.Trim(string(col.ID), `"`))
	if col.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", col.Description)
	}
	if col.ParentID != nil {
		fmt.Fprintf(w, "  Parent ID: %d\n", *col.ParentID)
	}
	if len(col.EffectiveAncestors) > 0 {
		fmt.Fprintf(w, "  Path: %s\n", model.CollectionPath(col))
	}
	if col.Archived {
		fmt.Fprintln(w, "  Archived: yes")
	}
}

var (
	itemsModels   string
	itemsArchived bool
	itemsSortBy   string
	itemsSortDir  string
)

var collectionsItemsCmd = &cobra.Command{
	Use:   "items <id>",
	Short: "List the contents of a collection",
	Example: `  mbx collections items root
  mbx collections items 42 --models card,dashboard
  mbx collections items 42 --sort-by name --sort-dir desc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateCollectionID(args[0]); err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		opts := api.ItemsOpts{
			Archived: itemsArchived,
			SortBy:   itemsSortBy,
			SortDir:  itemsSortDir,
		}
		if itemsModels != "" {
			opts.Models = splitList(itemsModels)
		}
		items, err := client.CollectionItems(context.Background(), args[0], opts)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"items": items, "total": len(items)}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeItemsTable(os.Stdout, items)
		return nil
	},
}

func writeItemsTable(w io.Writer, items []model.CollectionItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Collection is empty.")
		return
	}
	t := newTable(w, "ID", "MODEL", "NAME", "DESCRIPTION")
	for _, item := range items {
		t.row(
			strings.Trim(string(item.ID), `"`),
			item.Model,
			item.Name,
			truncate(item.Description, 50),
		)
	}
	t.flush()
}

var (
	createName        string
	createDescription string
	createParentID    int
)

var collectionsCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a collection",
	Example: `  mbx collections create --name "Sales Reports" --parent-id 3`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		var parent *int
		if createParentID > 0 {
			parent = &createParentID
		}
		col, err := client.CreateCollection(context.Background(), createName, createDescription, parent)
		if err != nil {
			return fail(err)
		}
		return reportCollection(col, "Created")
	},
}

var (
	updateName        string
	updateDescription string
	updateParentID    int
)

var collectionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a collection",
	Example: `  mbx collections update 42 --name "Q3 Sales"
  mbx collections update 42 --parent-id 7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fail(fmt.Errorf("collection id must be an integer, got %q: %w", args[0], hierarchy.ErrValidation))
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		var parent *int
		if cmd.Flags().Changed("parent-id") {
			parent = &updateParentID
		}
		col, err := client.UpdateCollection(context.Background(), id, updateName, updateDescription, parent)
		if err != nil {
			return fail(err)
		}
		return reportCollection(col, "Updated")
	},
}

var collectionsArchiveCmd = &cobra.Command{
	Use:     "archive <id>",
	Short:   "Archive a collection",
	Example: `  mbx collections archive 42`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fail(fmt.Errorf("collection id must be an integer, got %q: %w", args[0], hierarchy.ErrValidation))
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		col, err := client.ArchiveCollection(context.Background(), id)
		if err != nil {
			return fail(err)
		}
		return reportCollection(col, "Archived")
	},
}

func reportCollection(col *model.Collection, verb string) error {
	if jsonOutput {
		if err := output.WriteJSON(os.Stdout, col); err != nil {
			return fail(err)
		}
		return nil
	}
	fmt.Printf("%s collection %s (%s)\n", verb, col.Name, strings.Trim(string(col.ID), `"`))
	return nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	collectionsTreeCmd.Flags().StringVar(&treeSearch, "search", "", "filter collections by name (case-insensitive substring)")
	collectionsTreeCmd.Flags().IntVar(&treeLevels, "levels", 1, "how many levels to render below each match (or below root)")
	collectionsTreeCmd.Flags().BoolVar(&treeIncludeArchived, "include-archived", false, "include archived collections")

	collectionsItemsCmd.Flags().StringVar(&itemsModels, "models", "", "filter by type: card, dashboard, collection, dataset, pulse")
	collectionsItemsCmd.Flags().BoolVar(&itemsArchived, "archived", false, "show archived items")
	collectionsItemsCmd.Flags().StringVar(&itemsSortBy, "sort-by", "", "sort by: name, last_edited_at, last_edited_by, model")
	collectionsItemsCmd.Flags().StringVar(&itemsSortDir, "sort-dir", "", "sort direction: asc, desc")

	collectionsCreateCmd.Flags().StringVar(&createName, "name", "", "collection name")
	collectionsCreateCmd.Flags().StringVar(&createDescription, "description", "", "collection description")
	collectionsCreateCmd.Flags().IntVar(&createParentID, "parent-id", 0, "parent collection id")
	collectionsCreateCmd.MarkFlagRequired("name")

	collectionsUpdateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	collectionsUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	collectionsUpdateCmd.Flags().IntVar(&updateParentID, "parent-id", 0, "move to new parent")

	collectionsCmd.AddCommand(
		collectionsTreeCmd,
		collectionsGetCmd,
		collectionsItemsCmd,
		collectionsCreateCmd,
		collectionsUpdateCmd,
		collectionsArchiveCmd,
	)
	rootCmd.AddCommand(collectionsCmd)
}
