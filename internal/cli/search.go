package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/mbx/internal/api"
	"github.com/scbrown/mbx/internal/model"
	"github.com/scbrown/mbx/internal/output"
)

var (
	searchModels       string
	searchCollectionID int
	searchDatabaseID   int
	searchArchived     bool
	searchCreatedBy    int
	searchLimit        int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search across cards, dashboards, and collections",
	Example: `  mbx search revenue
  mbx search revenue --models card,dashboard
  mbx search revenue --collection-id 42 --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		opts := api.SearchOpts{
			Query:    args[0],
			Archived: searchArchived,
			Limit:    searchLimit,
		}
		if searchModels != "" {
			opts.Models = splitList(searchModels)
		}
		if searchCollectionID > 0 {
			opts.CollectionID = &searchCollectionID
		}
		if searchDatabaseID > 0 {
			opts.DatabaseID = &searchDatabaseID
		}
		if searchCreatedBy > 0 {
			opts.CreatedBy = &searchCreatedBy
		}
		resp, err := client.Search(context.Background(), opts)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, resp); err != nil {
				return fail(err)
			}
			return nil
		}
		writeSearchResults(os.Stdout, args[0], resp)
		return nil
	},
}

// writeSearchResults renders hits grouped by model, collections first, then
// dashboards, then everything else alphabetically.
func writeSearchResults(w io.Writer, query string, resp *model.SearchResponse) {
	if len(resp.Data) == 0 {
		fmt.Fprintf(w, "No results for %q.\n", query)
		return
	}

	groups := make(map[string][]model.SearchResult)
	for _, r := range resp.Data {
		groups[r.Model] = append(groups[r.Model], r)
	}
	order := make([]string, 0, len(groups))
	for m := range groups {
		order = append(order, m)
	}
	sort.Slice(order, func(i, j int) bool {
		return modelRank(order[i]) < modelRank(order[j]) ||
			(modelRank(order[i]) == modelRank(order[j]) && order[i] < order[j])
	})

	fmt.Fprintf(w, "%d result(s) for %q:\n", resp.Total, query)
	for _, m := range order {
		fmt.Fprintf(w, "\n%s:\n", strings.ToUpper(m))
		t := newTable(w, "ID", "NAME", "COLLECTION")
		for _, r := range groups[m] {
			t.row(strconv.Itoa(r.ID), truncate(r.Name, 50), model.CollectionPath(r.Collection))
		}
		t.flush()
	}
}

func modelRank(m string) int {
	switch m {
	case "collection":
		return 0
	case "dashboard":
		return 1
	case "card":
		return 2
	}
	return 3
}

func init() {
	searchCmd.Flags().StringVar(&searchModels, "models", "", "filter by type: card, dashboard, collection, dataset, table")
	searchCmd.Flags().IntVar(&searchCollectionID, "collection-id", 0, "limit to one collection")
	searchCmd.Flags().IntVar(&searchDatabaseID, "database-id", 0, "limit to tables of one database")
	searchCmd.Flags().BoolVar(&searchArchived, "archived", false, "search archived entities")
	searchCmd.Flags().IntVar(&searchCreatedBy, "created-by", 0, "limit to entities created by one user id")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results")

	rootCmd.AddCommand(searchCmd)
}
