package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/scbrown/mbx/internal/api"
	"github.com/scbrown/mbx/internal/hierarchy"
	"github.com/scbrown/mbx/internal/model"
	"github.com/scbrown/mbx/internal/output"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Work with cards (saved questions)",
}

var (
	cardsFilter       string
	cardsCollectionID int
	cardsDatabaseID   int
)

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved questions",
	Example: `  mbx cards list
  mbx cards list --filter mine
  mbx cards list --collection-id 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		opts := api.CardListOpts{Filter: cardsFilter}
		if cardsCollectionID > 0 {
			opts.CollectionID = &cardsCollectionID
		}
		if cardsDatabaseID > 0 {
			opts.DatabaseID = &cardsDatabaseID
		}
		cards, err := client.ListCards(context.Background(), opts)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"cards": cards, "total": len(cards)}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeCardsTable(os.Stdout, cards)
		return nil
	},
}

func writeCardsTable(w io.Writer, cards []model.Card) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No cards found.")
		return
	}
	t := newTable(w, "ID", "NAME", "TYPE", "COLLECTION", "UPDATED")
	for _, c := range cards {
		t.row(
			strconv.Itoa(c.ID),
			truncate(c.Name, 40),
			c.QueryType(),
			model.CollectionPath(c.Collection),
			relativeTime(c.UpdatedAt),
		)
	}
	t.flush()
}

// relativeTime renders an RFC 3339 timestamp as "3 days ago", falling back to
// the raw string when it does not parse.
func relativeTime(s string) string {
	if s == "" {
		return ""
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return humanize.Time(ts)
}

var cardsGetExport bool

var cardsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a card's full definition",
	Example: `  mbx cards get 123
  mbx cards get 123 --export`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "card")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		card, err := client.GetCard(context.Background(), id)
		if err != nil {
			return fail(err)
		}
		if cardsGetExport {
			dir, err := output.NewExportDir()
			if err != nil {
				return fail(err)
			}
			path, err := output.WriteExportFile(dir, fmt.Sprintf("card-%d.json", card.ID), card, "card",
				map[string]any{"url": client.BaseURL(), "id": card.ID})
			if err != nil {
				return fail(err)
			}
			fmt.Printf("Exported card %d to %s\n", card.ID, path)
			return nil
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, card); err != nil {
				return fail(err)
			}
			return nil
		}
		writeCardText(os.Stdout, card)
		return nil
	},
}

func writeCardText(w io.Writer, card *model.Card) {
	fmt.Fprintf(w, "Card: %s\n", card.Name)
	fmt.Fprintf(w, "  ID: %d\n", card.ID)
	if card.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", card.Description)
	}
	if qt := card.QueryType(); qt != "" {
		fmt.Fprintf(w, "  Query type: %s\n", qt)
	}
	if card.Display != "" {
		fmt.Fprintf(w, "  Display: %s\n", card.Display)
	}
	if card.DatabaseID != 0 {
		fmt.Fprintf(w, "  Database ID: %d\n", card.DatabaseID)
	}
	fmt.Fprintf(w, "  Collection: %s\n", model.CollectionPath(card.Collection))
	if card.Archived {
		fmt.Fprintln(w, "  Archived: yes")
	}
}

var (
	cardsRunLimit  int
	cardsRunParams string
	cardsRunExport bool
)

var cardsRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Execute a card's query and show the results",
	Long: `Run executes a card's saved query. By default the result renders as a
table (or a JSON envelope with --json). With --export the full result is
written to a timestamped export directory as both a JSON file and a CSV file.`,
	Example: `  mbx cards run 123
  mbx cards run 123 --limit 50
  mbx cards run 123 --export
  mbx cards run 123 --parameters '[{"id":"abc","value":"2026-01-01"}]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "card")
		if err != nil {
			return fail(err)
		}
		var params json.RawMessage
		if cardsRunParams != "" {
			if !json.Valid([]byte(cardsRunParams)) {
				return fail(fmt.Errorf("--parameters must be valid JSON: %w", hierarchy.ErrValidation))
			}
			params = json.RawMessage(cardsRunParams)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		result, raw, err := client.RunCard(context.Background(), id, params, cardsRunLimit)
		if err != nil {
			return fail(err)
		}
		if cardsRunExport {
			dir, err := output.NewExportDir()
			if err != nil {
				return fail(err)
			}
			jsonPath, err := output.WriteJSONFile(dir, fmt.Sprintf("card-%d-results.json", id), raw)
			if err != nil {
				return fail(err)
			}
			headers, rows := resultCSV(result)
			csvPath, err := output.WriteCSVFile(dir, fmt.Sprintf("card-%d-results.csv", id), headers, rows)
			if err != nil {
				return fail(err)
			}
			if jsonOutput {
				if err := output.WriteJSON(os.Stdout, map[string]any{
					"card_id":   id,
					"row_count": len(rows),
					"files":     map[string]string{"json": jsonPath, "csv": csvPath},
				}); err != nil {
					return fail(err)
				}
				return nil
			}
			fmt.Printf("Rows returned: %d\n\nOutput files:\n  - %s\n  - %s\n", len(rows), jsonPath, csvPath)
			return nil
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, raw); err != nil {
				return fail(err)
			}
			return nil
		}
		writeResultTable(os.Stdout, result)
		return nil
	},
}

// resultCSV flattens a query result into CSV headers and rows. Cell values
// keep their JSON encoding except strings, which are unquoted.
func resultCSV(result *model.QueryResult) ([]string, [][]string) {
	headers := make([]string, len(result.Data.Cols))
	for i, col := range result.Data.Cols {
		headers[i] = col.Name
	}
	rows := make([][]string, len(result.Data.Rows))
	for i, row := range result.Data.Rows {
		out := make([]string, len(row))
		for j, cell := range row {
			out[j] = cellString(cell)
		}
		rows[i] = out
	}
	return headers, rows
}

func cellString(cell json.RawMessage) string {
	var s string
	if err := json.Unmarshal(cell, &s); err == nil {
		return s
	}
	if string(cell) == "null" {
		return ""
	}
	return string(cell)
}

func writeResultTable(w io.Writer, result *model.QueryResult) {
	if len(result.Data.Rows) == 0 {
		fmt.Fprintln(w, "Query returned no rows.")
		return
	}
	headers := make([]string, len(result.Data.Cols))
	for i, col := range result.Data.Cols {
		name := col.DisplayName
		if name == "" {
			name = col.Name
		}
		headers[i] = name
	}
	t := newTable(w, headers...)
	for _, row := range result.Data.Rows {
		vals := make([]string, len(row))
		for i, cell := range row {
			vals[i] = truncate(cellString(cell), 40)
		}
		t.row(vals...)
	}
	t.flush()
	fmt.Fprintf(w, "\n%d row(s)\n", len(result.Data.Rows))
}

var cardsCreateFile string

var cardsCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a card from a JSON definition file",
	Example: `  mbx cards create --file card.json`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := readDefinition(cardsCreateFile, "card")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		card, err := client.CreateCard(context.Background(), def)
		if err != nil {
			return fail(err)
		}
		return reportCard(card, "Created")
	},
}

var cardsUpdateFile string

var cardsUpdateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a card from a JSON definition file",
	Example: `  mbx cards update 123 --file card.json`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "card")
		if err != nil {
			return fail(err)
		}
		def, err := readDefinition(cardsUpdateFile, "card")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		card, err := client.UpdateCard(context.Background(), id, def)
		if err != nil {
			return fail(err)
		}
		return reportCard(card, "Updated")
	},
}

var cardsArchiveCmd = &cobra.Command{
	Use:     "archive <id>",
	Short:   "Archive a card",
	Example: `  mbx cards archive 123`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "card")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		card, err := client.ArchiveCard(context.Background(), id)
		if err != nil {
			return fail(err)
		}
		return reportCard(card, "Archived")
	},
}

var cardsDeleteYes bool

var cardsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Permanently delete a card",
	Example: `  mbx cards delete 123 --yes`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "card")
		if err != nil {
			return fail(err)
		}
		if !cardsDeleteYes {
			return fail(fmt.Errorf("deletion is permanent; re-run with --yes to confirm"))
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		if err := client.DeleteCard(context.Background(), id); err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"id": id, "deleted": true}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Printf("Deleted card %d\n", id)
		return nil
	},
}

func reportCard(card *model.Card, verb string) error {
	if jsonOutput {
		if err := output.WriteJSON(os.Stdout, card); err != nil {
			return fail(err)
		}
		return nil
	}
	fmt.Printf("%s card %s (%d)\n", verb, card.Name, card.ID)
	return nil
}

// parseID parses a positive integer id argument.
func parseID(s, entity string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s id must be a positive integer, got %q: %w", entity, s, hierarchy.ErrValidation)
	}
	return id, nil
}

// readDefinition loads a JSON entity definition from a file, unwrapping the
// export envelope if the file came from `get --export`.
func readDefinition(path, exportType string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not valid JSON: %w", path, hierarchy.ErrValidation)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%s must hold a JSON object: %w", path, hierarchy.ErrValidation)
	}
	if _, ok := envelope["export_version"]; ok {
		inner, ok := envelope[exportType]
		if !ok {
			return nil, fmt.Errorf("%s is an export file but holds no %q entry: %w", path, exportType, hierarchy.ErrValidation)
		}
		return inner, nil
	}
	return data, nil
}

func init() {
	cardsListCmd.Flags().StringVar(&cardsFilter, "filter", "", "listing filter: all, mine, bookmarked, archived")
	cardsListCmd.Flags().IntVar(&cardsCollectionID, "collection-id", 0, "limit to one collection")
	cardsListCmd.Flags().IntVar(&cardsDatabaseID, "database-id", 0, "limit to one database")

	cardsGetCmd.Flags().BoolVar(&cardsGetExport, "export", false, "write the definition to an export file")

	cardsRunCmd.Flags().IntVar(&cardsRunLimit, "limit", 0, "maximum rows to return")
	cardsRunCmd.Flags().StringVar(&cardsRunParams, "parameters", "", "query parameters as a JSON array")
	cardsRunCmd.Flags().BoolVar(&cardsRunExport, "export", false, "write results to JSON and CSV export files")

	cardsCreateCmd.Flags().StringVar(&cardsCreateFile, "file", "", "JSON definition file")
	cardsCreateCmd.MarkFlagRequired("file")
	cardsUpdateCmd.Flags().StringVar(&cardsUpdateFile, "file", "", "JSON definition file")
	cardsUpdateCmd.MarkFlagRequired("file")

	cardsDeleteCmd.Flags().BoolVar(&cardsDeleteYes, "yes", false, "skip the confirmation guard")

	cardsCmd.AddCommand(
		cardsListCmd,
		cardsGetCmd,
		cardsRunCmd,
		cardsCreateCmd,
		cardsUpdateCmd,
		cardsArchiveCmd,
		cardsDeleteCmd,
	)
	rootCmd.AddCommand(cardsCmd)
}
