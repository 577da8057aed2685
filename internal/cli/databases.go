package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scbrown/mbx/internal/model"
	"github.com/scbrown/mbx/internal/output"
)

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "Inspect configured databases",
}

var databasesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List databases",
	Example: `  mbx databases list`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		dbs, err := client.ListDatabases(context.Background(), false)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"databases": dbs, "total": len(dbs)}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeDatabasesTable(os.Stdout, dbs)
		return nil
	},
}

func writeDatabasesTable(w io.Writer, dbs []model.Database) {
	if len(dbs) == 0 {
		fmt.Fprintln(w, "No databases found.")
		return
	}
	t := newTable(w, "ID", "NAME", "ENGINE", "SAMPLE")
	for _, db := range dbs {
		sample := ""
		if db.IsSample {
			sample = "yes"
		}
		t.row(strconv.Itoa(db.ID), db.Name, db.Engine, sample)
	}
	t.flush()
}

var (
	databasesGetTables   bool
	databasesGetMetadata bool
)

var databasesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get database details",
	Long: `Get fetches one database. --tables adds the table listing; --metadata
fetches the full table and field metadata instead.`,
	Example: `  mbx databases get 1
  mbx databases get 1 --tables
  mbx databases get 1 --metadata --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "database")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		var db *model.Database
		if databasesGetMetadata {
			db, err = client.DatabaseMetadata(context.Background(), id, false)
		} else {
			db, err = client.GetDatabase(context.Background(), id, databasesGetTables, false)
		}
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, db); err != nil {
				return fail(err)
			}
			return nil
		}
		writeDatabaseText(os.Stdout, db)
		return nil
	},
}

func writeDatabaseText(w io.Writer, db *model.Database) {
	fmt.Fprintf(w, "Database: %s\n", db.Name)
	fmt.Fprintf(w, "  ID: %d\n", db.ID)
	fmt.Fprintf(w, "  Engine: %s\n", db.Engine)
	if db.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", db.Description)
	}
	if db.IsSample {
		fmt.Fprintln(w, "  Sample database: yes")
	}
	if len(db.Tables) > 0 {
		fmt.Fprintf(w, "  Tables (%d):\n", len(db.Tables))
		for _, tbl := range db.Tables {
			if tbl.Schema != "" {
				fmt.Fprintf(w, "    %s.%s\n", tbl.Schema, tbl.Name)
			} else {
				fmt.Fprintf(w, "    %s\n", tbl.Name)
			}
		}
	}
}

var databasesSchemasCmd = &cobra.Command{
	Use:     "schemas <id>",
	Short:   "List the schemas of a database",
	Example: `  mbx databases schemas 1`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "database")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		schemas, err := client.DatabaseSchemas(context.Background(), id)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"schemas": schemas, "total": len(schemas)}); err != nil {
				return fail(err)
			}
			return nil
		}
		for _, s := range schemas {
			fmt.Println(s)
		}
		return nil
	},
}

var databasesSyncCmd = &cobra.Command{
	Use:     "sync <id>",
	Short:   "Trigger a schema sync",
	Example: `  mbx databases sync 1`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "database")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		if err := client.SyncDatabaseSchema(context.Background(), id); err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"id": id, "sync": "started"}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Printf("Schema sync started for database %d\n", id)
		return nil
	},
}

func init() {
	databasesGetCmd.Flags().BoolVar(&databasesGetTables, "tables", false, "include the table listing")
	databasesGetCmd.Flags().BoolVar(&databasesGetMetadata, "metadata", false, "fetch full table and field metadata")

	databasesCmd.AddCommand(
		databasesListCmd,
		databasesGetCmd,
		databasesSchemasCmd,
		databasesSyncCmd,
	)
	rootCmd.AddCommand(databasesCmd)
}
