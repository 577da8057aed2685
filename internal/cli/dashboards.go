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

var dashboardsCmd = &cobra.Command{
	Use:   "dashboards",
	Short: "Work with dashboards",
}

var dashboardsCollectionID int

var dashboardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dashboards",
	Example: `  mbx dashboards list
  mbx dashboards list --collection-id 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		var collection *int
		if dashboardsCollectionID > 0 {
			collection = &dashboardsCollectionID
		}
		dashboards, err := client.ListDashboards(context.Background(), collection)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"dashboards": dashboards, "total": len(dashboards)}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeDashboardsTable(os.Stdout, dashboards)
		return nil
	},
}

func writeDashboardsTable(w io.Writer, dashboards []model.SearchResult) {
	if len(dashboards) == 0 {
		fmt.Fprintln(w, "No dashboards found.")
		return
	}
	t := newTable(w, "ID", "NAME", "COLLECTION", "UPDATED")
	for _, d := range dashboards {
		t.row(
			strconv.Itoa(d.ID),
			truncate(d.Name, 40),
			model.CollectionPath(d.Collection),
			relativeTime(d.UpdatedAt),
		)
	}
	t.flush()
}

var dashboardsGetExport bool

var dashboardsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a dashboard with its cards and parameters",
	Example: `  mbx dashboards get 456
  mbx dashboards get 456 --export`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "dashboard")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		dash, raw, err := client.GetDashboard(context.Background(), id)
		if err != nil {
			return fail(err)
		}
		if dashboardsGetExport {
			dir, err := output.NewExportDir()
			if err != nil {
				return fail(err)
			}
			path, err := output.WriteExportFile(dir, fmt.Sprintf("dashboard-%d.json", dash.ID), raw, "dashboard",
				map[string]any{"url": client.BaseURL(), "id": dash.ID})
			if err != nil {
				return fail(err)
			}
			fmt.Printf("Exported dashboard %d to %s\n", dash.ID, path)
			return nil
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, raw); err != nil {
				return fail(err)
			}
			return nil
		}
		writeDashboardText(os.Stdout, dash)
		return nil
	},
}

func writeDashboardText(w io.Writer, dash *model.Dashboard) {
	fmt.Fprintf(w, "Dashboard: %s\n", dash.Name)
	fmt.Fprintf(w, "  ID: %d\n", dash.ID)
	if dash.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", dash.Description)
	}
	fmt.Fprintf(w, "  Collection: %s\n", model.CollectionPath(dash.Collection))
	fmt.Fprintf(w, "  Cards: %d\n", dash.DashcardCount())
	if len(dash.Parameters) > 0 {
		fmt.Fprintf(w, "  Parameters:\n")
		for _, p := range dash.Parameters {
			fmt.Fprintf(w, "    %s (%s)\n", p.Name, p.Type)
		}
	}
	if dash.Archived {
		fmt.Fprintln(w, "  Archived: yes")
	}
}

var dashboardsCreateFile string

var dashboardsCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a dashboard from a JSON definition file",
	Example: `  mbx dashboards create --file dashboard.json`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := readDefinition(dashboardsCreateFile, "dashboard")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		dash, err := client.CreateDashboard(context.Background(), def)
		if err != nil {
			return fail(err)
		}
		return reportDashboard(dash, "Created")
	},
}

var dashboardsUpdateFile string

var dashboardsUpdateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a dashboard from a JSON definition file",
	Example: `  mbx dashboards update 456 --file dashboard.json`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "dashboard")
		if err != nil {
			return fail(err)
		}
		def, err := readDefinition(dashboardsUpdateFile, "dashboard")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		dash, err := client.UpdateDashboard(context.Background(), id, def)
		if err != nil {
			return fail(err)
		}
		return reportDashboard(dash, "Updated")
	},
}

var dashboardsArchiveCmd = &cobra.Command{
	Use:     "archive <id>",
	Short:   "Archive a dashboard",
	Example: `  mbx dashboards archive 456`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "dashboard")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		dash, err := client.ArchiveDashboard(context.Background(), id)
		if err != nil {
			return fail(err)
		}
		return reportDashboard(dash, "Archived")
	},
}

var dashboardsDeleteYes bool

var dashboardsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Permanently delete a dashboard",
	Example: `  mbx dashboards delete 456 --yes`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "dashboard")
		if err != nil {
			return fail(err)
		}
		if !dashboardsDeleteYes {
			return fail(fmt.Errorf("deletion is permanent; re-run with --yes to confirm"))
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		if err := client.DeleteDashboard(context.Background(), id); err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"id": id, "deleted": true}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Printf("Deleted dashboard %d\n", id)
		return nil
	},
}

var dashboardsRevisionsCmd = &cobra.Command{
	Use:     "revisions <id>",
	Short:   "List a dashboard's revision history",
	Example: `  mbx dashboards revisions 456`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "dashboard")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		revs, err := client.DashboardRevisions(context.Background(), id)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{"revisions": revs, "total": len(revs)}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeRevisionsTable(os.Stdout, revs)
		return nil
	},
}

func writeRevisionsTable(w io.Writer, revs []model.Revision) {
	if len(revs) == 0 {
		fmt.Fprintln(w, "No revisions found.")
		return
	}
	t := newTable(w, "ID", "WHEN", "BY", "DESCRIPTION")
	for _, r := range revs {
		t.row(
			strconv.Itoa(r.ID),
			relativeTime(r.Timestamp),
			r.User.CommonName,
			truncate(r.Description, 50),
		)
	}
	t.flush()
}

var dashboardsRevertRevision int

var dashboardsRevertCmd = &cobra.Command{
	Use:     "revert <id>",
	Short:   "Restore a dashboard to a previous revision",
	Example: `  mbx dashboards revert 456 --revision 12`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "dashboard")
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		dash, err := client.RevertDashboard(context.Background(), id, dashboardsRevertRevision)
		if err != nil {
			return fail(err)
		}
		return reportDashboard(dash, "Reverted")
	},
}

func reportDashboard(dash *model.Dashboard, verb string) error {
	if jsonOutput {
		if err := output.WriteJSON(os.Stdout, dash); err != nil {
			return fail(err)
		}
		return nil
	}
	fmt.Printf("%s dashboard %s (%d)\n", verb, dash.Name, dash.ID)
	return nil
}

func init() {
	dashboardsListCmd.Flags().IntVar(&dashboardsCollectionID, "collection-id", 0, "limit to one collection")

	dashboardsGetCmd.Flags().BoolVar(&dashboardsGetExport, "export", false, "write the definition to an export file")

	dashboardsCreateCmd.Flags().StringVar(&dashboardsCreateFile, "file", "", "JSON definition file")
	dashboardsCreateCmd.MarkFlagRequired("file")
	dashboardsUpdateCmd.Flags().StringVar(&dashboardsUpdateFile, "file", "", "JSON definition file")
	dashboardsUpdateCmd.MarkFlagRequired("file")

	dashboardsDeleteCmd.Flags().BoolVar(&dashboardsDeleteYes, "yes", false, "skip the confirmation guard")

	dashboardsRevertCmd.Flags().IntVar(&dashboardsRevertRevision, "revision", 0, "revision id to restore")
	dashboardsRevertCmd.MarkFlagRequired("revision")

	dashboardsCmd.AddCommand(
		dashboardsListCmd,
		dashboardsGetCmd,
		dashboardsCreateCmd,
		dashboardsUpdateCmd,
		dashboardsArchiveCmd,
		dashboardsDeleteCmd,
		dashboardsRevisionsCmd,
		dashboardsRevertCmd,
	)
	rootCmd.AddCommand(dashboardsCmd)
}
