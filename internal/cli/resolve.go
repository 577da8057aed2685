package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/mbx/internal/hierarchy"
	"github.com/scbrown/mbx/internal/model"
	"github.com/scbrown/mbx/internal/output"
)

// entityRef is the outcome of parsing a Metabase URL: the entity's API type,
// its numeric id, and for database-schema URLs the schema name.
type entityRef struct {
	Type   string
	ID     int
	Schema string
}

// idPattern matches a bare numeric id or an id-slug part like "456-q3-sales".
var idPattern = regexp.MustCompile(`^(\d+)(?:-.*)?$`)

// parseEntityURL maps a Metabase web URL (or bare path) onto the entity it
// points at. Recognized patterns:
//
//	/question/123            /question/123-revenue-by-month
//	/dashboard/456           /dashboard/456-kpis
//	/collection/789
//	/browse/databases/1
//	/browse/1                /browse/1/schema/public
func parseEntityURL(raw string) (entityRef, error) {
	path := raw
	if !strings.HasPrefix(raw, "/") {
		u, err := url.Parse(raw)
		if err != nil {
			return entityRef{}, fmt.Errorf("cannot parse URL %q: %w", raw, hierarchy.ErrValidation)
		}
		path = u.Path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) >= 3 && parts[0] == "browse" && parts[1] == "databases" {
		if id, ok := extractID(parts[2]); ok {
			return entityRef{Type: "database", ID: id}, nil
		}
	}
	if len(parts) >= 4 && parts[0] == "browse" && parts[2] == "schema" {
		if id, ok := extractID(parts[1]); ok {
			return entityRef{Type: "database", ID: id, Schema: parts[3]}, nil
		}
	}
	if len(parts) >= 2 && parts[0] == "browse" {
		if id, ok := extractID(parts[1]); ok {
			return entityRef{Type: "database", ID: id}, nil
		}
	}
	if len(parts) >= 2 {
		var kind string
		switch parts[0] {
		case "question":
			kind = "card"
		case "dashboard":
			kind = "dashboard"
		case "collection":
			kind = "collection"
		}
		if kind != "" {
			if id, ok := extractID(parts[1]); ok {
				return entityRef{Type: kind, ID: id}, nil
			}
		}
	}
	return entityRef{}, fmt.Errorf("cannot resolve URL %q: %w\nsupported patterns:\n  /question/<id>\n  /dashboard/<id>\n  /collection/<id>\n  /browse/databases/<id>\n  /browse/<id>/schema/<schema>",
		raw, hierarchy.ErrValidation)
}

func extractID(part string) (int, bool) {
	m := idPattern.FindStringSubmatch(part)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// resolvedEntity is the JSON shape of a resolve invocation.
type resolvedEntity struct {
	URL        string `json:"url"`
	EntityType string `json:"entity_type"`
	EntityID   int    `json:"entity_id"`
	Entity     any    `json:"entity"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a Metabase URL to the entity it points at",
	Long: `Resolve parses a Metabase web URL (or a bare path), figures out which
entity it refers to, fetches it, and shows the details. Slugged ids like
456-my-dashboard resolve to 456.`,
	Example: `  mbx resolve https://mb.example.com/question/123
  mbx resolve /dashboard/456-weekly-kpis
  mbx resolve /browse/databases/1
  mbx resolve /browse/1/schema/public`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseEntityURL(args[0])
		if err != nil {
			return fail(err)
		}
		client, err := newClient()
		if err != nil {
			return fail(err)
		}

		ctx := context.Background()
		var entity any
		switch ref.Type {
		case "card":
			entity, err = client.GetCard(ctx, ref.ID)
		case "dashboard":
			entity, _, err = client.GetDashboard(ctx, ref.ID)
		case "collection":
			entity, err = client.GetCollection(ctx, strconv.Itoa(ref.ID))
		case "database":
			entity, err = client.GetDatabase(ctx, ref.ID, false, false)
		}
		if err != nil {
			return fail(err)
		}

		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, resolvedEntity{
				URL:        args[0],
				EntityType: ref.Type,
				EntityID:   ref.ID,
				Entity:     entity,
			}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeResolvedText(os.Stdout, args[0], ref, entity)
		return nil
	},
}

func writeResolvedText(w io.Writer, rawURL string, ref entityRef, entity any) {
	fmt.Fprintf(w, "URL: %s\n", rawURL)
	fmt.Fprintf(w, "Entity type: %s\n", ref.Type)
	fmt.Fprintf(w, "Entity ID: %d\n\n", ref.ID)
	switch e := entity.(type) {
	case *model.Card:
		writeCardText(w, e)
	case *model.Dashboard:
		writeDashboardText(w, e)
	case *model.Collection:
		writeCollectionText(w, e)
	case *model.Database:
		writeDatabaseText(w, e)
		if ref.Schema != "" {
			fmt.Fprintf(w, "  Schema: %s\n", ref.Schema)
		}
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
