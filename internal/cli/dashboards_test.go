package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/scbrown/mbx/internal/model"
)

func TestWriteDashboardsTable(t *testing.T) {
	dashboards := []model.SearchResult{
		{ID: 456, Name: "Weekly KPIs", Collection: &model.Collection{Name: "Ops"}},
		{ID: 457, Name: "Revenue Overview"},
	}

	var buf bytes.Buffer
	writeDashboardsTable(&buf, dashboards)
	out := buf.String()

	for _, want := range []string{"456", "Weekly KPIs", "Ops", "457", "Revenue Overview"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDashboardsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeDashboardsTable(&buf, nil)
	if !strings.Contains(buf.String(), "No dashboards") {
		t.Errorf("want empty message, got:\n%s", buf.String())
	}
}

func TestWriteDashboardText(t *testing.T) {
	dash := &model.Dashboard{
		ID:          456,
		Name:        "Weekly KPIs",
		Description: "Company KPI overview",
		Collection:  &model.Collection{Name: "Ops"},
		Dashcards:   json.RawMessage(`[{"id":1},{"id":2},{"id":3}]`),
		Parameters:  []model.Parameter{{Name: "Date Range", Type: "date/range"}},
	}

	var buf bytes.Buffer
	writeDashboardText(&buf, dash)
	out := buf.String()

	for _, want := range []string{"Weekly KPIs", "456", "Company KPI overview", "Ops", "Cards: 3", "Date Range (date/range)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRevisionsTable(t *testing.T) {
	revs := []model.Revision{
		{ID: 12, Description: "Added revenue card", Timestamp: "2026-01-15T10:00:00Z", User: model.RevisionUser{CommonName: "Ana Torres"}},
	}

	var buf bytes.Buffer
	writeRevisionsTable(&buf, revs)
	out := buf.String()

	for _, want := range []string{"12", "Added revenue card", "Ana Torres"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
