package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/scbrown/mbx/internal/model"
)

func TestWriteSearchResultsGrouping(t *testing.T) {
	resp := &model.SearchResponse{
		Data: []model.SearchResult{
			{ID: 123, Model: "card", Name: "Revenue by Month", Collection: &model.Collection{Name: "Sales"}},
			{ID: 456, Model: "dashboard", Name: "Revenue KPIs"},
			{ID: 42, Model: "collection", Name: "Revenue Archive"},
			{ID: 124, Model: "card", Name: "Revenue by Region"},
		},
		Total: 4,
	}

	var buf bytes.Buffer
	writeSearchResults(&buf, "revenue", resp)
	out := buf.String()

	if !strings.Contains(out, `4 result(s) for "revenue"`) {
		t.Errorf("missing result count:\n%s", out)
	}
	// Groups render collections first, then dashboards, then cards.
	ci := strings.Index(out, "COLLECTION:")
	di := strings.Index(out, "DASHBOARD:")
	cai := strings.Index(out, "CARD:")
	if ci == -1 || di == -1 || cai == -1 {
		t.Fatalf("missing group headers:\n%s", out)
	}
	if !(ci < di && di < cai) {
		t.Errorf("group order wrong (collection=%d dashboard=%d card=%d):\n%s", ci, di, cai, out)
	}
	if !strings.Contains(out, "Revenue by Region") {
		t.Errorf("missing card row:\n%s", out)
	}
}

func TestWriteSearchResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeSearchResults(&buf, "nothing", &model.SearchResponse{})
	if !strings.Contains(buf.String(), `No results for "nothing"`) {
		t.Errorf("want no-results message, got:\n%s", buf.String())
	}
}

func TestModelRank(t *testing.T) {
	if !(modelRank("collection") < modelRank("dashboard") &&
		modelRank("dashboard") < modelRank("card") &&
		modelRank("card") < modelRank("table")) {
		t.Error("model rank ordering broken")
	}
}
