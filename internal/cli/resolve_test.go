package cli

import (
	"errors"
	"testing"

	"github.com/scbrown/mbx/internal/hierarchy"
)

func TestParseEntityURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want entityRef
		err  bool
	}{
		{"question path", "/question/123", entityRef{Type: "card", ID: 123}, false},
		{"question with slug", "/question/123-revenue-by-month", entityRef{Type: "card", ID: 123}, false},
		{"full url", "https://mb.example.com/question/123", entityRef{Type: "card", ID: 123}, false},
		{"dashboard with slug", "https://mb.example.com/dashboard/456-weekly-kpis", entityRef{Type: "dashboard", ID: 456}, false},
		{"collection", "/collection/789", entityRef{Type: "collection", ID: 789}, false},
		{"browse databases", "/browse/databases/1", entityRef{Type: "database", ID: 1}, false},
		{"browse bare id", "/browse/1", entityRef{Type: "database", ID: 1}, false},
		{"browse schema", "/browse/1/schema/public", entityRef{Type: "database", ID: 1, Schema: "public"}, false},
		{"browse schema slugged", "/browse/2-warehouse/schema/sales", entityRef{Type: "database", ID: 2, Schema: "sales"}, false},
		{"trailing segments ignored", "/question/123/notebook", entityRef{Type: "card", ID: 123}, false},
		{"unknown prefix", "/pulse/12", entityRef{}, true},
		{"no id", "/question/new", entityRef{}, true},
		{"slug without id", "/dashboard/my-dashboard", entityRef{}, true},
		{"bare path", "/", entityRef{}, true},
		{"empty", "", entityRef{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEntityURL(tt.url)
			if (err != nil) != tt.err {
				t.Fatalf("parseEntityURL(%q) error = %v, wantErr %v", tt.url, err, tt.err)
			}
			if tt.err {
				if !errors.Is(err, hierarchy.ErrValidation) {
					t.Errorf("error should wrap ErrValidation, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("parseEntityURL(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"123", 123, true},
		{"456-my-dashboard", 456, true},
		{"1-", 1, true},
		{"abc", 0, false},
		{"-12", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := extractID(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("extractID(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
