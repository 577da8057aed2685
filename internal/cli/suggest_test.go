package cli

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	names := []string{"Sales", "Salts", "Marketing", "Analytics"}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"near miss ranked by distance", "sale", []string{"Sales", "Salts"}},
		{"exact match excluded", "Sales", []string{"Salts"}},
		{"nothing close", "zzzzz", nil},
		{"empty query", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggest(tt.query, names)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("suggest(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSuggestLimit(t *testing.T) {
	names := []string{"opsa", "opsb", "opsc", "opsd", "opse"}
	got := suggest("ops", names)
	if len(got) != suggestLimit {
		t.Fatalf("got %d suggestions, want %d", len(got), suggestLimit)
	}
	// Equal distance breaks ties alphabetically.
	want := []string{"opsa", "opsb", "opsc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("suggest = %v, want %v", got, want)
	}
}
