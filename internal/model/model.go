// Package model defines the Metabase API entity types mbx works with:
// collections, cards (saved questions), dashboards, databases, and search
// results. Payload fields not named here are carried through json.RawMessage
// where a command needs to re-emit the full server response.
package model

import "github.com/goccy/go-json"

// Collection is a folder for organizing cards and dashboards. ParentID is nil
// for collections directly under the root collection.
type Collection struct {
	ID              json.RawMessage `json:"id"` // numeric, or the literal "root"
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	ParentID        *int            `json:"parent_id,omitempty"`
	Location        string          `json:"location,omitempty"`
	Archived        bool            `json:"archived,omitempty"`
	PersonalOwnerID *int            `json:"personal_owner_id,omitempty"`
	EffectiveAncestors []Collection `json:"effective_ancestors,omitempty"`
	Children        []Collection    `json:"children,omitempty"`
}

// NumericID returns the collection id as an int, or ok=false for the "root"
// pseudo-collection.
func (c Collection) NumericID() (int, bool) {
	var id int
	if err := json.Unmarshal(c.ID, &id); err != nil {
		return 0, false
	}
	return id, true
}

// CollectionItem is one entry of a collection's contents listing.
type CollectionItem struct {
	ID           json.RawMessage `json:"id"`
	Name         string          `json:"name"`
	Model        string          `json:"model"` // card, dashboard, collection, dataset, pulse
	Description  string          `json:"description,omitempty"`
	Archived     bool            `json:"archived,omitempty"`
	LastEditedAt string          `json:"last_edit_timestamp,omitempty"`
}

// Card is a saved question.
type Card struct {
	ID                    int             `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description,omitempty"`
	CollectionID          *int            `json:"collection_id,omitempty"`
	Collection            *Collection     `json:"collection,omitempty"`
	DatabaseID            int             `json:"database_id,omitempty"`
	Display               string          `json:"display,omitempty"`
	DatasetQuery          json.RawMessage `json:"dataset_query,omitempty"`
	VisualizationSettings json.RawMessage `json:"visualization_settings,omitempty"`
	Archived              bool            `json:"archived,omitempty"`
	CreatedAt             string          `json:"created_at,omitempty"`
	UpdatedAt             string          `json:"updated_at,omitempty"`
}

// QueryType returns the card's query type ("native" or "query") from its
// dataset query, or "" when absent.
func (c Card) QueryType() string {
	var q struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(c.DatasetQuery, &q); err != nil {
		return ""
	}
	return q.Type
}

// QueryColumn describes one column of a query result.
type QueryColumn struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	BaseType    string `json:"base_type,omitempty"`
}

// QueryResult is the response of executing a card's query.
type QueryResult struct {
	Data struct {
		Rows [][]json.RawMessage `json:"rows"`
		Cols []QueryColumn       `json:"cols"`
	} `json:"data"`
	Status string `json:"status,omitempty"`
}

// Dashboard groups cards on a shared canvas.
type Dashboard struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CollectionID *int            `json:"collection_id,omitempty"`
	Collection   *Collection     `json:"collection,omitempty"`
	Parameters   []Parameter     `json:"parameters,omitempty"`
	Dashcards    json.RawMessage `json:"dashcards,omitempty"`
	Archived     bool            `json:"archived,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
}

// DashcardCount returns the number of cards placed on the dashboard.
func (d Dashboard) DashcardCount() int {
	var cards []json.RawMessage
	if err := json.Unmarshal(d.Dashcards, &cards); err != nil {
		return 0
	}
	return len(cards)
}

// Parameter is a dashboard filter parameter.
type Parameter struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
	Type string `json:"type,omitempty"`
}

// RevisionUser identifies the author of a revision.
type RevisionUser struct {
	CommonName string `json:"common_name,omitempty"`
}

// Revision is one entry of a dashboard's revision history.
type Revision struct {
	ID          int          `json:"id"`
	Description string       `json:"description,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	User        RevisionUser `json:"user,omitempty"`
}

// Database is a configured database connection.
type Database struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Engine      string  `json:"engine,omitempty"`
	Description string  `json:"description,omitempty"`
	IsSample    bool    `json:"is_sample,omitempty"`
	Tables      []Table `json:"tables,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// Table is one table of a database's metadata.
type Table struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Schema      string `json:"schema,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchResult is one hit of the global search endpoint.
type SearchResult struct {
	ID          int         `json:"id"`
	Model       string      `json:"model"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Collection  *Collection `json:"collection,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

// SearchResponse is the paged envelope the search endpoint returns.
type SearchResponse struct {
	Data  []SearchResult `json:"data"`
	Total int            `json:"total"`
}

// User is the currently authenticated user.
type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// SessionProperties is the subset of /session/properties that auth status
// reports.
type SessionProperties struct {
	Version struct {
		Tag string `json:"tag,omitempty"`
	} `json:"version,omitempty"`
	SiteName string `json:"site-name,omitempty"`
}

// CollectionPath renders the human-readable location of an entity from its
// collection's effective ancestors, e.g. "Analytics / Sales Reports".
func CollectionPath(c *Collection) string {
	if c == nil {
		return "Root"
	}
	parts := make([]string, 0, len(c.EffectiveAncestors)+1)
	for _, a := range c.EffectiveAncestors {
		if a.Name != "" {
			parts = append(parts, a.Name)
		}
	}
	if c.Name != "" {
		parts = append(parts, c.Name)
	}
	if len(parts) == 0 {
		return "Root"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " / " + p
	}
	return out
}
