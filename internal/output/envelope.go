// Package output owns the machine- and file-facing output formats: the JSON
// response envelope every --json command emits, timestamped export
// directories with JSON/CSV files, and the text tree drawer.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
)

// ExportVersion tags export files so future readers can detect format drift.
const ExportVersion = "1.0"

// Envelope is the standard JSON response wrapper. Data is set on success,
// Error on failure; never both.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta carries response metadata.
type Meta struct {
	Timestamp string `json:"timestamp"`
}

// now is swapped out by tests for stable envelopes.
var now = time.Now

// WriteJSON writes data wrapped in a success envelope.
func WriteJSON(w io.Writer, data any) error {
	return encode(w, Envelope{
		Success: true,
		Data:    data,
		Meta:    &Meta{Timestamp: now().UTC().Format(time.RFC3339)},
	})
}

// WriteErrorJSON writes an error envelope with a stable machine-readable code.
func WriteErrorJSON(w io.Writer, code, message string, details any) error {
	return encode(w, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
