package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// NewExportDir creates a timestamped directory for export files, e.g.
// $TMPDIR/mbx-20260831-154500/.
func NewExportDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "mbx-"+now().Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	return dir, nil
}

// WriteJSONFile writes data as indented JSON to dir/filename and returns the
// full path.
func WriteJSONFile(dir, filename string, data any) (string, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", filename, err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return path, nil
}

// WriteExportFile writes data under the versioned export envelope, keyed by
// exportType ("card", "dashboard", ...), and returns the full path.
func WriteExportFile(dir, filename string, data any, exportType string, source map[string]any) (string, error) {
	if source == nil {
		source = map[string]any{}
	}
	envelope := map[string]any{
		"export_version":   ExportVersion,
		"export_timestamp": now().UTC().Format("2006-01-02T15:04:05Z"),
		"type":             exportType,
		"source":           source,
		exportType:         data,
	}
	return WriteJSONFile(dir, filename, envelope)
}

// WriteCSVFile writes headers and rows to dir/filename and returns the full
// path.
func WriteCSVFile(dir, filename string, headers []string, rows [][]string) (string, error) {
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return path, nil
}
