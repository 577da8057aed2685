package cli

import (
	"errors"
	"os"

	"github.com/scbrown/mbx/internal/api"
	"github.com/scbrown/mbx/internal/hierarchy"
	"github.com/scbrown/mbx/internal/output"
)

// errReported marks errors already written to stdout as a JSON envelope, so
// Execute does not print them a second time.
var errReported = errors.New("error already reported")

// errorCode maps an error onto the stable machine-readable codes the JSON
// envelope uses.
func errorCode(err error) string {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, api.ErrUnauthorized):
		return "AUTH_ERROR"
	case errors.Is(err, hierarchy.ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, hierarchy.ErrIntegrity):
		return "INTEGRITY_ERROR"
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return "API_ERROR"
	}
	return "ERROR"
}

// fail reports err in the active output mode: as a JSON error envelope when
// --json is set (returning errReported so it is not printed twice), else
// as-is for Execute to print to stderr.
func fail(err error) error {
	if !jsonOutput {
		return err
	}
	var details any
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		details = map[string]int{"status_code": apiErr.StatusCode}
	}
	if werr := output.WriteErrorJSON(os.Stdout, errorCode(err), err.Error(), details); werr != nil {
		return werr
	}
	return errReported
}
