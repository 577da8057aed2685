package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/scbrown/mbx/internal/api"
	"github.com/scbrown/mbx/internal/hierarchy"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("card: %w", api.ErrNotFound), "NOT_FOUND"},
		{"unauthorized", fmt.Errorf("session: %w", api.ErrUnauthorized), "AUTH_ERROR"},
		{"validation", fmt.Errorf("bad id: %w", hierarchy.ErrValidation), "VALIDATION_ERROR"},
		{"integrity", fmt.Errorf("cycle: %w", hierarchy.ErrIntegrity), "INTEGRITY_ERROR"},
		{"api error", &api.APIError{StatusCode: 500, Message: "boom"}, "API_ERROR"},
		{"plain", errors.New("something else"), "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorCode(tt.err); got != tt.want {
				t.Errorf("errorCode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFailPassthrough(t *testing.T) {
	orig := jsonOutput
	defer func() { jsonOutput = orig }()
	jsonOutput = false

	err := errors.New("plain failure")
	if got := fail(err); got != err {
		t.Errorf("fail without --json should return the error unchanged, got %v", got)
	}
}

func TestFailJSONEnvelope(t *testing.T) {
	orig := jsonOutput
	defer func() { jsonOutput = orig }()
	jsonOutput = true

	var got error
	out := captureStdout(t, func() {
		got = fail(&api.APIError{StatusCode: 404, Message: "card not found"})
	})

	if !errors.Is(got, errReported) {
		t.Fatalf("fail with --json should return errReported, got %v", got)
	}

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				StatusCode int `json:"status_code"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v\n%s", err, out)
	}
	if envelope.Success {
		t.Error("success = true, want false")
	}
	if envelope.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", envelope.Error.Code)
	}
	if !strings.Contains(envelope.Error.Message, "card not found") {
		t.Errorf("message = %q", envelope.Error.Message)
	}
	if envelope.Error.Details.StatusCode != 404 {
		t.Errorf("details.status_code = %d, want 404", envelope.Error.Details.StatusCode)
	}
}
