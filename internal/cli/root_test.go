package cli

import (
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	paths := [][]string{
		{"auth", "login"},
		{"auth", "logout"},
		{"auth", "status"},
		{"databases", "list"},
		{"databases", "get"},
		{"databases", "schemas"},
		{"databases", "sync"},
		{"collections", "tree"},
		{"collections", "get"},
		{"collections", "items"},
		{"collections", "create"},
		{"collections", "update"},
		{"collections", "archive"},
		{"cards", "list"},
		{"cards", "get"},
		{"cards", "run"},
		{"cards", "create"},
		{"cards", "update"},
		{"cards", "archive"},
		{"cards", "delete"},
		{"dashboards", "list"},
		{"dashboards", "get"},
		{"dashboards", "create"},
		{"dashboards", "update"},
		{"dashboards", "archive"},
		{"dashboards", "delete"},
		{"dashboards", "revisions"},
		{"dashboards", "revert"},
		{"search"},
		{"resolve"},
		{"config", "get"},
		{"config", "set"},
		{"config", "list"},
		{"config", "path"},
		{"version"},
	}

	for _, path := range paths {
		cmd, _, err := rootCmd.Find(path)
		if err != nil {
			t.Errorf("command %v not found: %v", path, err)
			continue
		}
		if cmd == rootCmd {
			t.Errorf("command %v resolved to root", path)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"json", "profile", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s not registered", name)
		}
	}
}
