// Package cli defines the cobra command tree for the mbx CLI.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/scbrown/mbx/internal/api"
	"github.com/scbrown/mbx/internal/config"
)

var (
	jsonOutput  bool
	profileName string
	verbose     bool
)

// configPath is the path to the config file, settable for testing.
var configPath = config.Path()

// logger emits one debug event per API request when --verbose is set.
var logger = zerolog.Nop()

// rootCmd is the top-level mbx command.
var rootCmd = &cobra.Command{
	Use:   "mbx",
	Short: "mbx - work with a Metabase instance from the command line",
	Long: `mbx talks to a Metabase instance over its REST API: browse databases,
collections, cards (saved questions), and dashboards, run global search, and
resolve Metabase URLs to the entities they point at.

Connection settings live in ~/.config/mbx/config.toml (one profile per
instance, selectable with --profile) and can be overridden with the
METABASE_URL, METABASE_API_KEY, METABASE_SESSION_ID, METABASE_USERNAME, and
METABASE_PASSWORD environment variables. All output commands support --json
for machine-readable output.`,
	Example: `  # Store credentials for an instance
  mbx auth login --url https://mb.example.com --api-key mb_abc123

  # Explore the collection hierarchy
  mbx collections tree
  mbx collections tree --search sales --levels 2

  # Find things and inspect them
  mbx search revenue --models card,dashboard
  mbx resolve https://mb.example.com/question/123
  mbx cards get 123 --json`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger().Level(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "default", "config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API requests to stderr")
}

// newClient builds an API client from the active profile. It fails when
// neither the config file nor the environment carries usable credentials.
func newClient() (*api.Client, error) {
	p, usable, err := config.Load(configPath, profileName)
	if err != nil {
		return nil, err
	}
	if !usable {
		return nil, fmt.Errorf("not authenticated: run 'mbx auth login' or set %s and %s",
			config.EnvURL, config.EnvAPIKey)
	}
	return api.New(p, api.Options{
		Logger:      logger,
		ConfigPath:  configPath,
		ProfileName: profileName,
	}), nil
}

// Execute runs the root command and returns the process exit code. Errors
// already emitted as JSON envelopes are not printed again.
func Execute() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
