package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version and Commit are set at build time via -ldflags.
//
//	go build -ldflags "-X github.com/scbrown/mbx/internal/cli.Version=v0.3.0
//	  -X github.com/scbrown/mbx/internal/cli.Commit=9f2ab41"
var (
	Version = ""
	Commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and commit hash",
	Long: `Print the mbx version string.

When built from a tagged release, shows the release version.
Otherwise shows "dev". The git commit hash is always included.

Examples:
  mbx v0.3.0 (9f2ab41)
  mbx dev (9f2ab41)`,
	Run: func(cmd *cobra.Command, args []string) {
		v := Version
		if v == "" {
			v = "dev"
		}

		c := Commit
		if c == "" {
			c = commitFromBuildInfo()
		}

		if c != "" {
			fmt.Printf("mbx %s (%s)\n", v, shortCommit(c))
		} else {
			fmt.Printf("mbx %s\n", v)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// commitFromBuildInfo extracts vcs.revision from Go's embedded build info.
func commitFromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// shortCommit returns the first 7 characters of a commit hash.
func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
