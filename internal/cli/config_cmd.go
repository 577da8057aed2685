package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/mbx/internal/config"
	"github.com/scbrown/mbx/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the config file",
	Long: `Config reads and writes the profile settings stored in the config file.
Values set through environment variables are visible to get/list but are not
written back to disk.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one config value",
	Example: `  mbx config get url
  mbx config get auth_method -p staging`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := config.Load(configPath, profileName)
		if err != nil {
			return fail(err)
		}
		val, err := p.Get(args[0])
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]string{"key": args[0], "value": redactValue(args[0], val)}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Println(redactValue(args[0], val))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value",
	Example: `  mbx config set url https://mb.example.com
  mbx config set api_key mb_abc123 -p staging`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.LoadFile(configPath)
		if err != nil {
			return fail(err)
		}
		p := f[profileName]
		if err := p.Set(args[0], args[1]); err != nil {
			return fail(err)
		}
		if err := config.Save(configPath, profileName, &p); err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]string{"key": args[0], "value": redactValue(args[0], args[1])}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Printf("Set %s for profile %q\n", args[0], profileName)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show the active profile's settings",
	Example: `  mbx config list`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := config.Load(configPath, profileName)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			vals := map[string]string{}
			for _, k := range config.ValidKeys() {
				v, _ := p.Get(k)
				vals[k] = redactValue(k, v)
			}
			if err := output.WriteJSON(os.Stdout, map[string]any{"profile": profileName, "settings": vals}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeConfigList(os.Stdout, profileName, p)
		return nil
	},
}

func writeConfigList(w io.Writer, profile string, p *config.Profile) {
	fmt.Fprintf(w, "Profile: %s\n", profile)
	keys := config.ValidKeys()
	sort.Strings(keys)
	t := newTable(w, "KEY", "VALUE")
	for _, k := range keys {
		v, _ := p.Get(k)
		t.row(k, redactValue(k, v))
	}
	t.flush()
}

// redactValue masks secrets so config output is safe to paste into a ticket.
func redactValue(key, val string) string {
	if val == "" {
		return ""
	}
	switch key {
	case "password":
		return "********"
	case "api_key", "session_id":
		if len(val) <= 8 {
			return "****"
		}
		return val[:4] + strings.Repeat("*", 4) + val[len(val)-4:]
	}
	return val
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]string{"path": configPath}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Println(configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
