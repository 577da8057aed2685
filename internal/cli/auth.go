package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scbrown/mbx/internal/api"
	"github.com/scbrown/mbx/internal/config"
	"github.com/scbrown/mbx/internal/model"
	"github.com/scbrown/mbx/internal/output"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
}

var (
	loginURL      string
	loginAPIKey   string
	loginUsername string
	loginPassword string
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for a Metabase instance",
	Long: `Login stores connection settings in the config file and verifies them
against the server. With --api-key the key is saved as-is; with --username
the password is prompted for (or taken from --password) and exchanged for a
session id, which is what gets saved.`,
	Example: `  mbx auth login --url https://mb.example.com --api-key mb_abc123
  mbx auth login --url https://mb.example.com --username ana@example.com
  mbx auth login --url https://mb.example.com --username ana@example.com -p staging`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &config.Profile{URL: loginURL}
		switch {
		case loginAPIKey != "":
			p.AuthMethod = config.MethodAPIKey
			p.APIKey = loginAPIKey
		case loginUsername != "":
			p.AuthMethod = config.MethodCredentials
			p.Username = loginUsername
			p.Password = loginPassword
			if p.Password == "" {
				pass, err := promptPassword()
				if err != nil {
					return fail(err)
				}
				p.Password = pass
			}
		default:
			return fail(fmt.Errorf("one of --api-key or --username is required"))
		}
		if err := p.Validate(); err != nil {
			return fail(err)
		}

		client := api.New(p, api.Options{Logger: logger})
		ctx := context.Background()
		if p.AuthMethod == config.MethodCredentials {
			id, err := client.Login(ctx, p.Username, p.Password)
			if err != nil {
				return fail(err)
			}
			p.SessionID = id
		}
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return fail(err)
		}

		if err := config.Save(configPath, profileName, p); err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{
				"profile": profileName,
				"url":     p.URL,
				"method":  p.AuthMethod,
				"user":    user,
			}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Printf("Logged in to %s as %s (profile %q)\n", p.URL, user.Email, profileName)
		return nil
	},
}

// promptPassword reads a password from the terminal without echo.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(pass) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(pass), nil
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the session and remove stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, usable, err := config.Load(configPath, profileName)
		if err != nil {
			return fail(err)
		}
		// Invalidate server-side when a session exists; an already-dead
		// session is fine.
		if usable && p.SessionID != "" {
			client := api.New(p, api.Options{Logger: logger})
			if err := client.Logout(context.Background()); err != nil {
				return fail(err)
			}
		}
		if err := config.Delete(configPath, profileName); err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]string{"profile": profileName, "status": "logged_out"}); err != nil {
				return fail(err)
			}
			return nil
		}
		fmt.Printf("Logged out (profile %q removed)\n", profileName)
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active profile and verify it against the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return fail(err)
		}
		ctx := context.Background()
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return fail(err)
		}
		props, err := client.SessionProperties(ctx)
		if err != nil {
			return fail(err)
		}
		if jsonOutput {
			if err := output.WriteJSON(os.Stdout, map[string]any{
				"profile": profileName,
				"url":     client.BaseURL(),
				"method":  client.AuthMethod(),
				"user":    user,
				"server":  props,
			}); err != nil {
				return fail(err)
			}
			return nil
		}
		writeAuthStatus(os.Stdout, profileName, client.BaseURL(), client.AuthMethod(), user, props)
		return nil
	},
}

func writeAuthStatus(w io.Writer, profile, url, method string, user *model.User, props *model.SessionProperties) {
	fmt.Fprintf(w, "Profile: %s\n", profile)
	fmt.Fprintf(w, "URL: %s\n", url)
	fmt.Fprintf(w, "Auth method: %s\n", method)
	fmt.Fprintf(w, "User: %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	if props.Version.Tag != "" {
		fmt.Fprintf(w, "Server version: %s\n", props.Version.Tag)
	}
	if props.SiteName != "" {
		fmt.Fprintf(w, "Site: %s\n", props.SiteName)
	}
}

func init() {
	authLoginCmd.Flags().StringVar(&loginURL, "url", "", "Metabase base URL")
	authLoginCmd.Flags().StringVar(&loginAPIKey, "api-key", "", "API key")
	authLoginCmd.Flags().StringVar(&loginUsername, "username", "", "username (email)")
	authLoginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted if omitted)")
	authLoginCmd.MarkFlagRequired("url")

	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
