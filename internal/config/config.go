// Package config handles reading and writing the mbx configuration file
// (~/.config/mbx/config.toml). The file holds one TOML table per profile;
// environment variables override whatever the file says.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	toml "github.com/pelletier/go-toml/v2"
)

// Environment variable names. These take precedence over the config file so
// CI jobs and one-off shells never need a file on disk.
const (
	EnvURL       = "METABASE_URL"
	EnvAPIKey    = "METABASE_API_KEY"
	EnvSessionID = "METABASE_SESSION_ID"
	EnvUsername  = "METABASE_USERNAME"
	EnvPassword  = "METABASE_PASSWORD"
)

// Auth methods, in the order they are preferred when more than one credential
// kind is present.
const (
	MethodAPIKey      = "api_key"
	MethodCredentials = "credentials"
	MethodSession     = "session"
)

// Profile is the connection configuration for one Metabase instance.
type Profile struct {
	URL        string `toml:"url" json:"url"`
	AuthMethod string `toml:"auth_method,omitempty" json:"auth_method,omitempty"`
	APIKey     string `toml:"api_key,omitempty" json:"api_key,omitempty"`
	SessionID  string `toml:"session_id,omitempty" json:"session_id,omitempty"`
	Username   string `toml:"username,omitempty" json:"username,omitempty"`
	Password   string `toml:"password,omitempty" json:"password,omitempty"`
}

// File is the full config file: one profile per TOML table.
type File map[string]Profile

// validKeys lists the allowed profile keys for `mbx config get/set`.
var validKeys = map[string]bool{
	"url":         true,
	"auth_method": true,
	"api_key":     true,
	"session_id":  true,
	"username":    true,
	"password":    true,
}

// ValidKeys returns the sorted list of valid configuration keys.
func ValidKeys() []string {
	keys := make([]string, 0, len(validKeys))
	for k := range validKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the default config file path (~/.config/mbx/config.toml).
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mbx", "config.toml")
	}
	return filepath.Join(home, ".config", "mbx", "config.toml")
}

// LoadFile reads the whole config file from path. A missing file yields an
// empty File, not an error.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if f == nil {
		f = File{}
	}
	return f, nil
}

// Load reads one profile from path and applies environment overrides. The
// second return reports whether the resulting profile carries enough
// information to talk to a server (a URL plus some credential).
func Load(path, profile string) (*Profile, bool, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, false, err
	}
	p := f[profile]
	applyEnv(&p)
	p.AuthMethod = resolveMethod(p)
	usable := p.URL != "" && p.AuthMethod != ""
	return &p, usable, nil
}

func applyEnv(p *Profile) {
	if v := os.Getenv(EnvURL); v != "" {
		p.URL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		p.APIKey = v
	}
	if v := os.Getenv(EnvSessionID); v != "" {
		p.SessionID = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		p.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		p.Password = v
	}
}

// resolveMethod picks the auth method from the credentials present: an API
// key wins over username/password, which wins over a bare session id. An
// explicit auth_method in the file is kept when its credentials exist.
func resolveMethod(p Profile) string {
	switch p.AuthMethod {
	case MethodAPIKey:
		if p.APIKey != "" {
			return MethodAPIKey
		}
	case MethodCredentials:
		if p.Username != "" && p.Password != "" {
			return MethodCredentials
		}
	case MethodSession:
		if p.SessionID != "" {
			return MethodSession
		}
	}
	if p.APIKey != "" {
		return MethodAPIKey
	}
	if p.Username != "" && p.Password != "" {
		return MethodCredentials
	}
	if p.SessionID != "" {
		return MethodSession
	}
	return ""
}

// Validate checks that the profile is complete enough to authenticate.
func (p *Profile) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.URL, validation.Required, is.URL),
		validation.Field(&p.AuthMethod,
			validation.Required.Error("no credentials configured"),
			validation.In(MethodAPIKey, MethodCredentials, MethodSession)),
	)
}

// Get returns the string value of a profile key.
func (p *Profile) Get(key string) (string, error) {
	if !validKeys[key] {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "url":
		return p.URL, nil
	case "auth_method":
		return p.AuthMethod, nil
	case "api_key":
		return p.APIKey, nil
	case "session_id":
		return p.SessionID, nil
	case "username":
		return p.Username, nil
	default:
		return p.Password, nil
	}
}

// Set assigns a value to a profile key.
func (p *Profile) Set(key, value string) error {
	if !validKeys[key] {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "url":
		p.URL = strings.TrimRight(value, "/")
	case "auth_method":
		if value != "" && value != MethodAPIKey && value != MethodCredentials && value != MethodSession {
			return fmt.Errorf("auth_method must be %q, %q, or %q, got %q",
				MethodAPIKey, MethodCredentials, MethodSession, value)
		}
		p.AuthMethod = value
	case "api_key":
		p.APIKey = value
	case "session_id":
		p.SessionID = value
	case "username":
		p.Username = value
	case "password":
		p.Password = value
	}
	return nil
}

// Save writes profile into the config file at path, preserving any other
// profiles already there. Parent directories are created as needed and the
// file is written 0600 since it holds credentials.
func Save(path, profile string, p *Profile) error {
	f, err := LoadFile(path)
	if err != nil {
		return err
	}
	f[profile] = *p
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Delete removes a profile from the config file. Removing a profile that is
// not there is a no-op.
func Delete(path, profile string) error {
	f, err := LoadFile(path)
	if err != nil {
		return err
	}
	if _, ok := f[profile]; !ok {
		return nil
	}
	delete(f, profile)
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// UpdateSessionID rewrites just the session id of a stored profile. Used when
// a credentials login transparently refreshes an expired session.
func UpdateSessionID(path, profile, sessionID string) error {
	f, err := LoadFile(path)
	if err != nil {
		return err
	}
	p, ok := f[profile]
	if !ok {
		return nil
	}
	p.SessionID = sessionID
	return Save(path, profile, &p)
}
