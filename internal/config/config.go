// Package config handles the XDG configuration directory, the settings file and
// persisted credentials.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"todo/internal/service"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// SettingsFile is the YAML settings filename.
	SettingsFile = "config.yaml"

	// TokenFile is the stored bearer token filename.
	TokenFile = "token.json"

	// UserFile is the cached user profile filename.
	UserFile = "user.json"
)

// ErrNoToken is returned by Token when nobody is logged in.
var ErrNoToken = errors.New("not logged in")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Settings is loaded from config.yaml; defaults when the file is missing.
	Settings Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// Credentials is the persisted session: a token and, once known, its owner.
type Credentials struct {
	Token *oauth2.Token
	User  *service.User
}

// New creates a new Config with the default or specified config directory and
// loads its settings file.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	settings, err := LoadSettings(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// UserPath returns the path to the cached user profile.
func (c *Config) UserPath() string {
	return filepath.Join(c.Dir, UserFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// Token implements oauth2.TokenSource by reading the persisted token on every call,
// so a login earlier in the same process is picked up by the next request.
func (c *Config) Token() (*oauth2.Token, error) {
	creds, err := c.LoadCredentials()
	if err != nil {
		return nil, err
	}
	if creds.Token == nil || creds.Token.AccessToken == "" {
		return nil, ErrNoToken
	}
	return creds.Token, nil
}

// LoadCredentials reads token.json and user.json. Missing files yield empty
// fields, and so does an unreadable user.json.
func (c *Config) LoadCredentials() (Credentials, error) {
	var creds Credentials

	var token oauth2.Token
	found, err := readJSON(c.TokenPath(), &token)
	if err != nil {
		return Credentials{}, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}
	if found {
		creds.Token = &token
	}

	// user.json is only a profile cache; an unreadable one is refetched.
	var user service.User
	if found, err := readJSON(c.UserPath(), &user); err == nil && found {
		creds.User = &user
	}

	return creds, nil
}

// SaveCredentials writes the token and user files with mode 0600.
// A nil user removes user.json.
func (c *Config) SaveCredentials(creds Credentials) error {
	if creds.Token == nil {
		return errors.New("refusing to save credentials without a token")
	}
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := writeJSON(c.TokenPath(), creds.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if creds.User == nil {
		if err := removeIfExists(c.UserPath()); err != nil {
			return fmt.Errorf("failed to remove user: %w", err)
		}
		return nil
	}
	if err := writeJSON(c.UserPath(), creds.User); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// ClearCredentials deletes token.json and user.json.
func (c *Config) ClearCredentials() error {
	return errors.Join(removeIfExists(c.TokenPath()), removeIfExists(c.UserPath()))
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
