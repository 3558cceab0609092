package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the settings file omits a value.
const (
	DefaultAPIURL   = "http://localhost:8080/api"
	DefaultTimeout  = 5 * time.Second
	DefaultLocale   = "en"
	DefaultLogLevel = "warn"

	// APIURLEnv overrides api_url from the settings file.
	APIURLEnv = "TODO_API_URL"
)

// Settings is the contents of config.yaml.
type Settings struct {
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Locale   string        `yaml:"locale"`
	LogLevel string        `yaml:"log_level"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		Locale:   DefaultLocale,
		LogLevel: DefaultLogLevel,
	}
}

// LoadSettings reads the YAML settings at path, fills defaults, applies the
// environment override and validates the result. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Settings{}, fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}

	if v := os.Getenv(APIURLEnv); v != "" {
		s.APIURL = v
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Locale == "" {
		s.Locale = DefaultLocale
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return s, nil
}

// Validate checks every field and reports all problems at once.
func (s Settings) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("api_url", s.APIURL, validAPIURL),
		criterio.Run("timeout", s.Timeout, positiveDuration),
		criterio.Run("locale", s.Locale, validLocale),
		criterio.Run("log_level", s.LogLevel, validLogLevel),
	)
}

// Language returns the parsed locale, falling back to English.
func (s Settings) Language() language.Tag {
	tag, err := language.Parse(s.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

func validAPIURL(v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must be an http or https URL")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validLocale(v string) error {
	_, err := language.Parse(v)
	return err
}

func validLogLevel(v string) error {
	_, err := zerolog.ParseLevel(v)
	return err
}
