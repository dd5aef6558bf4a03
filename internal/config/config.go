package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NotifierConfig holds credentials and addressing for the SMS notifier.
// Any field left empty in the YAML file may be supplied through the
// corresponding SAFE_NOTIFIER_* environment variable, so secrets can stay
// out of checked-in settings files.
type NotifierConfig struct {
	// AccountSID is the notifier account identifier.
	AccountSID string `yaml:"account_sid"`
	// AuthToken is the notifier auth secret.
	AuthToken string `yaml:"auth_token"`
	// From is the sender phone number in E.164 format.
	From string `yaml:"from"`
	// To is the fixed destination phone number for alerts.
	To string `yaml:"to"`
}

// Config holds settings for the bridge server and the device simulator.
type Config struct {
	// ListenAddress is the TCP address the HTTP server binds to.
	ListenAddress string `yaml:"listen_addr"`
	// ServerURL is the base URL the device simulator talks to.
	ServerURL string `yaml:"server_url"`
	// LogLevel is the minimum level for log output (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// Notifier configures the SMS alert dispatch.
	Notifier NotifierConfig `yaml:"notifier"`
}

const (
	// DefaultConfigFilename is the default filename for server settings.
	DefaultConfigFilename = "study-safe-settings.yaml"

	// DefaultListenAddress binds the HTTP server on all interfaces.
	DefaultListenAddress = ":3000"

	// DefaultServerURL is where the device simulator expects the server.
	DefaultServerURL = "http://127.0.0.1:3000"

	// DefaultFilePermissions restricts settings files to the owner.
	DefaultFilePermissions = 0o600
)

// Environment variable names overriding NotifierConfig fields.
const (
	EnvNotifierAccountSID = "SAFE_NOTIFIER_ACCOUNT_SID"
	EnvNotifierAuthToken  = "SAFE_NOTIFIER_AUTH_TOKEN"
	EnvNotifierFrom       = "SAFE_NOTIFIER_FROM"
	EnvNotifierTo         = "SAFE_NOTIFIER_TO"
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Load reads configuration from the provided path, applies environment
// overrides and validates essential fields. A missing file is not an error:
// the defaults describe a complete local setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	applyEnvironment(&cfg)

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the file may hold notifier credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling in defaults for anything left empty.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	// Notifier credentials are optional: without them alerts are logged
	// instead of sent, which is the right behavior for local development.
	return nil
}

// applyEnvironment overrides notifier fields from environment variables.
func applyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvNotifierAccountSID); v != "" {
		cfg.Notifier.AccountSID = v
	}

	if v := os.Getenv(EnvNotifierAuthToken); v != "" {
		cfg.Notifier.AuthToken = v
	}

	if v := os.Getenv(EnvNotifierFrom); v != "" {
		cfg.Notifier.From = v
	}

	if v := os.Getenv(EnvNotifierTo); v != "" {
		cfg.Notifier.To = v
	}
}
