package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/Tiliavir/ojt-tracker/internal/logging"
)

// Config is the root configuration for ojt, stored in ~/.ojt/config.json.
// The file supports single-line // comments for documentation purposes.
// Environment variables (and a .env file in the working directory) override
// values from the file.
type Config struct {
	Storage StorageConfig `json:"storage"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" env:"OJT_LOG_LEVEL"`
	// NotifyMilestones enables desktop notifications at 25/50/75/100 % completion.
	NotifyMilestones bool          `json:"notify_milestones" env:"OJT_NOTIFY"`
	Outlook          OutlookConfig `json:"outlook"`
}

// StorageConfig selects and configures the document store.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "redis".
	Backend string `json:"backend" env:"OJT_BACKEND"`
	// DataDir holds the JSON documents of the file backend.
	DataDir     string `json:"data_dir" env:"OJT_DATA_DIR"`
	SQLitePath  string `json:"sqlite_path" env:"OJT_SQLITE_PATH"`
	RedisAddr   string `json:"redis_addr" env:"OJT_REDIS_ADDR"`
	RedisPrefix string `json:"redis_prefix" env:"OJT_REDIS_PREFIX"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// DefaultCategory is the category assigned to imported calendar events.
	DefaultCategory string `json:"default_category"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = local.
	Timezone string `json:"timezone"`
}

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

const (
	// DefaultTenantID is the Microsoft "common" tenant.
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID, which supports
	// the device code flow without a client secret.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultCategory is assigned to imported meetings.
	DefaultCategory = "Meetings"
	// DefaultRedisAddr is used when the redis backend is selected without an address.
	DefaultRedisAddr = "localhost:6379"
	// DefaultRedisPrefix namespaces the two documents inside Redis.
	DefaultRedisPrefix = "ojt:"
	// DefaultLogLevel keeps normal command output free of log lines.
	DefaultLogLevel = "warn"
)

// BaseDir returns the root data directory (~/.ojt).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ojt"), nil
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	cfg := Config{
		LogLevel: DefaultLogLevel,
		Outlook: OutlookConfig{
			TenantID:        DefaultTenantID,
			ClientID:        DefaultClientID,
			DefaultCategory: DefaultCategory,
		},
	}
	cfg.fillDefaults()
	return cfg
}

// fillDefaults replaces zero-value fields with built-in defaults so callers
// always get a usable Config even if the user only partially fills the file.
func (c *Config) fillDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.DataDir == "" {
		if base, err := BaseDir(); err == nil {
			c.Storage.DataDir = base
		} else {
			c.Storage.DataDir = ".ojt"
		}
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = filepath.Join(c.Storage.DataDir, "ojt.db")
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = DefaultRedisAddr
	}
	if c.Storage.RedisPrefix == "" {
		c.Storage.RedisPrefix = DefaultRedisPrefix
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Outlook.TenantID == "" {
		c.Outlook.TenantID = DefaultTenantID
	}
	if c.Outlook.ClientID == "" {
		c.Outlook.ClientID = DefaultClientID
	}
	if c.Outlook.DefaultCategory == "" {
		c.Outlook.DefaultCategory = DefaultCategory
	}
}

// Validate rejects settings ojt cannot act on.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q (want file, sqlite or redis)", c.Storage.Backend)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// ojt configuration – ~/.ojt/config.json
//
// All settings are optional; the built-in defaults work out of the box.
// Every storage setting and log_level can also be set through environment
// variables (OJT_BACKEND, OJT_DATA_DIR, OJT_SQLITE_PATH, OJT_REDIS_ADDR,
// OJT_REDIS_PREFIX, OJT_LOG_LEVEL, OJT_NOTIFY) or a .env file.
{
  // ── Storage ────────────────────────────────────────────────────────────────
  "storage": {
    // "file"   – JSON documents in data_dir (default)
    // "sqlite" – a single SQLite database at sqlite_path
    // "redis"  – a Redis server at redis_addr, keys prefixed with redis_prefix
    "backend": "file"
  },

  // debug, info, warn or error. Logs go to stderr.
  "log_level": "warn",

  // Show a desktop notification when you reach 25, 50, 75 and 100 % of your target.
  "notify_milestones": false,

  // ── Microsoft Graph / Outlook calendar import ──────────────────────────────
  "outlook": {
    // Azure AD tenant ID ("common" works for personal and most work accounts).
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // Category assigned to imported calendar events.
    // Can be overridden per-sync with: ojt outlook sync --category <name>
    "default_category": "Meetings",

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
    // Leave empty to use the local timezone.
    "timezone": ""
  }
}
`

// FilePath returns the path to ~/.ojt/config.json.
func FilePath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config file at path (~/.ojt/config.json when empty),
// creating it with annotated defaults on first run, then applies .env and
// environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := FilePath()
		if err != nil {
			return defaultConfig(), err
		}
		path = p
	}

	cfg, err := loadFile(path)
	if err != nil {
		return defaultConfig(), err
	}

	if err := loadDotEnv(".env"); err != nil {
		return defaultConfig(), err
	}
	if err := env.Parse(&cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing environment: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return defaultConfig(), err
	}
	return cfg, nil
}

// loadFile parses the commented JSON file at path. A missing file is created
// from the template and yields the defaults.
func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return cfg, nil
}

// loadDotEnv exports the variables of a .env file without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
