package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/starter/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "starter.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "STARTER_"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMountID is the id of the element the app renders into.
	DefaultMountID = "root"

	// DefaultLocale is the locale used when negotiation finds nothing better.
	DefaultLocale = "en-US"
)

// Catalog source kinds.
const (
	SourceEmbed = "embed"
	SourceDir   = "dir"
	SourceS3    = "s3"
)

// Config represents the complete starter.json configuration.
type Config struct {
	// Name is the application name shown in the document title.
	Name string `json:"name,omitempty" env:"NAME"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty" envPrefix:"SERVER_"`

	// Session contains live session configuration.
	Session SessionConfig `json:"session,omitempty" envPrefix:"SESSION_"`

	// I18n contains translation catalog configuration.
	I18n I18nConfig `json:"i18n,omitempty" envPrefix:"I18N_"`

	// Query contains data-fetch cache defaults.
	Query QueryConfig `json:"query,omitempty" envPrefix:"QUERY_"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" envPrefix:"LOG_"`

	// Devtools contains store inspector configuration.
	Devtools DevtoolsConfig `json:"devtools,omitempty" envPrefix:"DEVTOOLS_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" env:"HOST"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" env:"PORT"`

	// Shell is an optional path to an HTML shell replacing the embedded one.
	Shell string `json:"shell,omitempty" env:"SHELL"`

	// MountID is the id of the mount container inside the shell.
	MountID string `json:"mountId,omitempty" env:"MOUNT_ID"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" env:"SHUTDOWN_TIMEOUT"`
}

// SessionConfig contains live session settings.
type SessionConfig struct {
	// TTL is how long a session survives without a connected socket (e.g., "2m").
	TTL string `json:"ttl,omitempty" env:"TTL"`

	// MaxSessions caps concurrent sessions; 0 means unlimited.
	MaxSessions int `json:"maxSessions,omitempty" env:"MAX_SESSIONS"`
}

// I18nConfig contains translation settings.
type I18nConfig struct {
	// Source selects where catalogs come from: embed, dir or s3.
	Source string `json:"source,omitempty" env:"SOURCE"`

	// Dir is the catalog root for the dir source.
	Dir string `json:"dir,omitempty" env:"DIR"`

	// DefaultLocale is the fallback locale.
	DefaultLocale string `json:"defaultLocale,omitempty" env:"DEFAULT_LOCALE"`

	// Supported lists the locales offered to browsers.
	Supported []string `json:"supported,omitempty" env:"SUPPORTED" envSeparator:","`

	// S3 configures the s3 source.
	S3 S3Config `json:"s3,omitempty" envPrefix:"S3_"`
}

// S3Config locates catalogs in an S3-compatible bucket.
type S3Config struct {
	Bucket       string `json:"bucket,omitempty" env:"BUCKET"`
	Prefix       string `json:"prefix,omitempty" env:"PREFIX"`
	Region       string `json:"region,omitempty" env:"REGION"`
	Endpoint     string `json:"endpoint,omitempty" env:"ENDPOINT"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" env:"USE_PATH_STYLE"`
}

// QueryConfig contains client-wide query defaults.
type QueryConfig struct {
	// StaleTime is how long fetched data stays fresh. "0s" refetches on
	// every mount.
	StaleTime  string `json:"staleTime,omitempty" env:"STALE_TIME"`
	Retry      int    `json:"retry,omitempty" env:"RETRY"`
	RetryDelay string `json:"retryDelay,omitempty" env:"RETRY_DELAY"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"FORMAT"`
}

// DevtoolsConfig contains store inspector settings.
type DevtoolsConfig struct {
	// Enabled mounts /__devtools/events.
	Enabled bool `json:"enabled,omitempty" env:"ENABLED"`

	// BufferSize is how many events the inspector keeps.
	BufferSize int `json:"bufferSize,omitempty" env:"BUFFER_SIZE"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads starter.json from dir when present, applies STARTER_*
// environment overrides and defaults, then validates the result. A missing
// file is not an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)

	var (
		cfg *Config
		err error
	)
	if Exists(dir) {
		cfg, err = LoadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = &Config{}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. Environment
// overrides are not applied.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("Cannot read " + path).
			Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from STARTER_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("parse env: " + err.Error())
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "Starter"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MountID == "" {
		c.Server.MountID = DefaultMountID
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}

	// Session
	if c.Session.TTL == "" {
		c.Session.TTL = "2m"
	}

	// I18n
	if c.I18n.Source == "" {
		c.I18n.Source = SourceEmbed
	}
	if c.I18n.DefaultLocale == "" {
		c.I18n.DefaultLocale = DefaultLocale
	}
	if len(c.I18n.Supported) == 0 {
		c.I18n.Supported = []string{DefaultLocale, "fr-FR"}
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Devtools
	if c.Devtools.BufferSize == 0 {
		c.Devtools.BufferSize = 256
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.CodeConfigInvalid).WithDetail(fmt.Sprintf(format, args...))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port %d is out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.MountID) == "" {
		return invalid("server.mountId must not be blank")
	}
	for name, value := range map[string]string{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"session.ttl":            c.Session.TTL,
		"query.staleTime":        c.Query.StaleTime,
		"query.retryDelay":       c.Query.RetryDelay,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return invalid("%s %q is not a duration", name, value)
		}
	}
	if c.Session.MaxSessions < 0 {
		return invalid("session.maxSessions must not be negative")
	}
	if c.Query.Retry < 0 {
		return invalid("query.retry must not be negative")
	}

	switch c.I18n.Source {
	case SourceEmbed:
	case SourceDir:
		if c.I18n.Dir == "" {
			return invalid("i18n.dir is required when i18n.source is %q", SourceDir)
		}
	case SourceS3:
		if c.I18n.S3.Bucket == "" {
			return invalid("i18n.s3.bucket is required when i18n.source is %q", SourceS3)
		}
	default:
		return invalid("i18n.source %q is not one of embed, dir, s3", c.I18n.Source)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// URL returns the base URL the server is reachable at.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// SessionTTL returns the parsed session TTL.
func (c *Config) SessionTTL() time.Duration {
	return parseDuration(c.Session.TTL, 2*time.Minute)
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// QueryStaleTime returns the parsed query stale time.
func (c *Config) QueryStaleTime() time.Duration {
	return parseDuration(c.Query.StaleTime, 0)
}

// QueryRetryDelay returns the parsed delay between query retries.
func (c *Config) QueryRetryDelay() time.Duration {
	return parseDuration(c.Query.RetryDelay, time.Second)
}

// Exists checks if a starter.json exists in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
