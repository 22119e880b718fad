// Package config loads client settings.
//
// Sources are applied in order, later ones win: defaults, YAML file
// (--config or GCONTACTS_CONFIG), GCONTACTS_* environment variables,
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/gcontacts/internal/cache"
	"github.com/iudanet/gcontacts/internal/client/api"
	"github.com/iudanet/gcontacts/internal/client/storage"
	gsync "github.com/iudanet/gcontacts/internal/client/sync"
	"github.com/iudanet/gcontacts/internal/crypto"
)

// Storage backends
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	envPrefix       = "GCONTACTS_"
	envConfigPath   = envPrefix + "CONFIG"
	clientIDSuffix  = ".apps.googleusercontent.com"
	defaultDBPath   = "gcontacts.db"
	defaultLogLevel = "info"
)

// ErrInvalidConfig is returned by Validate and Load for unusable settings
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds runtime settings for the gcontacts CLI.
type Config struct {
	ClientID      string        `yaml:"client_id"`
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Backend       string        `yaml:"backend"`
	DBPath        string        `yaml:"db_path"`
	LogLevel      string        `yaml:"log_level"`
	KDF           string        `yaml:"kdf"`
	QuotaBytes    int64         `yaml:"quota_bytes"`
	SyncThreshold time.Duration `yaml:"sync_threshold"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxPages      int           `yaml:"max_pages"`
	PageSize      int           `yaml:"page_size"`

	// заполняются только из флагов
	ConfigPath  string `yaml:"-"`
	Token       string `yaml:"-"`
	TokenFile   string `yaml:"-"`
	IDToken     string `yaml:"-"`
	ShowVersion bool   `yaml:"-"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = api.DefaultBaseURL
	c.Backend = BackendBolt
	c.DBPath = defaultDBPath
	c.LogLevel = defaultLogLevel
	c.KDF = string(crypto.SchemeSHA256)
	c.QuotaBytes = storage.DefaultQuotaBytes
	c.SyncThreshold = cache.DefaultSyncThreshold
	c.FetchTimeout = gsync.DefaultFetchTimeout
	c.HTTPTimeout = api.DefaultTimeout
	c.MaxPages = api.DefaultMaxPages
	c.PageSize = api.DefaultPageSize
}

// Load builds a Config from defaults, the optional YAML file, the
// environment and args. It returns the positional arguments left after
// flag parsing.
func Load(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	flags := &Config{}
	fs := newFlagSet(flags)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	path := flags.ConfigPath
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, nil, err
		}
	}

	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, nil, err
	}

	cfg.applyFlags(fs, flags)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, fs.Args(), nil
}

func newFlagSet(dst *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("gcontacts", flag.ContinueOnError)
	fs.StringVar(&dst.ConfigPath, "config", "", "Path to YAML config file")
	fs.BoolVar(&dst.ShowVersion, "version", false, "Show version information")
	fs.StringVar(&dst.Token, "token", "", "OAuth access token (not recommended, use env var or file)")
	fs.StringVar(&dst.TokenFile, "token-file", "", "Path to file containing OAuth access token")
	fs.StringVar(&dst.IDToken, "id-token", "", "OpenID Connect ID token used to identify the user")
	fs.StringVar(&dst.ClientID, "client-id", "", "OAuth client ID")
	fs.StringVar(&dst.APIKey, "api-key", "", "People API key")
	fs.StringVar(&dst.BaseURL, "base-url", "", "People API base URL")
	fs.StringVar(&dst.Backend, "backend", "", "Storage backend: bolt, sqlite or memory")
	fs.StringVar(&dst.DBPath, "db", "", "Path to local database")
	fs.StringVar(&dst.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&dst.KDF, "kdf", "", "Key derivation scheme: sha256 or argon2id")
	fs.Int64Var(&dst.QuotaBytes, "quota", 0, "Storage quota in bytes")
	fs.DurationVar(&dst.SyncThreshold, "threshold", 0, "Cache age after which contacts are refetched")
	fs.DurationVar(&dst.FetchTimeout, "fetch-timeout", 0, "Timeout for fetching all contacts")
	fs.DurationVar(&dst.HTTPTimeout, "http-timeout", 0, "Timeout for a single People API request")
	fs.IntVar(&dst.MaxPages, "max-pages", 0, "Maximum number of pages to fetch")
	fs.IntVar(&dst.PageSize, "page-size", 0, "Contacts per page")
	return fs
}

// applyFlags копирует только явно заданные флаги
func (c *Config) applyFlags(fs *flag.FlagSet, src *Config) {
	c.ConfigPath = src.ConfigPath
	c.Token = src.Token
	c.TokenFile = src.TokenFile
	c.IDToken = src.IDToken
	c.ShowVersion = src.ShowVersion

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "client-id":
			c.ClientID = src.ClientID
		case "api-key":
			c.APIKey = src.APIKey
		case "base-url":
			c.BaseURL = src.BaseURL
		case "backend":
			c.Backend = src.Backend
		case "db":
			c.DBPath = src.DBPath
		case "log-level":
			c.LogLevel = src.LogLevel
		case "kdf":
			c.KDF = src.KDF
		case "quota":
			c.QuotaBytes = src.QuotaBytes
		case "threshold":
			c.SyncThreshold = src.SyncThreshold
		case "fetch-timeout":
			c.FetchTimeout = src.FetchTimeout
		case "http-timeout":
			c.HTTPTimeout = src.HTTPTimeout
		case "max-pages":
			c.MaxPages = src.MaxPages
		case "page-size":
			c.PageSize = src.PageSize
		}
	})
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CLIENT_ID": &c.ClientID,
		"API_KEY":   &c.APIKey,
		"BASE_URL":  &c.BaseURL,
		"BACKEND":   &c.Backend,
		"DB":        &c.DBPath,
		"LOG_LEVEL": &c.LogLevel,
		"KDF":       &c.KDF,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SYNC_THRESHOLD": &c.SyncThreshold,
		"FETCH_TIMEOUT":  &c.FetchTimeout,
		"HTTP_TIMEOUT":   &c.HTTPTimeout,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, envPrefix, name, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"MAX_PAGES": &c.MaxPages,
		"PAGE_SIZE": &c.PageSize,
	}
	for name, dst := range ints {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, envPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := lookup(envPrefix + "QUOTA_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sQUOTA_BYTES: %w", ErrInvalidConfig, envPrefix, err)
		}
		c.QuotaBytes = n
	}

	return nil
}

// Validate checks settings that would make the client unusable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendBolt, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Backend))
	}

	if c.Backend != BackendMemory && c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if c.SyncThreshold <= 0 {
		errs = append(errs, errors.New("sync threshold must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if c.QuotaBytes < 0 {
		errs = append(errs, errors.New("quota must not be negative"))
	}
	if c.PageSize <= 0 || c.MaxPages <= 0 {
		errs = append(errs, errors.New("page size and max pages must be positive"))
	}
	if _, err := crypto.NewKeyDeriver(crypto.Scheme(c.KDF)); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Warnings returns non-fatal problems with the configuration.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.ClientID == "" {
		warnings = append(warnings, "client ID is not configured")
	} else if !strings.HasSuffix(c.ClientID, clientIDSuffix) {
		warnings = append(warnings, fmt.Sprintf("client ID %q does not look like a Google OAuth client ID", c.ClientID))
	}
	if c.APIKey == "" {
		warnings = append(warnings, "API key is not configured")
	}
	return warnings
}

// Level returns the slog level for LogLevel, Info if it cannot be parsed.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
