package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/execution-hub/contest-hub/internal/domain/contest"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	JournalFile   = "file"
	JournalMemory = "memory"
)

var (
	errConfigFileRead = errors.New("cannot read config file")
	errConfigInvalid  = errors.New("invalid config file")
)

// Config holds service configuration.
type Config struct {
	ServerAddr        string        `json:"server_addr"`
	PublicURL         string        `json:"public_url"`
	DataDir           string        `json:"data_dir"`
	StoreDriver       string        `json:"store_driver"`
	DatabaseURL       string        `json:"database_url"`
	JournalDriver     string        `json:"journal_driver"`
	JournalDir        string        `json:"journal_dir"`
	EntrantsRedisAddr string        `json:"entrants_redis_addr"`
	EntrantsRedisPass string        `json:"entrants_redis_password"`
	SystemIdentity    string        `json:"system_identity"`
	SchedulerMaxDelay time.Duration `json:"-"`
	OperatorTokenHash string        `json:"operator_token_hash"`
	LogLevel          string        `json:"log_level"`
	LogFormat         string        `json:"log_format"`
	StreamEnabled     bool          `json:"-"`

	derivedJournalDir bool
}

// fileConfig mirrors Config with durations as strings.
type fileConfig struct {
	Config
	SchedulerMaxDelay string `json:"scheduler_max_delay"`
	StreamEnabled     *bool  `json:"stream_enabled"`
}

// Load reads configuration from the file named by CONTEST_HUB_CONFIG, if
// any, then from environment.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONTEST_HUB_CONFIG"))
}

// LoadFile layers defaults, the JSONC file at path (optional) and the
// environment, in that order.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if path = strings.TrimSpace(path); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		merge(cfg, fc)
	}
	applyEnv(cfg)
	if cfg.JournalDir == "" {
		cfg.JournalDir = filepath.Join(cfg.DataDir, "logs")
		cfg.derivedJournalDir = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerAddr:    "0.0.0.0:8080",
		DataDir:       "data",
		StoreDriver:   StoreFile,
		JournalDriver: JournalFile,
		LogLevel:      "info",
		LogFormat:     "json",
		StreamEnabled:  true,
		SystemIdentity: contest.DefaultSystemIdentity,
	}
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errConfigFileRead, path, err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: invalid JSONC: %w", errConfigInvalid, path, err)
	}
	var fc fileConfig
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return &fc, nil
}

func merge(base *Config, fc *fileConfig) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.ServerAddr, fc.ServerAddr)
	set(&base.PublicURL, fc.PublicURL)
	set(&base.DataDir, fc.DataDir)
	set(&base.StoreDriver, fc.StoreDriver)
	set(&base.DatabaseURL, fc.DatabaseURL)
	set(&base.JournalDriver, fc.JournalDriver)
	set(&base.JournalDir, fc.JournalDir)
	set(&base.EntrantsRedisAddr, fc.EntrantsRedisAddr)
	set(&base.EntrantsRedisPass, fc.EntrantsRedisPass)
	set(&base.SystemIdentity, fc.SystemIdentity)
	set(&base.OperatorTokenHash, fc.OperatorTokenHash)
	set(&base.LogLevel, fc.LogLevel)
	set(&base.LogFormat, fc.LogFormat)
	base.SchedulerMaxDelay = parseDuration(fc.SchedulerMaxDelay, base.SchedulerMaxDelay)
	if fc.StreamEnabled != nil {
		base.StreamEnabled = *fc.StreamEnabled
	}
}

func applyEnv(cfg *Config) {
	cfg.ServerAddr = getenv("SERVER_ADDR", cfg.ServerAddr)
	cfg.PublicURL = getenv("PUBLIC_URL", cfg.PublicURL)
	cfg.DataDir = getenv("DATA_DIR", cfg.DataDir)
	cfg.StoreDriver = strings.ToLower(getenv("STORE_DRIVER", cfg.StoreDriver))
	cfg.JournalDriver = strings.ToLower(getenv("JOURNAL_DRIVER", cfg.JournalDriver))
	cfg.JournalDir = getenv("JOURNAL_DIR", cfg.JournalDir)
	cfg.EntrantsRedisAddr = getenv("ENTRANTS_REDIS_ADDR", cfg.EntrantsRedisAddr)
	cfg.EntrantsRedisPass = getenv("ENTRANTS_REDIS_PASSWORD", cfg.EntrantsRedisPass)
	cfg.SystemIdentity = getenv("SYSTEM_IDENTITY", cfg.SystemIdentity)
	cfg.SchedulerMaxDelay = parseDuration(os.Getenv("SCHEDULER_MAX_DELAY"), cfg.SchedulerMaxDelay)
	cfg.OperatorTokenHash = getenv("OPERATOR_TOKEN_HASH", cfg.OperatorTokenHash)
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(getenv("LOG_FORMAT", cfg.LogFormat))
	cfg.StreamEnabled = parseBool(os.Getenv("STREAM_ENABLED"), cfg.StreamEnabled)

	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		user := getenv("POSTGRES_USER", "contest_hub")
		pass := getenv("POSTGRES_PASSWORD", "contest_hub_pass")
		db := getenv("POSTGRES_DB", "contest_hub")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
}

// Override applies command-line values, which take precedence over
// everything else. Empty values are ignored.
func (c *Config) Override(addr, dataDir string) error {
	if addr = strings.TrimSpace(addr); addr != "" {
		c.ServerAddr = addr
	}
	if dataDir = strings.TrimSpace(dataDir); dataDir != "" {
		c.DataDir = dataDir
		if c.derivedJournalDir {
			c.JournalDir = filepath.Join(dataDir, "logs")
		}
	}
	return c.Validate()
}

// Validate rejects unknown drivers and formats.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFile, StorePostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.JournalDriver {
	case JournalFile, JournalMemory:
	default:
		return fmt.Errorf("unknown journal driver %q", c.JournalDriver)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data dir is required")
	}
	if strings.TrimSpace(c.SystemIdentity) == "" {
		return errors.New("system identity is required")
	}
	if c.SchedulerMaxDelay < 0 {
		return errors.New("scheduler max delay must not be negative")
	}
	return nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseBool(val string, def bool) bool {
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}
