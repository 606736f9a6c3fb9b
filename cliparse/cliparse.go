package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int    `yaml:"port"`
	DatabaseURL  string `yaml:"database_url"`
	DatabaseType string `yaml:"database_type"`

	// Secrets
	IdentitySecret string `yaml:"identity_secret"`
	AdminKey       string `yaml:"admin_key"`

	// Synthetic backfill
	BackfillLockID   int64         `yaml:"backfill_lock_id"`
	BackfillInterval time.Duration `yaml:"backfill_interval"`

	// Reverse proxies (IPs or CIDRs) whose X-Forwarded-For is believed
	TrustedProxies []string `yaml:"trusted_proxies"`

	// Snapshot cache
	RedisURL    string        `yaml:"redis_url"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Defaults returns the configuration used before any file, env, or flag is applied
func Defaults() Config {
	return Config{
		Port:           3318,
		DatabaseType:   DatabaseSQLite,
		BackfillLockID: 424242,
		SnapshotTTL:    5 * time.Second,
		Log:            LogConfig{Level: "info", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
	}
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load()
}

// ParseFlags builds the config from flags, env variables, and an optional YAML file.
// Flags override env, env overrides the file.
func ParseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("feels-aggregate", flag.ContinueOnError)

	configFile := fs.String("c", "", "YAML config file")

	// Network config (can be CLI args or env)
	port := fs.Int("p", 0, "Server port")
	databaseURL := fs.String("d", "", "Database URL")
	databaseType := fs.String("t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	identitySecret := fs.String("identity-secret", "", "Identity hashing secret (prefer env)")
	adminKey := fs.String("admin-key", "", "Admin key for the simulation endpoint (prefer env)")

	backfillLock := fs.Int64("backfill-lock", 0, "Advisory lock ID for synthetic backfill")
	backfillEvery := fs.Duration("backfill-every", 0, "Run hourly backfill on this interval (0 disables)")
	redisURL := fs.String("redis", "", "Redis URL for the snapshot cache")
	trustedProxies := fs.String("trusted-proxies", "", "Comma-separated proxy IPs/CIDRs allowed to set X-Forwarded-For")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "Rotating log file path")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = *port
		case "d":
			cfg.DatabaseURL = *databaseURL
		case "t":
			cfg.DatabaseType = *databaseType
		case "identity-secret":
			cfg.IdentitySecret = *identitySecret
		case "admin-key":
			cfg.AdminKey = *adminKey
		case "backfill-lock":
			cfg.BackfillLockID = *backfillLock
		case "backfill-every":
			cfg.BackfillInterval = *backfillEvery
		case "redis":
			cfg.RedisURL = *redisURL
		case "trusted-proxies":
			cfg.TrustedProxies = splitList(*trustedProxies)
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-file":
			cfg.Log.File = *logFile
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != DatabaseSQLite && c.DatabaseType != DatabasePostgres {
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.IdentitySecret == "" {
		return errors.New("IDENTITY_SECRET required")
	}

	if c.BackfillInterval < 0 {
		return errors.New("backfill interval cannot be negative")
	}
	return nil
}

// Addr returns the listen address for the configured port
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := os.Getenv("BACKFILL_LOCK_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.New("invalid BACKFILL_LOCK_ID env variable")
		}
		cfg.BackfillLockID = id
	}
	if err := envDuration(&cfg.BackfillInterval, "BACKFILL_INTERVAL"); err != nil {
		return err
	}
	if err := envDuration(&cfg.SnapshotTTL, "SNAPSHOT_TTL"); err != nil {
		return err
	}

	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.DatabaseType, "DATABASE_TYPE")
	envOverride(&cfg.IdentitySecret, "IDENTITY_SECRET")
	envOverride(&cfg.AdminKey, "ADMIN_KEY")
	envOverride(&cfg.RedisURL, "REDIS_URL")
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = splitList(v)
	}
	envOverride(&cfg.Log.Level, "LOG_LEVEL")
	envOverride(&cfg.Log.File, "LOG_FILE")
	return nil
}

// splitList splits a comma-separated value, dropping blanks
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	*dst = d
	return nil
}
