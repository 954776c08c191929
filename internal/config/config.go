package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// DefaultPath is the config file read when none is given
const DefaultPath = "seflow.toml"

// Config holds all seflow-backend configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	NATS     NATSConfig     `toml:"nats"`
	Indexer  IndexerConfig  `toml:"indexer"`
	Split    SplitConfig    `toml:"split"`
	Yield    YieldConfig    `toml:"yield"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds listener and auth settings.
type ServerConfig struct {
	GRPCAddr string `toml:"grpc_addr"`
	HTTPAddr string `toml:"http_addr"`
	APIToken string `toml:"api_token"`
}

// DatabaseConfig holds PostgreSQL settings.
// ConnString wins over the individual fields when set.
type DatabaseConfig struct {
	ConnString      string   `toml:"conn_string,omitempty"`
	Host            string   `toml:"host"`
	Port            string   `toml:"port"`
	User            string   `toml:"user"`
	Password        string   `toml:"password"`
	Name            string   `toml:"name"`
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	SeedAccounts    []string `toml:"seed_accounts,omitempty"`
}

// NATSConfig holds event publishing settings; an empty URL disables publishing.
type NATSConfig struct {
	URL string `toml:"url,omitempty"`
}

// IndexerConfig holds transaction history sources.
type IndexerConfig struct {
	Enabled       bool     `toml:"enabled"`
	FindLabsBase  string   `toml:"findlabs_base"`
	FindLabsUser  string   `toml:"findlabs_user,omitempty"`
	FindLabsPass  string   `toml:"findlabs_pass,omitempty"`
	AccessNodeURL string   `toml:"access_node_url"`
	Timeout       Duration `toml:"timeout"`
}

// SplitConfig holds submission policy.
type SplitConfig struct {
	Cooldown Duration `toml:"cooldown"`
}

// YieldConfig holds LP yield accrual and the auto-compound scheduler.
type YieldConfig struct {
	WeeklyRate        decimal.Decimal `toml:"weekly_rate"`
	SchedulerEnabled  bool            `toml:"scheduler_enabled"`
	SchedulerInterval Duration        `toml:"scheduler_interval"`
	SchedulerBatch    int             `toml:"scheduler_batch"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration read from a TOML string such as "10s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			GRPCAddr: ":8080",
			HTTPAddr: ":9090",
			APIToken: "dev-token",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "seflow",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration{30 * time.Minute},
		},
		Indexer: IndexerConfig{
			Enabled:       true,
			FindLabsBase:  "https://api.test-find.xyz",
			AccessNodeURL: "https://rest-testnet.onflow.org",
			Timeout:       Duration{15 * time.Second},
		},
		Split: SplitConfig{
			Cooldown: Duration{10 * time.Second},
		},
		Yield: YieldConfig{
			WeeklyRate:        decimal.RequireFromString("0.001"),
			SchedulerEnabled:  true,
			SchedulerInterval: Duration{time.Minute},
			SchedulerBatch:    100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, returning defaults if it doesn't exist,
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables, when set.
func applyEnv(cfg *Config) {
	for env, dst := range map[string]*string{
		"DB_CONN_STR":      &cfg.Database.ConnString,
		"DB_HOST":          &cfg.Database.Host,
		"DB_PORT":          &cfg.Database.Port,
		"DB_USER":          &cfg.Database.User,
		"DB_PASSWORD":      &cfg.Database.Password,
		"DB_NAME":          &cfg.Database.Name,
		"API_TOKEN":        &cfg.Server.APIToken,
		"GRPC_ADDR":        &cfg.Server.GRPCAddr,
		"HTTP_ADDR":        &cfg.Server.HTTPAddr,
		"NATS_URL":         &cfg.NATS.URL,
		"FINDLABS_BASE":    &cfg.Indexer.FindLabsBase,
		"FINDLABS_USER":    &cfg.Indexer.FindLabsUser,
		"FINDLABS_PASS":    &cfg.Indexer.FindLabsPass,
		"ACCESS_NODE_URL":  &cfg.Indexer.AccessNodeURL,
		"SEFLOW_LOG_LEVEL": &cfg.Log.Level,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks the settings that have no usable fallback.
func (c Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return errors.New("server.grpc_addr must not be empty")
	}
	if c.Server.APIToken == "" {
		return errors.New("server.api_token must not be empty")
	}
	if c.Split.Cooldown.Duration < 0 {
		return errors.New("split.cooldown must not be negative")
	}
	if c.Yield.WeeklyRate.IsNegative() || c.Yield.WeeklyRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("yield.weekly_rate must be in [0, 1)")
	}
	if c.Yield.SchedulerEnabled {
		if c.Yield.SchedulerInterval.Duration <= 0 {
			return errors.New("yield.scheduler_interval must be positive")
		}
		if c.Yield.SchedulerBatch <= 0 {
			return errors.New("yield.scheduler_batch must be positive")
		}
	}
	return nil
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	if d.ConnString != "" {
		return d.ConnString
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}
