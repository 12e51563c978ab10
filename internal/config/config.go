// Package config defines the top-level configuration for linescout and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by LINESCOUT_* environment variables.
type Config struct {
	Postgres  PostgresConfig          `toml:"postgres"`
	Redis     RedisConfig             `toml:"redis"`
	S3        S3Config                `toml:"s3"`
	Archive   ArchiveConfig           `toml:"archive"`
	Sources   map[string]SourceConfig `toml:"sources"`
	Arbitrage ArbitrageConfig         `toml:"arbitrage"`
	Middles   MiddlesConfig           `toml:"middles"`
	Scheduler SchedulerConfig         `toml:"scheduler"`
	Players   PlayersConfig           `toml:"players"`
	Teams     TeamsConfig             `toml:"teams"`
	Notify    NotifyConfig            `toml:"notify"`
	LogLevel  string                  `toml:"log_level"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig controls price-history retention and cold-storage archival.
type ArchiveConfig struct {
	Enabled       bool     `toml:"enabled"`
	RetentionDays int      `toml:"retention_days"`
	Interval      duration `toml:"interval"`
}

// SourceConfig configures one ingestion source. Not every field applies to
// every source; unknown fields for a source are simply ignored by its adapter.
type SourceConfig struct {
	Enabled             bool     `toml:"enabled"`
	Category            string   `toml:"category"` // "sportsbook" or "open_market"
	BaseURL             string   `toml:"base_url"`
	APIKey              string   `toml:"api_key"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	MonthlyQuota        int      `toml:"monthly_quota"` // 0 means unlimited
	Sports              []string `toml:"sports"`
	Markets             []string `toml:"markets"`
	Books               []string `toml:"books"`
	Tags                []string `toml:"tags"`
	Series              []string `toml:"series"`
	Leagues             []string `toml:"leagues"`
	Limit               int      `toml:"limit"`
}

// PollInterval returns the poll cadence as a duration.
func (s SourceConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// ArbitrageConfig holds arbitrage detection parameters.
type ArbitrageConfig struct {
	MinEdgePercent    float64            `toml:"min_edge_percent"`
	MaxDataAgeSeconds int                `toml:"max_data_age_seconds"`
	ReferenceBankroll float64            `toml:"reference_bankroll"`
	Fees              map[string]float64 `toml:"fees"` // per-venue fee rate on winnings
}

// MaxDataAge returns the staleness cutoff as a duration.
func (a ArbitrageConfig) MaxDataAge() time.Duration {
	return time.Duration(a.MaxDataAgeSeconds) * time.Second
}

// MiddlesConfig holds middle detection parameters.
type MiddlesConfig struct {
	MinGapPoints float64           `toml:"min_gap_points"`
	MinGapTotal  float64           `toml:"min_gap_total"`
	SpreadStdDev float64           `toml:"spread_std_dev"`
	TotalStdDev  float64           `toml:"total_std_dev"`
	PropStdDev   float64           `toml:"prop_std_dev"`
	PlayerProps  PlayerPropsConfig `toml:"player_props"`
}

// PlayerPropsConfig gates prop-market detection and restricts which prop
// markets are scanned.
type PlayerPropsConfig struct {
	Enabled bool     `toml:"enabled"`
	Markets []string `toml:"markets"`
}

// SchedulerConfig holds poll scheduling parameters shared across sources.
type SchedulerConfig struct {
	CheckIntervalSeconds  int     `toml:"check_interval_seconds"`
	CooldownMultiplier    float64 `toml:"cooldown_multiplier"`
	QuotaBuffer           int     `toml:"quota_buffer"`
	DetectIntervalSeconds int     `toml:"detect_interval_seconds"`
	PollTimeoutSeconds    int     `toml:"poll_timeout_seconds"`
}

// CheckInterval returns how often each worker re-evaluates its source.
func (s SchedulerConfig) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalSeconds) * time.Second
}

// DetectInterval returns the cadence of daemon-mode detection passes.
func (s SchedulerConfig) DetectInterval() time.Duration {
	return time.Duration(s.DetectIntervalSeconds) * time.Second
}

// PollTimeout returns the per-poll deadline.
func (s SchedulerConfig) PollTimeout() time.Duration {
	return time.Duration(s.PollTimeoutSeconds) * time.Second
}

// PlayersConfig holds the player alias table used by the matcher to resolve
// nicknames and short forms to canonical identities.
type PlayersConfig struct {
	Aliases map[string]string `toml:"aliases"`
}

// TeamsConfig extends the built-in team alias tables so new leagues or
// renamed franchises resolve to the same canonical event IDs across sources.
type TeamsConfig struct {
	Aliases map[string]string `toml:"aliases"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration so TOML strings like "6h" or "30s" decode
// directly.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. These
// match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "linescout",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "linescout-data",
			ForcePathStyle: true,
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 30,
			Interval:      duration{6 * time.Hour},
		},
		Sources: map[string]SourceConfig{
			"odds_api": {
				Enabled:             false,
				Category:            "sportsbook",
				BaseURL:             "https://api.the-odds-api.com",
				PollIntervalSeconds: 300,
				MonthlyQuota:        500,
				Sports:              []string{"basketball_nba"},
				Markets:             []string{"h2h", "spreads", "totals"},
			},
			"polymarket": {
				Enabled:             true,
				Category:            "open_market",
				BaseURL:             "https://gamma-api.polymarket.com",
				PollIntervalSeconds: 60,
				Tags:                []string{"nba"},
			},
			"kalshi": {
				Enabled:             false,
				Category:            "open_market",
				BaseURL:             "https://api.elections.kalshi.com/trade-api/v2",
				PollIntervalSeconds: 60,
				Series:              []string{"KXNBA"},
			},
			"stx": {
				Enabled:             false,
				Category:            "open_market",
				BaseURL:             "https://api.stx.bet/v1",
				PollIntervalSeconds: 60,
				Leagues:             []string{"nba"},
			},
		},
		Arbitrage: ArbitrageConfig{
			MinEdgePercent:    1.0,
			MaxDataAgeSeconds: 300,
			ReferenceBankroll: 1000,
			Fees: map[string]float64{
				"polymarket": 0.0,
				"kalshi":     0.07,
			},
		},
		Middles: MiddlesConfig{
			MinGapPoints: 1.0,
			MinGapTotal:  2.0,
			SpreadStdDev: 10.5,
			TotalStdDev:  18.0,
			PropStdDev:   6.0,
			PlayerProps: PlayerPropsConfig{
				Enabled: false,
				Markets: []string{"player_points", "player_rebounds", "player_assists", "player_threes"},
			},
		},
		Scheduler: SchedulerConfig{
			CheckIntervalSeconds:  10,
			CooldownMultiplier:    3,
			QuotaBuffer:           10,
			DetectIntervalSeconds: 120,
			PollTimeoutSeconds:    60,
		},
		Players: PlayersConfig{
			Aliases: map[string]string{},
		},
		Teams: TeamsConfig{
			Aliases: map[string]string{},
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity", "quota_exhausted"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validCategories = map[string]bool{
	"sportsbook":  true,
	"open_market": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Archive depends on S3 being reachable.
	if c.Archive.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be > 0")
		}
	}

	// Sources
	enabledCount := 0
	for name, src := range c.Sources {
		if !src.Enabled {
			continue
		}
		enabledCount++
		if !validCategories[src.Category] {
			errs = append(errs, fmt.Sprintf("sources.%s: unknown category %q (valid: sportsbook, open_market)", name, src.Category))
		}
		if src.PollIntervalSeconds <= 0 {
			errs = append(errs, fmt.Sprintf("sources.%s: poll_interval_seconds must be > 0", name))
		}
		if src.MonthlyQuota < 0 {
			errs = append(errs, fmt.Sprintf("sources.%s: monthly_quota must be >= 0", name))
		}
		if name == "odds_api" && src.APIKey == "" {
			errs = append(errs, "sources.odds_api: api_key is required when enabled")
		}
	}
	if enabledCount == 0 {
		errs = append(errs, "sources: at least one source must be enabled")
	}

	// Arbitrage
	if c.Arbitrage.MinEdgePercent < 0 {
		errs = append(errs, "arbitrage: min_edge_percent must be >= 0")
	}
	if c.Arbitrage.MaxDataAgeSeconds <= 0 {
		errs = append(errs, "arbitrage: max_data_age_seconds must be > 0")
	}
	if c.Arbitrage.ReferenceBankroll <= 0 {
		errs = append(errs, "arbitrage: reference_bankroll must be > 0")
	}
	for venue, fee := range c.Arbitrage.Fees {
		if fee < 0 || fee >= 1 {
			errs = append(errs, fmt.Sprintf("arbitrage: fee for %s must be in [0, 1), got %g", venue, fee))
		}
	}

	// Middles
	if c.Middles.MinGapPoints < 0 {
		errs = append(errs, "middles: min_gap_points must be >= 0")
	}
	if c.Middles.MinGapTotal < 0 {
		errs = append(errs, "middles: min_gap_total must be >= 0")
	}
	if c.Middles.SpreadStdDev <= 0 || c.Middles.TotalStdDev <= 0 || c.Middles.PropStdDev <= 0 {
		errs = append(errs, "middles: std_dev values must be > 0")
	}

	// Scheduler
	if c.Scheduler.CheckIntervalSeconds <= 0 {
		errs = append(errs, "scheduler: check_interval_seconds must be > 0")
	}
	if c.Scheduler.CooldownMultiplier < 1 {
		errs = append(errs, "scheduler: cooldown_multiplier must be >= 1")
	}
	if c.Scheduler.QuotaBuffer < 0 {
		errs = append(errs, "scheduler: quota_buffer must be >= 0")
	}
	if c.Scheduler.DetectIntervalSeconds <= 0 {
		errs = append(errs, "scheduler: detect_interval_seconds must be > 0")
	}
	if c.Scheduler.PollTimeoutSeconds <= 0 {
		errs = append(errs, "scheduler: poll_timeout_seconds must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
