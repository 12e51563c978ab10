package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies LINESCOUT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known LINESCOUT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "LINESCOUT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "LINESCOUT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "LINESCOUT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "LINESCOUT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "LINESCOUT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "LINESCOUT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "LINESCOUT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "LINESCOUT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "LINESCOUT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "LINESCOUT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "LINESCOUT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "LINESCOUT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LINESCOUT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "LINESCOUT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "LINESCOUT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "LINESCOUT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "LINESCOUT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "LINESCOUT_S3_REGION")
	setStr(&cfg.S3.Bucket, "LINESCOUT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "LINESCOUT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "LINESCOUT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "LINESCOUT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "LINESCOUT_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "LINESCOUT_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "LINESCOUT_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "LINESCOUT_ARCHIVE_INTERVAL")

	// ── Sources ── API keys are the only per-source secret.
	setSourceStr(cfg, "odds_api", "LINESCOUT_SOURCES_ODDS_API_KEY",
		func(s *SourceConfig, v string) { s.APIKey = v })
	setSourceStr(cfg, "kalshi", "LINESCOUT_SOURCES_KALSHI_API_KEY",
		func(s *SourceConfig, v string) { s.APIKey = v })
	setSourceStr(cfg, "stx", "LINESCOUT_SOURCES_STX_API_KEY",
		func(s *SourceConfig, v string) { s.APIKey = v })

	// ── Arbitrage ──
	setFloat64(&cfg.Arbitrage.MinEdgePercent, "LINESCOUT_ARBITRAGE_MIN_EDGE_PERCENT")
	setInt(&cfg.Arbitrage.MaxDataAgeSeconds, "LINESCOUT_ARBITRAGE_MAX_DATA_AGE_SECONDS")
	setFloat64(&cfg.Arbitrage.ReferenceBankroll, "LINESCOUT_ARBITRAGE_REFERENCE_BANKROLL")

	// ── Middles ──
	setFloat64(&cfg.Middles.MinGapPoints, "LINESCOUT_MIDDLES_MIN_GAP_POINTS")
	setFloat64(&cfg.Middles.MinGapTotal, "LINESCOUT_MIDDLES_MIN_GAP_TOTAL")
	setBool(&cfg.Middles.PlayerProps.Enabled, "LINESCOUT_MIDDLES_PLAYER_PROPS_ENABLED")

	// ── Scheduler ──
	setInt(&cfg.Scheduler.CheckIntervalSeconds, "LINESCOUT_SCHEDULER_CHECK_INTERVAL_SECONDS")
	setFloat64(&cfg.Scheduler.CooldownMultiplier, "LINESCOUT_SCHEDULER_COOLDOWN_MULTIPLIER")
	setInt(&cfg.Scheduler.QuotaBuffer, "LINESCOUT_SCHEDULER_QUOTA_BUFFER")
	setInt(&cfg.Scheduler.DetectIntervalSeconds, "LINESCOUT_SCHEDULER_DETECT_INTERVAL_SECONDS")
	setInt(&cfg.Scheduler.PollTimeoutSeconds, "LINESCOUT_SCHEDULER_POLL_TIMEOUT_SECONDS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "LINESCOUT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "LINESCOUT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "LINESCOUT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "LINESCOUT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "LINESCOUT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

// setSourceStr applies an override to a map-valued source entry; map values
// are not addressable, so the entry is copied, mutated, and written back.
func setSourceStr(cfg *Config, source, key string, apply func(*SourceConfig, string)) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	src, ok := cfg.Sources[source]
	if !ok {
		return
	}
	apply(&src, v)
	cfg.Sources[source] = src
}
