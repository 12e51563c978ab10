package config

// RedactedConfig returns a copy of cfg with sensitive fields replaced by the
// redaction placeholder "***". Use this when logging or printing the active
// configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)
	redact(&out.Redis.Password)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy the sources map so redaction does not mutate the original.
	if cfg.Sources != nil {
		out.Sources = make(map[string]SourceConfig, len(cfg.Sources))
		for name, src := range cfg.Sources {
			redact(&src.APIKey)
			out.Sources[name] = src
		}
	}

	// Copy slices and maps so callers cannot mutate the original through the
	// redacted copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Arbitrage.Fees != nil {
		out.Arbitrage.Fees = make(map[string]float64, len(cfg.Arbitrage.Fees))
		for k, v := range cfg.Arbitrage.Fees {
			out.Arbitrage.Fees[k] = v
		}
	}
	if cfg.Players.Aliases != nil {
		out.Players.Aliases = make(map[string]string, len(cfg.Players.Aliases))
		for k, v := range cfg.Players.Aliases {
			out.Players.Aliases[k] = v
		}
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
