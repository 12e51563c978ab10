package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	s3blob "github.com/linescout/linescout/internal/blob/s3"
	"github.com/linescout/linescout/internal/cache/redis"
	"github.com/linescout/linescout/internal/config"
	"github.com/linescout/linescout/internal/detect"
	"github.com/linescout/linescout/internal/domain"
	"github.com/linescout/linescout/internal/match"
	"github.com/linescout/linescout/internal/notify"
	"github.com/linescout/linescout/internal/scheduler"
	"github.com/linescout/linescout/internal/service"
	"github.com/linescout/linescout/internal/source"
	"github.com/linescout/linescout/internal/store/postgres"
)

// Dependencies bundles everything the command modes need. It is constructed
// by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	EventStore       domain.EventStore
	PriceStore       domain.PriceStore
	PollStateStore   domain.PollStateStore
	OpportunityStore domain.OpportunityStore

	SignalBus domain.SignalBus
	RunCache  domain.RunCache

	Archiver domain.Archiver
	Notifier *notify.Notifier

	Adapters  []source.Adapter
	Scheduler *scheduler.Scheduler

	Ingest *service.IngestService
	Detect *service.DetectService
	Status *service.StatusService
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.EventStore = postgres.NewEventStore(pool)
	deps.PriceStore = postgres.NewPriceStore(pool)
	deps.PollStateStore = postgres.NewPollStateStore(pool)
	deps.OpportunityStore = postgres.NewOpportunityStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.SignalBus = redis.NewSignalBus(redisClient)
	deps.RunCache = redis.NewRunCache(redisClient)

	// --- S3 blob storage (archival only) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		retention := time.Duration(cfg.Archive.RetentionDays) * 24 * time.Hour
		deps.Archiver = s3blob.NewHistoryArchiver(
			s3blob.NewWriter(s3Client), deps.PriceStore, retention, logger,
		)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Ingestion adapters and scheduler ---
	// Team aliases must be in place before the first poll runs, or early
	// observations get non-canonical event IDs.
	domain.RegisterTeamAliases(cfg.Teams.Aliases)

	deps.Adapters, err = buildAdapters(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	schedCfgs := make([]scheduler.SourceConfig, 0, len(deps.Adapters))
	for _, adapter := range deps.Adapters {
		src := cfg.Sources[adapter.Name()]
		schedCfgs = append(schedCfgs, scheduler.SourceConfig{
			Name:         adapter.Name(),
			Enabled:      src.Enabled,
			PollInterval: src.PollInterval(),
			MonthlyQuota: src.MonthlyQuota,
		})
	}
	deps.Scheduler = scheduler.New(deps.PollStateStore, schedCfgs, scheduler.Options{
		CooldownMultiplier: cfg.Scheduler.CooldownMultiplier,
		QuotaBuffer:        cfg.Scheduler.QuotaBuffer,
		Alerter:            deps.Notifier,
	}, logger)

	// --- Services ---
	deps.Ingest = service.NewIngestService(deps.EventStore, deps.PriceStore, logger)

	matcher := match.New(cfg.Arbitrage.MaxDataAge(), match.PlayerAliases(cfg.Players.Aliases), logger)
	arbDetector := detect.NewArbDetector(
		cfg.Arbitrage.MinEdgePercent/100, cfg.Arbitrage.ReferenceBankroll, logger,
	)
	middleDetector := detect.NewMiddleDetector(detect.MiddleConfig{
		MinGapSpread: cfg.Middles.MinGapPoints,
		MinGapTotal:  cfg.Middles.MinGapTotal,
		Bankroll:     cfg.Arbitrage.ReferenceBankroll,
		Fees:         cfg.Arbitrage.Fees,
		Estimator: detect.NormalEstimator{
			SpreadStdDev: cfg.Middles.SpreadStdDev,
			TotalStdDev:  cfg.Middles.TotalStdDev,
			PropStdDev:   cfg.Middles.PropStdDev,
		},
	}, logger)

	deps.Detect = service.NewDetectService(
		deps.PriceStore, deps.OpportunityStore,
		matcher, arbDetector, middleDetector,
		deps.SignalBus, deps.RunCache, deps.Notifier,
		cfg.Middles.PlayerProps.Enabled,
		logger,
	)
	deps.Status = service.NewStatusService(
		deps.EventStore, deps.PriceStore, deps.PollStateStore, deps.RunCache, logger,
	)

	return deps, cleanup, nil
}

// buildAdapters constructs one adapter per enabled source, in stable name
// order. The adapter set is fixed; an unknown source name is a config error.
func buildAdapters(cfg *config.Config) ([]source.Adapter, error) {
	names := make([]string, 0, len(cfg.Sources))
	for name, src := range cfg.Sources {
		if src.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	adapters := make([]source.Adapter, 0, len(names))
	for _, name := range names {
		src := cfg.Sources[name]
		switch name {
		case "odds_api":
			adapters = append(adapters, source.NewOddsAPI(source.OddsAPIConfig{
				BaseURL: src.BaseURL,
				APIKey:  src.APIKey,
				Sports:  src.Sports,
				Markets: src.Markets,
				Books:   src.Books,
			}))
		case "polymarket":
			adapters = append(adapters, source.NewPolymarket(source.PolymarketConfig{
				BaseURL: src.BaseURL,
				Tags:    src.Tags,
				Limit:   src.Limit,
			}))
		case "kalshi":
			adapters = append(adapters, source.NewKalshi(source.KalshiConfig{
				BaseURL: src.BaseURL,
				Series:  src.Series,
				Limit:   src.Limit,
			}))
		case "stx":
			adapters = append(adapters, source.NewSTX(source.STXConfig{
				BaseURL: src.BaseURL,
				APIKey:  src.APIKey,
				Leagues: src.Leagues,
			}))
		default:
			return nil, fmt.Errorf("wire: unknown source %q", name)
		}
	}
	return adapters, nil
}
