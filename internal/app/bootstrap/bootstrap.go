package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	marketplaceprogram "metamarket/contexts/finance-core/marketplace-program"
	postgresadapter "metamarket/contexts/finance-core/marketplace-program/adapters/postgres"
	workerapp "metamarket/contexts/finance-core/marketplace-program/application/workers"
	"metamarket/contexts/finance-core/marketplace-program/domain/entities"
	domainerrors "metamarket/contexts/finance-core/marketplace-program/domain/errors"
	"metamarket/contexts/finance-core/marketplace-program/ports"
	"metamarket/internal/platform/config"
	"metamarket/internal/platform/db"
	"metamarket/internal/platform/httpserver"
	"metamarket/internal/platform/messaging"
	"metamarket/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// programEventTypes are the topics the outbox relay publishes to.
var programEventTypes = []string{
	"marketplace.initialized",
	"module.listed",
	"module.purchased",
	"revenue.collected",
	"mint.initialized",
	"tokens.minted",
	"tokens.burned",
	"tokens.transferred",
}

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	// relay runs in-process when the outbox lives in memory.
	relay        *workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	bus          *messaging.Bus
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	programID, tokenProgramID, err := programIDs(cfg)
	if err != nil {
		return nil, err
	}
	rent := entities.Rent{
		LamportsPerByteYear:     cfg.RentLamportsPerByteYear,
		ExemptionThresholdYears: cfg.RentExemptionThresholdYears,
	}
	appMetrics := metrics.New()

	app := &APIApp{
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}

	var limiter *httpserver.RateLimiter
	if cfg.SubmitRatePerSecond > 0 {
		limiter, err = httpserver.NewRateLimiter(cfg.SubmitRatePerSecond, cfg.SubmitBurst, cfg.TrustedProxies)
		if err != nil {
			return nil, fmt.Errorf("build submit rate limiter: %w", err)
		}
	}

	var module marketplaceprogram.Module
	switch cfg.StorageBackend {
	case "postgres":
		pg, err := connectPostgres(cfg)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := seedRentSysvar(context.Background(), repo, rent); err != nil {
			_ = pg.Close()
			return nil, err
		}
		module = marketplaceprogram.NewModule(marketplaceprogram.Dependencies{
			ProgramID:      programID,
			TokenProgramID: tokenProgramID,
			Accounts:       repo,
			Allocator:      repo,
			Ledger:         postgresadapter.NewLedger(pg.DB, logger),
			Idempotency:    repo,
			Outbox:         repo,
			Clock:          postgresadapter.UTCClock{},
			IDGenerator:    postgresadapter.EventIDGenerator{},
			Observer:       appMetrics,
			IdempotencyTTL: cfg.IdempotencyTTL,
			Logger:         logger,
		})
		app.postgres = pg
	default:
		module = marketplaceprogram.NewInMemoryModule(programID, tokenProgramID, rent, appMetrics, logger)
		bus := messaging.NewBus(cfg.KafkaBrokers, logger)
		app.relay = &workerapp.OutboxRelay{
			Outbox:    module.Outbox,
			Publisher: countingPublisher{next: bus, metrics: appMetrics},
			Clock:     module.Store,
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		}
	}

	app.server = httpserver.New(module, logger, httpserver.Options{
		Addr:          normalizeAddr(cfg.HTTPPort),
		Metrics:       appMetrics,
		Limiter:       limiter,
		EnableSwagger: cfg.EnableSwagger,
	})

	logger.Info("api app built",
		"event", "bootstrap_api_built",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"storage_backend", cfg.StorageBackend,
		"program_id", programID.String(),
		"token_program_id", tokenProgramID.String(),
	)
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	pg, err := connectPostgres(cfg)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		bus:      bus,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: countingPublisher{next: bus, metrics: metrics.New()},
			Clock:     postgresadapter.UTCClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	if a.relay != nil {
		go runRelay(ctx, *a.relay, a.pollInterval, a.logger)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	for _, topic := range programEventTypes {
		if err := w.bus.Subscribe(ctx, topic, "metamarket-event-audit-cg", w.auditEvent); err != nil {
			return err
		}
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"brokers", w.bus.Brokers(),
	)
	return runRelay(ctx, w.outboxRelay, w.pollInterval, w.logger)
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) auditEvent(_ context.Context, event ports.EventEnvelope) error {
	w.logger.Info("program event observed",
		"event", "worker_program_event_observed",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
	)
	return nil
}

func runRelay(ctx context.Context, relay workerapp.OutboxRelay, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := relay.RunOnce(ctx); err != nil {
			// The relay retries the same batch on the next tick.
			logger.Error("outbox relay cycle failed",
				"event", "bootstrap_outbox_relay_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// countingPublisher reports relayed events to metrics.
type countingPublisher struct {
	next    ports.EventPublisher
	metrics *metrics.Metrics
}

func (p countingPublisher) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := p.next.Publish(ctx, topic, event); err != nil {
		return err
	}
	p.metrics.OutboxRelayed(1)
	return nil
}

func connectPostgres(cfg config.Config) (*db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(db.Options{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := postgresadapter.Migrate(pg.DB); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("migrate program tables: %w", err)
	}
	return pg, nil
}

func programIDs(cfg config.Config) (entities.Pubkey, entities.Pubkey, error) {
	programID, err := entities.ParsePubkey(cfg.ProgramID)
	if err != nil {
		return entities.Pubkey{}, entities.Pubkey{}, fmt.Errorf("PROGRAM_ID: %w", err)
	}
	tokenProgramID, err := entities.ParsePubkey(cfg.TokenProgramID)
	if err != nil {
		return entities.Pubkey{}, entities.Pubkey{}, fmt.Errorf("TOKEN_PROGRAM_ID: %w", err)
	}
	return programID, tokenProgramID, nil
}

func seedRentSysvar(ctx context.Context, allocator ports.AccountAllocator, rent entities.Rent) error {
	data, err := rent.MarshalBinary()
	if err != nil {
		return err
	}
	err = allocator.CreateAccount(ctx, entities.Account{
		Address: entities.RentSysvarID,
		Owner:   entities.SystemProgramID,
		Data:    data,
	})
	if err != nil && !errors.Is(err, domainerrors.ErrAccountExists) {
		return err
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
