// Package control wires the collector's components together and manages
// their lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/collector/internal/calendar"
	"github.com/vietddude/collector/internal/core/config"
	"github.com/vietddude/collector/internal/core/domain"
	"github.com/vietddude/collector/internal/core/worker"
	"github.com/vietddude/collector/internal/health"
	"github.com/vietddude/collector/internal/infra/api"
	"github.com/vietddude/collector/internal/infra/ratelimit"
	redisclient "github.com/vietddude/collector/internal/infra/redis"
	"github.com/vietddude/collector/internal/infra/retry"
	"github.com/vietddude/collector/internal/infra/storage"
	"github.com/vietddude/collector/internal/infra/storage/memory"
	"github.com/vietddude/collector/internal/infra/storage/postgres"
	"github.com/vietddude/collector/internal/pipeline"
	"github.com/vietddude/collector/internal/pipeline/metrics"
	"github.com/vietddude/collector/internal/validation"
)

func newLimiter(rl config.RateLimitConfig) *ratelimit.Limiter {
	return ratelimit.New([]ratelimit.WindowConfig{
		{Name: "minute", Limit: rl.PerMinute, Interval: time.Minute},
		{Name: "day", Limit: rl.PerDay, Interval: 24 * time.Hour},
	})
}

// Collector is the main application struct.
type Collector struct {
	cfg          *config.AppConfig
	limiter      *ratelimit.Limiter
	orchestrator *pipeline.Orchestrator
	runRepo      storage.RunRepository
	checkpoint   *redisclient.Client
	pruner       *worker.Pruner
	healthMon    *health.Monitor
	healthServer *health.Server
	db           *postgres.DB
	log          *slog.Logger

	cancel context.CancelFunc
}

// New creates a Collector with all dependencies initialized.
func New(cfg *config.AppConfig) (*Collector, error) {
	log := slog.Default()

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Jitter:      cfg.Retry.Jitter,
	}

	limiter := newLimiter(cfg.RateLimit)
	client := api.NewClient(api.Config{
		Name:    cfg.API.Name,
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.Key,
		Timeout: cfg.API.Timeout,
	}, limiter, policy, log)

	// Each fallback provider runs against its own quota windows.
	var fetcher pipeline.Fetcher = client
	if len(cfg.API.Fallbacks) > 0 {
		clients := []*api.Client{client}
		for _, f := range cfg.API.Fallbacks {
			rl := f.RateLimit
			if rl.PerMinute == 0 && rl.PerDay == 0 {
				rl = cfg.RateLimit
			}
			clients = append(clients, api.NewClient(api.Config{
				Name:    f.Name,
				BaseURL: f.BaseURL,
				APIKey:  f.Key,
				Timeout: f.Timeout,
			}, newLimiter(rl), policy, log))
		}
		fetcher = api.NewFailover(clients, log)
		log.Info("provider failover enabled", "providers", len(clients))
	}

	cal := calendar.NewTableCalendar(cfg.Validation.Holidays)
	engine := validation.NewEngine(validation.Config{
		MaxDailyChangePct: cfg.Validation.MaxDailyChangePct,
		Market:            cfg.Validation.Market,
		Timezone:          cfg.Validation.Timezone,
	}, cal, log)

	// Storage: postgres when configured, in-memory otherwise.
	var sink storage.Sink
	var runRepo storage.RunRepository
	var pruner *worker.Pruner
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		pgSink := postgres.NewSink(db)
		sink = pgSink
		runRepo = postgres.NewRunRepo(db)
		pruner = worker.NewPruner(cfg.Retention.Period, pgSink, log)
		log.Info("using postgres storage")
	} else {
		memSink := memory.NewSink()
		sink = memSink
		runRepo = memSink
		log.Info("using in-memory storage")
	}

	var checkpoint *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		checkpoint, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		log.Info("checkpoint store enabled")
	}

	orch := pipeline.New(pipeline.Config{
		MaxConcurrency: cfg.Pipeline.MaxConcurrency,
		BatchTimeout:   cfg.Pipeline.BatchTimeout,
		ForwardInvalid: cfg.Pipeline.ForwardInvalid,
	}, fetcher, engine, sink, log)

	mon := health.NewMonitor(limiter)

	return &Collector{
		cfg:          cfg,
		limiter:      limiter,
		orchestrator: orch,
		runRepo:      runRepo,
		checkpoint:   checkpoint,
		pruner:       pruner,
		healthMon:    mon,
		healthServer: health.NewServer(mon, cfg.Server.Port),
		db:           db,
		log:          log,
	}, nil
}

// Start launches the health server and background workers.
func (c *Collector) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		if err := c.healthServer.Start(); err != nil && ctx.Err() == nil {
			c.log.Error("health server stopped", "error", err)
		}
	}()

	if c.pruner != nil {
		go c.pruner.Start(ctx)
	}

	c.log.Info("collector started", "port", c.cfg.Server.Port)
	return nil
}

// Collect runs one collection over the configured symbol universe. Symbols
// already checkpointed today are skipped; successes are checkpointed after
// the run.
func (c *Collector) Collect(ctx context.Context) (*domain.Run, error) {
	symbols := c.cfg.Symbols
	day := time.Now().UTC().Format("2006-01-02")

	if c.checkpoint != nil {
		pending := symbols[:0:0]
		for _, s := range symbols {
			done, err := c.checkpoint.Collected(ctx, day, s)
			if err != nil {
				return nil, fmt.Errorf("checkpoint lookup: %w", err)
			}
			if !done {
				pending = append(pending, s)
			}
		}
		if skipped := len(symbols) - len(pending); skipped > 0 {
			c.log.Info("resuming collection", "skipped", skipped, "pending", len(pending))
		}
		symbols = pending
		if len(symbols) == 0 {
			c.log.Info("nothing to collect, all symbols checkpointed", "day", day)
			return nil, nil
		}
	}

	run, err := c.orchestrator.Run(ctx, symbols, domain.Request{
		Endpoint: domain.EndpointKind(c.cfg.API.Endpoint),
	})
	if err != nil {
		return nil, err
	}

	c.healthMon.RecordRun(run)
	for _, w := range c.limiter.Status() {
		metrics.QuotaRemaining.WithLabelValues(w.Name).Set(float64(w.Remaining))
	}

	if c.checkpoint != nil {
		for symbol, res := range run.Outcomes() {
			if res.Outcome != domain.OutcomeSuccess || res.SinkErr != "" {
				continue
			}
			if err := c.checkpoint.MarkCollected(ctx, day, symbol); err != nil {
				c.log.Warn("checkpoint write failed", "symbol", symbol, "error", err)
			}
		}
	}

	if err := c.runRepo.SaveRun(ctx, run); err != nil {
		c.log.Error("failed to persist run summary", "run_id", run.ID, "error", err)
	}

	return run, nil
}

// Stop gracefully shuts everything down.
func (c *Collector) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.healthServer.Stop(ctx); err != nil {
		return err
	}
	if c.checkpoint != nil {
		if err := c.checkpoint.Close(); err != nil {
			c.log.Warn("redis close failed", "error", err)
		}
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
