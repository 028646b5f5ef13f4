// Package runtime assembles the funding ledger from configuration and
// manages the process lifecycle.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/FundPool-Network/funding_ledger/internal/api/httpserver"
	app "github.com/FundPool-Network/funding_ledger/internal/app"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/events"
	"github.com/FundPool-Network/funding_ledger/internal/app/httpapi"
	"github.com/FundPool-Network/funding_ledger/internal/app/metrics"
	"github.com/FundPool-Network/funding_ledger/internal/app/storage/postgres"
	"github.com/FundPool-Network/funding_ledger/internal/chain"
	"github.com/FundPool-Network/funding_ledger/internal/config"
	"github.com/FundPool-Network/funding_ledger/internal/custody"
	"github.com/FundPool-Network/funding_ledger/internal/middleware"
	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	httpServer *httpserver.Server
	db         *sql.DB
	redis      *redis.Client
}

// NewApplication constructs a new application instance with default wiring.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig wires the application against an explicit config.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.New(cfg.Logging)

	stores, db, err := buildStores(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	backend, err := buildCustody(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure custody: %w", err)
	}

	hub := events.NewHub(log)
	publishers := events.Fanout{events.NewLogPublisher(log), hub}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		publishers = append(publishers, events.NewRedisPublisher(redisClient, cfg.Redis.Channel, log))
	}

	application, err := app.New(stores, backend, app.Config{
		Admin:       identityFrom(cfg.Custody.AdminAddress),
		PoolAddress: identityFrom(cfg.Custody.PoolAddress),
	}, publishers, log)
	if err != nil {
		return nil, err
	}
	if err := application.Attach(hub); err != nil {
		return nil, err
	}

	handlerOpts := []httpapi.Option{httpapi.WithEventHub(hub)}
	if cfg.Server.AuditLogPath != "" {
		handlerOpts = append(handlerOpts, httpapi.WithAuditSink(cfg.Server.AuditLogPath))
	}
	handler := httpapi.NewHandler(application, handlerOpts...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", handler)

	var wrapped http.Handler = metrics.InstrumentHandler(mux)
	if cfg.Server.RateLimitPerSec > 0 {
		rl := middleware.NewRateLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst, log)
		rl.StartCleanup(time.Minute)
		wrapped = rl.Handler(wrapped)
	}
	wrapped = middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins).Handler(wrapped)

	return &Application{
		cfg:        cfg,
		log:        log,
		app:        application,
		httpServer: httpserver.New(cfg.Server, log, wrapped),
		db:         db,
		redis:      redisClient,
	}, nil
}

// Run starts the services and the HTTP server, blocking until the context is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
		if err := a.httpServer.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server, the services, and the backing
// connections.
func (a *Application) Shutdown(ctx context.Context) error {
	grace := time.Duration(a.cfg.Server.ShutdownGraceSecs) * time.Second
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("error closing redis connection")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func buildStores(cfg *config.Config) (app.Stores, *sql.DB, error) {
	if cfg.Database.Driver == "" {
		// In-memory stores; app.New fills the zero value.
		return app.Stores{}, nil, nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return app.Stores{}, nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return app.Stores{}, nil, err
	}

	store := postgres.New(db)
	return app.Stores{Programs: store, Pool: store}, db, nil
}

func buildCustody(cfg *config.Config, log *logger.Logger) (custody.Backend, error) {
	client, err := chain.NewClient(chain.Config{
		RPCURL:  cfg.Custody.RPCURL,
		Timeout: time.Duration(cfg.Custody.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return custody.NewTokenBackend(client, custody.TokenConfig{
		ContractHash: cfg.Custody.TokenContract,
		PoolAddress:  identityFrom(cfg.Custody.PoolAddress),
	}, log)
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func identityFrom(raw string) identity.Address {
	return identity.Normalize(raw)
}
