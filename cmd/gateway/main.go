// Command gateway runs the lottery HTTP gateway: ticket intake, scheduled
// settlement, and result announcements.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/drawworks/lotto/internal/app"
	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/httpapi"
	"github.com/drawworks/lotto/internal/app/services/numbers"
	"github.com/drawworks/lotto/internal/app/storage/memory"
	"github.com/drawworks/lotto/internal/app/storage/postgres"
	"github.com/drawworks/lotto/internal/app/storage/redisstore"
	"github.com/drawworks/lotto/internal/config"
	"github.com/drawworks/lotto/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	stores, cleanup, err := buildStores(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var source numbers.Source
	if cfg.NumberSource.URL != "" {
		client := &http.Client{Timeout: cfg.NumberSource.Timeout}
		source, err = numbers.NewHTTPSource(client, cfg.NumberSource.URL, log)
		if err != nil {
			return fmt.Errorf("number source: %w", err)
		}
	} else {
		log.Warn("no number source configured; draws cannot be settled")
	}

	schedule := draw.Schedule{
		Weekday:  cfg.DrawWeekday(),
		Hour:     cfg.Draw.Hour,
		Minute:   cfg.Draw.Minute,
		Location: cfg.DrawLocation(),
	}

	application, err := app.New(stores, app.Options{
		Schedule:       schedule,
		Source:         source,
		FetchCount:     cfg.NumberSource.FetchCount,
		SettlementCron: cfg.Draw.SettlementCron,
	}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpapi.New(application, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown incomplete")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("service shutdown incomplete")
	}
	return nil
}

// buildStores selects persistence backends from the configuration. Postgres
// backs everything when a DSN is present; Redis, when configured, takes over
// the announcement and winning-number records for cheap idempotent reads.
func buildStores(cfg config.Config, log *logger.Logger) (app.Stores, func(), error) {
	cleanup := func() {}

	if cfg.Database.DSN == "" {
		log.Warn("no database configured; using in-memory stores (state is lost on restart)")
		mem := memory.New()
		stores := app.Stores{
			Tickets:        mem,
			WinningNumbers: mem,
			Verdicts:       mem,
			Announcements:  mem,
		}
		attachRedis(cfg, &stores, log)
		return stores, cleanup, nil
	}

	db, err := sqlx.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return app.Stores{}, cleanup, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return app.Stores{}, cleanup, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return app.Stores{}, cleanup, fmt.Errorf("migrate database: %w", err)
	}

	pg := postgres.New(db)
	stores := app.Stores{
		Tickets:        pg,
		WinningNumbers: pg,
		Verdicts:       pg,
		Announcements:  pg,
	}
	attachRedis(cfg, &stores, log)

	cleanup = func() { _ = db.Close() }
	return stores, cleanup, nil
}

func attachRedis(cfg config.Config, stores *app.Stores, log *logger.Logger) {
	if cfg.Redis.Addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rs := redisstore.New(client)
	stores.Announcements = rs
	stores.WinningNumbers = rs
	log.Infof("redis store attached (%s)", cfg.Redis.Addr)
}
