package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/application/intake"
	"github.com/baechuer/orderflow/internal/config"
	"github.com/baechuer/orderflow/internal/health"
	"github.com/baechuer/orderflow/internal/infrastructure/db/postgres"
	"github.com/baechuer/orderflow/internal/infrastructure/memory"
	"github.com/baechuer/orderflow/internal/infrastructure/messaging/kafka"
	"github.com/baechuer/orderflow/internal/transport/http/handlers"
	"github.com/baechuer/orderflow/internal/transport/http/router"
)

const intakeSource = "order-intake"

type orderStore interface {
	intake.OrderRepository
	Ping(ctx context.Context) error
}

type IntakeApp struct {
	web       *webServer
	handler   http.Handler
	publisher *kafka.Publisher
	db        *sql.DB
	lg        zerolog.Logger

	closeOnce sync.Once
}

func NewIntakeApp(cfg *config.Config, lg zerolog.Logger) (*IntakeApp, func(), error) {
	producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.Version)
	if err != nil {
		return nil, nil, err
	}
	app, err := newIntakeApp(cfg, producer, lg)
	if err != nil {
		_ = producer.Close()
		return nil, nil, err
	}
	return app, app.cleanup(cfg), nil
}

func newIntakeApp(cfg *config.Config, producer sarama.SyncProducer, lg zerolog.Logger) (*IntakeApp, error) {
	app := &IntakeApp{lg: lg}

	var repo orderStore
	switch cfg.OrderStore {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
		defer cancel()

		db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns: cfg.DBMaxOpenConns,
			MaxIdleConns: cfg.DBMaxIdleConns,
			ConnMaxIdle:  cfg.DBConnMaxIdle,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		pg := postgres.NewOrderRepo(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		app.db = db
		repo = pg
	default:
		repo = memory.NewOrderRepo()
	}
	lg.Info().Str("store", cfg.OrderStore).Msg("order store ready")

	app.publisher = kafka.NewPublisher(producer, cfg.Kafka.Topic, intakeSource, lg)
	svc := intake.NewService(repo, app.publisher, lg)

	agg := health.New()
	agg.Register("order_store", true, health.Ping(repo.Ping))

	app.handler = router.NewIntake(
		handlers.NewOrdersHandler(svc),
		handlers.NewHealthHandler(agg),
		router.RateLimit{Enabled: cfg.RLEnabled, Limit: cfg.RLLimit, Window: cfg.RLWindow},
	)
	app.web = newWebServer("intake", cfg.IntakeHTTPAddr, app.handler, lg)
	return app, nil
}

func (a *IntakeApp) Start(ctx context.Context) error {
	a.lg.Info().Msg("starting order intake")
	return a.web.Start(ctx)
}

func (a *IntakeApp) Stop(ctx context.Context) error {
	a.lg.Info().Msg("shutting down order intake")
	err := a.web.Stop(ctx)
	a.close()
	return err
}

func (a *IntakeApp) close() {
	a.closeOnce.Do(func() {
		if err := a.publisher.Close(); err != nil {
			a.lg.Warn().Err(err).Msg("producer close failed")
		}
		if a.db != nil {
			_ = a.db.Close()
		}
	})
}

func (a *IntakeApp) cleanup(cfg *config.Config) func() {
	return func() {
		a.lg.Info().Msg("performing final resource cleanup")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
		defer cancel()
		_ = a.web.Stop(ctx)
		a.close()
	}
}
