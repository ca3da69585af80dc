package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/baechuer/orderflow/internal/application/notify"
	"github.com/baechuer/orderflow/internal/config"
	"github.com/baechuer/orderflow/internal/health"
	"github.com/baechuer/orderflow/internal/infrastructure/channel"
	"github.com/baechuer/orderflow/internal/infrastructure/memory"
	"github.com/baechuer/orderflow/internal/infrastructure/messaging/kafka"
	redisinfra "github.com/baechuer/orderflow/internal/infrastructure/redis"
	"github.com/baechuer/orderflow/internal/transport/http/handlers"
	"github.com/baechuer/orderflow/internal/transport/http/router"
)

type NotifierApp struct {
	consumer *kafka.Consumer
	web      *webServer
	handler  http.Handler
	redis    *redisinfra.Client
	lg       zerolog.Logger
}

func NewNotifierApp(cfg *config.Config, lg zerolog.Logger) (*NotifierApp, func(), error) {
	return newNotifierApp(cfg, kafka.GroupDialer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ClientID, cfg.Kafka.Version), lg)
}

func newNotifierApp(cfg *config.Config, dial kafka.DialFunc, lg zerolog.Logger) (*NotifierApp, func(), error) {
	app := &NotifierApp{lg: lg}
	agg := health.New()

	var limiter channel.RateLimiter
	if cfg.Redis.Enabled {
		rc, err := redisinfra.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		app.redis = rc
		limiter = redisinfra.NewRecipientLimiter(rc, cfg.ChannelRateLimit, cfg.ChannelRateWindow, lg)
		agg.Register("redis", false, health.Ping(rc.Ping))
		lg.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("redis enabled for recipient rate limit")
	} else {
		lg.Info().Msg("redis disabled (recipient rate limit)")
	}

	email := channel.NewEmailSender(cfg.EmailFrom, channel.Options{
		FailureRate: cfg.EmailFailureRate,
		Latency:     cfg.SendLatency,
		Limiter:     limiter,
	}, lg)
	sms := channel.NewSMSSender(cfg.SMSFallbackNumber, channel.Options{
		FailureRate: cfg.SMSFailureRate,
		Latency:     cfg.SendLatency,
		Limiter:     limiter,
	}, lg)

	orch := notify.NewOrchestrator([]notify.ChannelSender{email, sms}, memory.NewHistoryStore(), lg)
	h := notify.NewHandler(
		memory.NewDedupSet(cfg.DedupCapacity),
		orch,
		lg,
		notify.WithStatusNotifications(cfg.NotifyStatusUpdates),
	)
	app.consumer = kafka.NewConsumer(dial, cfg.Kafka.Topic, h, lg)

	agg.Register("consumer", true, health.ConsumerCheck(app.consumer))
	agg.Register("channels", true, health.ChannelsCheck(orch))

	app.handler = router.NewNotifier(handlers.NewNotificationsHandler(orch), handlers.NewHealthHandler(agg))
	app.web = newWebServer("notifier", cfg.NotifierHTTPAddr, app.handler, lg)

	cleanup := func() {
		lg.Info().Msg("performing final resource cleanup")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
		defer cancel()

		_ = app.Stop(ctx)
		if app.redis != nil {
			_ = app.redis.Close()
		}
	}
	return app, cleanup, nil
}

func (a *NotifierApp) Start(ctx context.Context) error {
	a.lg.Info().Msg("starting notification consumer")
	if err := a.consumer.Start(ctx); err != nil {
		return err
	}
	a.lg.Info().Msg("starting notification web")
	return a.web.Start(ctx)
}

// Stop closes the listener, then drains the consumer.
func (a *NotifierApp) Stop(ctx context.Context) error {
	a.lg.Info().Msg("shutting down notification service")
	return errors.Join(a.web.Stop(ctx), a.consumer.Stop(ctx))
}
