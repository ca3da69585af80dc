package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/orderflow/internal/metrics"
	"github.com/baechuer/orderflow/internal/transport/http/handlers"
	mw "github.com/baechuer/orderflow/internal/transport/http/middleware"
)

type RateLimit struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

func base(z *handlers.HealthHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(mw.AccessLog)

	r.Get("/healthz", z.Healthz)
	r.Get("/health", z.Health)
	r.Handle("/metrics", metrics.Handler())
	return r
}

// NewIntake routes the order intake API. The per-IP limit only guards
// order creation.
func NewIntake(o *handlers.OrdersHandler, z *handlers.HealthHandler, rl RateLimit) http.Handler {
	r := base(z)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/{order_id}", o.Get)
		r.Group(func(r chi.Router) {
			if rl.Enabled {
				r.Use(httprate.LimitByIP(rl.Limit, rl.Window))
			}
			r.Post("/", o.Create)
		})
	})

	return r
}

func NewNotifier(n *handlers.NotificationsHandler, z *handlers.HealthHandler) http.Handler {
	r := base(z)
	r.Get("/api/v1/notifications/{order_id}", n.List)
	return r
}
