package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type webServer struct {
	srv *http.Server
	lg  zerolog.Logger
}

func newWebServer(name, addr string, h http.Handler, lg zerolog.Logger) *webServer {
	return &webServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		lg: lg.With().Str("component", name+"_web").Logger(),
	}
}

// Start blocks until the server is shut down or ctx is cancelled.
func (s *webServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Stop(context.Background())
	}()

	s.lg.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *webServer) Stop(ctx context.Context) error {
	s.lg.Info().Msg("http server shutting down")
	return s.srv.Shutdown(ctx)
}
