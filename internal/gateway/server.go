package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mnemo/internal/agent"
	"mnemo/internal/channels"
	"mnemo/internal/history"
)

// HistoryStore is the part of the event log the gateway reads and compacts.
type HistoryStore interface {
	Window(ctx context.Context, userID string, limit int) ([]history.Event, error)
	Export(ctx context.Context, userID string) ([]history.Event, error)
	Compact(ctx context.Context, userID string) (int, error)
}

type Option func(*Server)

func WithCookieName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithHistoryWindow sets the /history limit used when none is given.
func WithHistoryWindow(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.window = n
		}
	}
}

func WithChannels(chs ...channels.Channel) Option {
	return func(s *Server) { s.channels = append(s.channels, chs...) }
}

type Server struct {
	runner     agent.Runner
	history    HistoryStore
	cookieName string
	window     int
	channels   []channels.Channel
	mux        *http.ServeMux
}

func NewServer(runner agent.Runner, hist HistoryStore, opts ...Option) *Server {
	s := &Server{
		runner:     runner,
		history:    hist,
		cookieName: "uid",
		window:     100,
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	for _, ch := range s.channels {
		ch.RegisterRoutes(s.mux)
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /export", s.handleExport)
	s.mux.HandleFunc("POST /clear", s.handleClear)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// Handler returns the instrumented root handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.mux, "mnemo.gateway",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
