// Package server exposes the sheet proxy, the order submission endpoints
// and the dashboard API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/secure"

	"cafedash/internal/config"
	"cafedash/internal/dashboard"
	"cafedash/internal/dataset"
	"cafedash/internal/logger"
	"cafedash/internal/ordering"
	"cafedash/internal/sheets"
)

// Deps are the collaborators the handlers use.
type Deps struct {
	// Reader reads tabs of the configured spreadsheet, usually through the
	// row cache.
	Reader sheets.Reader
	// Remote reads tabs of other spreadsheets; nil for the xlsx source.
	Remote    sheets.SpreadsheetReader
	Loader    *dataset.Loader
	Dashboard *dashboard.Service
	Composer  *ordering.Composer
	// Webhook is nil when no order webhook is configured.
	Webhook *ordering.WebhookClient
	Metrics *Metrics
}

// Server is the HTTP front of the application.
type Server struct {
	cfg    *config.Config
	deps   Deps
	router chi.Router
	log    zerolog.Logger
}

// New builds the router. The returned server is ready to Run.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		log:  logger.WithComponent("server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) middlewares() []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      s.cfg.AppEnv != "production",
	})

	return []func(http.Handler) http.Handler{
		middleware.RealIP,
		hlog.NewHandler(s.log),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Request")
		}),
		middleware.Recoverer,
		secureMiddleware.Handler,
		s.deps.Metrics.Middleware,
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.middlewares()...)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	orderLimit := httprate.Limit(s.cfg.SendOrderPerMin, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			fail(w, r, newAPIError(http.StatusTooManyRequests, "RATE_LIMITED", "too many orders, try again later"))
		}),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/get-sheet-data", s.handleGetSheetData)
		r.Post("/get-sheet-data", s.handleGetSheetData)

		r.With(orderLimit).Post("/send-order", s.handleSendOrder)

		r.Get("/providers", s.handleProviders)
		r.Post("/orders/quote", s.handleQuote)
		r.With(orderLimit).Post("/orders", s.handleCreateOrder)

		r.Group(func(r chi.Router) {
			r.Use(s.identify)
			r.Get("/dashboard/orders", s.handleOrdersDashboard)
			r.Get("/dashboard/orders/export", s.handleOrdersExport)
			r.Get("/dashboard/invoices", s.handleInvoicesDashboard)
			r.Get("/dashboard/invoices/export", s.handleInvoicesExport)
			r.Get("/invoices/{id}/items", s.handleInvoiceItems)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, newAPIError(http.StatusNotFound, "NOT_FOUND", "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, newAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"))
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	const op = "server.Run"

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown: %w", op, err)
	}
	return nil
}
