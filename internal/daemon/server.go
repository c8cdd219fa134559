package daemon

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/samber/oops"

	"github.com/reasyhq/platform/internal/async"
	"github.com/reasyhq/platform/internal/authgate"
	"github.com/reasyhq/platform/internal/clients/availability"
	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/db"
	"github.com/reasyhq/platform/internal/handlers"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/middleware"
	"github.com/reasyhq/platform/internal/repo/sql"
	"github.com/reasyhq/platform/internal/routing"
	"github.com/reasyhq/platform/internal/session"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ServerLogDomain   = "server daemon"
)

// EdgeServer is the single HTTP entrypoint: it classifies every request by
// hostname, rewrites it into the right namespace and serves the JSON API.
type EdgeServer struct {
	cfg      *config.Config
	server   *http.Server
	asyncApp *async.App
}

type Server interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

func NewEdgeServer(ctx context.Context, cfg *config.Config) (*EdgeServer, error) {
	dbCon, err := db.StartDB(ctx, cfg)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "starting db")
	}

	repository := sql.NewRepository(dbCon)

	sessions, err := session.NewStoreFromConfig(cfg.Sessions, cfg.Sessions.SecureCookies)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "creating session store")
	}

	asyncApp, err := async.New(cfg)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "creating task client")
	}

	gate := authgate.New(repository)
	directory := manager.NewTenantDirectory(repository)
	router := routing.NewRouter(cfg.Router, directory, gate)

	registrations := manager.NewRegistrationManager(
		repository, asyncApp, cfg.Registration, cfg.Router.MainDomain,
	)
	bookings := manager.NewBookingManager(repository, newCalculator(ctx, cfg.Booking), cfg.Booking)

	return &EdgeServer{
		cfg:      cfg,
		asyncApp: asyncApp,
		server: createHTTPServer(
			cfg,
			handlers.New(registrations, bookings),
			router,
			sessions,
			gate,
		),
	}, nil
}

// newCalculator builds the scheduling assistant, or nil when it is disabled
// or misconfigured. Booking degrades to fallback slots in that case rather
// than refusing to start.
func newCalculator(ctx context.Context, cfg config.Booking) availability.Calculator {
	calculator, err := availability.NewAssistantCalculator(cfg.Assistant)
	if err != nil {
		if !errors.Is(err, availability.ErrAssistantDisabled) {
			log.Error(ctx, "scheduling assistant unavailable, bookings use fallback slots", err)
		}

		return nil
	}

	return calculator
}

func (s *EdgeServer) Start(ctx context.Context) error {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server encountered an error", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()

	return nil
}

func (s *EdgeServer) Close(ctx context.Context) error {
	err := s.asyncApp.Shutdown(ctx)
	if err != nil {
		log.Error(ctx, "failed to close task client", err)
	}

	shutdownCtx, shutdownRelease := context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	err = s.server.Shutdown(shutdownCtx)
	if err != nil {
		return oops.In(ServerLogDomain).
			WithContext(ctx).
			Wrapf(err, "failed shutting down HTTP server")
	}

	log.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}

func createHTTPServer(
	cfg *config.Config,
	h *handlers.Handlers,
	router *routing.Router,
	sessions *session.Store,
	gate middleware.AdminAuthorizer,
) *http.Server {
	adminNS := cfg.Router.AdminNamespace
	dashboardNS := cfg.Router.DashboardNamespace

	mux := NewServeMux(adminNS, dashboardNS)

	requireAdmin := middleware.RequireAdmin(gate, sessions)
	withTenant := middleware.InjectMultiTenancy()

	mux.HandleFunc("POST /api/signup", h.Signup)

	mux.Handle("GET "+adminNS+"/api/registrations", requireAdmin(http.HandlerFunc(h.ListRegistrations)))
	mux.Handle("POST "+adminNS+"/api/registrations/{id}/approve", requireAdmin(http.HandlerFunc(h.ApproveRegistration)))
	mux.Handle("POST "+adminNS+"/api/registrations/{id}/reject", requireAdmin(http.HandlerFunc(h.RejectRegistration)))

	mux.Handle("GET "+dashboardNS+"/api/availability", withTenant(http.HandlerFunc(h.Availability)))
	mux.Handle("POST "+dashboardNS+"/api/appointments", withTenant(http.HandlerFunc(h.CreateAppointment)))
	mux.Handle("GET "+dashboardNS+"/api/appointments", withTenant(http.HandlerFunc(h.ListAppointments)))

	// Middlewares run in a FILO. Last middleware on the slice is the first one ran
	// First middleware to run should be the InjectRequestID
	middlewares := []func(http.Handler) http.Handler{
		middleware.EdgeMiddleware(router, sessions),
		middleware.PanicRecoveryMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.InjectRequestID(),
	}

	var handler http.Handler = mux
	for _, mw := range middlewares {
		handler = mw(handler)
	}

	return &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}
}
