package edgeserver

import (
	"context"
	"log/slog"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/openkcm/common-sdk/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/constants"
	"github.com/reasyhq/platform/internal/daemon"
	"github.com/reasyhq/platform/internal/db"
	"github.com/reasyhq/platform/internal/db/dsn"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/repo/sql"
)

const (
	healthStatusTimeoutS = 5 * time.Second
	metricsPollInterval  = time.Minute
	postgresDriverName   = "pgx"
)

// - Starts the status server
// - Starts the edge server
func run(ctx context.Context, cfg *config.Config) error {
	// LoggerConfig initialisation
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	log.Debug(ctx, "Starting the application", slog.Any("config", cfg))

	// OpenTelemetry initialisation
	err = otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to load the telemetry")
	}

	// Start status server
	startStatusServer(ctx, cfg)

	// Create and start the edge server
	s, err := daemon.NewEdgeServer(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating edge server")
	}

	err = s.Start(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting edge server")
	}

	<-ctx.Done()

	err = s.Close(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "closing server")
	}

	return nil
}

// monitorOnboarding exposes the two numbers an operator watches on this
// platform: registrations waiting for review and trials past their end date
// that the sweep has not suspended yet.
func monitorOnboarding(
	ctx context.Context,
	cfg config.Config,
) {
	pendingRegistrations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "registration_requests_pending",
		Help: "The number of registration requests awaiting review",
	})
	expiredTrials := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trial_tenants_expired",
		Help: "The number of trial tenants past their trial end awaiting suspension",
	})

	prometheus.MustRegister(pendingRegistrations, expiredTrials)

	log.Debug(ctx, "Registering onboarding gauge metrics")

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		log.Error(ctx, "failed to initialize DB Connection", err)
		return
	}

	repository := sql.NewRepository(dbCon)
	registrations := manager.NewRegistrationManager(repository, nil, cfg.Registration, cfg.Router.MainDomain)
	directory := manager.NewTenantDirectory(repository)

	ticker := time.NewTicker(metricsPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "stopping onboarding monitoring")
			return
		case <-ticker.C:
			count, err := registrations.CountPending(ctx)
			if err != nil {
				log.Error(ctx, "failed to count pending registrations", err)
			} else {
				pendingRegistrations.Set(float64(count))
			}

			expired := 0

			err = directory.ListExpiredTrials(ctx, func(tenants []*model.Tenant) error {
				expired += len(tenants)
				return nil
			})
			if err != nil {
				log.Error(ctx, "failed to count expired trials", err)
			} else {
				expiredTrials.Set(float64(expired))
			}
		}
	}
}

func startStatusServer(ctx context.Context, cfg *config.Config) {
	liveness := status.WithLiveness(
		health.NewHandler(
			health.NewChecker(health.WithDisabledAutostart()),
		),
	)

	healthOptions := make([]health.Option, 0)
	healthOptions = append(healthOptions,
		health.WithDisabledAutostart(),
		health.WithTimeout(healthStatusTimeoutS),
		health.WithStatusListener(func(ctx context.Context, state health.State) {
			log.Info(ctx, "readiness status changed", slog.String("status", string(state.Status)))
		}),
	)

	dsnFromConfig, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		log.Error(ctx, "Could not load DSN from database config", err)
	}

	healthOptions = append(healthOptions,
		health.WithDatabaseChecker(
			postgresDriverName,
			dsnFromConfig,
		),
	)

	readiness := status.WithReadiness(
		health.NewHandler(
			health.NewChecker(healthOptions...),
		),
	)

	if cfg.Telemetry.Metrics.Prometheus.Enabled {
		go monitorOnboarding(ctx, *cfg)
	}

	go func() {
		err := status.Start(ctx, &cfg.BaseConfig, liveness, readiness)
		if err != nil {
			log.Error(ctx, "Failure on the status server", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	loader := commoncfg.NewLoader(
		cfg,
		commoncfg.WithPaths(
			constants.DefaultConfigPath1,
			constants.DefaultConfigPath2,
			".",
		),
		commoncfg.WithEnvOverride(constants.APIName),
	)

	err := loader.LoadConfig()
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to load config")
	}

	// Update Version
	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}

func Cmd(buildInfo string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "edge-server",
		Short: "Reasy Edge Server",
		Long:  "Reasy Edge Server resolves tenant subdomains, enforces the admin gate and serves the booking API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to load config")
			}

			err = run(cmd.Context(), cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to run the edge server")
			}

			return err
		},
	}

	return cmd
}
