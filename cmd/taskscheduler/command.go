package taskscheduler

import (
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/reasyhq/platform/internal/async"
	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/constants"
	reasylog "github.com/reasyhq/platform/internal/log"
)

func Cmd(buildInfo string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "task-scheduler",
		Short: "Reasy Task Scheduler",
		Long:  "Reasy Task Scheduler - Enqueues the periodic trial-expiry sweep and other scheduled tasks.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			defaultValues := map[string]any{}
			cfg := &config.Config{}

			err := commoncfg.LoadConfig(
				cfg,
				defaultValues,
				constants.DefaultConfigPath1,
				constants.DefaultConfigPath2,
				".",
			)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to load the config")
			}

			// Update Version
			err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
			if err != nil {
				return oops.In("main").
					Wrapf(err, "Failed to update the version configuration")
			}

			// LoggerConfig initialisation
			err = logger.InitAsDefault(cfg.Logger, cfg.Application)
			if err != nil {
				return oops.In("main").
					Wrapf(err, "Failed to initialise the logger")
			}

			scheduler, err := async.New(cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to create the scheduler")
			}

			err = scheduler.RunScheduler()
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to start the scheduler job")
			}

			<-ctx.Done()

			err = scheduler.Shutdown(ctx)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to shutdown the scheduler")
			}

			reasylog.Info(ctx, "shutting down scheduler")

			return err
		},
	}

	return cmd
}
