package dbmigrator

import (
	"context"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/constants"
	"github.com/reasyhq/platform/internal/db"
	"github.com/reasyhq/platform/internal/repo/sql"
)

const (
	defaultTarget = "all"
	defaultType   = "schema"
	targetOptions = "shared, all, or tenant"
	typeOptions   = "data or schema"
)

func run(
	ctx context.Context,
	cfg *config.Config,
	migration db.Migration,
	version int64,
) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return err
	}

	r := sql.NewRepository(dbCon)

	m, err := db.NewMigrator(r, cfg)
	if err != nil {
		return err
	}

	if version != 0 {
		return m.MigrateTo(ctx, migration, version)
	}

	return m.MigrateToLatest(ctx, migration)
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	err := commoncfg.LoadConfig(
		cfg,
		map[string]any{},
		constants.DefaultConfigPath1,
		constants.DefaultConfigPath2,
		".",
	)
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to load the config")
	}

	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	return cfg, nil
}

func Cmd(buildInfo string) *cobra.Command {
	var (
		version       int64
		rollback      bool
		target        string
		migrationType string
	)

	cmd := &cobra.Command{
		Use:   "db-migrator",
		Short: "Reasy DB Migrator",
		Long:  "Reasy DB Migrator runs goose migrations against the shared schema and every tenant schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return err
			}

			migration := db.Migration{
				Downgrade: rollback,
				Type:      db.MigrationType(migrationType),
				Target:    db.MigrationTarget(target),
			}

			return run(cmd.Context(), cfg, migration, version)
		},
	}

	cmd.Flags().Int64Var(&version, "version", 0, "run migration until targeted version")
	cmd.Flags().BoolVarP(&rollback, "rollback", "r", false, "run down migrations (rollback)")
	cmd.Flags().StringVar(&target, "target", defaultTarget, "migration target ("+targetOptions+")")
	cmd.Flags().StringVar(&migrationType, "type", defaultType, "migration type ("+typeOptions+")")

	return cmd
}
