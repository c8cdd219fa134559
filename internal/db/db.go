package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"gorm.io/gorm"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
)

const DBLogDomain = "db"

// StartDB starts the DB connection and seeds the default plan registrations
// fall back to.
func StartDB(
	ctx context.Context,
	cfg *config.Config,
) (*multitenancy.DB, error) {
	log.Info(ctx, "Starting DB connection")

	dbCon, err := StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return nil, oops.In(DBLogDomain).Wrapf(err, "failed to initialize DB connection")
	}

	err = addDefaultPlan(ctx, dbCon, cfg.Registration.DefaultPlanSlug)
	if err != nil {
		return nil, oops.In(DBLogDomain).Wrapf(err, "failed to seed default plan")
	}

	return dbCon, nil
}

func addDefaultPlan(ctx context.Context, db *multitenancy.DB, slug string) error {
	plan := &model.Plan{
		ID:   uuid.New(),
		Name: slug,
		Slug: slug,
	}

	err := db.WithContext(ctx).Create(plan).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	return nil
}
