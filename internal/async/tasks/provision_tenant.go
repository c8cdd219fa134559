package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
	asyncUtils "github.com/reasyhq/platform/utils/async"
)

// TenantMigrator brings a tenant's schema to the latest migration version.
type TenantMigrator interface {
	MigrateTenantToLatest(ctx context.Context, tenant *model.Tenant) error
}

// TenantResolver fetches tenants by id.
type TenantResolver interface {
	LookupByID(ctx context.Context, id string) (*model.Tenant, error)
}

// TenantProvisioner creates and migrates the schema of a freshly approved
// tenant. It runs as a background task so approval stays fast and schema
// creation retries on failure.
type TenantProvisioner struct {
	migrator  TenantMigrator
	directory TenantResolver
}

func NewTenantProvisioner(migrator TenantMigrator, directory TenantResolver) *TenantProvisioner {
	return &TenantProvisioner{
		migrator:  migrator,
		directory: directory,
	}
}

func (p *TenantProvisioner) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := asyncUtils.ParseTaskPayload(task.Payload())
	if err != nil {
		return errs.Wrap(ErrInvalidPayload, err)
	}

	tenantID := string(payload.Data)
	if tenantID == "" {
		return ErrInvalidPayload
	}

	ctx = log.InjectTenant(payload.InjectContext(ctx), tenantID)
	log.Info(ctx, "Provisioning tenant schema")

	tenant, err := p.directory.LookupByID(ctx, tenantID)
	if err != nil {
		log.Error(ctx, "Looking up tenant to provision", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	err = p.migrator.MigrateTenantToLatest(ctx, tenant)
	if err != nil {
		log.Error(ctx, "Migrating tenant schema", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	log.Info(ctx, "Tenant schema provisioned", slog.String("schema", tenant.SchemaName))

	return nil
}

func (p *TenantProvisioner) TaskType() string {
	return config.TypeTenantProvision
}
