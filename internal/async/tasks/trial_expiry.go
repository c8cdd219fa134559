package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
)

// TrialSuspender lists expired trial tenants and settles them into a
// terminal status.
type TrialSuspender interface {
	ListExpiredTrials(ctx context.Context, processFunc func([]*model.Tenant) error) error
	Suspend(ctx context.Context, tenantID string) error
}

// TrialExpirySweeper suspends trial tenants whose trial has ended. Routing
// already refuses expired trials on every request; the sweep settles the
// stored status so listings and billing agree with what is served.
type TrialExpirySweeper struct {
	directory TrialSuspender
}

func NewTrialExpirySweeper(directory TrialSuspender) *TrialExpirySweeper {
	return &TrialExpirySweeper{directory: directory}
}

func (s *TrialExpirySweeper) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	log.Info(ctx, "Started trial expiry sweep")

	suspended := 0
	failed := 0

	err := s.directory.ListExpiredTrials(ctx, func(tenants []*model.Tenant) error {
		for _, tenant := range tenants {
			tenantCtx := log.InjectTenant(ctx, tenant.ID)

			err := s.directory.Suspend(tenantCtx, tenant.ID)
			if err != nil {
				log.Error(tenantCtx, "Suspending expired trial", err)

				failed++

				continue
			}

			suspended++
		}

		return nil
	})
	if err != nil {
		log.Error(ctx, "Listing expired trials", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	log.Info(ctx, "Trial expiry sweep completed",
		slog.Int("suspended", suspended),
		slog.Int("failed", failed),
	)

	if failed > 0 {
		return errs.Wrapf(ErrRunningTask, "some expired trials could not be suspended")
	}

	return nil
}

func (s *TrialExpirySweeper) TaskType() string {
	return config.TypeTrialExpiry
}
