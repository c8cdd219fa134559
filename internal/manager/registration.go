package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/model"
	"github.com/reasyhq/platform/internal/repo"
	asyncUtils "github.com/reasyhq/platform/utils/async"
)

// TaskEnqueuer submits background tasks for later processing.
type TaskEnqueuer interface {
	EnqueueTask(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RegistrationManager owns the tenant onboarding lifecycle: prospective
// businesses file a registration request, a platform admin approves or
// rejects it, and approval creates the tenant and kicks off schema
// provisioning in the background.
type RegistrationManager struct {
	repo       repo.Repo
	enqueuer   TaskEnqueuer
	cfg        config.Registration
	mainDomain string
	now        func() time.Time
}

func NewRegistrationManager(
	r repo.Repo,
	enqueuer TaskEnqueuer,
	cfg config.Registration,
	mainDomain string,
) *RegistrationManager {
	return &RegistrationManager{
		repo:       r,
		enqueuer:   enqueuer,
		cfg:        cfg,
		mainDomain: mainDomain,
		now:        time.Now,
	}
}

// CreateRequest files a new registration. The business name must map onto a
// claimable subdomain slug; a reserved name is rejected here rather than at
// approval so the applicant learns immediately.
func (m *RegistrationManager) CreateRequest(ctx context.Context, request *model.RegistrationRequest) error {
	request.BusinessName = strings.TrimSpace(request.BusinessName)
	request.Email = strings.ToLower(strings.TrimSpace(request.Email))

	if request.BusinessName == "" || request.Email == "" {
		return ErrInvalidRegistration
	}

	err := validateDerivedSlug(request.BusinessName)
	if err != nil {
		return err
	}

	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}

	request.Status = model.RegistrationPending
	request.ProcessedAt = nil

	err = m.repo.Create(ctx, request)
	if err != nil {
		if errors.Is(err, repo.ErrUniqueConstraint) {
			return m.duplicateEmailError(ctx, request.Email)
		}

		return errs.Wrap(ErrCreateRegistration, err)
	}

	return nil
}

// duplicateEmailError distinguishes an email with a pending request from one
// that already completed onboarding, so the applicant gets the right hint.
func (m *RegistrationManager) duplicateEmailError(ctx context.Context, email string) error {
	existing := model.RegistrationRequest{}

	ok, err := m.repo.First(ctx, &existing, *repo.NewQuery().Where(repo.EmailField, email))
	if err == nil && ok && existing.Status == model.RegistrationApproved {
		return ErrAlreadyRegistered
	}

	return ErrDuplicateRegistration
}

// Get fetches one registration request.
func (m *RegistrationManager) Get(ctx context.Context, id uuid.UUID) (*model.RegistrationRequest, error) {
	return getRegistration(ctx, m.repo, id)
}

// List returns registration requests, newest first, optionally filtered by status.
func (m *RegistrationManager) List(
	ctx context.Context,
	status model.RegistrationStatus,
	limit, offset int,
) ([]*model.RegistrationRequest, int, error) {
	query := repo.NewQuery().
		OrderBy(repo.CreatedField, repo.Desc).
		SetLimit(limit).
		SetOffset(offset)

	if status != "" {
		query = query.Where(repo.StatusField, status)
	}

	var requests []*model.RegistrationRequest

	count, err := m.repo.List(ctx, &model.RegistrationRequest{}, &requests, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListRegistrations, err)
	}

	return requests, count, nil
}

// CountPending returns the number of unprocessed registration requests.
func (m *RegistrationManager) CountPending(ctx context.Context) (int, error) {
	var requests []*model.RegistrationRequest

	query := repo.NewQuery().Where(repo.StatusField, model.RegistrationPending).SetLimit(1)

	count, err := m.repo.List(ctx, &model.RegistrationRequest{}, &requests, *query)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Approve turns a pending registration into a trial tenant. The tenant row,
// the registration status flip and the plan assignment commit atomically;
// schema provisioning runs as a background task afterwards.
func (m *RegistrationManager) Approve(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant *model.Tenant

	err := m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		request, err := m.pendingRegistration(ctx, r, id)
		if err != nil {
			return err
		}

		slug := model.SlugifyName(request.BusinessName)

		err = validateDerivedSlug(request.BusinessName)
		if err != nil {
			return err
		}

		plan := model.Plan{}

		ok, err := r.First(ctx, &plan, *repo.NewQuery().Where(repo.SlugField, m.cfg.DefaultPlanSlug))
		if err != nil || !ok {
			return errs.Wrapf(ErrDefaultPlanMissing, m.cfg.DefaultPlanSlug)
		}

		trialEndsAt := m.now().UTC().AddDate(0, 0, m.cfg.TrialDays)

		tenant = &model.Tenant{
			TenantModel: multitenancy.TenantModel{
				SchemaName: model.SchemaNameForSlug(slug),
				DomainURL:  slug + "." + m.mainDomain,
			},
			ID:          uuid.NewString(),
			Name:        request.BusinessName,
			Slug:        slug,
			Status:      model.TenantStatusTrial,
			TrialEndsAt: &trialEndsAt,
			PlanID:      plan.ID.String(),
			OwnerEmail:  request.Email,
		}

		err = r.Create(ctx, tenant)
		if err != nil {
			if errors.Is(err, repo.ErrUniqueConstraint) {
				return ErrSlugTaken
			}

			return errs.Wrap(ErrApproveRegistration, err)
		}

		return m.markProcessed(ctx, r, request.ID, model.RegistrationApproved)
	})
	if err != nil {
		return nil, err
	}

	err = m.enqueueProvisioning(ctx, tenant.ID)
	if err != nil {
		return tenant, err
	}

	return tenant, nil
}

// Reject marks a pending registration rejected.
func (m *RegistrationManager) Reject(ctx context.Context, id uuid.UUID) error {
	return m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		request, err := m.pendingRegistration(ctx, r, id)
		if err != nil {
			return err
		}

		return m.markProcessed(ctx, r, request.ID, model.RegistrationRejected)
	})
}

func (m *RegistrationManager) pendingRegistration(
	ctx context.Context,
	r repo.Repo,
	id uuid.UUID,
) (*model.RegistrationRequest, error) {
	request, err := getRegistration(ctx, r, id)
	if err != nil {
		return nil, err
	}

	if request.Status != model.RegistrationPending {
		return nil, ErrRegistrationProcessed
	}

	return request, nil
}

func (m *RegistrationManager) markProcessed(
	ctx context.Context,
	r repo.Repo,
	id uuid.UUID,
	status model.RegistrationStatus,
) error {
	processedAt := m.now().UTC()

	ok, err := r.Patch(ctx,
		&model.RegistrationRequest{ID: id, Status: status, ProcessedAt: &processedAt},
		repo.Query{},
	)
	if err != nil {
		return errs.Wrap(ErrUpdateRegistration, err)
	}

	if !ok {
		return ErrRegistrationNotFound
	}

	return nil
}

func (m *RegistrationManager) enqueueProvisioning(ctx context.Context, tenantID string) error {
	taskPayload := asyncUtils.NewTaskPayload(ctx, []byte(tenantID))

	payload, err := taskPayload.ToBytes()
	if err != nil {
		return errs.Wrap(ErrEnqueueProvisioning, err)
	}

	_, err = m.enqueuer.EnqueueTask(ctx, asynq.NewTask(config.TypeTenantProvision, payload))
	if err != nil {
		log.Error(ctx, "failed to enqueue tenant provisioning", err)
		return errs.Wrap(ErrEnqueueProvisioning, err)
	}

	return nil
}

func getRegistration(ctx context.Context, r repo.Repo, id uuid.UUID) (*model.RegistrationRequest, error) {
	request := model.RegistrationRequest{}

	_, err := r.First(ctx, &request, *repo.NewQuery().Where(repo.IDField, id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}

		return nil, err
	}

	return &request, nil
}

// validateDerivedSlug checks that a business name maps onto a claimable slug.
func validateDerivedSlug(businessName string) error {
	slug := model.SlugifyName(businessName)

	err := model.ValidateSlug(slug)
	if err != nil {
		if errors.Is(err, model.ErrReservedSlug) {
			return ErrSlugTaken
		}

		return errs.Wrap(ErrInvalidRegistration, err)
	}

	return nil
}
