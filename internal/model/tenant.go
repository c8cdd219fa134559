package model

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	multitenancy "github.com/bartventer/gorm-multitenancy/v8"

	"github.com/reasyhq/platform/internal/reserved"
)

var (
	ErrInvalidSlug  = errors.New("slug must be a DNS label of 2 to 63 lowercase characters")
	ErrReservedSlug = errors.New("slug is reserved")
)

// slugPattern is the DNS-label rule every tenant subdomain must satisfy.
var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

const (
	SlugMinLength = 2
	SlugMaxLength = 63
)

// Tenant is a customer business selected by its subdomain slug.
type Tenant struct {
	multitenancy.TenantModel

	ID          string       `gorm:"type:varchar(255);not null;unique"`
	Name        string       `gorm:"type:varchar(255);not null"`
	Slug        string       `gorm:"type:varchar(63);not null;unique"`
	Status      TenantStatus `gorm:"type:varchar(50);not null"`
	TrialEndsAt *time.Time
	PlanID      string          `gorm:"type:varchar(255);not null"`
	OwnerEmail  string          `gorm:"type:varchar(255);not null"`
	Timezone    string          `gorm:"type:varchar(64);not null;default:'UTC'"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Country     string          `gorm:"type:varchar(2);not null;default:'US'"`
	Language    string          `gorm:"type:varchar(8);not null;default:'en'"`
	Settings    json.RawMessage `gorm:"type:jsonb"`
}

func (t Tenant) TableName() string   { return "public.tenants" }
func (t Tenant) IsSharedModel() bool { return true }

// IsActive reports whether the tenant may serve traffic at the given instant.
// Status is not solely authoritative: a trial past trial_ends_at is inactive
// even while its stored status still reads "trial".
func (t *Tenant) IsActive(now time.Time) bool {
	switch t.Status {
	case TenantStatusActive:
		return true
	case TenantStatusTrial:
		return t.TrialEndsAt == nil || t.TrialEndsAt.After(now)
	default:
		return false
	}
}

// ValidateSlug enforces the subdomain invariant: DNS-label safe, 2..63
// characters, and never a reserved name.
func ValidateSlug(slug string) error {
	if len(slug) < SlugMinLength || len(slug) > SlugMaxLength || !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}

	if reserved.IsReserved(slug) {
		return ErrReservedSlug
	}

	return nil
}

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapse = regexp.MustCompile(`-{2,}`)
)

// SlugifyName derives a candidate slug from a business name. The result still
// has to pass ValidateSlug before it can be claimed.
func SlugifyName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	slug = slugStrip.ReplaceAllString(slug, "")
	// Stripped symbol-only words leave runs of hyphens behind.
	slug = slugCollapse.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > SlugMaxLength {
		slug = strings.Trim(slug[:SlugMaxLength], "-")
	}

	return slug
}

// SchemaNameForSlug maps a tenant slug onto its postgres schema name.
func SchemaNameForSlug(slug string) string {
	return "tenant_" + strings.ReplaceAll(slug, "-", "_")
}
