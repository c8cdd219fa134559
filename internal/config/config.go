package config

import (
	"errors"
	"strings"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/reasyhq/platform/internal/errs"
)

var (
	ErrConfigurationValuesError = errors.New("configuration value error")
	ErrNonDefinedTaskType       = errors.New("task type is unknown")
	ErrRepeatedTaskType         = errors.New("task type is specified more than once")
	ErrEmptyMainDomain          = errors.New("router main domain must be specified")
	ErrNamespacePrefix          = errors.New("router namespaces must start with a slash")
	ErrTrialDaysOutOfRange      = errors.New("trial length must be between 1 and 90 days")
	ErrEmptyJWTSecret           = errors.New("session JWT secret must be specified")
	ErrBookingWindow            = errors.New("booking window open hour must precede close hour")
)

// Config holds all application configuration parameters
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	Database         Database   `yaml:"database"`
	DatabaseReplicas []Database `yaml:"databaseReplicas"`

	HTTP         HTTPServer   `yaml:"http"`
	Router       Router       `yaml:"router"`
	Sessions     Sessions     `yaml:"sessions"`
	Scheduler    Scheduler    `yaml:"scheduler"`
	Registration Registration `yaml:"registration"`
	Booking      Booking      `yaml:"booking"`
}

func (c *Config) Validate() error {
	err := c.Router.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.Sessions.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.Scheduler.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.Registration.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	err = c.Booking.Validate()
	if err != nil {
		return errs.Wrap(ErrConfigurationValuesError, err)
	}

	return nil
}

// Router holds the hostname classification config.
type Router struct {
	// MainDomain is the apex domain. Development setups use a host like
	// "localhost:9002", production a registrable domain like "reasy.app".
	MainDomain string `yaml:"mainDomain" default:"reasy.app"`

	// AdminSubdomain is the label exclusively reserved for the platform portal.
	AdminSubdomain string `yaml:"adminSubdomain" default:"admin"`

	AdminNamespace     string `yaml:"adminNamespace" default:"/admin"`
	DashboardNamespace string `yaml:"dashboardNamespace" default:"/dashboard"`
	LandingPath        string `yaml:"landingPath" default:"/"`
}

func (r *Router) Validate() error {
	if r.MainDomain == "" {
		return ErrEmptyMainDomain
	}

	for _, ns := range []string{r.AdminNamespace, r.DashboardNamespace, r.LandingPath} {
		if !strings.HasPrefix(ns, "/") {
			return ErrNamespacePrefix
		}
	}

	return nil
}

// Scheme returns the URL scheme for client-visible redirects. Development
// hosts are served over plain HTTP.
func (r *Router) Scheme() string {
	if strings.Contains(r.MainDomain, "localhost") {
		return "http"
	}

	return "https"
}

// ApexURL is the landing page URL redirects fall back to.
func (r *Router) ApexURL() string {
	return r.Scheme() + "://" + r.MainDomain + "/"
}

// Sessions holds the session store config.
type Sessions struct {
	Redis      Redis               `yaml:"redis"`
	JWTSecret  commoncfg.SourceRef `yaml:"jwtSecret"`
	CookieName string              `yaml:"cookieName" default:"reasy_session"`
	TTL        time.Duration       `yaml:"ttl" default:"24h"`

	// SecureCookies is off only for local development over plain HTTP.
	SecureCookies bool `yaml:"secureCookies" default:"true"`
}

func (s *Sessions) Validate() error {
	if s.JWTSecret.Source == "" {
		return ErrEmptyJWTSecret
	}

	return nil
}

// Scheduler holds a scheduler config
type Scheduler struct {
	TaskQueue Redis  `yaml:"taskQueue"`
	Tasks     []Task `yaml:"tasks"`
}

func (s *Scheduler) Validate() error {
	checkedTasks := make(map[string]struct{}, len(s.Tasks))
	for _, task := range s.Tasks {
		_, found := DefinedTasks[task.TaskType]
		if !found {
			return ErrNonDefinedTaskType
		}

		_, found = checkedTasks[task.TaskType]
		if found {
			return ErrRepeatedTaskType
		}

		checkedTasks[task.TaskType] = struct{}{}
	}

	return nil
}

// Task holds a task config
type Task struct {
	Cronspec string `yaml:"cronspec"`
	TaskType string `yaml:"taskType"`
	Retries  int    `yaml:"retries"`
}

// Redis holds Redis client config
type Redis struct {
	Host     commoncfg.SourceRef `yaml:"host"`
	Port     string              `yaml:"port"`
	Password commoncfg.SourceRef `yaml:"password"`
	Username commoncfg.SourceRef `yaml:"username"`
}

// Database holds database config
type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Secret   commoncfg.SourceRef `yaml:"secret"`
	Migrator Migrator            `yaml:"migrator"`
}

// Migrator holds the goose migration directories per target.
type Migrator struct {
	Shared MigrationDirs `yaml:"shared"`
	Tenant MigrationDirs `yaml:"tenant"`
}

// MigrationDirs points at the schema and data migration sources of one target.
type MigrationDirs struct {
	Schema string `yaml:"schema"`
	Data   string `yaml:"data"`
}

// HTTPServer holds http server config
type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

// Registration holds the tenant onboarding config.
type Registration struct {
	TrialDays       int    `yaml:"trialDays" default:"14"`
	DefaultPlanSlug string `yaml:"defaultPlanSlug" default:"basic"`
}

const (
	MinTrialDays = 1
	MaxTrialDays = 90
)

func (r *Registration) Validate() error {
	if r.TrialDays < MinTrialDays || r.TrialDays > MaxTrialDays {
		return ErrTrialDaysOutOfRange
	}

	return nil
}

// Booking holds the booking-flow config, including the availability assistant.
type Booking struct {
	// OpenHour and CloseHour bound the daily window availability is
	// calculated for, in the tenant's timezone.
	OpenHour  int `yaml:"openHour" default:"8"`
	CloseHour int `yaml:"closeHour" default:"21"`

	Assistant Assistant `yaml:"assistant"`
}

func (b *Booking) Validate() error {
	if b.OpenHour < 0 || b.CloseHour > 24 || b.OpenHour >= b.CloseHour {
		return ErrBookingWindow
	}

	return nil
}

// Assistant holds the availability-calculation collaborator config.
type Assistant struct {
	Enabled bool                `yaml:"enabled"`
	APIKey  commoncfg.SourceRef `yaml:"apiKey"`
	Model   string              `yaml:"model" default:"claude-sonnet-4-20250514"`
}
