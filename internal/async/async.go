package async

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/hibiken/asynq"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/reasyhq/platform/internal/async/tasks"
	conf "github.com/reasyhq/platform/internal/config"
	"github.com/reasyhq/platform/internal/db"
	"github.com/reasyhq/platform/internal/errs"
	"github.com/reasyhq/platform/internal/log"
	"github.com/reasyhq/platform/internal/manager"
	"github.com/reasyhq/platform/internal/repo/sql"
)

const (
	// syncInterval is the interval at which the scheduled task manager will check for config changes.
	syncInterval = 10 * time.Second
)

// TaskHandler defines the interface for handling async
type TaskHandler interface {
	ProcessTask(ctx context.Context, task *asynq.Task) error
	TaskType() string
}

// Client is the enqueue-side surface of the async app.
type Client interface {
	EnqueueTask(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// App manages task processing, scheduling, and worker functionality
type App struct {
	asynqClient    *asynq.Client
	asynqServer    *asynq.Server
	asynqServerCfg asynq.Config
	taskQueueCfg   asynq.RedisClientOpt
	tasks          map[string]TaskHandler
	cfg            *conf.Config
}

// New creates a new instance of App. The worker-side database connection is
// opened lazily in RunWorker, so enqueue-only consumers stay cheap.
func New(cfg *conf.Config) (*App, error) {
	redisOpts, err := buildRedisClientOpt(cfg.Scheduler.TaskQueue)
	if err != nil {
		return nil, err
	}

	return &App{
		taskQueueCfg: redisOpts,
		asynqClient:  asynq.NewClient(redisOpts),
		tasks:        make(map[string]TaskHandler),
		cfg:          cfg,
	}, nil
}

// RegisterTasks registers multiple task handlers
func (a *App) RegisterTasks(ctx context.Context, handlers []TaskHandler) {
	for _, handler := range handlers {
		taskType := handler.TaskType()
		a.tasks[taskType] = handler
		log.Info(ctx, "Registered task", slog.String("Name", taskType))
	}
}

// RunWorker starts the worker process to process the tasks
func (a *App) RunWorker(ctx context.Context) error {
	log.Info(ctx, "Starting async worker")

	dbCon, err := db.StartDB(ctx, a.cfg)
	if err != nil {
		return errs.Wrap(ErrStartingWorker, err)
	}

	r := sql.NewRepository(dbCon)

	migrator, err := db.NewMigrator(r, a.cfg)
	if err != nil {
		return errs.Wrap(ErrStartingWorker, err)
	}

	directory := manager.NewTenantDirectory(r)

	log.Info(ctx, "Registering Tasks")
	a.RegisterTasks(ctx,
		[]TaskHandler{
			tasks.NewTenantProvisioner(migrator, directory),
			tasks.NewTrialExpirySweeper(directory),
		})

	a.asynqServer = asynq.NewServer(a.taskQueueCfg, a.asynqServerCfg)

	// Create a new mux and register all task handlers
	mux := asynq.NewServeMux()

	for taskName, handler := range a.tasks {
		h := handler

		mux.HandleFunc(taskName, func(ctx context.Context, task *asynq.Task) error {
			return h.ProcessTask(ctx, task)
		})
	}

	log.Info(ctx, "Starting worker server")

	err = a.asynqServer.Run(mux)
	if err != nil {
		return errs.Wrap(ErrStartingWorker, err)
	}

	return nil
}

// RunScheduler starts the cron job scheduling
// It starts the cron related tasks defined in the scheduler config
func (a *App) RunScheduler() error {
	provider := &ScheduledTaskConfigProvider{a.cfg}

	mgr, err := asynq.NewPeriodicTaskManager(
		asynq.PeriodicTaskManagerOpts{
			RedisConnOpt:               a.taskQueueCfg,
			PeriodicTaskConfigProvider: provider,
			SyncInterval:               syncInterval,
		})
	if err != nil {
		return errs.Wrap(ErrCreatingScheduler, err)
	}

	err = mgr.Run()
	if err != nil {
		return errs.Wrap(ErrRunningScheduler, err)
	}

	return nil
}

// EnqueueTask is used to run tasks
func (a *App) EnqueueTask(
	ctx context.Context,
	task *asynq.Task,
	opts ...asynq.Option,
) (*asynq.TaskInfo, error) {
	ctx = log.InjectTask(ctx, task)
	log.Debug(ctx, "Enqueuing task to be processed")

	info, err := a.asynqClient.Enqueue(task, opts...)
	if err != nil {
		return nil, errs.Wrap(ErrEnqueueingTask, err)
	}

	log.Debug(ctx, "Enqueued task")

	return info, nil
}

// Shutdown gracefully shuts down the worker and scheduler
func (a *App) Shutdown(ctx context.Context) error {
	log.Info(ctx, "Starting async app shutdown")

	if a.asynqServer != nil {
		a.asynqServer.Shutdown()
	}

	if a.asynqClient != nil {
		err := a.asynqClient.Close()
		if err != nil {
			return errs.Wrap(ErrClientShutdown, err)
		}
	}

	log.Info(ctx, "Async app shutdown completed")

	return nil
}

func buildRedisClientOpt(cfg conf.Redis) (asynq.RedisClientOpt, error) {
	host, err := commoncfg.LoadValueFromSourceRef(cfg.Host)
	if err != nil {
		return asynq.RedisClientOpt{}, errs.Wrap(ErrLoadingTaskQueueHost, err)
	}

	opts := asynq.RedisClientOpt{
		Addr: net.JoinHostPort(string(host), cfg.Port),
	}

	if cfg.Username.Source != "" {
		username, err := commoncfg.LoadValueFromSourceRef(cfg.Username)
		if err != nil {
			return asynq.RedisClientOpt{}, errs.Wrap(ErrLoadingTaskQueueHost, err)
		}

		opts.Username = string(username)
	}

	if cfg.Password.Source != "" {
		password, err := commoncfg.LoadValueFromSourceRef(cfg.Password)
		if err != nil {
			return asynq.RedisClientOpt{}, errs.Wrap(ErrLoadingTaskQueueHost, err)
		}

		opts.Password = string(password)
	}

	return opts, nil
}
