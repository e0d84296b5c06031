// Package bootstrap assembles the application from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"hirevision-backend/internal/analyses"
	"hirevision-backend/internal/extract"
	"hirevision-backend/internal/learningpaths"
	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/llm/providers"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/queue"
	"hirevision-backend/internal/resumebuilds"
	"hirevision-backend/internal/services/health"
	"hirevision-backend/internal/shared/config"
	"hirevision-backend/internal/shared/server"
	"hirevision-backend/internal/shared/storage/db"
	"hirevision-backend/internal/shared/storage/object"
	localstore "hirevision-backend/internal/shared/storage/object/local"
	s3store "hirevision-backend/internal/shared/storage/object/s3"
	"hirevision-backend/internal/shared/telemetry"
	"hirevision-backend/internal/tasks"
	"hirevision-backend/internal/workerproc"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Log    telemetry.Logger
	Router *gin.Engine
	// DB is nil when the in-memory repositories are in use.
	DB         *sql.DB
	Store      object.Store
	Queue      queue.Client
	Runner     *pipeline.Runner
	Dispatcher *workerproc.Dispatcher
	Health     *health.Service

	Analyses      *analyses.Service
	LearningPaths *learningpaths.Service
	ResumeBuilds  *resumebuilds.Service

	inline *queue.InlineClient
}

// Options overrides collaborators, mostly for tests and the CLI.
type Options struct {
	Log telemetry.Logger
	// Providers replaces the environment-driven provider lookup.
	Providers pipeline.ProviderSource
	// Store and DB skip construction from configuration when set.
	Store object.Store
	DB    *sql.DB
}

// Build prepares shared dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	return BuildWith(ctx, cfg, Options{})
}

// BuildWith is Build with collaborators supplied by the caller.
func BuildWith(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if cfg.PipelineDeadline <= 0 {
		cfg.PipelineDeadline = tasks.DefaultDeadline
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := telemetry.OrDefault(opts.Log)

	sqlDB := opts.DB
	if sqlDB == nil {
		var err error
		if sqlDB, err = buildDB(ctx, cfg, log); err != nil {
			return nil, err
		}
	}

	store := opts.Store
	if store == nil {
		var err error
		if store, err = buildStore(ctx, cfg); err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:     cfg,
		Log:        log,
		DB:         sqlDB,
		Store:      store,
		Dispatcher: workerproc.NewDispatcher(),
	}

	if err := buildQueue(ctx, app); err != nil {
		return nil, err
	}

	resolver := llm.EnvResolver{}
	source := opts.Providers
	if source == nil {
		source = providers.Source{Resolver: resolver, Log: log}
	}
	app.Runner = &pipeline.Runner{
		Providers: source,
		Retry: llm.RetryPolicy{
			MaxRetries: cfg.LLMMaxRetries,
			BaseDelay:  cfg.LLMRetryBaseDelay,
		},
		Log:      log,
		JSONMode: cfg.LLMJSONMode,
	}

	buildServices(app)

	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	app.Health = health.NewService(pinger, resolver)
	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Log:    log,
		Health: app.Health,
		Handlers: []server.RouteRegistrar{
			analyses.NewHandler(app.Analyses),
			learningpaths.NewHandler(app.LearningPaths),
			resumebuilds.NewHandler(app.ResumeBuilds),
		},
	})
	return app, nil
}

// Close waits for inline tasks and releases the database.
func (a *App) Close() error {
	if a.inline != nil {
		a.inline.Wait()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config, log telemetry.Logger) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() || cfg.Env == "test" {
			log.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			log.Error("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case config.StoreS3:
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		if err := os.MkdirAll(cfg.LocalStoreDir, 0o755); err != nil {
			return nil, fmt.Errorf("create local store dir: %w", err)
		}
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, app *App) error {
	if app.Config.QueueBackend == config.QueueSQS {
		client, err := queue.NewSQSClient(ctx, app.Config.SQSQueueURL, app.Config.SQSRegion)
		if err != nil {
			return err
		}
		app.Queue = client
		return nil
	}
	app.inline = queue.NewInlineClient(app.Log)
	app.inline.Bind(app.Dispatcher)
	app.Queue = app.inline
	return nil
}

func buildServices(app *App) {
	cfg := app.Config
	policy := pipeline.ParseMalformedPolicy(cfg.MalformedPolicy)

	var (
		analysisRepo analyses.Repo
		pathRepo     learningpaths.Repo
		buildRepo    resumebuilds.Repo
	)
	if app.DB != nil {
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		pathRepo = &learningpaths.PGRepo{DB: app.DB}
		buildRepo = &resumebuilds.PGRepo{DB: app.DB}
	} else {
		analysisRepo = analyses.NewMemoryRepo()
		pathRepo = learningpaths.NewMemoryRepo()
		buildRepo = resumebuilds.NewMemoryRepo()
	}

	limits := analyses.DefaultLimits()
	if cfg.MaxUploadBytes > 0 {
		limits.MaxFileBytes = cfg.MaxUploadBytes
	}

	app.Analyses = &analyses.Service{
		Repo:  analysisRepo,
		Store: app.Store,
		Queue: app.Queue,
		Analyzer: &analyses.Analyzer{
			Runner:            app.Runner,
			Extractor:         extract.Extractor{},
			Policy:            policy,
			Limits:            limits,
			ClassifyDocuments: cfg.ClassifyDocuments,
			Log:               app.Log,
		},
		DemoMode: cfg.DemoMode,
		Deadline: cfg.PipelineDeadline,
		Log:      app.Log,
	}
	app.LearningPaths = &learningpaths.Service{
		Repo:     pathRepo,
		Queue:    app.Queue,
		Planner:  &learningpaths.Planner{Runner: app.Runner, Policy: policy, Log: app.Log},
		DemoMode: cfg.DemoMode,
		Deadline: cfg.PipelineDeadline,
		Log:      app.Log,
	}
	app.ResumeBuilds = &resumebuilds.Service{
		Repo:     buildRepo,
		Store:    app.Store,
		Queue:    app.Queue,
		Builder:  &resumebuilds.Builder{Runner: app.Runner, Policy: policy, Log: app.Log},
		DemoMode: cfg.DemoMode,
		Deadline: cfg.PipelineDeadline,
		Log:      app.Log,
	}

	app.Dispatcher.Register(tasks.KindResumeAnalysis, app.Analyses)
	app.Dispatcher.Register(tasks.KindLearningPath, app.LearningPaths)
	app.Dispatcher.Register(tasks.KindResumeBuild, app.ResumeBuilds)
}
