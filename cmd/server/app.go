package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/config"
	"github.com/isturunt/kst-api/internal/domain/kst/assess"
	"github.com/isturunt/kst-api/internal/events"
	"github.com/isturunt/kst-api/internal/platform/postgres"
	"github.com/isturunt/kst-api/internal/service"
	"github.com/isturunt/kst-api/internal/service/auth"
	"github.com/isturunt/kst-api/internal/store"
	"github.com/isturunt/kst-api/internal/task"
)

// application holds the shared dependencies so wiring and cleanup stay in
// one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore       store.UserStore
	structureStore  store.StructureStore
	assessmentStore store.AssessmentStore
	taskStore       *postgres.PostgresTaskStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	userService       service.UserService
	structureService  service.StructureService
	assessmentService service.AssessmentService

	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires all application components from the loaded
// configuration and an open database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	verifier := auth.NewBcryptVerifier(cfg.Auth.BcryptCost)
	app.passwordVerifier = verifier

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.structureStore = postgres.NewPostgresStructureStore(db, logger)
	app.assessmentStore = postgres.NewPostgresAssessmentStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Recovered analysis rows must become runnable again after a restart.
	app.taskStore.RegisterRehydrator(task.TaskTypeStructureAnalysis,
		func(taskID uuid.UUID, payload []byte) (task.Task, error) {
			return task.RehydrateStructureAnalysisTask(taskID, payload, app.structureStore, logger)
		})

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAge) * time.Minute,
	}, logger)
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	analysisFactory := task.NewStructureAnalysisTaskFactory(app.structureStore, logger)
	emitter.RegisterHandler(task.NewAnalysisEventHandler(analysisFactory, app.taskRunner, logger))

	procedure := assess.NewServiceWithParams(assess.NewParams(assess.ParamsConfig{
		CarelessError:        cfg.Assessment.CarelessError,
		LuckyGuess:           cfg.Assessment.LuckyGuess,
		ConvergenceThreshold: cfg.Assessment.ConvergenceThreshold,
		MaxQuestions:         cfg.Assessment.MaxQuestions,
	}))

	app.userService = service.NewUserService(app.userStore, verifier, db, logger)
	app.structureService = service.NewStructureService(app.structureStore, app.eventEmitter, db, logger)
	app.assessmentService = service.NewAssessmentService(
		app.assessmentStore,
		app.structureStore,
		procedure,
		cfg.Assessment.MaxQuestions,
		db,
		logger,
	)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
