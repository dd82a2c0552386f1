package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/platform/logger"
	"github.com/isturunt/kst-api/internal/store"
	"github.com/isturunt/kst-api/internal/task"
)

// TaskRehydrator rebuilds an executable task from its persisted payload.
// One is registered per task type; recovery uses it to turn stored rows back
// into runnable tasks.
type TaskRehydrator func(taskID uuid.UUID, payload []byte) (task.Task, error)

// PostgresTaskStore implements task.TaskStore backed by PostgreSQL.
type PostgresTaskStore struct {
	db          store.DBTX
	logger      *slog.Logger
	rehydrators map[string]TaskRehydrator
}

// NewPostgresTaskStore creates a PostgreSQL implementation of TaskStore.
// A nil logger falls back to slog.Default().
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:          db,
		logger:      logger.With(slog.String("component", "task_store")),
		rehydrators: make(map[string]TaskRehydrator),
	}
}

var _ task.TaskStore = (*PostgresTaskStore)(nil)

// RegisterRehydrator installs the rebuild function for a task type. Call
// before TaskRunner.Start so recovered rows of that type become runnable.
func (s *PostgresTaskStore) RegisterRehydrator(taskType string, fn TaskRehydrator) {
	s.rehydrators[taskType] = fn
}

// SaveTask persists a task row.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		INSERT INTO tasks (id, type, payload, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		t.ID(),
		t.Type(),
		t.Payload(),
		string(t.Status()),
		now,
		now,
	)

	if err != nil {
		log.Error("failed to save task",
			slog.String("error", err.Error()),
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()))
		return MapError(err)
	}

	log.Debug("task saved",
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()))
	return nil
}

// UpdateTaskStatus updates the status of a task, recording errorMsg when the
// task failed.
func (s *PostgresTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, string(status), errorMsg, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: task %s not found", store.ErrNotFound, taskID)
	}

	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status.
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status, optionally
// limited to those processing longer than olderThan.
func (s *PostgresTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *PostgresTaskStore) getTasksByStatus(ctx context.Context, status task.TaskStatus, olderThan time.Duration) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status
		FROM tasks
		WHERE status = $1
	`
	args := []interface{}{string(status)}

	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []task.Task{}
	for rows.Next() {
		var (
			id        uuid.UUID
			taskType  string
			payload   []byte
			statusStr string
		)
		if err := rows.Scan(&id, &taskType, &payload, &statusStr); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}

		tasks = append(tasks, s.rehydrate(id, taskType, payload, task.TaskStatus(statusStr), log))
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// rehydrate rebuilds a runnable task from a stored row. Rows of types with
// no registered rehydrator come back as inert tasks whose Execute fails, so
// the runner marks them failed instead of silently dropping them.
func (s *PostgresTaskStore) rehydrate(
	id uuid.UUID,
	taskType string,
	payload []byte,
	status task.TaskStatus,
	log *slog.Logger,
) task.Task {
	if fn, ok := s.rehydrators[taskType]; ok {
		t, err := fn(id, payload)
		if err == nil {
			return t
		}
		log.Error("failed to rehydrate task, returning inert task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("task_type", taskType))
	}

	return &inertTask{id: id, taskType: taskType, payload: payload, status: status}
}

// WithTx returns a TaskStore bound to the given transaction. Rehydrators
// carry over.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{
		db:          tx,
		logger:      s.logger,
		rehydrators: s.rehydrators,
	}
}

// inertTask is a stored task that could not be rebuilt into a runnable one.
type inertTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   task.TaskStatus
}

func (t *inertTask) ID() uuid.UUID           { return t.id }
func (t *inertTask) Type() string            { return t.taskType }
func (t *inertTask) Payload() []byte         { return t.payload }
func (t *inertTask) Status() task.TaskStatus { return t.status }

func (t *inertTask) Execute(_ context.Context) error {
	return fmt.Errorf("no rehydrator registered for task type %q", t.taskType)
}
