package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/store"
)

// Common errors for structure analysis tasks.
var (
	ErrNilStructureStore = errors.New("structure store cannot be nil")
	ErrNilLogger         = errors.New("logger cannot be nil")
	ErrEmptyStructureID  = errors.New("structure ID cannot be empty")
)

// structureAnalysisPayload is the serialized data stored with the task.
type structureAnalysisPayload struct {
	StructureID uuid.UUID `json:"structure_id"`
}

// StructureAnalysisTask computes the derived properties of a stored knowledge
// structure -- its base and surmise relation -- and persists them on the
// structure row. The analysis is quadratic-to-cubic in the number of states,
// which is why it runs in the background rather than during upload.
type StructureAnalysisTask struct {
	id          uuid.UUID
	structureID uuid.UUID
	structures  store.StructureStore
	logger      *slog.Logger
	status      TaskStatus
}

// NewStructureAnalysisTask creates an analysis task for the given structure.
func NewStructureAnalysisTask(
	structureID uuid.UUID,
	structures store.StructureStore,
	logger *slog.Logger,
) (*StructureAnalysisTask, error) {
	if structures == nil {
		return nil, ErrNilStructureStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if structureID == uuid.Nil {
		return nil, ErrEmptyStructureID
	}

	return &StructureAnalysisTask{
		id:          uuid.New(),
		structureID: structureID,
		structures:  structures,
		logger:      logger.With("task_type", TaskTypeStructureAnalysis, "structure_id", structureID),
		status:      TaskStatusPending,
	}, nil
}

// RehydrateStructureAnalysisTask rebuilds an analysis task from a persisted
// row, keeping the stored task ID. Recovery after a restart uses this to turn
// pending rows back into runnable tasks.
func RehydrateStructureAnalysisTask(
	taskID uuid.UUID,
	payload []byte,
	structures store.StructureStore,
	logger *slog.Logger,
) (*StructureAnalysisTask, error) {
	var p structureAnalysisPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	t, err := NewStructureAnalysisTask(p.StructureID, structures, logger)
	if err != nil {
		return nil, err
	}
	t.id = taskID
	return t, nil
}

// ID returns the task's unique identifier.
func (t *StructureAnalysisTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *StructureAnalysisTask) Type() string {
	return TaskTypeStructureAnalysis
}

// Payload returns the serialized structure reference.
func (t *StructureAnalysisTask) Payload() []byte {
	data, err := json.Marshal(structureAnalysisPayload{StructureID: t.structureID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status.
func (t *StructureAnalysisTask) Status() TaskStatus {
	return t.status
}

// Execute loads the structure, computes its base and surmise relation, and
// stores the result. A structure deleted between submission and execution
// completes the task without error.
func (t *StructureAnalysisTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting structure analysis task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	entity, err := t.structures.GetByID(ctx, t.structureID)
	if err != nil {
		if errors.Is(err, store.ErrStructureNotFound) {
			t.logger.Info("structure deleted before analysis ran, nothing to do")
			t.status = TaskStatusCompleted
			return nil
		}
		t.status = TaskStatusFailed
		t.logger.Error("failed to load structure", "error", err)
		return fmt.Errorf("failed to load structure: %w", err)
	}

	s, err := entity.Parse()
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to parse stored structure", "error", err)
		return fmt.Errorf("failed to parse stored structure: %w", err)
	}

	base := s.Base()
	baseText := make([]string, len(base))
	for i, state := range base {
		baseText[i] = s.FormatState(state)
	}

	analysis := domain.StructureAnalysis{
		Base:    baseText,
		Surmise: s.SurmiseRelation(),
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	if err := t.structures.UpdateAnalysis(ctx, t.structureID, data); err != nil {
		if errors.Is(err, store.ErrStructureNotFound) {
			t.logger.Info("structure deleted during analysis, discarding result")
			t.status = TaskStatusCompleted
			return nil
		}
		t.status = TaskStatusFailed
		t.logger.Error("failed to store analysis", "error", err)
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("structure analysis completed",
		"base_size", len(baseText),
		"state_count", len(s.States()))
	return nil
}
