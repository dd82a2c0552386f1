package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/events"
)

// TaskSubmitter accepts tasks for background execution. *TaskRunner satisfies
// it; tests substitute their own.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactory builds a concrete task for a structure ID.
type TaskFactory interface {
	CreateTask(structureID uuid.UUID) (Task, error)
}

// AnalysisEventHandler turns structure analysis events into persisted tasks.
// It implements events.EventHandler.
type AnalysisEventHandler struct {
	factory   TaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewAnalysisEventHandler wires a task factory to a task submitter.
func NewAnalysisEventHandler(
	factory TaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *AnalysisEventHandler {
	return &AnalysisEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "analysis_event_handler"),
	}
}

// HandleEvent creates and submits an analysis task for the structure named in
// the event payload. Events of other types are ignored.
func (h *AnalysisEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != events.EventTypeStructureAnalysis {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		StructureID string `json:"structure_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal event payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	structureID, err := uuid.Parse(payload.StructureID)
	if err != nil {
		h.logger.Error("invalid structure ID in event payload",
			"error", err,
			"structure_id", payload.StructureID,
			"event_id", event.ID)
		return fmt.Errorf("invalid structure ID: %w", err)
	}

	t, err := h.factory.CreateTask(structureID)
	if err != nil {
		h.logger.Error("failed to create analysis task",
			"error", err,
			"structure_id", structureID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create analysis task: %w", err)
	}

	if err := h.submitter.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit analysis task",
			"error", err,
			"task_id", t.ID(),
			"structure_id", structureID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit analysis task: %w", err)
	}

	h.logger.Info("analysis task submitted",
		"task_id", t.ID(),
		"structure_id", structureID,
		"event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*AnalysisEventHandler)(nil)
