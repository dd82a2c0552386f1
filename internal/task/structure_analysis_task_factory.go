package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/store"
)

// StructureAnalysisTaskFactory creates StructureAnalysisTask instances with
// their dependencies already bound.
type StructureAnalysisTaskFactory struct {
	structures store.StructureStore
	logger     *slog.Logger
}

// NewStructureAnalysisTaskFactory creates a factory for analysis tasks.
func NewStructureAnalysisTaskFactory(
	structures store.StructureStore,
	logger *slog.Logger,
) *StructureAnalysisTaskFactory {
	return &StructureAnalysisTaskFactory{
		structures: structures,
		logger:     logger.With("component", "structure_analysis_task_factory"),
	}
}

// CreateTask creates an analysis task for the specified structure.
func (f *StructureAnalysisTaskFactory) CreateTask(structureID uuid.UUID) (Task, error) {
	return NewStructureAnalysisTask(structureID, f.structures, f.logger)
}
