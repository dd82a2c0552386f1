package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/domain/kst"
	"github.com/isturunt/kst-api/internal/events"
	"github.com/isturunt/kst-api/internal/platform/logger"
	"github.com/isturunt/kst-api/internal/store"
)

// Reduction is the result of discriminatively reducing a structure: the same
// knowledge organized over notions instead of single items. It is derived on
// demand and never stored.
type Reduction struct {
	// Items are the notion labels of the reduced domain (equally informative
	// items joined with "+").
	Items []string `json:"items"`

	// States is the canonical text of the reduced state family.
	States string `json:"states"`

	// Kind is the classification of the reduced structure.
	Kind kst.Kind `json:"kind"`
}

// StructureService provides operations on stored knowledge structures.
type StructureService interface {
	// CreateStructure parses and classifies the state text, stores the
	// structure, and schedules background analysis.
	CreateStructure(ctx context.Context, userID uuid.UUID, name, states string) (*domain.KnowledgeStructure, error)

	// GetStructure retrieves a structure the user owns.
	// Returns ErrNotOwned when it belongs to someone else.
	GetStructure(ctx context.Context, userID, structureID uuid.UUID) (*domain.KnowledgeStructure, error)

	// ListStructures retrieves all structures owned by the user.
	ListStructures(ctx context.Context, userID uuid.UUID) ([]*domain.KnowledgeStructure, error)

	// DeleteStructure removes a structure the user owns.
	DeleteStructure(ctx context.Context, userID, structureID uuid.UUID) error

	// GetAnalysis returns the structure's base and surmise relation,
	// computing and persisting them inline when the background task has not
	// run yet.
	GetAnalysis(ctx context.Context, userID, structureID uuid.UUID) (*domain.StructureAnalysis, error)

	// GetReduction returns the discriminative reduction of the structure.
	GetReduction(ctx context.Context, userID, structureID uuid.UUID) (*Reduction, error)
}

// StructureServiceImpl implements the StructureService interface.
type StructureServiceImpl struct {
	structureStore store.StructureStore
	emitter        events.EventEmitter
	db             *sql.DB
	logger         *slog.Logger
}

// NewStructureService creates a new StructureService.
func NewStructureService(
	structureStore store.StructureStore,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) *StructureServiceImpl {
	return &StructureServiceImpl{
		structureStore: structureStore,
		emitter:        emitter,
		db:             db,
		logger:         logger.With("component", "structure_service"),
	}
}

var _ StructureService = (*StructureServiceImpl)(nil)

// CreateStructure parses the state text, classifies the resulting structure,
// saves it, and emits an event so the analysis task runs in the background.
func (s *StructureServiceImpl) CreateStructure(
	ctx context.Context,
	userID uuid.UUID,
	name, states string,
) (*domain.KnowledgeStructure, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	structure, err := domain.NewKnowledgeStructure(userID, name, states)
	if err != nil {
		log.Debug("structure rejected during creation", "error", err)
		return nil, fmt.Errorf("failed to create structure: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.structureStore.WithTx(tx).Create(ctx, structure)
	})
	if err != nil {
		log.Error("failed to save structure", "error", err)
		return nil, fmt.Errorf("failed to save structure: %w", err)
	}

	s.scheduleAnalysis(ctx, structure.ID)

	log.Info("structure created",
		"structure_id", structure.ID,
		"kind", string(structure.Kind))
	return structure, nil
}

// scheduleAnalysis emits the analysis event. A failed emission is logged, not
// returned: the structure exists either way and analysis can be recomputed on
// demand.
func (s *StructureServiceImpl) scheduleAnalysis(ctx context.Context, structureID uuid.UUID) {
	event, err := events.NewTaskRequestEvent(events.EventTypeStructureAnalysis,
		map[string]string{"structure_id": structureID.String()})
	if err != nil {
		s.logger.Error("failed to build analysis event",
			"error", err,
			"structure_id", structureID)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit analysis event",
			"error", err,
			"structure_id", structureID)
	}
}

// GetStructure retrieves a structure and enforces ownership.
func (s *StructureServiceImpl) GetStructure(ctx context.Context, userID, structureID uuid.UUID) (*domain.KnowledgeStructure, error) {
	structure, err := s.structureStore.GetByID(ctx, structureID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve structure: %w", err)
	}

	if structure.UserID != userID {
		s.logger.Warn("structure access denied",
			"structure_id", structureID,
			"owner_id", structure.UserID,
			"requester_id", userID)
		return nil, ErrNotOwned
	}

	return structure, nil
}

// ListStructures retrieves the user's structures.
func (s *StructureServiceImpl) ListStructures(ctx context.Context, userID uuid.UUID) ([]*domain.KnowledgeStructure, error) {
	structures, err := s.structureStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list structures",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list structures: %w", err)
	}
	return structures, nil
}

// DeleteStructure removes a structure the user owns. Assessments against it
// disappear with it via the database's cascade rules.
func (s *StructureServiceImpl) DeleteStructure(ctx context.Context, userID, structureID uuid.UUID) error {
	if _, err := s.GetStructure(ctx, userID, structureID); err != nil {
		return err
	}

	if err := s.structureStore.Delete(ctx, structureID); err != nil {
		s.logger.Error("failed to delete structure",
			"error", err,
			"structure_id", structureID)
		return fmt.Errorf("failed to delete structure: %w", err)
	}

	s.logger.Info("structure deleted", "structure_id", structureID)
	return nil
}

// GetAnalysis returns the stored analysis, computing it inline when the
// background task has not caught up yet.
func (s *StructureServiceImpl) GetAnalysis(ctx context.Context, userID, structureID uuid.UUID) (*domain.StructureAnalysis, error) {
	structure, err := s.GetStructure(ctx, userID, structureID)
	if err != nil {
		return nil, err
	}

	stored, err := structure.GetAnalysis()
	if err != nil {
		s.logger.Warn("stored analysis is unreadable, recomputing",
			"error", err,
			"structure_id", structureID)
	}
	if stored != nil {
		return stored, nil
	}

	analysis, err := computeAnalysis(structure)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	// Persist so the next request gets it for free. Losing the write is
	// harmless.
	if err := s.structureStore.UpdateAnalysis(ctx, structureID, data); err != nil {
		s.logger.Warn("failed to persist inline analysis",
			"error", err,
			"structure_id", structureID)
	}

	return analysis, nil
}

func computeAnalysis(structure *domain.KnowledgeStructure) (*domain.StructureAnalysis, error) {
	parsed, err := structure.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored structure: %w", err)
	}

	base := parsed.Base()
	baseText := make([]string, len(base))
	for i, state := range base {
		baseText[i] = parsed.FormatState(state)
	}

	return &domain.StructureAnalysis{
		Base:    baseText,
		Surmise: parsed.SurmiseRelation(),
	}, nil
}

// GetReduction computes the discriminative reduction of the structure.
func (s *StructureServiceImpl) GetReduction(ctx context.Context, userID, structureID uuid.UUID) (*Reduction, error) {
	structure, err := s.GetStructure(ctx, userID, structureID)
	if err != nil {
		return nil, err
	}

	parsed, err := structure.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored structure: %w", err)
	}

	reduced, err := parsed.DiscriminativeReduction()
	if err != nil {
		return nil, fmt.Errorf("failed to reduce structure: %w", err)
	}

	return &Reduction{
		Items:  reduced.Domain().Items(),
		States: reduced.Format(),
		Kind:   reduced.Kind(),
	}, nil
}
