package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/domain/kst"
	"github.com/isturunt/kst-api/internal/domain/kst/assess"
	"github.com/isturunt/kst-api/internal/platform/logger"
	"github.com/isturunt/kst-api/internal/store"
)

// Question is what the learner sees next: the item to answer and how far the
// assessment has progressed.
type Question struct {
	Item          string `json:"item"`
	QuestionCount int    `json:"question_count"`
}

// AssessmentService runs the Markov assessment procedure over stored
// structures: start with a uniform prior, repeatedly ask the half-split
// question and update the likelihood, stop on convergence or exhaustion.
type AssessmentService interface {
	// Start begins an assessment against a structure the user owns and
	// returns it with the first question already selected.
	Start(ctx context.Context, userID, structureID uuid.UUID) (*domain.Assessment, error)

	// GetAssessment retrieves an assessment the user owns.
	GetAssessment(ctx context.Context, userID, assessmentID uuid.UUID) (*domain.Assessment, error)

	// ListAssessments retrieves all assessments owned by the user.
	ListAssessments(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error)

	// NextQuestion returns the current question of an active assessment.
	NextQuestion(ctx context.Context, userID, assessmentID uuid.UUID) (*Question, error)

	// SubmitResponse applies the learner's answer to the current question
	// and returns the updated assessment, finished when the procedure
	// converged or ran out of questions.
	SubmitResponse(ctx context.Context, userID, assessmentID uuid.UUID, item string, correct bool) (*domain.Assessment, error)

	// Abandon finishes an active assessment without a result.
	Abandon(ctx context.Context, userID, assessmentID uuid.UUID) (*domain.Assessment, error)

	// ListResponses returns the assessment's response history in question
	// order.
	ListResponses(ctx context.Context, userID, assessmentID uuid.UUID) ([]*domain.ResponseRecord, error)
}

// AssessmentServiceImpl implements the AssessmentService interface.
type AssessmentServiceImpl struct {
	assessmentStore store.AssessmentStore
	structureStore  store.StructureStore
	procedure       assess.Service
	maxQuestions    int
	db              *sql.DB
	logger          *slog.Logger
}

// NewAssessmentService creates a new AssessmentService. A maxQuestions of
// zero falls back to the assess package default.
func NewAssessmentService(
	assessmentStore store.AssessmentStore,
	structureStore store.StructureStore,
	procedure assess.Service,
	maxQuestions int,
	db *sql.DB,
	logger *slog.Logger,
) *AssessmentServiceImpl {
	if maxQuestions <= 0 {
		maxQuestions = assess.DefaultParams().MaxQuestions
	}

	return &AssessmentServiceImpl{
		assessmentStore: assessmentStore,
		structureStore:  structureStore,
		procedure:       procedure,
		maxQuestions:    maxQuestions,
		db:              db,
		logger:          logger.With("component", "assessment_service"),
	}
}

var _ AssessmentService = (*AssessmentServiceImpl)(nil)

// Start begins an assessment: uniform prior over the structure's states, the
// first half-split question selected up front.
func (s *AssessmentServiceImpl) Start(ctx context.Context, userID, structureID uuid.UUID) (*domain.Assessment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	structure, err := s.structureStore.GetByID(ctx, structureID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve structure: %w", err)
	}
	if structure.UserID != userID {
		return nil, ErrNotOwned
	}

	parsed, err := structure.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored structure: %w", err)
	}

	prior, err := assess.Uniform(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to build prior: %w", err)
	}

	priorJSON, err := json.Marshal(prior)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prior: %w", err)
	}

	assessment, err := domain.NewAssessment(userID, structureID, priorJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	// A structure whose only states are the two trivial bounds may still
	// yield no informative question. Converged-at-start is handled the same
	// way: finish immediately.
	if state, ok := s.procedure.Converged(prior); ok {
		if err := assessment.Finish(domain.AssessmentStatusConverged, parsed.FormatState(state)); err != nil {
			return nil, err
		}
	} else {
		item, err := s.procedure.NextQuestion(prior)
		if err != nil {
			if !errors.Is(err, assess.ErrNoInformativeQuestion) {
				return nil, fmt.Errorf("failed to select first question: %w", err)
			}
			if finishErr := assessment.Finish(domain.AssessmentStatusExhausted, ""); finishErr != nil {
				return nil, finishErr
			}
		} else {
			assessment.CurrentItem = item
		}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.assessmentStore.WithTx(tx).Create(ctx, assessment)
	})
	if err != nil {
		log.Error("failed to save assessment", "error", err)
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	log.Info("assessment started",
		"assessment_id", assessment.ID,
		"structure_id", structureID,
		"first_item", assessment.CurrentItem)
	return assessment, nil
}

// GetAssessment retrieves an assessment and enforces ownership.
func (s *AssessmentServiceImpl) GetAssessment(ctx context.Context, userID, assessmentID uuid.UUID) (*domain.Assessment, error) {
	assessment, err := s.assessmentStore.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve assessment: %w", err)
	}

	if assessment.UserID != userID {
		s.logger.Warn("assessment access denied",
			"assessment_id", assessmentID,
			"owner_id", assessment.UserID,
			"requester_id", userID)
		return nil, ErrNotOwned
	}

	return assessment, nil
}

// ListAssessments retrieves the user's assessments.
func (s *AssessmentServiceImpl) ListAssessments(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error) {
	assessments, err := s.assessmentStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list assessments",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

// NextQuestion returns the question currently awaiting an answer.
func (s *AssessmentServiceImpl) NextQuestion(ctx context.Context, userID, assessmentID uuid.UUID) (*Question, error) {
	assessment, err := s.GetAssessment(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	if assessment.Status != domain.AssessmentStatusActive {
		return nil, ErrAssessmentFinished
	}

	return &Question{
		Item:          assessment.CurrentItem,
		QuestionCount: assessment.QuestionCount,
	}, nil
}

// SubmitResponse runs one cycle of the procedure inside a transaction:
// record the response, update the likelihood, then either finish (converged
// or exhausted) or select the next question.
func (s *AssessmentServiceImpl) SubmitResponse(
	ctx context.Context,
	userID, assessmentID uuid.UUID,
	item string,
	correct bool,
) (*domain.Assessment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var result *domain.Assessment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txAssessments := s.assessmentStore.WithTx(tx)
		txStructures := s.structureStore.WithTx(tx)

		assessment, err := txAssessments.GetByID(ctx, assessmentID)
		if err != nil {
			return fmt.Errorf("failed to retrieve assessment: %w", err)
		}
		if assessment.UserID != userID {
			return ErrNotOwned
		}
		if assessment.Status != domain.AssessmentStatusActive {
			return ErrAssessmentFinished
		}
		if assessment.CurrentItem != item {
			return fmt.Errorf("%w: expected %q", ErrWrongItem, assessment.CurrentItem)
		}

		structure, err := txStructures.GetByID(ctx, assessment.StructureID)
		if err != nil {
			return fmt.Errorf("failed to retrieve structure: %w", err)
		}
		parsed, err := structure.Parse()
		if err != nil {
			return fmt.Errorf("failed to parse stored structure: %w", err)
		}

		likelihood, err := assess.Decode(parsed, assessment.Likelihood)
		if err != nil {
			return fmt.Errorf("failed to decode likelihood: %w", err)
		}

		posterior, err := s.procedure.Update(likelihood, item, correct)
		if err != nil {
			return fmt.Errorf("failed to update likelihood: %w", err)
		}

		posteriorJSON, err := json.Marshal(posterior)
		if err != nil {
			return fmt.Errorf("failed to encode posterior: %w", err)
		}

		record, err := domain.NewResponseRecord(assessmentID, item, correct)
		if err != nil {
			return fmt.Errorf("failed to build response record: %w", err)
		}
		if err := txAssessments.AppendResponse(ctx, record); err != nil {
			return fmt.Errorf("failed to record response: %w", err)
		}

		if err := assessment.RecordResponse(posteriorJSON); err != nil {
			return err
		}

		switch {
		case s.finishIfConverged(assessment, posterior, parsed):
			// finished below
		case assessment.QuestionCount >= s.maxQuestions:
			if err := assessment.Finish(domain.AssessmentStatusExhausted, ""); err != nil {
				return err
			}
		default:
			next, err := s.procedure.NextQuestion(posterior)
			if err != nil {
				if !errors.Is(err, assess.ErrNoInformativeQuestion) {
					return fmt.Errorf("failed to select next question: %w", err)
				}
				// The distribution settled without reaching the threshold.
				if finishErr := assessment.Finish(domain.AssessmentStatusExhausted, ""); finishErr != nil {
					return finishErr
				}
			} else {
				assessment.CurrentItem = next
			}
		}

		if err := txAssessments.Update(ctx, assessment); err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}

		result = assessment
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("response applied",
		"assessment_id", assessmentID,
		"item", item,
		"correct", correct,
		"status", string(result.Status),
		"question_count", result.QuestionCount)
	return result, nil
}

// finishIfConverged finishes the assessment when a single state carries
// enough likelihood mass, recording it as the result.
func (s *AssessmentServiceImpl) finishIfConverged(
	assessment *domain.Assessment,
	posterior *assess.Likelihood,
	parsed *kst.Structure,
) bool {
	state, ok := s.procedure.Converged(posterior)
	if !ok {
		return false
	}
	// Finish cannot fail here: the assessment is active and the status is
	// terminal.
	_ = assessment.Finish(domain.AssessmentStatusConverged, parsed.FormatState(state))
	return true
}

// Abandon finishes an active assessment without a result.
func (s *AssessmentServiceImpl) Abandon(ctx context.Context, userID, assessmentID uuid.UUID) (*domain.Assessment, error) {
	var result *domain.Assessment
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txAssessments := s.assessmentStore.WithTx(tx)

		assessment, err := txAssessments.GetByID(ctx, assessmentID)
		if err != nil {
			return fmt.Errorf("failed to retrieve assessment: %w", err)
		}
		if assessment.UserID != userID {
			return ErrNotOwned
		}

		if err := assessment.Finish(domain.AssessmentStatusAbandoned, ""); err != nil {
			if errors.Is(err, domain.ErrAssessmentNotActive) {
				return ErrAssessmentFinished
			}
			return err
		}

		if err := txAssessments.Update(ctx, assessment); err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}

		result = assessment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assessment abandoned", "assessment_id", assessmentID)
	return result, nil
}

// ListResponses returns the assessment's history after an ownership check.
func (s *AssessmentServiceImpl) ListResponses(ctx context.Context, userID, assessmentID uuid.UUID) ([]*domain.ResponseRecord, error) {
	if _, err := s.GetAssessment(ctx, userID, assessmentID); err != nil {
		return nil, err
	}

	records, err := s.assessmentStore.ListResponses(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return records, nil
}
