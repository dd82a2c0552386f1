package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/platform/logger"
	"github.com/isturunt/kst-api/internal/store"
)

// PostgresAssessmentStore implements store.AssessmentStore backed by
// PostgreSQL. The likelihood column is JSONB; response history lives in the
// assessment_responses table.
type PostgresAssessmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssessmentStore creates a PostgreSQL implementation of
// AssessmentStore. A nil logger falls back to slog.Default().
func NewPostgresAssessmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssessmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAssessmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assessment_store")),
	}
}

var _ store.AssessmentStore = (*PostgresAssessmentStore)(nil)

// Create saves a new assessment. Returns store.ErrInvalidEntity when the
// user or structure reference does not exist.
func (s *PostgresAssessmentStore) Create(ctx context.Context, assessment *domain.Assessment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assessment.Validate(); err != nil {
		log.Warn("assessment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessment.ID.String()))
		return err
	}

	query := `
		INSERT INTO assessments
			(id, user_id, structure_id, status, likelihood, current_item,
			 question_count, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		assessment.ID,
		assessment.UserID,
		assessment.StructureID,
		string(assessment.Status),
		[]byte(assessment.Likelihood),
		assessment.CurrentItem,
		assessment.QuestionCount,
		assessment.Result,
		assessment.CreatedAt,
		assessment.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during assessment creation",
				slog.String("assessment_id", assessment.ID.String()),
				slog.String("structure_id", assessment.StructureID.String()))
			return fmt.Errorf("%w: referenced user or structure not found",
				store.ErrInvalidEntity)
		}
		log.Error("failed to create assessment",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessment.ID.String()))
		return MapError(err)
	}

	log.Info("assessment created successfully",
		slog.String("assessment_id", assessment.ID.String()),
		slog.String("structure_id", assessment.StructureID.String()))
	return nil
}

// GetByID retrieves an assessment by ID. Returns store.ErrAssessmentNotFound
// if it does not exist.
func (s *PostgresAssessmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, structure_id, status, likelihood, current_item,
		       question_count, result, created_at, updated_at
		FROM assessments
		WHERE id = $1
	`

	assessment, err := scanAssessment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("assessment not found", slog.String("assessment_id", id.String()))
			return nil, store.ErrAssessmentNotFound
		}
		log.Error("failed to get assessment by ID",
			slog.String("error", err.Error()),
			slog.String("assessment_id", id.String()))
		return nil, MapError(err)
	}

	return assessment, nil
}

// ListByUser retrieves the user's assessments, most recent first.
func (s *PostgresAssessmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, structure_id, status, likelihood, current_item,
		       question_count, result, created_at, updated_at
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list assessments",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	assessments := []*domain.Assessment{}
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			log.Error("failed to scan assessment row", slog.String("error", err.Error()))
			return nil, err
		}
		assessments = append(assessments, assessment)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return assessments, nil
}

// Update persists the assessment's mutable fields. Returns
// store.ErrAssessmentNotFound if the assessment does not exist.
func (s *PostgresAssessmentStore) Update(ctx context.Context, assessment *domain.Assessment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := assessment.Validate(); err != nil {
		log.Warn("assessment validation failed during update",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessment.ID.String()))
		return err
	}

	query := `
		UPDATE assessments
		SET status = $1, likelihood = $2, current_item = $3,
		    question_count = $4, result = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		string(assessment.Status),
		[]byte(assessment.Likelihood),
		assessment.CurrentItem,
		assessment.QuestionCount,
		assessment.Result,
		assessment.UpdatedAt,
		assessment.ID,
	)

	if err != nil {
		log.Error("failed to update assessment",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessment.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrAssessmentNotFound
	}

	log.Debug("assessment updated",
		slog.String("assessment_id", assessment.ID.String()),
		slog.String("status", string(assessment.Status)))
	return nil
}

// AppendResponse records one question/response pair. Returns
// store.ErrInvalidEntity when the assessment reference does not exist.
func (s *PostgresAssessmentStore) AppendResponse(ctx context.Context, record *domain.ResponseRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO assessment_responses (id, assessment_id, item, correct, asked_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.AssessmentID,
		record.Item,
		record.Correct,
		record.AskedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: assessment with ID %s not found",
				store.ErrInvalidEntity, record.AssessmentID)
		}
		log.Error("failed to append assessment response",
			slog.String("error", err.Error()),
			slog.String("assessment_id", record.AssessmentID.String()))
		return MapError(err)
	}

	return nil
}

// ListResponses returns the assessment's responses in question order.
func (s *PostgresAssessmentStore) ListResponses(ctx context.Context, assessmentID uuid.UUID) ([]*domain.ResponseRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, assessment_id, item, correct, asked_at
		FROM assessment_responses
		WHERE assessment_id = $1
		ORDER BY asked_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, assessmentID)
	if err != nil {
		log.Error("failed to list assessment responses",
			slog.String("error", err.Error()),
			slog.String("assessment_id", assessmentID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := []*domain.ResponseRecord{}
	for rows.Next() {
		var record domain.ResponseRecord
		if err := rows.Scan(
			&record.ID,
			&record.AssessmentID,
			&record.Item,
			&record.Correct,
			&record.AskedAt,
		); err != nil {
			log.Error("failed to scan response row", slog.String("error", err.Error()))
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return records, nil
}

// WithTx returns an AssessmentStore bound to the given transaction.
func (s *PostgresAssessmentStore) WithTx(tx *sql.Tx) store.AssessmentStore {
	return &PostgresAssessmentStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanAssessment(row rowScanner) (*domain.Assessment, error) {
	var assessment domain.Assessment
	var status string
	var likelihood []byte

	err := row.Scan(
		&assessment.ID,
		&assessment.UserID,
		&assessment.StructureID,
		&status,
		&likelihood,
		&assessment.CurrentItem,
		&assessment.QuestionCount,
		&assessment.Result,
		&assessment.CreatedAt,
		&assessment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	assessment.Status = domain.AssessmentStatus(status)
	assessment.Likelihood = likelihood

	return &assessment, nil
}
