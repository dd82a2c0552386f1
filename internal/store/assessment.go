package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
)

// AssessmentStore defines the interface for assessment persistence.
type AssessmentStore interface {
	// Create saves a new assessment to the store.
	Create(ctx context.Context, assessment *domain.Assessment) error

	// GetByID retrieves an assessment by its unique ID.
	// Returns ErrAssessmentNotFound if the assessment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error)

	// ListByUser retrieves all assessments owned by the given user,
	// most recently created first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error)

	// Update persists the assessment's mutable fields: status, likelihood,
	// current item, question count, and result.
	// Returns ErrAssessmentNotFound if the assessment does not exist.
	Update(ctx context.Context, assessment *domain.Assessment) error

	// AppendResponse records one question/response pair of an assessment.
	// IMPORTANT: call this inside the same transaction that updates the
	// assessment row, so history and likelihood cannot drift apart.
	AppendResponse(ctx context.Context, record *domain.ResponseRecord) error

	// ListResponses returns the assessment's responses in the order they
	// were asked.
	ListResponses(ctx context.Context, assessmentID uuid.UUID) ([]*domain.ResponseRecord, error)

	// WithTx returns a new AssessmentStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through RunInTransaction.
	WithTx(tx *sql.Tx) AssessmentStore
}
