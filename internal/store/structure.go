package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
)

// StructureStore defines the interface for knowledge structure persistence.
type StructureStore interface {
	// Create saves a new knowledge structure to the store.
	// The structure must be valid according to domain validation rules.
	Create(ctx context.Context, structure *domain.KnowledgeStructure) error

	// GetByID retrieves a knowledge structure by its unique ID.
	// Returns ErrStructureNotFound if the structure does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeStructure, error)

	// ListByUser retrieves all knowledge structures owned by the given user,
	// most recently created first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.KnowledgeStructure, error)

	// UpdateAnalysis stores the derived analysis (base, surmise relation)
	// for an existing structure. Used by the background analysis task.
	// Returns ErrStructureNotFound if the structure does not exist.
	UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis json.RawMessage) error

	// Delete removes a knowledge structure from the store by its ID.
	// Associated assessments are removed by the database's cascade rules.
	// Returns ErrStructureNotFound if the structure does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new StructureStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through RunInTransaction.
	WithTx(tx *sql.Tx) StructureStore
}
