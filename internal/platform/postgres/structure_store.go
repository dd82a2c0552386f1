package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/domain/kst"
	"github.com/isturunt/kst-api/internal/platform/logger"
	"github.com/isturunt/kst-api/internal/store"
)

// PostgresStructureStore implements store.StructureStore backed by
// PostgreSQL. The analysis column is JSONB and nullable: NULL until the
// background analysis task fills it in.
type PostgresStructureStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStructureStore creates a PostgreSQL implementation of
// StructureStore. A nil logger falls back to slog.Default().
func NewPostgresStructureStore(db store.DBTX, logger *slog.Logger) *PostgresStructureStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStructureStore{
		db:     db,
		logger: logger.With(slog.String("component", "structure_store")),
	}
}

var _ store.StructureStore = (*PostgresStructureStore)(nil)

// Create saves a new knowledge structure. Returns store.ErrInvalidEntity
// when the owning user does not exist.
func (s *PostgresStructureStore) Create(ctx context.Context, structure *domain.KnowledgeStructure) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := structure.Validate(); err != nil {
		log.Warn("structure validation failed during create",
			slog.String("error", err.Error()),
			slog.String("structure_id", structure.ID.String()))
		return err
	}

	query := `
		INSERT INTO knowledge_structures
			(id, user_id, name, states, kind, discriminative, analysis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		structure.ID,
		structure.UserID,
		structure.Name,
		structure.States,
		string(structure.Kind),
		structure.Discriminative,
		nullableJSON(structure.Analysis),
		structure.CreatedAt,
		structure.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during structure creation",
				slog.String("structure_id", structure.ID.String()),
				slog.String("user_id", structure.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, structure.UserID)
		}
		log.Error("failed to create structure",
			slog.String("error", err.Error()),
			slog.String("structure_id", structure.ID.String()))
		return MapError(err)
	}

	log.Info("structure created successfully",
		slog.String("structure_id", structure.ID.String()),
		slog.String("kind", string(structure.Kind)))
	return nil
}

// GetByID retrieves a knowledge structure by ID. Returns
// store.ErrStructureNotFound if it does not exist.
func (s *PostgresStructureStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeStructure, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, states, kind, discriminative, analysis, created_at, updated_at
		FROM knowledge_structures
		WHERE id = $1
	`

	structure, err := scanStructure(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("structure not found", slog.String("structure_id", id.String()))
			return nil, store.ErrStructureNotFound
		}
		log.Error("failed to get structure by ID",
			slog.String("error", err.Error()),
			slog.String("structure_id", id.String()))
		return nil, MapError(err)
	}

	return structure, nil
}

// ListByUser retrieves the user's knowledge structures, most recent first.
func (s *PostgresStructureStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.KnowledgeStructure, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, states, kind, discriminative, analysis, created_at, updated_at
		FROM knowledge_structures
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list structures",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	structures := []*domain.KnowledgeStructure{}
	for rows.Next() {
		structure, err := scanStructure(rows)
		if err != nil {
			log.Error("failed to scan structure row", slog.String("error", err.Error()))
			return nil, err
		}
		structures = append(structures, structure)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return structures, nil
}

// UpdateAnalysis stores the derived analysis for a structure. Returns
// store.ErrStructureNotFound if the structure does not exist.
func (s *PostgresStructureStore) UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis json.RawMessage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE knowledge_structures
		SET analysis = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, []byte(analysis), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update structure analysis",
			slog.String("error", err.Error()),
			slog.String("structure_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrStructureNotFound
	}

	log.Info("structure analysis updated", slog.String("structure_id", id.String()))
	return nil
}

// Delete removes a knowledge structure. Assessments referencing it are
// removed by ON DELETE CASCADE. Returns store.ErrStructureNotFound if the
// structure does not exist.
func (s *PostgresStructureStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_structures WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete structure",
			slog.String("error", err.Error()),
			slog.String("structure_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrStructureNotFound
	}

	log.Info("structure deleted successfully", slog.String("structure_id", id.String()))
	return nil
}

// WithTx returns a StructureStore bound to the given transaction.
func (s *PostgresStructureStore) WithTx(tx *sql.Tx) store.StructureStore {
	return &PostgresStructureStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStructure(row rowScanner) (*domain.KnowledgeStructure, error) {
	var structure domain.KnowledgeStructure
	var kind string
	var analysis []byte // nil when the analysis column is NULL

	err := row.Scan(
		&structure.ID,
		&structure.UserID,
		&structure.Name,
		&structure.States,
		&kind,
		&structure.Discriminative,
		&analysis,
		&structure.CreatedAt,
		&structure.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	structure.Kind = kst.Kind(kind)
	if len(analysis) > 0 {
		structure.Analysis = json.RawMessage(analysis)
	}

	return &structure, nil
}

// nullableJSON maps an empty raw message to SQL NULL.
func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
