package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain/kst"
)

// Structure-specific validation errors
var (
	// ErrStructureIDEmpty is returned when a structure ID is empty or nil.
	ErrStructureIDEmpty = errors.New("structure ID cannot be empty")

	// ErrStructureUserIDEmpty is returned when a structure's user ID is empty or nil.
	ErrStructureUserIDEmpty = errors.New("structure user ID cannot be empty")

	// ErrStructureNameEmpty is returned when a structure's name is empty.
	ErrStructureNameEmpty = errors.New("structure name cannot be empty")

	// ErrStructureStatesEmpty is returned when a structure's state text is empty.
	ErrStructureStatesEmpty = errors.New("structure states cannot be empty")
)

// StructureAnalysis holds the derived properties of a knowledge structure
// that are expensive to recompute: the base and the surmise relation.
// It is stored as JSONB alongside the structure row and filled in by the
// background analysis task.
type StructureAnalysis struct {
	// Base lists the minimal states at each item, in canonical text form.
	Base []string `json:"base"`

	// Surmise maps each item to its prerequisite items.
	Surmise map[string][]string `json:"surmise"`
}

// KnowledgeStructure is the stored aggregate for a user-uploaded knowledge
// structure. States holds the canonical text form (one state per line,
// comma-separated items); Kind and Discriminative are derived at creation
// and must stay consistent with reparsing States.
type KnowledgeStructure struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Name           string          `json:"name"`
	States         string          `json:"states"`
	Kind           kst.Kind        `json:"kind"`
	Discriminative bool            `json:"discriminative"`
	Analysis       json.RawMessage `json:"analysis,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewKnowledgeStructure creates a new KnowledgeStructure for the given user
// from the states text. The text is parsed and validated, the canonical form
// is stored, and the structure is classified. Returns an error wrapping
// ErrInvalidStates if the text does not define a valid structure.
func NewKnowledgeStructure(userID uuid.UUID, name, states string) (*KnowledgeStructure, error) {
	now := time.Now().UTC()
	s := &KnowledgeStructure{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if states == "" {
		return nil, ErrStructureStatesEmpty
	}

	parsed, err := kst.Parse(states)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStates, err)
	}

	s.States = parsed.Format()
	s.Kind = parsed.Kind()
	s.Discriminative = parsed.IsDiscriminative()

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks if the KnowledgeStructure has valid data.
// Returns an error if any field fails validation.
func (s *KnowledgeStructure) Validate() error {
	if s.ID == uuid.Nil {
		return ErrStructureIDEmpty
	}

	if s.UserID == uuid.Nil {
		return ErrStructureUserIDEmpty
	}

	if s.Name == "" {
		return ErrStructureNameEmpty
	}

	if s.States == "" {
		return ErrStructureStatesEmpty
	}

	if !kst.IsValidKind(s.Kind) {
		return ErrInvalidKind
	}

	return nil
}

// Parse returns the in-memory knowledge structure for the stored state text.
func (s *KnowledgeStructure) Parse() (*kst.Structure, error) {
	parsed, err := kst.Parse(s.States)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStates, err)
	}
	return parsed, nil
}

// SetAnalysis attaches the derived analysis to the structure and refreshes
// the update timestamp.
func (s *KnowledgeStructure) SetAnalysis(a *StructureAnalysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	s.Analysis = data
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// GetAnalysis decodes the stored analysis. Returns nil without error when no
// analysis has been computed yet.
func (s *KnowledgeStructure) GetAnalysis() (*StructureAnalysis, error) {
	if len(s.Analysis) == 0 {
		return nil, nil
	}
	var a StructureAnalysis
	if err := json.Unmarshal(s.Analysis, &a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &a, nil
}
