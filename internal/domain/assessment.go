package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Assessment-specific validation errors
var (
	// ErrAssessmentIDEmpty is returned when an assessment ID is empty or nil.
	ErrAssessmentIDEmpty = errors.New("assessment ID cannot be empty")

	// ErrAssessmentUserIDEmpty is returned when an assessment's user ID is empty or nil.
	ErrAssessmentUserIDEmpty = errors.New("assessment user ID cannot be empty")

	// ErrAssessmentStructureIDEmpty is returned when an assessment's structure ID is empty or nil.
	ErrAssessmentStructureIDEmpty = errors.New("assessment structure ID cannot be empty")

	// ErrAssessmentNotActive is returned when responses are submitted to an
	// assessment that has already finished.
	ErrAssessmentNotActive = errors.New("assessment is not active")
)

// AssessmentStatus represents the lifecycle state of an assessment.
type AssessmentStatus string

// Possible assessment status values
const (
	AssessmentStatusActive    AssessmentStatus = "active"
	AssessmentStatusConverged AssessmentStatus = "converged"
	AssessmentStatusExhausted AssessmentStatus = "exhausted"
	AssessmentStatusAbandoned AssessmentStatus = "abandoned"
)

// IsValidAssessmentStatus reports whether the given status is one of the
// known assessment statuses.
func IsValidAssessmentStatus(s AssessmentStatus) bool {
	switch s {
	case AssessmentStatusActive, AssessmentStatusConverged,
		AssessmentStatusExhausted, AssessmentStatusAbandoned:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the assessment.
func (s AssessmentStatus) IsTerminal() bool {
	return s != AssessmentStatusActive
}

// Assessment is one run of the Markov assessment procedure against a stored
// knowledge structure. Likelihood carries the current distribution over
// states (JSON, see assess.Likelihood); Result holds the uncovered state in
// canonical text form once the assessment converges.
type Assessment struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"user_id"`
	StructureID   uuid.UUID        `json:"structure_id"`
	Status        AssessmentStatus `json:"status"`
	Likelihood    json.RawMessage  `json:"likelihood"`
	CurrentItem   string           `json:"current_item,omitempty"`
	QuestionCount int              `json:"question_count"`
	Result        string           `json:"result,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewAssessment creates a new active Assessment for the given user and
// structure with the provided initial likelihood.
func NewAssessment(userID, structureID uuid.UUID, likelihood json.RawMessage) (*Assessment, error) {
	now := time.Now().UTC()
	a := &Assessment{
		ID:          uuid.New(),
		UserID:      userID,
		StructureID: structureID,
		Status:      AssessmentStatusActive,
		Likelihood:  likelihood,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks if the Assessment has valid data.
// Returns an error if any field fails validation.
func (a *Assessment) Validate() error {
	if a.ID == uuid.Nil {
		return ErrAssessmentIDEmpty
	}

	if a.UserID == uuid.Nil {
		return ErrAssessmentUserIDEmpty
	}

	if a.StructureID == uuid.Nil {
		return ErrAssessmentStructureIDEmpty
	}

	if !IsValidAssessmentStatus(a.Status) {
		return ErrInvalidAssessmentStatus
	}

	if len(a.Likelihood) == 0 {
		return ErrValidation
	}

	return nil
}

// RecordResponse updates the assessment after one question/response cycle:
// the posterior replaces the likelihood, the question counter advances, and
// the current item is cleared. Returns ErrAssessmentNotActive when the
// assessment has already finished.
func (a *Assessment) RecordResponse(posterior json.RawMessage) error {
	if a.Status != AssessmentStatusActive {
		return ErrAssessmentNotActive
	}

	a.Likelihood = posterior
	a.QuestionCount++
	a.CurrentItem = ""
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Finish transitions the assessment into a terminal status. Result may be
// empty for abandoned or exhausted assessments.
func (a *Assessment) Finish(status AssessmentStatus, result string) error {
	if a.Status != AssessmentStatusActive {
		return ErrAssessmentNotActive
	}
	if !IsValidAssessmentStatus(status) || !status.IsTerminal() {
		return ErrInvalidAssessmentStatus
	}

	a.Status = status
	a.Result = result
	a.CurrentItem = ""
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// ResponseRecord is one persisted question/response pair of an assessment,
// the durable form of the procedure's history.
type ResponseRecord struct {
	ID           uuid.UUID `json:"id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
	Item         string    `json:"item"`
	Correct      bool      `json:"correct"`
	AskedAt      time.Time `json:"asked_at"`
}

// NewResponseRecord creates a response record for the given assessment.
func NewResponseRecord(assessmentID uuid.UUID, item string, correct bool) (*ResponseRecord, error) {
	if assessmentID == uuid.Nil {
		return nil, ErrAssessmentIDEmpty
	}
	if item == "" {
		return nil, ErrValidation
	}

	return &ResponseRecord{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		Item:         item,
		Correct:      correct,
		AskedAt:      time.Now().UTC(),
	}, nil
}
