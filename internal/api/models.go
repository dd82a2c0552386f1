package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/isturunt/kst-api/internal/domain"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse is the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    string    `json:"expires_at,omitempty"`
}

// RefreshTokenRequest is the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse is the successful response for the refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateStructureRequest is the payload for uploading a knowledge structure.
// States uses the canonical text form: one state per line, items separated by
// commas.
type CreateStructureRequest struct {
	Name   string `json:"name"   validate:"required,min=1,max=200"`
	States string `json:"states" validate:"required"`
}

// StructureResponse is the API form of a stored knowledge structure.
type StructureResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	States         string          `json:"states"`
	Kind           string          `json:"kind"`
	Discriminative bool            `json:"discriminative"`
	Analysis       json.RawMessage `json:"analysis,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewStructureResponse converts a domain structure to its API form.
func NewStructureResponse(s *domain.KnowledgeStructure) StructureResponse {
	return StructureResponse{
		ID:             s.ID,
		Name:           s.Name,
		States:         s.States,
		Kind:           string(s.Kind),
		Discriminative: s.Discriminative,
		Analysis:       s.Analysis,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ReductionResponse is the API form of a discriminative reduction. Items
// holds the notion labels; States the reduced family in canonical text form.
type ReductionResponse struct {
	Items  []string `json:"items"`
	States string   `json:"states"`
	Kind   string   `json:"kind"`
}

// StartAssessmentRequest is the payload for starting an assessment.
type StartAssessmentRequest struct {
	StructureID uuid.UUID `json:"structure_id" validate:"required"`
}

// SubmitResponseRequest is the payload for answering the current question.
type SubmitResponseRequest struct {
	Item    string `json:"item"    validate:"required"`
	Correct *bool  `json:"correct" validate:"required"`
}

// AssessmentResponse is the API form of an assessment. The likelihood
// distribution stays internal; clients see status, progress, and the result.
type AssessmentResponse struct {
	ID            uuid.UUID `json:"id"`
	StructureID   uuid.UUID `json:"structure_id"`
	Status        string    `json:"status"`
	CurrentItem   string    `json:"current_item,omitempty"`
	QuestionCount int       `json:"question_count"`
	Result        string    `json:"result,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAssessmentResponse converts a domain assessment to its API form.
func NewAssessmentResponse(a *domain.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:            a.ID,
		StructureID:   a.StructureID,
		Status:        string(a.Status),
		CurrentItem:   a.CurrentItem,
		QuestionCount: a.QuestionCount,
		Result:        a.Result,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// QuestionResponse carries the current question of an active assessment.
type QuestionResponse struct {
	Item           string `json:"item"`
	QuestionNumber int    `json:"question_number"`
}

// ResponseRecordResponse is the API form of one answered question.
type ResponseRecordResponse struct {
	Item    string    `json:"item"`
	Correct bool      `json:"correct"`
	AskedAt time.Time `json:"asked_at"`
}
