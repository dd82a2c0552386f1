package api

import (
	"log/slog"
	"net/http"

	"github.com/isturunt/kst-api/internal/api/shared"
	"github.com/isturunt/kst-api/internal/platform/logger"
	"github.com/isturunt/kst-api/internal/service"
)

// AssessmentHandler handles adaptive-assessment HTTP requests.
type AssessmentHandler struct {
	assessmentService service.AssessmentService
	logger            *slog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(
	assessmentService service.AssessmentService,
	logger *slog.Logger,
) *AssessmentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AssessmentHandler")
	}

	return &AssessmentHandler{
		assessmentService: assessmentService,
		logger:            logger.With(slog.String("component", "assessment_handler")),
	}
}

// StartAssessment handles POST /assessments requests. The response carries
// the first question as current_item; an assessment can finish immediately
// when the structure admits no informative question.
func (h *AssessmentHandler) StartAssessment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StartAssessmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	assessment, err := h.assessmentService.Start(r.Context(), userID, req.StructureID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Debug("assessment started",
		slog.String("user_id", userID.String()),
		slog.String("assessment_id", assessment.ID.String()),
		slog.String("structure_id", assessment.StructureID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, NewAssessmentResponse(assessment))
}

// ListAssessments handles GET /assessments requests.
func (h *AssessmentHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	assessments, err := h.assessmentService.ListAssessments(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	responses := make([]AssessmentResponse, 0, len(assessments))
	for _, a := range assessments {
		responses = append(responses, NewAssessmentResponse(a))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetAssessment handles GET /assessments/{id} requests.
func (h *AssessmentHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, assessmentID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	assessment, err := h.assessmentService.GetAssessment(r.Context(), userID, assessmentID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewAssessmentResponse(assessment))
}

// NextQuestion handles GET /assessments/{id}/next requests.
func (h *AssessmentHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, assessmentID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	question, err := h.assessmentService.NextQuestion(r.Context(), userID, assessmentID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QuestionResponse{
		Item:           question.Item,
		QuestionNumber: question.QuestionCount + 1,
	})
}

// SubmitResponse handles POST /assessments/{id}/responses requests. The item
// must match the assessment's current question.
func (h *AssessmentHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, assessmentID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitResponseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	assessment, err := h.assessmentService.SubmitResponse(
		r.Context(), userID, assessmentID, req.Item, *req.Correct)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Debug("response recorded",
		slog.String("user_id", userID.String()),
		slog.String("assessment_id", assessment.ID.String()),
		slog.String("status", string(assessment.Status)),
		slog.Int("question_count", assessment.QuestionCount))
	shared.RespondWithJSON(w, r, http.StatusOK, NewAssessmentResponse(assessment))
}

// AbandonAssessment handles POST /assessments/{id}/abandon requests.
func (h *AssessmentHandler) AbandonAssessment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, assessmentID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	assessment, err := h.assessmentService.Abandon(r.Context(), userID, assessmentID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewAssessmentResponse(assessment))
}

// ListResponses handles GET /assessments/{id}/responses requests. Records
// come back in the order the questions were asked.
func (h *AssessmentHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, assessmentID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	records, err := h.assessmentService.ListResponses(r.Context(), userID, assessmentID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	responses := make([]ResponseRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, ResponseRecordResponse{
			Item:    record.Item,
			Correct: record.Correct,
			AskedAt: record.AskedAt,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
