package api

import (
	"log/slog"
	"net/http"

	"github.com/isturunt/kst-api/internal/api/shared"
	"github.com/isturunt/kst-api/internal/platform/logger"
	"github.com/isturunt/kst-api/internal/service"
)

// StructureHandler handles knowledge-structure HTTP requests.
type StructureHandler struct {
	structureService service.StructureService
	logger           *slog.Logger
}

// NewStructureHandler creates a new StructureHandler.
func NewStructureHandler(
	structureService service.StructureService,
	logger *slog.Logger,
) *StructureHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StructureHandler")
	}

	return &StructureHandler{
		structureService: structureService,
		logger:           logger.With(slog.String("component", "structure_handler")),
	}
}

// CreateStructure handles POST /structures requests. The state text is
// parsed, canonicalized, and classified before storage; analysis runs in the
// background.
func (h *StructureHandler) CreateStructure(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateStructureRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	structure, err := h.structureService.CreateStructure(r.Context(), userID, req.Name, req.States)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Debug("structure created",
		slog.String("user_id", userID.String()),
		slog.String("structure_id", structure.ID.String()),
		slog.String("kind", string(structure.Kind)))
	shared.RespondWithJSON(w, r, http.StatusCreated, NewStructureResponse(structure))
}

// ListStructures handles GET /structures requests.
func (h *StructureHandler) ListStructures(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	structures, err := h.structureService.ListStructures(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	responses := make([]StructureResponse, 0, len(structures))
	for _, s := range structures {
		responses = append(responses, NewStructureResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetStructure handles GET /structures/{id} requests.
func (h *StructureHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, structureID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	structure, err := h.structureService.GetStructure(r.Context(), userID, structureID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewStructureResponse(structure))
}

// DeleteStructure handles DELETE /structures/{id} requests. Assessments
// against the structure are removed with it.
func (h *StructureHandler) DeleteStructure(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, structureID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.structureService.DeleteStructure(r.Context(), userID, structureID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Debug("structure deleted",
		slog.String("user_id", userID.String()),
		slog.String("structure_id", structureID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetAnalysis handles GET /structures/{id}/analysis requests. Returns the
// base and surmise relation, computing them inline when the background task
// has not finished yet.
func (h *StructureHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, structureID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	analysis, err := h.structureService.GetAnalysis(r.Context(), userID, structureID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, analysis)
}

// GetReduction handles GET /structures/{id}/reduction requests.
func (h *StructureHandler) GetReduction(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, structureID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	reduction, err := h.structureService.GetReduction(r.Context(), userID, structureID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReductionResponse{
		Items:  reduction.Items,
		States: reduction.States,
		Kind:   string(reduction.Kind),
	})
}
