package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/service"
	"github.com/isturunt/kst-api/internal/store"
)

// mockAssessmentService is a func-field mock of service.AssessmentService.
type mockAssessmentService struct {
	startFn         func(ctx context.Context, userID, structureID uuid.UUID) (*domain.Assessment, error)
	getFn           func(ctx context.Context, userID, assessmentID uuid.UUID) (*domain.Assessment, error)
	listFn          func(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error)
	nextQuestionFn  func(ctx context.Context, userID, assessmentID uuid.UUID) (*service.Question, error)
	submitFn        func(ctx context.Context, userID, assessmentID uuid.UUID, item string, correct bool) (*domain.Assessment, error)
	abandonFn       func(ctx context.Context, userID, assessmentID uuid.UUID) (*domain.Assessment, error)
	listResponsesFn func(ctx context.Context, userID, assessmentID uuid.UUID) ([]*domain.ResponseRecord, error)
}

func (m *mockAssessmentService) Start(
	ctx context.Context, userID, structureID uuid.UUID,
) (*domain.Assessment, error) {
	return m.startFn(ctx, userID, structureID)
}

func (m *mockAssessmentService) GetAssessment(
	ctx context.Context, userID, assessmentID uuid.UUID,
) (*domain.Assessment, error) {
	return m.getFn(ctx, userID, assessmentID)
}

func (m *mockAssessmentService) ListAssessments(
	ctx context.Context, userID uuid.UUID,
) ([]*domain.Assessment, error) {
	return m.listFn(ctx, userID)
}

func (m *mockAssessmentService) NextQuestion(
	ctx context.Context, userID, assessmentID uuid.UUID,
) (*service.Question, error) {
	return m.nextQuestionFn(ctx, userID, assessmentID)
}

func (m *mockAssessmentService) SubmitResponse(
	ctx context.Context, userID, assessmentID uuid.UUID, item string, correct bool,
) (*domain.Assessment, error) {
	return m.submitFn(ctx, userID, assessmentID, item, correct)
}

func (m *mockAssessmentService) Abandon(
	ctx context.Context, userID, assessmentID uuid.UUID,
) (*domain.Assessment, error) {
	return m.abandonFn(ctx, userID, assessmentID)
}

func (m *mockAssessmentService) ListResponses(
	ctx context.Context, userID, assessmentID uuid.UUID,
) ([]*domain.ResponseRecord, error) {
	return m.listResponsesFn(ctx, userID, assessmentID)
}

func sampleAssessment(userID uuid.UUID) *domain.Assessment {
	now := time.Now().UTC()
	return &domain.Assessment{
		ID:            uuid.New(),
		UserID:        userID,
		StructureID:   uuid.New(),
		Status:        domain.AssessmentStatusActive,
		Likelihood:    json.RawMessage(`{"":0.25,"a":0.25,"a,b":0.25,"a,b,c":0.25}`),
		CurrentItem:   "b",
		QuestionCount: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestAssessmentHandlerStart(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success returns first question", func(t *testing.T) {
		t.Parallel()

		assessment := sampleAssessment(userID)
		svc := &mockAssessmentService{
			startFn: func(ctx context.Context, uid, sid uuid.UUID) (*domain.Assessment, error) {
				assert.Equal(t, assessment.StructureID, sid)
				return assessment, nil
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		body, _ := json.Marshal(StartAssessmentRequest{StructureID: assessment.StructureID})
		rr := httptest.NewRecorder()
		handler.StartAssessment(rr, authedRequest(http.MethodPost, "/api/assessments", body, userID, ""))

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp AssessmentResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, assessment.ID, resp.ID)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, "b", resp.CurrentItem)

		// The likelihood distribution never leaves the server.
		assert.NotContains(t, rr.Body.String(), "likelihood")
	})

	t.Run("structure of another user is forbidden", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			startFn: func(ctx context.Context, uid, sid uuid.UUID) (*domain.Assessment, error) {
				return nil, service.ErrNotOwned
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		body, _ := json.Marshal(StartAssessmentRequest{StructureID: uuid.New()})
		rr := httptest.NewRecorder()
		handler.StartAssessment(rr, authedRequest(http.MethodPost, "/api/assessments", body, userID, ""))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing structure id fails validation", func(t *testing.T) {
		t.Parallel()

		handler := NewAssessmentHandler(&mockAssessmentService{}, testLogger())

		body, _ := json.Marshal(StartAssessmentRequest{})
		rr := httptest.NewRecorder()
		handler.StartAssessment(rr, authedRequest(http.MethodPost, "/api/assessments", body, userID, ""))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAssessmentHandlerNextQuestion(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	assessmentID := uuid.New()

	t.Run("returns current question", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			nextQuestionFn: func(ctx context.Context, uid, aid uuid.UUID) (*service.Question, error) {
				return &service.Question{Item: "b", QuestionCount: 2}, nil
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		rr := httptest.NewRecorder()
		handler.NextQuestion(rr, authedRequest(http.MethodGet,
			"/api/assessments/"+assessmentID.String()+"/next", nil, userID, assessmentID.String()))

		require.Equal(t, http.StatusOK, rr.Code)

		var resp QuestionResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "b", resp.Item)
		assert.Equal(t, 3, resp.QuestionNumber)
	})

	t.Run("finished assessment is a conflict", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			nextQuestionFn: func(ctx context.Context, uid, aid uuid.UUID) (*service.Question, error) {
				return nil, service.ErrAssessmentFinished
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		rr := httptest.NewRecorder()
		handler.NextQuestion(rr, authedRequest(http.MethodGet,
			"/api/assessments/"+assessmentID.String()+"/next", nil, userID, assessmentID.String()))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestAssessmentHandlerSubmitResponse(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	assessmentID := uuid.New()
	correct := true

	t.Run("answer advances the assessment", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			submitFn: func(ctx context.Context, uid, aid uuid.UUID, item string, c bool) (*domain.Assessment, error) {
				assert.Equal(t, "b", item)
				assert.True(t, c)
				updated := sampleAssessment(userID)
				updated.ID = aid
				updated.QuestionCount = 1
				updated.CurrentItem = "c"
				return updated, nil
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		body, _ := json.Marshal(SubmitResponseRequest{Item: "b", Correct: &correct})
		rr := httptest.NewRecorder()
		handler.SubmitResponse(rr, authedRequest(http.MethodPost,
			"/api/assessments/"+assessmentID.String()+"/responses", body, userID, assessmentID.String()))

		require.Equal(t, http.StatusOK, rr.Code)

		var resp AssessmentResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 1, resp.QuestionCount)
		assert.Equal(t, "c", resp.CurrentItem)
	})

	t.Run("converged answer carries the result", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			submitFn: func(ctx context.Context, uid, aid uuid.UUID, item string, c bool) (*domain.Assessment, error) {
				finished := sampleAssessment(userID)
				finished.ID = aid
				finished.Status = domain.AssessmentStatusConverged
				finished.CurrentItem = ""
				finished.QuestionCount = 4
				finished.Result = "a,b"
				return finished, nil
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		body, _ := json.Marshal(SubmitResponseRequest{Item: "b", Correct: &correct})
		rr := httptest.NewRecorder()
		handler.SubmitResponse(rr, authedRequest(http.MethodPost,
			"/api/assessments/"+assessmentID.String()+"/responses", body, userID, assessmentID.String()))

		require.Equal(t, http.StatusOK, rr.Code)

		var resp AssessmentResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "converged", resp.Status)
		assert.Equal(t, "a,b", resp.Result)
		assert.Empty(t, resp.CurrentItem)
	})

	t.Run("wrong item is a conflict", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			submitFn: func(ctx context.Context, uid, aid uuid.UUID, item string, c bool) (*domain.Assessment, error) {
				return nil, service.ErrWrongItem
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		body, _ := json.Marshal(SubmitResponseRequest{Item: "z", Correct: &correct})
		rr := httptest.NewRecorder()
		handler.SubmitResponse(rr, authedRequest(http.MethodPost,
			"/api/assessments/"+assessmentID.String()+"/responses", body, userID, assessmentID.String()))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing correct flag fails validation", func(t *testing.T) {
		t.Parallel()

		handler := NewAssessmentHandler(&mockAssessmentService{}, testLogger())

		body, _ := json.Marshal(map[string]string{"item": "b"})
		rr := httptest.NewRecorder()
		handler.SubmitResponse(rr, authedRequest(http.MethodPost,
			"/api/assessments/"+assessmentID.String()+"/responses", body, userID, assessmentID.String()))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAssessmentHandlerAbandon(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	assessmentID := uuid.New()

	svc := &mockAssessmentService{
		abandonFn: func(ctx context.Context, uid, aid uuid.UUID) (*domain.Assessment, error) {
			abandoned := sampleAssessment(userID)
			abandoned.ID = aid
			abandoned.Status = domain.AssessmentStatusAbandoned
			abandoned.CurrentItem = ""
			return abandoned, nil
		},
	}
	handler := NewAssessmentHandler(svc, testLogger())

	rr := httptest.NewRecorder()
	handler.AbandonAssessment(rr, authedRequest(http.MethodPost,
		"/api/assessments/"+assessmentID.String()+"/abandon", nil, userID, assessmentID.String()))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp AssessmentResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "abandoned", resp.Status)
}

func TestAssessmentHandlerListResponses(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	assessmentID := uuid.New()

	t.Run("returns records in asked order", func(t *testing.T) {
		t.Parallel()

		asked := time.Now().UTC().Add(-time.Minute)
		svc := &mockAssessmentService{
			listResponsesFn: func(ctx context.Context, uid, aid uuid.UUID) ([]*domain.ResponseRecord, error) {
				return []*domain.ResponseRecord{
					{Item: "b", Correct: true, AskedAt: asked},
					{Item: "c", Correct: false, AskedAt: asked.Add(time.Second)},
				}, nil
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		rr := httptest.NewRecorder()
		handler.ListResponses(rr, authedRequest(http.MethodGet,
			"/api/assessments/"+assessmentID.String()+"/responses", nil, userID, assessmentID.String()))

		require.Equal(t, http.StatusOK, rr.Code)

		var resp []ResponseRecordResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "b", resp[0].Item)
		assert.True(t, resp[0].Correct)
		assert.Equal(t, "c", resp[1].Item)
		assert.False(t, resp[1].Correct)
	})

	t.Run("unknown assessment is not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockAssessmentService{
			listResponsesFn: func(ctx context.Context, uid, aid uuid.UUID) ([]*domain.ResponseRecord, error) {
				return nil, store.ErrAssessmentNotFound
			},
		}
		handler := NewAssessmentHandler(svc, testLogger())

		rr := httptest.NewRecorder()
		handler.ListResponses(rr, authedRequest(http.MethodGet,
			"/api/assessments/"+assessmentID.String()+"/responses", nil, userID, assessmentID.String()))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
