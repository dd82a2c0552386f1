package service_test

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/events"
	"github.com/isturunt/kst-api/internal/store"
)

// MockStructureStore mocks store.StructureStore.
type MockStructureStore struct {
	mock.Mock
}

func (m *MockStructureStore) Create(ctx context.Context, structure *domain.KnowledgeStructure) error {
	args := m.Called(ctx, structure)
	return args.Error(0)
}

func (m *MockStructureStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeStructure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeStructure), args.Error(1)
}

func (m *MockStructureStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.KnowledgeStructure, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeStructure), args.Error(1)
}

func (m *MockStructureStore) UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis json.RawMessage) error {
	args := m.Called(ctx, id, analysis)
	return args.Error(0)
}

func (m *MockStructureStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStructureStore) WithTx(tx *sql.Tx) store.StructureStore {
	return m
}

// MockAssessmentStore mocks store.AssessmentStore.
type MockAssessmentStore struct {
	mock.Mock
}

func (m *MockAssessmentStore) Create(ctx context.Context, assessment *domain.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assessment), args.Error(1)
}

func (m *MockAssessmentStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Assessment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Assessment), args.Error(1)
}

func (m *MockAssessmentStore) Update(ctx context.Context, assessment *domain.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentStore) AppendResponse(ctx context.Context, record *domain.ResponseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAssessmentStore) ListResponses(ctx context.Context, assessmentID uuid.UUID) ([]*domain.ResponseRecord, error) {
	args := m.Called(ctx, assessmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ResponseRecord), args.Error(1)
}

func (m *MockAssessmentStore) WithTx(tx *sql.Tx) store.AssessmentStore {
	return m
}

// MockEmitter mocks events.EventEmitter.
type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
