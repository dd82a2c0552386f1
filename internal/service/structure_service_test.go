package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/domain/kst"
	"github.com/isturunt/kst-api/internal/service"
	"github.com/isturunt/kst-api/internal/store"
)

func referenceStructure(t *testing.T, userID uuid.UUID) *domain.KnowledgeStructure {
	t.Helper()
	s, err := domain.NewKnowledgeStructure(userID, "fractions", "a\na,b\na,b,c")
	require.NoError(t, err)
	return s
}

func newStructureService(structures *MockStructureStore) *service.StructureServiceImpl {
	return service.NewStructureService(structures, &MockEmitter{}, nil, slog.Default())
}

func TestGetStructureOwnership(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()
	entity := referenceStructure(t, owner)

	structures := new(MockStructureStore)
	structures.On("GetByID", mock.Anything, entity.ID).Return(entity, nil)

	svc := newStructureService(structures)

	got, err := svc.GetStructure(context.Background(), owner, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ID, got.ID)

	_, err = svc.GetStructure(context.Background(), stranger, entity.ID)
	assert.ErrorIs(t, err, service.ErrNotOwned)
}

func TestGetStructureNotFound(t *testing.T) {
	t.Parallel()

	structures := new(MockStructureStore)
	structures.On("GetByID", mock.Anything, mock.Anything).Return(nil, store.ErrStructureNotFound)

	svc := newStructureService(structures)

	_, err := svc.GetStructure(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrStructureNotFound)
}

func TestGetAnalysisUsesStoredResult(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	entity := referenceStructure(t, owner)
	require.NoError(t, entity.SetAnalysis(&domain.StructureAnalysis{
		Base:    []string{"a", "a,b", "a,b,c"},
		Surmise: map[string][]string{"a": nil, "b": {"a"}, "c": {"a", "b"}},
	}))

	structures := new(MockStructureStore)
	structures.On("GetByID", mock.Anything, entity.ID).Return(entity, nil)

	svc := newStructureService(structures)

	analysis, err := svc.GetAnalysis(context.Background(), owner, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a,b", "a,b,c"}, analysis.Base)

	// No recomputation, so no UpdateAnalysis call.
	structures.AssertNotCalled(t, "UpdateAnalysis", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAnalysisComputesInlineWhenMissing(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	entity := referenceStructure(t, owner)

	structures := new(MockStructureStore)
	structures.On("GetByID", mock.Anything, entity.ID).Return(entity, nil)
	structures.On("UpdateAnalysis", mock.Anything, entity.ID, mock.Anything).Return(nil)

	svc := newStructureService(structures)

	analysis, err := svc.GetAnalysis(context.Background(), owner, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a,b", "a,b,c"}, analysis.Base)
	assert.Equal(t, []string{"a", "b"}, analysis.Surmise["c"])

	structures.AssertCalled(t, "UpdateAnalysis", mock.Anything, entity.ID, mock.Anything)
}

func TestGetReduction(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	// b and c always occur together, so they collapse into one notion.
	entity, err := domain.NewKnowledgeStructure(owner, "notions", "a\na,b,c")
	require.NoError(t, err)

	structures := new(MockStructureStore)
	structures.On("GetByID", mock.Anything, entity.ID).Return(entity, nil)

	svc := newStructureService(structures)

	reduction, err := svc.GetReduction(context.Background(), owner, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b+c"}, reduction.Items)
	assert.Equal(t, kst.KindLearningSpace, reduction.Kind)
}

func TestListStructures(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	entity := referenceStructure(t, owner)

	structures := new(MockStructureStore)
	structures.On("ListByUser", mock.Anything, owner).
		Return([]*domain.KnowledgeStructure{entity}, nil)

	svc := newStructureService(structures)

	list, err := svc.ListStructures(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.ID, list[0].ID)
}
