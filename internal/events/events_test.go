package events_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isturunt/kst-api/internal/events"
)

type recordingHandler struct {
	seen []*events.TaskRequestEvent
	err  error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.TaskRequestEvent) error {
	h.seen = append(h.seen, event)
	return h.err
}

type analysisPayload struct {
	StructureID string `json:"structure_id"`
}

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	event, err := events.NewTaskRequestEvent(
		events.EventTypeStructureAnalysis,
		analysisPayload{StructureID: "struct-42"},
	)
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", event.ID.String())
	assert.Equal(t, events.EventTypeStructureAnalysis, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded analysisPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "struct-42", decoded.StructureID)
}

func TestNewTaskRequestEventUnserializablePayload(t *testing.T) {
	t.Parallel()

	_, err := events.NewTaskRequestEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestEmitEventDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(slog.Default())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := events.NewTaskRequestEvent(events.EventTypeStructureAnalysis, analysisPayload{StructureID: "s1"})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.seen, 1)
	assert.Len(t, second.seen, 1)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(slog.Default())
	failing := &recordingHandler{err: errors.New("handler exploded")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := events.NewTaskRequestEvent(events.EventTypeStructureAnalysis, analysisPayload{StructureID: "s2"})
	require.NoError(t, err)

	emitErr := emitter.EmitEvent(context.Background(), event)
	assert.ErrorContains(t, emitErr, "handler exploded")
	assert.Len(t, healthy.seen, 1, "healthy handler still receives the event")
}

func TestEmitEventNoHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(slog.Default())
	event, err := events.NewTaskRequestEvent(events.EventTypeStructureAnalysis, analysisPayload{StructureID: "s3"})
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}
