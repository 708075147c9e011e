package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/infras/otel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorded(t *testing.T) (otel.Otel, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return otel.NewWithProvider(provider), recorder
}

func TestScope(t *testing.T) {
	tracer, recorder := newRecorded(t)

	_, scope := tracer.NewScope(context.Background(), "service", "service.SubmitBooking")
	scope.SetAttributes(map[string]any{
		"room_id":  "room-1",
		"capacity": 12,
		"approved": true,
		"roles":    []string{"admin"},
		"duration": 90 * time.Minute,
	})
	scope.AddEvent("booking stored")
	scope.TraceIfError(nil)
	scope.TraceIfError(errors.New("boom"))
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "service.SubmitBooking", span.Name())
	assert.Equal(t, "service", span.InstrumentationScope().Name)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "boom", span.Status().Description)
	assert.Len(t, span.Events(), 2)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}

	assert.Equal(t, "room-1", attrs["room_id"].AsString())
	assert.Equal(t, int64(12), attrs["capacity"].AsInt64())
	assert.True(t, attrs["approved"].AsBool())
	assert.Equal(t, []string{"admin"}, attrs["roles"].AsStringSlice())
	assert.Equal(t, "1h30m0s", attrs["duration"].AsString())
}

func TestScopeWithoutError(t *testing.T) {
	tracer, recorder := newRecorded(t)

	_, scope := tracer.NewScope(context.Background(), "handler", "handler.GetRooms")
	scope.TraceError(nil)
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Empty(t, spans[0].Events())
}
