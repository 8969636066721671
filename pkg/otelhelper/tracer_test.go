package otelhelper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanAndSetError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := StartSpan(t.Context(), tracer, "research.phase2", attribute.String(PhaseKey, "phase2"))
	SetError(span, errors.New("boom"), attribute.String(ErrorKindKey, "remote"))
	span.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 1) {
		assert.Equal(t, "research.phase2", ended[0].Name())
		assert.Equal(t, codes.Error, ended[0].Status().Code)
		assert.Contains(t, ended[0].Attributes(), attribute.String(PhaseKey, "phase2"))
	}
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(t.Context(), NoopTracer(), "noop")
	span.End()

	assert.False(t, span.SpanContext().IsValid())
}

func TestRunAttributes(t *testing.T) {
	attrs := RunAttributes("wf-1", "rec1")

	assert.Equal(t, []attribute.KeyValue{
		attribute.String(WorkflowIDKey, "wf-1"),
		attribute.String(EntityIDKey, "rec1"),
	}, attrs)
}
