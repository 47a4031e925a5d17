package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewRegistersTracerProvider(t *testing.T) {
	obs := New("test-service")
	defer obs.Shutdown()

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "global tracer provider must be the SDK provider, not the no-op default")

	_, span := otel.Tracer("test-service").Start(context.Background(), "test.op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestRecordHelpersAreNilSafe(t *testing.T) {
	var obs *Observability
	obs.RecordReportProcessed(context.Background(), "success")
	obs.RecordReportDuration(context.Background(), time.Millisecond, "success")
	obs.Shutdown()

	obs = New("test-service-2")
	defer obs.Shutdown()
	obs.RecordReportProcessed(context.Background(), "success")
	obs.RecordReportDuration(context.Background(), 5*time.Millisecond, "error")
}
