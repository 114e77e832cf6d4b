package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProviderExportsWithServiceName(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := NewProvider(exp, "scam-shield")

	_, span := tp.Tracer("test").Start(context.Background(), "work")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "work", spans[0].Name)

	var service string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "scam-shield", service)

	require.NoError(t, tp.Shutdown(context.Background()))
}
