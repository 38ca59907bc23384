package recipebox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewResource(t *testing.T) {
	cfg := OtelConfig{ServiceName: "recipebox", ServiceVersion: "1.2.3", DeployEnv: "staging"}

	res, err := newResource(cfg, TracerNameLambda)
	require.NoError(t, err)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "recipebox", attrs["service.name"].AsString())
	assert.Equal(t, "1.2.3", attrs["service.version"].AsString())
	assert.Equal(t, "staging", attrs["deployment.environment"].AsString())
	assert.Equal(t, TracerNameLambda, attrs["recipebox.entrypoint"].AsString())
	assert.Equal(t, []string{TracerNameCatalog, TracerNameMealDB, TracerNameLambda}, attrs["recipebox.components"].AsStringSlice())
	assert.NotEmpty(t, attrs["service.instance.id"].AsString())
	assert.NotEmpty(t, attrs["telemetry.sdk.name"].AsString(), "merged over the SDK defaults")

	other, err := newResource(cfg, TracerNameLambda)
	require.NoError(t, err)
	id, _ := other.Set().Value("service.instance.id")
	assert.NotEqual(t, attrs["service.instance.id"].AsString(), id.AsString())
}

func TestNoopTelemetry(t *testing.T) {
	tel := NoopTelemetry()

	_, span := tel.Tracer(TracerNameCatalog).Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())

	counter, err := tel.Meter(TracerNameCatalog).Int64Counter("noop_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	assert.NoError(t, tel.Shutdown(context.Background()))
}
