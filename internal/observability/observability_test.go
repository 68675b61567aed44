package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{ServiceName: "bloglist-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer)
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{
		ServiceName: "bloglist-test",
		Enabled:     true,
		Exporter:    "zipkin",
	})
	assert.ErrorContains(t, err, `unknown tracing exporter "zipkin"`)
}

func TestSamplerFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestStartSpan_EndsWithAndWithoutError(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "service", "Create")
	require.NotNil(t, ctx)
	end(nil)

	_, end = StartSpan(context.Background(), "service", "Delete")
	end(errors.New("boom"))
}

func TestTrackQuery_RecordsObservation(t *testing.T) {
	before := testutil.CollectAndCount(DatabaseQueryLatency)
	TrackQuery("select", "observability_test")()
	assert.Equal(t, before+1, testutil.CollectAndCount(DatabaseQueryLatency))
}

func TestOutcome(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "failure", Outcome(errors.New("x")))
}
