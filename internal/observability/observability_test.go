package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := StartSpan(context.Background(), "vote.apply", attribute.String("target", "post:1"))
	require.NotNil(t, ctx)
	span.AddAttributes(attribute.Int("votes", 1))
	span.SetError(errors.New("boom"))
	span.End()
}

func TestInitTracing_StdoutExporter(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		Enabled:      true,
		Exporter:     "stdout",
		Environment:  "test",
		SamplerRatio: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = shutdown(context.Background())
		_, _ = InitTracing(TracingConfig{Enabled: false})
	})

	span, _ := StartSpan(context.Background(), "test.span")
	assert.Len(t, span.TraceID(), 32)
	span.End()
}

func TestReactionTransitionsCounter(t *testing.T) {
	counter := ReactionTransitions.WithLabelValues("post", "inserted")
	before := testutil.ToFloat64(counter)
	counter.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestTrackQuery(t *testing.T) {
	done := TrackQuery("list_posts")
	done()
	assert.Equal(t, 1, testutil.CollectAndCount(DatabaseQueryLatency))
}
