package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/clock"
	"github.com/plus3/tickloop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupDisabled(t *testing.T) {
	for _, cfg := range []config.TelemetryConfig{
		{},
		{Enabled: true},
		{Enabled: false, Endpoint: "http://localhost:4318"},
	} {
		shutdown, err := Setup(context.Background(), "tickloop-test", cfg)
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	}
}

type failing struct {
	ecs.BaseSystem
}

func (failing) Update(*ecs.World, ecs.Config, *ecs.Slot, float64) error {
	return assert.AnError
}

func TestWorldSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	host := clock.NewManual(time.Unix(0, 0))
	w := ecs.NewWorld(ecs.Options{
		Host:         host,
		Tracer:       tp.Tracer("test"),
		UpdatePolicy: ecs.PolicyContain,
	})
	w.Install(ecs.Module{Systems: map[string]ecs.SystemKind{"Fail": failing{}}})
	w.Configure(ecs.Use("Fail"))
	require.NoError(t, w.Start())

	host.Frame()
	host.Tick(2 * ecs.DefaultStep)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"ecs.draw_loop", "ecs.update_loop", "ecs.update_loop", "ecs.draw_loop"}, names)

	// contained failures do not mark the span
	for _, span := range recorder.Ended() {
		assert.NotEqual(t, "Error", span.Status().Code.String())
	}

	w2 := ecs.NewWorld(ecs.Options{Host: host, Tracer: tp.Tracer("test")})
	w2.Install(ecs.Module{Systems: map[string]ecs.SystemKind{"Fail": failing{}}})
	w2.Configure(ecs.Use("Fail"))
	require.NoError(t, w2.Start())
	require.Error(t, w2.UpdateLoop(host.Now().Add(ecs.DefaultStep)))

	ended := recorder.Ended()
	last := ended[len(ended)-1]
	assert.Equal(t, "ecs.update_loop", last.Name())
	assert.Equal(t, "Error", last.Status().Code.String())
	assert.NotEmpty(t, last.Events())
}
