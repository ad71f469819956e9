package counter_test

import (
	"testing"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/clock"
	"github.com/plus3/tickloop/plugins/counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlay(t *testing.T) {
	host := clock.NewManual(time.Unix(0, 0))
	w := ecs.NewWorld(ecs.Options{Host: host})
	w.Install(counter.Module())
	w.Configure(ecs.Use(counter.SystemKind))

	slow := w.InsertOne(ecs.Bag{counter.Kind: {}})
	fast := w.InsertOne(ecs.Bag{counter.Kind: {"factor": 3}})

	require.NoError(t, w.Start())
	host.Advance(2 * time.Second)

	c, _ := w.Get(counter.Kind, slow)
	assert.InDelta(t, 2.0, c.Float("count", 0), 1e-6)
	c, _ = w.Get(counter.Kind, fast)
	assert.InDelta(t, 6.0, c.Float("count", 0), 1e-6)

	host.Frame()
	host.Tick(100 * time.Millisecond)

	lines, err := w.CallSystem(counter.SystemKind, "read")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"* count 1 = 2 100.0",
		"* count 2 = 6 100.0",
	}, lines)
}
