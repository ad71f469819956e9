package main

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/tickloop/ecs"
)

func TestTiming(t *testing.T) {
	var tm Timing
	tm.Summarize()
	assert.Zero(t, tm.Worst)

	for i := 1; i <= 100; i++ {
		tm.Add(time.Duration(i) * time.Millisecond)
	}
	tm.Summarize()
	assert.Equal(t, 50500*time.Microsecond, tm.Mean)
	assert.Equal(t, 50*time.Millisecond, tm.P50)
	assert.Equal(t, 99*time.Millisecond, tm.P99)
	assert.Equal(t, 100*time.Millisecond, tm.Worst)
}

func TestSlowest(t *testing.T) {
	systems := []ecs.SystemStats{
		{Index: 0, Name: "A", AvgDuration: time.Millisecond},
		{Index: 1, Name: "B", AvgDuration: 3 * time.Millisecond},
		{Index: 2, Name: "C", AvgDuration: 2 * time.Millisecond},
	}
	got := slowest(systems, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "C", got[1].Name)
	assert.Equal(t, "A", systems[0].Name, "input order is kept")

	assert.Len(t, slowest(systems, 10), 3)
}

func TestReportWrite(t *testing.T) {
	before := runtime.MemStats{HeapAlloc: 1 << 20, TotalAlloc: 1 << 20, NumGC: 2}
	after := runtime.MemStats{HeapAlloc: 3 << 20, TotalAlloc: 5 << 20, Sys: 8 << 20, NumGC: 5, PauseTotalNs: 1500}

	r := &Report{
		Duration:   time.Second,
		Entities:   10,
		Components: 3,
		Systems:    2,
		Churn:      0.01,
		Steps:      4,
		Elapsed:    time.Second,
		Memory:     diffMemory(&before, &after),
		GCPauses:   true,
		Scheduler: &ecs.SchedulerStats{
			UpdateSteps:     4,
			TotalExecutions: 24,
			Systems:         []ecs.SystemStats{{Index: 0, Name: "Churn", ExecutionCount: 12}},
		},
	}

	var out strings.Builder
	require.NoError(t, r.Write(&out))
	text := out.String()

	assert.Contains(t, text, "Ran 4 update steps")
	assert.Contains(t, text, "| 10 | 3 | 2 | 1.00% |")
	assert.Contains(t, text, "24 phase calls over 4 steps, 0 failed")
	assert.Contains(t, text, "| 0 | Churn | 12 |")
	assert.Contains(t, text, "Heap went from 1.0 MiB to 3.0 MiB; 4.0 MiB allocated")
	assert.Contains(t, text, "3 GC cycles paused the world for 1.5µs")
	assert.NotContains(t, text, "Store at exit")
}
