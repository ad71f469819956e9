package ecs

import "time"

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	UpdateSteps     int64
	DrawPasses      int64
	TotalExecutions int64
	TotalFailures   int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system instance,
// summed over all of its phase calls.
type SystemStats struct {
	Index          int
	Name           string
	ExecutionCount int64
	FailureCount   int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	failureCount   int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type schedulerStats struct {
	updateSteps int64
	drawPasses  int64
	systems     []systemStatsInternal
}

func (s *schedulerStats) reset(n int) {
	s.systems = make([]systemStatsInternal, n)
}

func (s *schedulerStats) record(i int, d time.Duration, failed bool) {
	if i >= len(s.systems) {
		return
	}
	st := &s.systems[i]
	if st.executionCount == 0 || d < st.minDuration {
		st.minDuration = d
	}
	if d > st.maxDuration {
		st.maxDuration = d
	}
	st.executionCount++
	st.lastDuration = d
	st.totalDuration += d
	if failed {
		st.failureCount++
	}
}

// Stats returns a snapshot of the scheduler statistics.
func (w *World) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(w.entries),
		UpdateSteps: w.stats.updateSteps,
		DrawPasses:  w.stats.drawPasses,
		Systems:     make([]SystemStats, len(w.stats.systems)),
	}

	for i, internal := range w.stats.systems {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		name := ""
		if i < len(w.entries) {
			name = w.entries[i].cfg.Name()
		}

		stats.Systems[i] = SystemStats{
			Index:          i,
			Name:           name,
			ExecutionCount: internal.executionCount,
			FailureCount:   internal.failureCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
		stats.TotalFailures += internal.failureCount
	}

	return stats
}
