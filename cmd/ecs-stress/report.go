package main

import (
	"cmp"
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/tickloop/ecs"
)

// Report collects one stress run: the synthetic workload it was asked for
// and what the world did with it.
type Report struct {
	Duration   time.Duration
	Entities   int
	Components int
	Systems    int
	Churn      float64

	Steps     int64
	Elapsed   time.Duration
	StepTime  Timing
	Memory    MemoryDelta
	GCPauses  bool
	Scheduler *ecs.SchedulerStats
	Storage   *ecs.StorageStats
}

// Timing summarizes wall-clock samples of a repeated operation.
type Timing struct {
	Mean  time.Duration
	P50   time.Duration
	P99   time.Duration
	Worst time.Duration

	samples []time.Duration
}

func (t *Timing) Add(d time.Duration) {
	t.samples = append(t.samples, d)
}

// Summarize fills in the aggregates from the samples added so far.
func (t *Timing) Summarize() {
	n := len(t.samples)
	if n == 0 {
		return
	}
	sorted := slices.Clone(t.samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	t.Mean = total / time.Duration(n)
	t.P50 = sorted[(n-1)/2]
	t.P99 = sorted[(n-1)*99/100]
	t.Worst = sorted[n-1]
}

// MemoryDelta is the change in runtime memory statistics across a run.
type MemoryDelta struct {
	HeapBefore uint64
	HeapAfter  uint64
	Allocated  uint64
	SysAfter   uint64
	GCCycles   uint32
	GCPause    time.Duration
}

func diffMemory(before, after *runtime.MemStats) MemoryDelta {
	return MemoryDelta{
		HeapBefore: before.HeapAlloc,
		HeapAfter:  after.HeapAlloc,
		Allocated:  after.TotalAlloc - before.TotalAlloc,
		SysAfter:   after.Sys,
		GCCycles:   after.NumGC - before.NumGC,
		GCPause:    time.Duration(after.PauseTotalNs - before.PauseTotalNs),
	}
}

// slowest returns up to n systems ordered by descending average duration.
func slowest(systems []ecs.SystemStats, n int) []ecs.SystemStats {
	out := slices.Clone(systems)
	slices.SortStableFunc(out, func(a, b ecs.SystemStats) int {
		return cmp.Compare(b.AvgDuration, a.AvgDuration)
	})
	return out[:min(n, len(out))]
}

func mib(n uint64) string {
	return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
}

const reportTemplate = `
# tickloop stress run

Ran {{.Steps}} update steps in {{.Elapsed}} (asked for {{.Duration}}).

## Workload
| Entities | Component kinds | System instances | Churn per step |
|----------|-----------------|------------------|----------------|
| {{.Entities}} | {{.Components}} | {{.Systems}} | {{printf "%.2f%%" (percent .Churn)}} |

## Step time
| mean | p50 | p99 | worst |
|------|-----|-----|-------|
| {{.StepTime.Mean}} | {{.StepTime.P50}} | {{.StepTime.P99}} | {{.StepTime.Worst}} |
{{with .Storage}}
## Store at exit
{{.TotalEntityCount}} live entities holding {{.TotalValueCount}} component values across {{.KindCount}} kinds.
{{end}}{{with .Scheduler}}
## Slowest systems
{{.TotalExecutions}} phase calls over {{.UpdateSteps}} steps, {{.TotalFailures}} failed.

| # | System | Calls | Avg | Max |
|---|--------|-------|-----|-----|
{{range slowest .Systems 10}}| {{.Index}} | {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{end}}{{end}}
## Memory
Heap went from {{mib .Memory.HeapBefore}} to {{mib .Memory.HeapAfter}}; {{mib .Memory.Allocated}} allocated in total, {{mib .Memory.SysAfter}} held from the OS.
{{if .GCPauses}}
{{.Memory.GCCycles}} GC cycles paused the world for {{.Memory.GCPause}}.
{{end}}`

var reportFuncs = template.FuncMap{
	"mib":     mib,
	"slowest": slowest,
	"percent": func(f float64) float64 { return f * 100 },
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

// Write renders the report as markdown.
func (r *Report) Write(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
