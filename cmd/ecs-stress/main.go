package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/internal/config"
	"github.com/plus3/tickloop/internal/logging"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	componentCount := flag.Int("components", 250, "The number of synthetic component kinds.")
	systemCount := flag.Int("systems", 50, "The number of synthetic system instances.")
	churn := flag.Float64("churn", 0.01, "Fraction of entities destroyed and respawned per update.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	logLevel := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	log, err := logging.New(config.LoggingConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting ECS stress test")

	// 1. Setup the world with synthetic kinds
	world := ecs.NewWorld(ecs.Options{Logger: log, UpdatePolicy: ecs.PolicyContain})
	world.Install(syntheticModule(*componentCount))
	world.Configure(syntheticSpecs(*systemCount, *componentCount, *churn)...)

	// 2. Populate storage with initial entities
	log.Info("populating storage", zap.Int("entities", *entityCount))
	for i := 0; i < *entityCount; i++ {
		// Spawn an entity with 1 to 5 random components
		world.InsertOne(randomBag(*componentCount, rand.Intn(5)+1))
	}
	log.Info("population complete")

	// 3. Run the simulation loop
	report := &Report{
		Duration:   *duration,
		Entities:   *entityCount,
		Components: *componentCount,
		Systems:    *systemCount,
		Churn:      *churn,
		GCPauses:   *gcPauseMetrics,
	}

	var memBefore, memAfter runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	log.Info("running simulation", zap.Duration("duration", *duration))
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := world.Update(deltaTime.Seconds()); err != nil {
				log.Error("update failed", zap.Error(err))
			}
			report.StepTime.Add(time.Since(updateStart))
			report.Steps++
		}
	}

	report.Elapsed = time.Since(startTime)
	report.StepTime.Summarize()
	report.Scheduler = world.Stats()
	report.Storage = world.Storage().CollectStats()
	runtime.ReadMemStats(&memAfter)
	report.Memory = diffMemory(&memBefore, &memAfter)

	log.Info("simulation finished", zap.Int64("steps", report.Steps))

	// 4. Print the report
	if err := report.Write(os.Stdout); err != nil {
		log.Fatal("failed to write report", zap.Error(err))
	}
}
