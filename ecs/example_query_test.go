package ecs_test

import (
	"fmt"

	"github.com/plus3/tickloop/ecs"
)

// ExampleQuery demonstrates joining kinds by entity id. Only entities that
// hold every required kind are visited; "Health?" is optional and reads as
// nil when absent.
func ExampleQuery() {
	w := ecs.NewWorld(ecs.Options{})
	w.Install(testComponents())

	w.InsertOne(ecs.Bag{"Position": {"x": 0.0}, "Velocity": {"dx": 10.0}})
	w.InsertOne(ecs.Bag{"Position": {"x": 100.0}, "Velocity": {"dx": -5.0}, "Health": {"current": 40}})
	w.InsertOne(ecs.Bag{"Position": {"x": 50.0}})

	query := w.Query("Position", "Velocity", "Health?")
	for id, row := range query.Iter() {
		pos, vel, health := row[0], row[1], row[2]
		pos["x"] = pos.Float("x", 0) + vel.Float("dx", 0)
		if health != nil {
			fmt.Printf("entity %d at x=%.0f with %d hp\n", id, pos.Float("x", 0), health.Int("current", 0))
		} else {
			fmt.Printf("entity %d at x=%.0f\n", id, pos.Float("x", 0))
		}
	}
	fmt.Println("matched:", query.Count())

	// Output:
	// entity 1 at x=10
	// entity 2 at x=95 with 40 hp
	// matched: 2
}
