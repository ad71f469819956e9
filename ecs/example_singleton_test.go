package ecs_test

import (
	"fmt"

	"github.com/plus3/tickloop/ecs"
)

func settingsModule() ecs.Module {
	return ecs.Module{Components: map[string]ecs.ComponentKind{
		"Settings": ecs.NewComponent(func() ecs.Attrs {
			return ecs.Attrs{"max_players": 2, "difficulty": "Easy"}
		}),
	}}
}

// ExampleNewSingleton demonstrates creating and accessing singleton components.
// Singletons are world-wide values held by one entity, useful for game state,
// configuration, or other application-wide data.
func ExampleNewSingleton() {
	w := ecs.NewWorld(ecs.Options{})
	w.Install(settingsModule())

	// Create singleton with initializer
	settings := ecs.NewSingleton(w, "Settings", ecs.Attrs{"max_players": 4, "difficulty": "Normal"})

	cfg, _ := settings.Get()
	fmt.Printf("Settings: %d players, %s difficulty\n", cfg.Int("max_players", 0), cfg.String("difficulty", ""))

	// Modify the singleton
	cfg["difficulty"] = "Hard"

	// Create another reference to the same singleton
	same := ecs.NewSingleton(w, "Settings")
	cfg, _ = same.Get()
	fmt.Printf("Same settings: %s difficulty\n", cfg.String("difficulty", ""))
	fmt.Println("Same entity:", settings.Id() == same.Id())

	// Output:
	// Settings: 4 players, Normal difficulty
	// Same settings: Hard difficulty
	// Same entity: true
}

// ExampleSingleton_Exists shows that a singleton follows its kind: once the
// holding entity is destroyed, the accessor reports it gone.
func ExampleSingleton_Exists() {
	w := ecs.NewWorld(ecs.Options{})
	w.Install(settingsModule())

	settings := ecs.NewSingleton(w, "Settings")
	fmt.Println("Exists:", settings.Exists())

	w.Destroy(settings.Id())
	fmt.Println("Exists after destroy:", settings.Exists())

	missing := ecs.NewSingleton(w, "Unknown")
	_, ok := missing.Get()
	fmt.Println("Unknown kind:", ok)

	// Output:
	// Exists: true
	// Exists after destroy: false
	// Unknown kind: false
}
