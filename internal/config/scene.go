package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plus3/tickloop/ecs"
)

// Scene is the initial population of a world.
type Scene struct {
	Entities []map[string]map[string]any `yaml:"entities"`
}

// LoadScene reads a YAML scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	return ParseScene(data)
}

// ParseScene decodes scene YAML.
func ParseScene(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &scene, nil
}

// Bags converts the scene entities into insert bags, one per entity.
func (s *Scene) Bags() []ecs.Bag {
	bags := make([]ecs.Bag, len(s.Entities))
	for i, entity := range s.Entities {
		bag := make(ecs.Bag, len(entity))
		for kind, attrs := range entity {
			bag[kind] = ecs.Attrs(attrs)
		}
		bags[i] = bag
	}
	return bags
}
