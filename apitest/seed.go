package apitest

import (
	"errors"
	"fmt"
	"io"

	"folio/models"

	"gopkg.in/yaml.v3"
)

// LoadSeed reads a YAML list of projects. Entries without an id get one
// when they are seeded. An empty document yields no projects.
func LoadSeed(r io.Reader) ([]models.Project, error) {
	var projects []models.Project
	if err := yaml.NewDecoder(r).Decode(&projects); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	for i, p := range projects {
		if p.Name == "" {
			return nil, fmt.Errorf("seed entry %d: name is required", i)
		}
	}
	return projects, nil
}
