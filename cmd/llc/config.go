package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// manifest is the optional YAML file naming the scripts to run, in
// order, and host values to seed before compilation.
type manifest struct {
	Files   []string           `yaml:"files"`
	Values  map[string]float64 `yaml:"values"`
	Strings map[string]string  `yaml:"strings"`
}

func loadManifest(path string) (*manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("%s names no files", path)
	}
	return &m, nil
}
