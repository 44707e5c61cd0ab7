package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type targetsDocument struct {
	Targets []string `yaml:"targets"`
}

// loadTargetsFile reads a YAML file listing target URLs under a "targets" key.
func loadTargetsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	var doc targetsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse targets file %s: %w", path, err)
	}
	targets := make([]string, 0, len(doc.Targets))
	for _, target := range doc.Targets {
		target = strings.TrimSpace(target)
		if target != "" {
			targets = append(targets, target)
		}
	}
	return targets, nil
}
