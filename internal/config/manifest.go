package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed pool.yaml
var defaultManifest []byte

// PoolSpec declares one pool category.
type PoolSpec struct {
	Tag      string `yaml:"tag"`
	Template string `yaml:"template"` // behavior template, e.g. "asteroid", "ice_asteroid"
	Amount   int    `yaml:"amount"`
	Growable bool   `yaml:"growable"`
}

// Manifest lists the pools pre-warmed at startup.
type Manifest struct {
	Pools []PoolSpec `yaml:"pools"`
}

// LoadManifest reads a pool manifest. An empty path selects the embedded default.
func LoadManifest(path string) (Manifest, error) {
	if path == "" {
		return ParseManifest(defaultManifest)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes and validates manifest YAML.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Pools) == 0 {
		return Manifest{}, errors.New("manifest declares no pools")
	}
	for i, p := range m.Pools {
		switch {
		case p.Tag == "":
			return Manifest{}, fmt.Errorf("pool %d: missing tag", i)
		case p.Template == "":
			return Manifest{}, fmt.Errorf("pool %d (%s): missing template", i, p.Tag)
		case p.Amount < 0:
			return Manifest{}, fmt.Errorf("pool %d (%s): negative amount", i, p.Tag)
		}
	}
	return m, nil
}
