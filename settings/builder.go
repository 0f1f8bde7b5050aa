package settings

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Overrides is the subset of Settings that can be loaded from a YAML
// file and layered onto Default(). Interface-typed fields
// (AuthProvider, LoadBalancingPolicy, Logger, Metrics) aren't
// representable in a config file and are set programmatically by
// callers of Build instead.
type Overrides struct {
	ProtocolVersion   int           `yaml:"protocol_version"`
	DefaultPort       int           `yaml:"default_port"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// LoadYAML reads and parses an overrides file: a read-then-
// yaml.Unmarshal shape.
func LoadYAML(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read overrides file: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("settings: parse overrides yaml: %w", err)
	}
	return &o, nil
}

// Build layers overrides onto Default() using dario.cat/mergo's
// WithOverride merge to layer partial updates onto a base record. A
// nil overrides is equivalent to an empty Overrides{}: Build always
// returns usable defaults. Interface fields (logger, metrics, auth
// provider, load-balancing policy) are never touched by the merge; set
// them on the returned *Settings directly.
func Build(overrides *Overrides) (*Settings, error) {
	s := Default()
	if overrides == nil {
		return s, nil
	}

	patch := Settings{
		ProtocolVersion:   overrides.ProtocolVersion,
		DefaultPort:       overrides.DefaultPort,
		ReconnectInterval: overrides.ReconnectInterval,
		ConnectionTimeout: overrides.ConnectionTimeout,
	}
	if err := mergo.Merge(s, patch, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("settings: merge overrides: %w", err)
	}
	return s, nil
}
