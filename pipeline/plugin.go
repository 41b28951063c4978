package pipeline

import (
	"encoding/json"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// Plugin models one plugin reference on a command step. Source is the fully
// composed "name#version" key, or a bare name when no version was resolved.
// Config is whatever nested value the plugin expects: a *PluginConfig, a
// typed builder like *Docker, or nil for plugins that take no configuration.
type Plugin struct {
	Source string
	Config any
}

func (p *Plugin) asMap() *ordered.MapSA {
	return ordered.MapFromItems(ordered.TupleSA{Key: p.Source, Value: p.Config})
}

// MarshalJSON returns the plugin in "one-key object" form.
func (p *Plugin) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.asMap())
}

// MarshalYAML returns the plugin in "one-item map" form.
func (p *Plugin) MarshalYAML() (any, error) {
	return p.asMap(), nil
}

func (p *Plugin) interpolate(tf stringTransformer) error {
	// The plugin source is left alone; only configuration is interpolated.
	conf, err := interpolateAny(tf, p.Config)
	if err != nil {
		return err
	}
	p.Config = conf
	return nil
}

// Plugins is an ordered sequence of plugin references. Identity is
// positional: duplicate names are duplicate entries, never merged.
type Plugins []*Plugin
