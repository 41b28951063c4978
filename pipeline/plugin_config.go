package pipeline

import (
	"encoding/json"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// PluginConfig is an append-only key-value builder for arbitrary plugin
// configuration. Third-party plugins have no fixed schema, so any nesting of
// maps, lists and scalars must stay representable; keys keep the order they
// were first set in.
type PluginConfig struct {
	m *ordered.MapSA
}

func newPluginConfig() *PluginConfig {
	return &PluginConfig{m: ordered.NewMap[string, any](0)}
}

// Set records a value for a key. Setting the same key again overwrites the
// value in place.
func (c *PluginConfig) Set(key string, value any) *PluginConfig {
	c.m.Set(key, value)
	return c
}

// Map opens a nested configuration block under key.
func (c *PluginConfig) Map(key string, configure func(*PluginConfig)) *PluginConfig {
	nested := newPluginConfig()
	if configure != nil {
		configure(nested)
	}
	c.m.Set(key, nested)
	return c
}

// Append appends values to the list under key, creating the list on first
// use.
func (c *PluginConfig) Append(key string, values ...any) *PluginConfig {
	current, _ := c.m.Get(key)
	list, _ := current.([]any)
	c.m.Set(key, append(list, values...))
	return c
}

// MarshalJSON marshals the configuration, preserving key order.
func (c *PluginConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.m)
}

// MarshalYAML returns the ordered contents for YAML encoding.
func (c *PluginConfig) MarshalYAML() (any, error) {
	return c.m, nil
}

func (c *PluginConfig) interpolate(tf stringTransformer) error {
	return interpolateOrderedMap(tf, c.m)
}
