package pipeline

import (
	"maps"
	"strings"
)

const (
	// DefaultAgentQueue is injected into command steps that never pick a
	// queue explicitly.
	DefaultAgentQueue = "default"

	// DefaultPrimaryRegion is the region whose queues keep their bare names.
	DefaultPrimaryRegion = "us-east-1"
)

// defaultPluginVersions seeds Config.PluginVersions. Callers can override
// individual entries per pipeline set.
var defaultPluginVersions = map[string]string{
	"docker":         "v5.9.0",
	"docker-compose": "v5.2.0",
}

// Config carries the injected settings every builder in a pipeline set
// shares. The zero value is usable; empty fields fall back to the package
// defaults. Builders never consult the process environment or any global
// table - everything arrives through here.
type Config struct {
	// DefaultAgentQueue is the queue given to command steps at creation
	// time, before their configuration block runs.
	DefaultAgentQueue string

	// PrimaryRegion controls queue name composition: queues in the primary
	// region keep their base name, queues elsewhere become "base-region".
	PrimaryRegion string

	// PluginVersions maps a plugin short name to the version used when a
	// step references the plugin without an explicit "name#version"
	// composite. Entries are merged over the built-in defaults.
	PluginVersions map[string]string

	// ProjectRoot is the directory checked for conventional docker-compose
	// file names. Empty means the current directory.
	ProjectRoot string

	// IncludeScripts mirrors the include-scripts toggle of the embedding
	// build tool. Script discovery happens outside this module; the flag is
	// carried here so the whole configuration surface arrives in one value.
	IncludeScripts bool
}

func (c Config) normalize() Config {
	if c.DefaultAgentQueue == "" {
		c.DefaultAgentQueue = DefaultAgentQueue
	}
	if c.PrimaryRegion == "" {
		c.PrimaryRegion = DefaultPrimaryRegion
	}
	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}
	versions := make(map[string]string, len(defaultPluginVersions)+len(c.PluginVersions))
	maps.Copy(versions, defaultPluginVersions)
	maps.Copy(versions, c.PluginVersions)
	c.PluginVersions = versions
	return c
}

// pluginKey resolves a plugin reference into the composite key used when
// serializing. An explicit "name#version" composite passes through
// unmodified. A bare name is joined with the configured version for that
// name, or emitted unqualified when no version is known.
func (c Config) pluginKey(name string) string {
	if strings.ContainsRune(name, '#') {
		return name
	}
	version, ok := c.PluginVersions[name]
	if !ok {
		return name
	}
	return name + "#" + version
}

// queueName composes a region-qualified queue name. The primary region's
// queues go by their base name alone.
func (c Config) queueName(base, region string) string {
	if region == c.PrimaryRegion {
		return base
	}
	return base + "-" + region
}
