package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// Docker builds configuration for the docker plugin, which runs the step's
// command inside a container.
type Docker struct {
	image                string
	alwaysPull           bool
	environment          []string
	propagateEnvironment bool
	volumes              []string
	entrypoint           string
	shell                []string
}

// Image sets the image the command runs in.
func (d *Docker) Image(image string) {
	d.image = image
}

// AlwaysPull pulls the latest image before every run instead of trusting the
// agent's local cache.
func (d *Docker) AlwaysPull() {
	d.alwaysPull = true
}

// Environment passes variables into the container. Each argument is either a
// bare name, propagated from the calling environment, or a "NAME=value"
// pair; both forms append to the same ordered list.
func (d *Docker) Environment(vars ...string) {
	d.environment = append(d.environment, vars...)
}

// PropagateEnvironment propagates the whole calling environment into the
// container.
func (d *Docker) PropagateEnvironment() {
	d.propagateEnvironment = true
}

// Volume mounts source at target inside the container.
func (d *Docker) Volume(source, target string) {
	d.volumes = append(d.volumes, source+":"+target)
}

// Entrypoint overrides the image's entrypoint.
func (d *Docker) Entrypoint(entrypoint string) {
	d.entrypoint = entrypoint
}

// Shell sets the shell (binary plus arguments) the command is run with,
// replacing any shell set earlier.
func (d *Docker) Shell(args ...string) {
	d.shell = append([]string(nil), args...)
}

func (d *Docker) asMap() *ordered.MapSA {
	m := ordered.NewMap[string, any](4)
	if d.image != "" {
		m.Set("image", d.image)
	}
	if d.alwaysPull {
		m.Set("always-pull", true)
	}
	if len(d.environment) > 0 {
		m.Set("environment", d.environment)
	}
	if d.propagateEnvironment {
		m.Set("propagate-environment", true)
	}
	if len(d.volumes) > 0 {
		m.Set("volumes", d.volumes)
	}
	if d.entrypoint != "" {
		m.Set("entrypoint", d.entrypoint)
	}
	if len(d.shell) > 0 {
		m.Set("shell", d.shell)
	}
	return m
}

// MarshalJSON marshals the plugin configuration that was set.
func (d *Docker) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.asMap())
}

// MarshalYAML returns the same shape for YAML encoding.
func (d *Docker) MarshalYAML() (any, error) {
	return d.asMap(), nil
}

func (d *Docker) interpolate(tf stringTransformer) error {
	var err error
	if d.image, err = tf.Transform(d.image); err != nil {
		return err
	}
	if d.entrypoint, err = tf.Transform(d.entrypoint); err != nil {
		return err
	}
	if err := interpolateSlice(tf, d.environment); err != nil {
		return err
	}
	if err := interpolateSlice(tf, d.volumes); err != nil {
		return err
	}
	return interpolateSlice(tf, d.shell)
}

// imageRef composes "service:image" or "service:image:tag" for the
// docker-compose push and cache-from lists.
func imageRef(service, image string, tag []string) string {
	parts := append([]string{service, image}, tag...)
	return strings.Join(parts, ":")
}
