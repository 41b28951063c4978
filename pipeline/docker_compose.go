package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// composeFileNames are the conventional compose file names checked, in this
// order, in the project root when a DockerCompose builder is created.
var composeFileNames = []string{
	"docker-compose.yml",
	"docker-compose.buildkite.yml",
}

// DockerCompose builds configuration for the docker-compose plugin, which
// runs the step's command in a service defined by the project's compose
// files.
type DockerCompose struct {
	build           []string
	run             string
	push            []string
	imageRepository string
	imageName       string
	environment     []string
	cacheFrom       []string
	config          []string
}

// newDockerCompose pre-seeds the config list with whichever conventional
// compose files exist under root. Caller-added files append after these.
func newDockerCompose(root string) *DockerCompose {
	d := new(DockerCompose)
	for _, name := range composeFileNames {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			d.config = append(d.config, name)
		}
	}
	return d
}

// Build appends services to build.
func (d *DockerCompose) Build(services ...string) {
	d.build = append(d.build, services...)
}

// Run names the service the step's command runs in.
func (d *DockerCompose) Run(service string) {
	d.run = service
}

// Push appends a service to push, as "service:image" or
// "service:image:tag".
func (d *DockerCompose) Push(service, image string, tag ...string) {
	d.push = append(d.push, imageRef(service, image, tag))
}

// ImageRepository sets the repository that built images are pushed to.
func (d *DockerCompose) ImageRepository(repository string) {
	d.imageRepository = repository
}

// ImageName sets the name built images are tagged with.
func (d *DockerCompose) ImageName(name string) {
	d.imageName = name
}

// Environment passes variables into the running service. Each argument is
// either a bare name, propagated from the calling environment, or a
// "NAME=value" pair; both forms append to the same ordered list.
func (d *DockerCompose) Environment(vars ...string) {
	d.environment = append(d.environment, vars...)
}

// CacheFrom appends an image to seed the build cache from, composed the same
// way as Push but kept in its own list.
func (d *DockerCompose) CacheFrom(service, image string, tag ...string) {
	d.cacheFrom = append(d.cacheFrom, imageRef(service, image, tag))
}

// ComposeFile appends a compose file, after any auto-detected ones.
func (d *DockerCompose) ComposeFile(path string) {
	d.config = append(d.config, path)
}

func (d *DockerCompose) asMap() *ordered.MapSA {
	m := ordered.NewMap[string, any](4)
	if len(d.build) > 0 {
		m.Set("build", d.build)
	}
	if d.run != "" {
		m.Set("run", d.run)
	}
	if len(d.push) > 0 {
		m.Set("push", d.push)
	}
	if d.imageRepository != "" {
		m.Set("image-repository", d.imageRepository)
	}
	if d.imageName != "" {
		m.Set("image-name", d.imageName)
	}
	if len(d.environment) > 0 {
		m.Set("environment", d.environment)
	}
	if len(d.cacheFrom) > 0 {
		m.Set("cache-from", d.cacheFrom)
	}
	if len(d.config) > 0 {
		m.Set("config", d.config)
	}
	return m
}

// MarshalJSON marshals the plugin configuration that was set.
func (d *DockerCompose) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.asMap())
}

// MarshalYAML returns the same shape for YAML encoding.
func (d *DockerCompose) MarshalYAML() (any, error) {
	return d.asMap(), nil
}

func (d *DockerCompose) interpolate(tf stringTransformer) error {
	var err error
	if d.run, err = tf.Transform(d.run); err != nil {
		return err
	}
	if d.imageRepository, err = tf.Transform(d.imageRepository); err != nil {
		return err
	}
	if d.imageName, err = tf.Transform(d.imageName); err != nil {
		return err
	}
	for _, s := range [][]string{d.build, d.push, d.environment, d.cacheFrom, d.config} {
		if err := interpolateSlice(tf, s); err != nil {
			return err
		}
	}
	return nil
}
