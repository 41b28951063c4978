// Package generator keeps a set of named pipeline definitions and builds
// their documents on demand. Definitions are registered as thunks: the
// configuration block only runs when that pipeline's document is actually
// requested, so listing names never materializes anything.
package generator

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/buildkite/pipelinegen/pipeline"
)

// DefaultName is the name used when a pipeline is registered without one.
const DefaultName = "default"

// ConfigureFunc populates one pipeline document.
type ConfigureFunc func(*pipeline.Pipeline)

// Generator registers named pipelines sharing one configuration, and builds
// their documents.
type Generator struct {
	conf   pipeline.Config
	names  []string
	thunks map[string]ConfigureFunc
}

// New returns a Generator with no pipelines registered.
func New(conf pipeline.Config) *Generator {
	return &Generator{
		conf:   conf,
		thunks: make(map[string]ConfigureFunc),
	}
}

// Pipeline registers a named pipeline. The configuration block is deferred
// until Build is called for that name. Registering a name again replaces the
// earlier definition but keeps its position in Names.
func (g *Generator) Pipeline(name string, configure ConfigureFunc) {
	if name == "" {
		panic("generator: pipeline requires a name")
	}
	if _, exists := g.thunks[name]; !exists {
		g.names = append(g.names, name)
	}
	g.thunks[name] = configure
}

// PipelineDefault registers the pipeline named "default".
func (g *Generator) PipelineDefault(configure ConfigureFunc) {
	g.Pipeline(DefaultName, configure)
}

// Names returns the registered pipeline names in registration order, without
// running any configuration blocks.
func (g *Generator) Names() []string {
	return append([]string(nil), g.names...)
}

// Build materializes the named pipeline's document by running its
// configuration block against a fresh document. Building is idempotent
// build-from-scratch: nothing is memoized, and building the same name twice
// yields two independent documents.
func (g *Generator) Build(name string) (*pipeline.Pipeline, error) {
	configure, ok := g.thunks[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline %q", name)
	}
	p := pipeline.New(g.conf)
	if configure != nil {
		configure(p)
	}
	return p, nil
}

// TaskName derives the upload task identity for a pipeline name. The default
// pipeline maps to "uploadPipeline"; any other name is capitalized and
// spliced in, so "test" maps to "uploadTestPipeline". The derivation is
// deterministic.
func TaskName(name string) string {
	if name == DefaultName {
		return "uploadPipeline"
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "uploadPipeline"
	}
	return "upload" + string(unicode.ToUpper(r)) + name[size:] + "Pipeline"
}
