package pipeline

import (
	"encoding/json"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// Pipeline is one pipeline document: an ordered step sequence plus the
// environment applied to every step. Step insertion order is serialization
// order, and the consumer treats it as execution order.
type Pipeline struct {
	// NoInterpolation asks the upload command to skip variable interpolation
	// (--no-interpolation). It changes how the document is uploaded, not
	// what the document contains.
	NoInterpolation bool

	// Replace asks the upload command to replace the rest of the current
	// build's pipeline with these steps (--replace).
	Replace bool

	env   *ordered.MapSS
	steps []Step
	conf  Config
}

// New returns an empty pipeline document using the given configuration.
func New(conf Config) *Pipeline {
	return &Pipeline{
		env:  ordered.NewMap[string, string](0),
		conf: conf.normalize(),
	}
}

// Env sets a pipeline-level environment variable. Later calls for the same
// name override the earlier value but keep its position.
func (p *Pipeline) Env(name, value string) {
	// A literal &Pipeline{} leaves env nil.
	if p.env == nil {
		p.env = ordered.NewMap[string, string](0)
	}
	p.env.Set(name, value)
}

// Steps returns the steps added so far, in insertion order.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// CommandStep appends a command step. The step starts on the configured
// default agent queue; the configuration block then populates it.
func (p *Pipeline) CommandStep(configure func(*CommandStep)) *CommandStep {
	s := newCommandStep(p.conf)
	if configure != nil {
		configure(s)
	}
	p.steps = append(p.steps, s)
	return s
}

// WaitStep appends a bare wait step, which serializes as the literal string
// "wait".
func (p *Pipeline) WaitStep() {
	p.steps = append(p.steps, &WaitStep{})
}

// WaitStepContinueOnFailure appends a wait step that lets the build continue
// past earlier failures.
func (p *Pipeline) WaitStepContinueOnFailure() {
	p.steps = append(p.steps, &WaitStep{ContinueOnFailure: true})
}

// BlockStep appends a block step labelled through its block-specific label
// attribute ("block", not "label").
func (p *Pipeline) BlockStep(label string, configure ...func(*BlockStep)) *BlockStep {
	s := newBlockStep(label)
	for _, fn := range configure {
		fn(s)
	}
	p.steps = append(p.steps, s)
	return s
}

// TriggerStep appends a trigger step bound to the target pipeline slug.
// An empty target is a contract violation and panics immediately.
func (p *Pipeline) TriggerStep(target string, configure ...func(*TriggerStep)) *TriggerStep {
	s := newTriggerStep(target)
	for _, fn := range configure {
		fn(s)
	}
	p.steps = append(p.steps, s)
	return s
}

func (p *Pipeline) asMap() *ordered.MapSA {
	m := ordered.NewMap[string, any](2)
	// env renders even when empty - the consumer expects the key.
	env := p.env
	if env == nil {
		env = ordered.NewMap[string, string](0)
	}
	m.Set("env", env)
	steps := p.steps
	if steps == nil {
		steps = []Step{}
	}
	m.Set("steps", steps)
	return m
}

// MarshalJSON renders the document in upload wire format.
func (p *Pipeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.asMap())
}

// MarshalYAML renders the same document shape for YAML encoding.
func (p *Pipeline) MarshalYAML() (any, error) {
	return p.asMap(), nil
}
