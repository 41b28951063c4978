package pipeline

import (
	"encoding/json"

	"github.com/buildkite/pipelinegen/internal/ordered"
)

// TriggerStep models a step that creates a build on another pipeline. The
// target pipeline slug is required and bound at construction.
type TriggerStep struct {
	trigger  string
	label    string
	branches Branches
	async    bool
	build    *TriggerBuild
}

func newTriggerStep(target string) *TriggerStep {
	if target == "" {
		panic("pipeline: trigger step requires a target pipeline slug")
	}
	return &TriggerStep{trigger: target}
}

// Label sets the display label for the step.
func (s *TriggerStep) Label(label string) {
	s.label = label
}

// Branch appends branch-match patterns restricting where the step runs.
func (s *TriggerStep) Branch(patterns ...string) {
	s.branches = append(s.branches, patterns...)
}

// Async makes the step succeed as soon as the triggered build is created,
// instead of waiting for it to finish.
func (s *TriggerStep) Async() {
	s.async = true
}

// Build configures attributes of the build the step creates. Repeated calls
// configure the same build object.
func (s *TriggerStep) Build(configure func(*TriggerBuild)) {
	if s.build == nil {
		s.build = &TriggerBuild{
			env:      ordered.NewMap[string, string](0),
			metaData: ordered.NewMap[string, string](0),
		}
	}
	if configure != nil {
		configure(s.build)
	}
}

func (s *TriggerStep) asMap() *ordered.MapSA {
	m := ordered.NewMap[string, any](4)
	m.Set("trigger", s.trigger)
	if s.label != "" {
		m.Set("label", s.label)
	}
	if len(s.branches) > 0 {
		m.Set("branches", s.branches)
	}
	if s.async {
		m.Set("async", true)
	}
	if s.build != nil {
		m.Set("build", s.build)
	}
	return m
}

// MarshalJSON marshals the step, omitting attributes that were never set.
func (s *TriggerStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.asMap())
}

// MarshalYAML returns the same shape for YAML encoding.
func (s *TriggerStep) MarshalYAML() (any, error) {
	return s.asMap(), nil
}

func (s *TriggerStep) interpolate(tf stringTransformer) error {
	var err error
	if s.label, err = tf.Transform(s.label); err != nil {
		return err
	}
	if err := interpolateSlice(tf, s.branches); err != nil {
		return err
	}
	if s.build != nil {
		return s.build.interpolate(tf)
	}
	return nil
}

func (*TriggerStep) stepTag() {}

// TriggerBuild describes the build a trigger step creates.
type TriggerBuild struct {
	message  string
	commit   string
	branch   string
	env      *ordered.MapSS
	metaData *ordered.MapSS
}

// Message sets the message of the triggered build.
func (b *TriggerBuild) Message(message string) {
	b.message = message
}

// Commit sets the commit the triggered build runs against.
func (b *TriggerBuild) Commit(commit string) {
	b.commit = commit
}

// Branch sets the branch the triggered build runs against.
func (b *TriggerBuild) Branch(branch string) {
	b.branch = branch
}

// Env sets an environment variable on the triggered build.
func (b *TriggerBuild) Env(name, value string) {
	b.env.Set(name, value)
}

// MetaData sets a meta-data entry on the triggered build.
func (b *TriggerBuild) MetaData(name, value string) {
	b.metaData.Set(name, value)
}

func (b *TriggerBuild) asMap() *ordered.MapSA {
	m := ordered.NewMap[string, any](4)
	if b.message != "" {
		m.Set("message", b.message)
	}
	if b.commit != "" {
		m.Set("commit", b.commit)
	}
	if b.branch != "" {
		m.Set("branch", b.branch)
	}
	if !b.env.IsZero() {
		m.Set("env", b.env)
	}
	if !b.metaData.IsZero() {
		m.Set("meta_data", b.metaData)
	}
	return m
}

// MarshalJSON marshals the build attributes that were set.
func (b *TriggerBuild) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.asMap())
}

// MarshalYAML returns the same shape for YAML encoding.
func (b *TriggerBuild) MarshalYAML() (any, error) {
	return b.asMap(), nil
}

func (b *TriggerBuild) interpolate(tf stringTransformer) error {
	var err error
	if b.message, err = tf.Transform(b.message); err != nil {
		return err
	}
	if b.branch, err = tf.Transform(b.branch); err != nil {
		return err
	}
	if b.commit, err = tf.Transform(b.commit); err != nil {
		return err
	}
	if err := interpolateOrderedMap(tf, b.env); err != nil {
		return err
	}
	return interpolateOrderedMap(tf, b.metaData)
}
