package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func renderJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal(%T) error = %v", v, err)
	}
	return string(b)
}

func TestEmptyPipelineRender(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	want := `{"env":{},"steps":[]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("empty pipeline marshaled to %s, want %s", got, want)
	}
}

func TestWaitStepsRender(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	p.WaitStep()
	p.WaitStepContinueOnFailure()

	want := `{"env":{},"steps":["wait",{"wait":{"continue_on_failure":true}}]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("pipeline with wait steps marshaled to %s, want %s", got, want)
	}
}

func TestZeroValuePipeline(t *testing.T) {
	t.Parallel()

	var p Pipeline
	p.Env("FOO", "bar")
	p.WaitStep()

	want := `{"env":{"FOO":"bar"},"steps":["wait"]}`
	if got := renderJSON(t, &p); got != want {
		t.Errorf("zero-value pipeline marshaled to %s, want %s", got, want)
	}

	var empty Pipeline
	if got, want := renderJSON(t, &empty), `{"env":{},"steps":[]}`; got != want {
		t.Errorf("zero-value pipeline marshaled to %s, want %s", got, want)
	}
}

func TestPipelineEnvKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	p.Env("ZED", "1")
	p.Env("ALPHA", "2")
	p.Env("ZED", "3") // override keeps the original position

	want := `{"env":{"ZED":"3","ALPHA":"2"},"steps":[]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("pipeline env marshaled to %s, want %s", got, want)
	}
}

func TestStepsKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	p := New(Config{DefaultAgentQueue: "builder"})
	p.CommandStep(func(s *CommandStep) {
		s.Label("build")
		s.Command("make")
	})
	p.WaitStep()
	p.CommandStep(func(s *CommandStep) {
		s.Label("deploy")
		s.Command("make deploy")
	})

	want := `{"env":{},"steps":[` +
		`{"label":"build","command":"make","agents":{"queue":"builder"}},` +
		`"wait",` +
		`{"label":"deploy","command":"make deploy","agents":{"queue":"builder"}}` +
		`]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("pipeline marshaled to %s, want %s", got, want)
	}
}

func TestPipelineMarshalYAML(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	p.Env("FOO", "bar")
	p.WaitStep()

	out, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("yaml.Marshal(p) error = %v", err)
	}
	got := string(out)
	for _, want := range []string{"env:", "FOO: bar", "steps:", "- wait"} {
		if !strings.Contains(got, want) {
			t.Errorf("yaml.Marshal(p) = %q, missing %q", got, want)
		}
	}
}
