package pipeline

import (
	"testing"

	"github.com/buildkite/pipelinegen/env"
)

func TestPipelineInterpolate(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	p.Env("DEPLOY_TARGET", "${REGION}-fleet")
	p.CommandStep(func(s *CommandStep) {
		s.Label("build ${BUILDKITE_BUILD_NUMBER}")
		s.Commands("make build", "make tag VERSION=${VERSION}")
		s.Env("VERSION_TAG", "v${VERSION}")
		s.Docker(func(d *Docker) {
			d.Image("registry/${SERVICE}:latest")
		})
	})
	p.TriggerStep("deploy", func(s *TriggerStep) {
		s.Build(func(b *TriggerBuild) {
			b.Message("deploy ${VERSION}")
		})
	})

	e := env.FromMap(map[string]string{
		"REGION":                 "us-east-1",
		"BUILDKITE_BUILD_NUMBER": "123",
		"VERSION":                "1.2.3",
		"SERVICE":                "api",
	})
	if err := p.Interpolate(e); err != nil {
		t.Fatalf("p.Interpolate(e) error = %v", err)
	}

	want := `{"env":{"DEPLOY_TARGET":"us-east-1-fleet"},"steps":[` +
		`{"label":"build 123",` +
		`"command":["make build","make tag VERSION=1.2.3"],` +
		`"agents":{"queue":"default"},` +
		`"env":{"VERSION_TAG":"v1.2.3"},` +
		`"plugins":[{"docker#v5.9.0":{"image":"registry/api:latest"}}]},` +
		`{"trigger":"deploy","build":{"message":"deploy 1.2.3"}}` +
		`]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("interpolated pipeline marshaled to %s, want %s", got, want)
	}
}

func TestBlockStepInterpolate(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	p.BlockStep("Release ${VERSION}", func(s *BlockStep) {
		s.Prompt = "Ship ${VERSION}?"
		s.TextField("release-name", func(f *TextField) {
			f.Text = "Release name"
			f.Hint = "defaults to ${VERSION}"
			f.Default = "v${VERSION}"
		})
		s.SelectField("region", func(f *SelectField) {
			f.Default = "${REGION}"
			f.Option("Primary (${REGION})", "${REGION}")
			f.Option("Backup", "eu-west-1")
		})
	})

	e := env.FromMap(map[string]string{
		"VERSION": "1.2.3",
		"REGION":  "us-east-1",
	})
	if err := p.Interpolate(e); err != nil {
		t.Fatalf("p.Interpolate(e) error = %v", err)
	}

	want := `{"env":{},"steps":[` +
		`{"block":"Release 1.2.3","fields":[` +
		`{"default":"v1.2.3","hint":"defaults to 1.2.3","key":"release-name","text":"Release name"},` +
		`{"default":"us-east-1","key":"region","options":[` +
		`{"label":"Primary (us-east-1)","value":"us-east-1"},` +
		`{"label":"Backup","value":"eu-west-1"}` +
		`]}` +
		`],"prompt":"Ship 1.2.3?"}` +
		`]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("interpolated pipeline marshaled to %s, want %s", got, want)
	}
}

func TestPluginBuilderInterpolate(t *testing.T) {
	t.Parallel()

	p := New(Config{ProjectRoot: t.TempDir()})
	p.CommandStep(func(s *CommandStep) {
		s.Docker(func(d *Docker) {
			d.Image("golang:${GO_VERSION}")
			d.Shell("/bin/sh", "-c", "echo ${GO_VERSION}")
		})
		s.DockerCompose(func(d *DockerCompose) {
			d.Build("app-${SUFFIX}")
			d.Run("app-${SUFFIX}")
			d.Push("app", "registry/app", "${TAG}")
			d.CacheFrom("app", "registry/app", "${TAG}")
			d.ComposeFile("docker-compose.${SUFFIX}.yml")
		})
	})

	e := env.FromMap(map[string]string{
		"GO_VERSION": "1.25",
		"SUFFIX":     "ci",
		"TAG":        "latest",
	})
	if err := p.Interpolate(e); err != nil {
		t.Fatalf("p.Interpolate(e) error = %v", err)
	}

	want := `{"env":{},"steps":[` +
		`{"agents":{"queue":"default"},"plugins":[` +
		`{"docker#v5.9.0":{"image":"golang:1.25","shell":["/bin/sh","-c","echo 1.25"]}},` +
		`{"docker-compose#v5.2.0":{` +
		`"build":["app-ci"],` +
		`"run":"app-ci",` +
		`"push":["app:registry/app:latest"],` +
		`"cache-from":["app:registry/app:latest"],` +
		`"config":["docker-compose.ci.yml"]` +
		`}}` +
		`]}` +
		`]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("interpolated pipeline marshaled to %s, want %s", got, want)
	}
}

func TestInterpolateMissingVariableIsEmpty(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	p.Env("TARGET", "pre-${NOPE}-post")
	if err := p.Interpolate(env.New()); err != nil {
		t.Fatalf("p.Interpolate(env.New()) error = %v", err)
	}
	want := `{"env":{"TARGET":"pre--post"},"steps":[]}`
	if got := renderJSON(t, p); got != want {
		t.Errorf("interpolated pipeline marshaled to %s, want %s", got, want)
	}
}
