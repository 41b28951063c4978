package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeComposeFiles(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(root, name), []byte("services: {}\n"), 0o644); err != nil {
			t.Fatalf("os.WriteFile(%q) error = %v", name, err)
		}
	}
	return root
}

func TestDockerComposeFileDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{
			name:  "no compose files",
			files: nil,
			want:  `{"agents":{"queue":"default"},"plugins":[{"docker-compose#v5.2.0":{"run":"app"}}]}`,
		},
		{
			name:  "only the conventional file",
			files: []string{"docker-compose.yml"},
			want: `{"agents":{"queue":"default"},"plugins":[{"docker-compose#v5.2.0":` +
				`{"run":"app","config":["docker-compose.yml"]}}]}`,
		},
		{
			name:  "only the buildkite override",
			files: []string{"docker-compose.buildkite.yml"},
			want: `{"agents":{"queue":"default"},"plugins":[{"docker-compose#v5.2.0":` +
				`{"run":"app","config":["docker-compose.buildkite.yml"]}}]}`,
		},
		{
			name:  "both files, conventional order",
			files: []string{"docker-compose.buildkite.yml", "docker-compose.yml"},
			want: `{"agents":{"queue":"default"},"plugins":[{"docker-compose#v5.2.0":` +
				`{"run":"app","config":["docker-compose.yml","docker-compose.buildkite.yml"]}}]}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			root := writeComposeFiles(t, test.files...)
			got := stepJSON(t, Config{ProjectRoot: root}, func(s *CommandStep) {
				s.DockerCompose(func(d *DockerCompose) {
					d.Run("app")
				})
			})
			if got != test.want {
				t.Errorf("step marshaled to %s, want %s", got, test.want)
			}
		})
	}
}

func TestDockerComposeExplicitFilesAppend(t *testing.T) {
	t.Parallel()

	root := writeComposeFiles(t, "docker-compose.yml")
	got := stepJSON(t, Config{ProjectRoot: root}, func(s *CommandStep) {
		s.DockerCompose(func(d *DockerCompose) {
			d.Run("app")
			d.ComposeFile("docker-compose.ci.yml")
		})
	})
	want := `{"agents":{"queue":"default"},"plugins":[{"docker-compose#v5.2.0":` +
		`{"run":"app","config":["docker-compose.yml","docker-compose.ci.yml"]}}]}`
	if got != want {
		t.Errorf("step marshaled to %s, want %s", got, want)
	}
}

func TestDockerComposeImageRefs(t *testing.T) {
	t.Parallel()

	got := stepJSON(t, Config{ProjectRoot: t.TempDir()}, func(s *CommandStep) {
		s.DockerCompose(func(d *DockerCompose) {
			d.Build("app", "worker")
			d.Push("app", "index.docker.io/org/app", "latest")
			d.Push("worker", "index.docker.io/org/worker")
			d.ImageRepository("index.docker.io/org")
			d.ImageName("app-${BUILDKITE_BUILD_NUMBER}")
			d.Environment("RAILS_ENV=test")
			d.CacheFrom("app", "index.docker.io/org/app", "cache")
		})
	})
	want := `{"agents":{"queue":"default"},"plugins":[{"docker-compose#v5.2.0":{` +
		`"build":["app","worker"],` +
		`"push":["app:index.docker.io/org/app:latest","worker:index.docker.io/org/worker"],` +
		`"image-repository":"index.docker.io/org",` +
		`"image-name":"app-${BUILDKITE_BUILD_NUMBER}",` +
		`"environment":["RAILS_ENV=test"],` +
		`"cache-from":["app:index.docker.io/org/app:cache"]` +
		`}}]}`
	if got != want {
		t.Errorf("step marshaled to %s, want %s", got, want)
	}
}
