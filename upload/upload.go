// Package upload hands finished pipeline documents to Buildkite. Inside a
// Buildkite job it streams the document to `buildkite-agent pipeline upload`
// over standard input; anywhere else it pretty-prints the document for local
// inspection.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"gopkg.in/yaml.v3"

	"github.com/buildkite/pipelinegen/env"
	"github.com/buildkite/pipelinegen/logger"
	"github.com/buildkite/pipelinegen/pipeline"
)

// Format selects how documents are rendered when printed locally.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// insideBuildkiteVar marks a process running under a Buildkite agent.
const insideBuildkiteVar = "BUILDKITE"

// Uploader delivers pipeline documents. The zero value uploads through the
// agent on PATH, logs to stderr and prints to stdout.
type Uploader struct {
	// Logger receives progress and failure detail. nil means a text logger
	// on stderr.
	Logger logger.Logger

	// Environ decides whether the process is inside a Buildkite job and
	// feeds local interpolation. nil means the process environment.
	Environ *env.Environment

	// Stdout is where documents print when not uploading. nil means
	// os.Stdout.
	Stdout io.Writer

	// AgentPath is the buildkite-agent executable to invoke. Empty means
	// "buildkite-agent" on PATH.
	AgentPath string

	// Format selects the local rendering. Empty means FormatJSON.
	Format Format

	// DryRun prints the document instead of uploading, even inside a
	// Buildkite job.
	DryRun bool
}

func (u *Uploader) logger() logger.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return logger.NewTextLogger()
}

func (u *Uploader) environ() *env.Environment {
	if u.Environ != nil {
		return u.Environ
	}
	return env.FromSlice(os.Environ())
}

func (u *Uploader) stdout() io.Writer {
	if u.Stdout != nil {
		return u.Stdout
	}
	return os.Stdout
}

// Upload delivers the document. It returns an error when the agent process
// cannot be run or exits nonzero; printing locally only fails if the writer
// does.
func (u *Uploader) Upload(ctx context.Context, p *pipeline.Pipeline) error {
	if !u.DryRun && u.environ().Exists(insideBuildkiteVar) {
		return u.uploadThroughAgent(ctx, p)
	}
	return u.print(p)
}

// AgentArgs composes the argument list for `buildkite-agent pipeline
// upload` from the document's upload flags.
func AgentArgs(p *pipeline.Pipeline) []string {
	args := []string{"pipeline", "upload"}
	if p.NoInterpolation {
		args = append(args, "--no-interpolation")
	}
	if p.Replace {
		args = append(args, "--replace")
	}
	return args
}

func (u *Uploader) uploadThroughAgent(ctx context.Context, p *pipeline.Pipeline) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling pipeline: %w", err)
	}

	agent := u.AgentPath
	if agent == "" {
		agent = "buildkite-agent"
	}
	args := AgentArgs(p)
	u.logger().Info("Uploading pipeline: %s %v", agent, args)

	cmd := exec.CommandContext(ctx, agent, args...)
	cmd.Stdin = bytes.NewReader(doc)
	cmd.Stdout = u.stdout()
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("pipeline upload exited with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("running %s: %w", agent, err)
	}
	return nil
}

// print renders the document to the configured writer. Interpolation is
// applied first from the configured environment, unless the document asked
// for none, approximating what the agent would upload.
func (u *Uploader) print(p *pipeline.Pipeline) error {
	if !p.NoInterpolation {
		if err := p.Interpolate(u.environ()); err != nil {
			return fmt.Errorf("interpolating pipeline: %w", err)
		}
	}

	switch u.Format {
	case FormatYAML:
		out, err := yaml.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling pipeline: %w", err)
		}
		_, err = u.stdout().Write(out)
		return err

	case FormatJSON, "":
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling pipeline: %w", err)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, doc, "", "  "); err != nil {
			return err
		}
		pretty.WriteByte('\n')
		_, err = u.stdout().Write(pretty.Bytes())
		return err

	default:
		return fmt.Errorf("unknown output format %q", u.Format)
	}
}
