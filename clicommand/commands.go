// Package clicommand assembles the command-line surface of a generator
// binary. Each registered pipeline becomes its own upload command, named
// after its derived task identity, alongside a "list" command that never
// materializes any pipeline.
package clicommand

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/buildkite/pipelinegen/generator"
	"github.com/buildkite/pipelinegen/logger"
	"github.com/buildkite/pipelinegen/upload"
)

// App builds the cli application for a generator.
func App(g *generator.Generator) *cli.App {
	app := cli.NewApp()
	app.Name = "pipelinegen"
	app.Usage = "Generates Buildkite pipelines and uploads them to the current build"
	app.HideVersion = true
	app.Commands = []cli.Command{ListCommand(g)}
	for _, name := range g.Names() {
		app.Commands = append(app.Commands, UploadCommand(g, name))
	}
	return app
}

// Run runs the application; any returned error is fatal.
func Run(g *generator.Generator, args []string) {
	l := logger.NewTextLogger()
	if err := App(g).Run(args); err != nil {
		l.Fatal("%v", err)
	}
}

// ListCommand lists the registered pipeline names, one per line, in
// registration order. Listing runs no configuration blocks.
func ListCommand(g *generator.Generator) cli.Command {
	return cli.Command{
		Name:  "list",
		Usage: "List the registered pipeline names",
		Action: func(c *cli.Context) error {
			for _, name := range g.Names() {
				fmt.Fprintln(c.App.Writer, name)
			}
			return nil
		},
	}
}

// UploadCommand builds one registered pipeline and hands it to the upload
// collaborator. The command is named after the pipeline's task identity:
// uploadPipeline for the default pipeline, uploadTestPipeline for "test",
// and so on.
func UploadCommand(g *generator.Generator, name string) cli.Command {
	return cli.Command{
		Name:  generator.TaskName(name),
		Usage: fmt.Sprintf("Build the %q pipeline and upload it to the current build", name),
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:   "dry-run",
				Usage:  "Rather than uploading the pipeline, print it to stdout",
				EnvVar: "BUILDKITE_PIPELINE_UPLOAD_DRY_RUN",
			},
			cli.StringFlag{
				Name:  "format",
				Value: string(upload.FormatJSON),
				Usage: "Output format for --dry-run, either json or yaml",
			},
		},
		Action: func(c *cli.Context) error {
			p, err := g.Build(name)
			if err != nil {
				return err
			}
			u := &upload.Uploader{
				DryRun: c.Bool("dry-run"),
				Format: upload.Format(c.String("format")),
				Stdout: c.App.Writer,
			}
			return u.Upload(context.Background(), p)
		},
	}
}
