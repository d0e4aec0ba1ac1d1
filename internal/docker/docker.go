// Package docker builds images and pushes them to ECR with a bumped version
// tag.
package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/shlex"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/ui"
)

// Docker runs the build and push workflows.
type Docker struct {
	run        runner.Runner
	prompt     ui.Prompter
	out        io.Writer
	registries []model.EcrRegistry
	settings   appconfig.DockerConfig
}

// New creates a Docker workflow over the configured registries.
func New(r runner.Runner, p ui.Prompter, out io.Writer, cfg appconfig.Config) *Docker {
	if out == nil {
		out = os.Stdout
	}
	return &Docker{run: r, prompt: p, out: out, registries: cfg.ECRRegistries, settings: cfg.Docker}
}

// BuildArgs returns the docker argv for building image:latest. options is a
// shell-style string; quoting is honoured but nothing is expanded.
func BuildArgs(options, image, buildContext string) ([]string, error) {
	opts, err := shlex.Split(options)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err, "docker build_options")
	}
	args := append([]string{"build"}, opts...)
	return append(args, "-t", image+":"+LatestTag, buildContext), nil
}

// Build picks a registry and an image and builds image:latest.
func (d *Docker) Build(ctx context.Context) error {
	_, image, err := d.selectImage()
	if err != nil {
		return err
	}
	return d.build(ctx, image)
}

// Push builds the image, asks for a version bump and pushes latest plus the
// version tag. The first failing step stops the sequence.
func (d *Docker) Push(ctx context.Context) error {
	reg, image, err := d.selectImage()
	if err != nil {
		return err
	}
	if err := d.build(ctx, image); err != nil {
		return err
	}

	current := d.LatestVersion(ctx, reg, image)
	if current != "" {
		fmt.Fprintf(d.out, "Current version: %s\n", current)
	}
	idx, err := d.prompt.Select("Select version type:", VersionChoices(current))
	if err != nil {
		return err
	}
	version := Increment(current, Bump(idx))

	for _, step := range PushSteps(reg, image, version) {
		fmt.Fprintln(d.out, step.Label)
		if err := d.docker(ctx, step.Args...); err != nil {
			return err
		}
	}
	fmt.Fprintln(d.out, "Push completed successfully")
	return nil
}

// Step is one docker invocation of the push sequence.
type Step struct {
	Label string
	Args  []string
}

// PushSteps is tag latest, tag version, push latest, push version. The
// version steps are left out when version is the latest tag.
func PushSteps(reg model.EcrRegistry, image, version string) []Step {
	local := image + ":" + LatestTag
	remote := func(tag string) string { return reg.URL() + "/" + image + ":" + tag }

	steps := []Step{{Label: "Tagging image: " + local, Args: []string{"tag", local, remote(LatestTag)}}}
	if version != LatestTag {
		steps = append(steps, Step{Label: "Tagging image: " + image + ":" + version, Args: []string{"tag", local, remote(version)}})
	}
	steps = append(steps, Step{Label: "Pushing " + remote(LatestTag), Args: []string{"push", remote(LatestTag)}})
	if version != LatestTag {
		steps = append(steps, Step{Label: "Pushing " + remote(version), Args: []string{"push", remote(version)}})
	}
	return steps
}

// LatestVersion returns the newest pushed version tag of image, or "" when
// the lookup fails or no tag parses.
func (d *Docker) LatestVersion(ctx context.Context, reg model.EcrRegistry, image string) string {
	out, err := d.run.Output(ctx, runner.Cmd{
		Name: "aws",
		Args: []string{
			"ecr", "describe-images",
			"--repository-name", image,
			"--region", reg.Region,
			"--query", "sort_by(imageDetails,& imagePushedAt)[-1].imageTags",
			"--output", "text",
		},
		Stderr: io.Discard,
	})
	if err != nil {
		return ""
	}
	return pickVersion(string(out))
}

func (d *Docker) selectImage() (model.EcrRegistry, string, error) {
	if err := runner.Require(d.run, "docker", apperr.DockerNotInstalled); err != nil {
		return model.EcrRegistry{}, "", err
	}
	reg, err := ui.SelectRegistry(d.prompt, d.registries)
	if err != nil {
		return reg, "", err
	}
	if len(reg.Images) == 0 {
		image, err := ui.InputRequired(d.prompt, "Image name:")
		return reg, image, err
	}
	image, err := ui.SelectEntry(d.prompt, "Select image:", reg.Images, func(s string) string { return s }, func() (string, error) {
		return ui.InputRequired(d.prompt, "Image name:")
	})
	return reg, strings.TrimSpace(image), err
}

func (d *Docker) build(ctx context.Context, image string) error {
	args, err := BuildArgs(d.settings.BuildOptions, image, d.settings.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Building Docker image: %s:%s\n", image, LatestTag)
	if err := d.docker(ctx, args...); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "Build completed successfully")
	return nil
}

func (d *Docker) docker(ctx context.Context, args ...string) error {
	err := d.run.Run(ctx, runner.Cmd{Name: "docker", Args: args})
	if err == nil {
		return nil
	}
	return apperr.Wrap(apperr.DockerCommandFailed, err, runner.Describe("docker "+strings.Join(args, " "), err))
}
