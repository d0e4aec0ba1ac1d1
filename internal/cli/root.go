// Package cli provides the command-line interface for stool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/aws"
	"github.com/stool-cli/stool/internal/dispatch"
	"github.com/stool-cli/stool/internal/docker"
	"github.com/stool-cli/stool/internal/doctor"
	"github.com/stool-cli/stool/internal/fsops"
	"github.com/stool-cli/stool/internal/remote"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/security"
	"github.com/stool-cli/stool/internal/ui"
	"github.com/stool-cli/stool/internal/update"
)

// app carries what every subcommand shares. cfg is filled in by the root's
// PersistentPreRunE before any RunE executes.
type app struct {
	runner   runner.Runner
	prompter ui.Prompter
	fs       afero.Fs

	configPath string
	verbose    bool
	cfg        appconfig.Config
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{
		runner:   runner.New(),
		prompter: ui.NewTerminal(),
		fs:       afero.NewOsFs(),
	})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "stool",
		Short:         "Terminal chores behind an interactive menu",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			cfg, err := appconfig.Load(a.configPath)
			if err != nil {
				return err
			}
			appconfig.LogWarnings(cfg)
			slog.Debug("config loaded", "source", cfg.Source, "servers", len(cfg.Servers))
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/stool/config.yaml, then embedded)")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "log spawned commands to stderr")

	root.AddCommand(
		a.newSSHCmd(),
		a.newTransferCmd(),
		a.newUpdateCmd(),
		a.newFilesystemCmd(),
		a.newDockerCmd(),
		a.newAWSCmd(),
		a.newDoctorCmd(),
	)
	return root
}

// quiet turns a user cancellation into success.
func quiet(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil && !apperr.IsCancelled(err) {
			return err
		}
		return nil
	}
}

func (a *app) newSSHCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ssh",
		Aliases: []string{"s"},
		Short:   "Connect to a server over SSH",
		Long: "Connect to a configured or manually entered server.\n\n" +
			"Authentication uses the server's key_path, then its password (through expect),\n" +
			"then a masked password prompt, then default ssh authentication.",
		Args: cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			d := dispatch.New(a.runner, cmd.OutOrStdout())
			return remote.Connect(cmd.Context(), a.prompter, d, a.cfg.Servers)
		}),
	}
}

func (a *app) newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "transfer",
		Aliases: []string{"t"},
		Short:   "Upload or download files with scp",
		Long: "Copy files between this machine and a server.\n\n" +
			"Default paths: upload to ~/, download to ~/Downloads/.",
		Args: cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			d := dispatch.New(a.runner, cmd.OutOrStdout())
			return remote.Transfer(cmd.Context(), a.prompter, d, a.cfg.Servers)
		}),
	}
}

func (a *app) newUpdateCmd() *cobra.Command {
	var brew, rustup bool
	cmd := &cobra.Command{
		Use:     "update",
		Aliases: []string{"u"},
		Short:   "Update Homebrew packages and the Rust toolchain",
		Long:    "With no flags both brew and rustup are updated.",
		Args:    cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			u := update.New(a.runner, cmd.OutOrStdout())
			switch {
			case brew && !rustup:
				return u.Brew(cmd.Context())
			case rustup && !brew:
				return u.Rustup(cmd.Context())
			default:
				return u.All(cmd.Context())
			}
		}),
	}
	cmd.Flags().BoolVar(&brew, "brew", false, "update Homebrew only")
	cmd.Flags().BoolVar(&rustup, "rustup", false, "update the Rust toolchain only")
	return cmd
}

func (a *app) newFilesystemCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "filesystem",
		Aliases: []string{"fs", "f"},
		Short:   "Find and count files",
	}

	var path string
	find := &cobra.Command{
		Use:   "find <pattern>",
		Short: "Find files by exact name, glob or partial match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			pattern := args[0]
			fmt.Fprintf(out, "Searching for '%s' in %s...\n", pattern, path)
			results, err := fsops.Find(a.fs, pattern, path)
			if err != nil {
				return err
			}
			printMatches(out, pattern, results)
			return nil
		},
	}
	find.Flags().StringVarP(&path, "path", "p", ".", "search path")

	count := &cobra.Command{
		Use:   "count [path]",
		Short: "Count the entries of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			n, err := fsops.Count(a.fs, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d items in %s\n", n, target)
			return nil
		},
	}

	root.AddCommand(find, count)
	return root
}

func printMatches(out io.Writer, pattern string, results []string) {
	if len(results) == 0 {
		fmt.Fprintf(out, "No files found matching '%s'\n", pattern)
		return
	}
	fmt.Fprintf(out, "\nFound %d file(s):\n", len(results))
	for _, r := range results {
		fmt.Fprintf(out, "  %s\n", r)
	}
}

func (a *app) newDockerCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "docker",
		Aliases: []string{"d"},
		Short:   "Build images and push them to ECR",
	}
	build := &cobra.Command{
		Use:   "build",
		Short: "Build image:latest with the configured build options",
		Args:  cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			return docker.New(a.runner, a.prompter, cmd.OutOrStdout(), a.cfg).Build(cmd.Context())
		}),
	}
	push := &cobra.Command{
		Use:   "push",
		Short: "Build, tag and push latest plus a bumped version to ECR",
		Long: "Workflow: select registry, select image, build, pick a version bump,\n" +
			"then tag and push both latest and the version tag.",
		Args: cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			return docker.New(a.runner, a.prompter, cmd.OutOrStdout(), a.cfg).Push(cmd.Context())
		}),
	}
	root.AddCommand(build, push)
	return root
}

func (a *app) newAWSCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "aws",
		Aliases: []string{"a"},
		Short:   "AWS CLI shortcuts",
	}
	configure := &cobra.Command{
		Use:     "configure",
		Aliases: []string{"conf"},
		Short:   "Run aws configure",
		Args:    cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			return aws.New(a.runner, a.prompter, cmd.OutOrStdout(), a.cfg).Configure(cmd.Context())
		}),
	}
	ecr := &cobra.Command{
		Use:   "ecr",
		Short: "Log docker in to an ECR registry",
		Args:  cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			return aws.New(a.runner, a.prompter, cmd.OutOrStdout(), a.cfg).ECRLogin(cmd.Context())
		}),
	}
	sso := &cobra.Command{
		Use:   "sso",
		Short: "Ensure an SSO profile exists and run aws sso login",
		Args:  cobra.NoArgs,
		RunE: quiet(func(cmd *cobra.Command, args []string) error {
			return aws.New(a.runner, a.prompter, cmd.OutOrStdout(), a.cfg).SSOLogin(cmd.Context())
		}),
	}
	root.AddCommand(configure, ecr, sso)
	return root
}

func (a *app) newDoctorCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check required programs, config and file permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := doctor.Run(a.cfg, a.runner)
			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			high := 0
			for _, is := range report.Issues {
				if is.Severity == doctor.SeverityHigh {
					high++
				}
			}
			summary := fmt.Sprintf("config: %s\n%d issue(s), %d high", security.RedactHome(a.cfg.Source), len(report.Issues), high)
			fmt.Fprintln(out, ui.RenderPanel("stool doctor", summary, 48))
			report.WriteText(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	return cmd
}
