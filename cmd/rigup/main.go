package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rigup-dev/rigup/internal/depend"
	"github.com/rigup-dev/rigup/internal/engine"
	"github.com/rigup-dev/rigup/pkg/config"
	"github.com/rigup-dev/rigup/pkg/env"
	"github.com/rigup-dev/rigup/pkg/exec"
	"github.com/rigup-dev/rigup/pkg/logging"
	"github.com/rigup-dev/rigup/pkg/notify"
	"github.com/rigup-dev/rigup/pkg/platform"
	"github.com/rigup-dev/rigup/pkg/policy"
	"github.com/rigup-dev/rigup/pkg/probe"
	"github.com/rigup-dev/rigup/pkg/report"
	"github.com/rigup-dev/rigup/pkg/script"
	"github.com/rigup-dev/rigup/pkg/version"
	"github.com/rigup-dev/rigup/pkg/workspace"
)

var (
	rootDir   string
	logLevel  string
	logFormat string
	quiet     bool
	noReport  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rigup",
		Short: "Run the machine setup instructions of a repository",
		Long: "rigup reads setup.txt at the repository root, checks every line\n" +
			"against restrictions.yaml for the current platform, and executes\n" +
			"what is allowed. A failing line never stops the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&rootDir, "root", "", "workspace root (default: detected)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json")
	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress per-line notices")
	root.PersistentFlags().BoolVar(&noReport, "no-report", false, "do not save a run report")

	root.AddCommand(runCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(versionCmd())
	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the setup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd)
		},
	}
}

// app bundles everything the commands assemble the same way.
type app struct {
	root     string
	cfg      *config.Config
	platform string
	lines    []script.Line
	log      *slog.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	root := rootDir
	if root == "" {
		var err error
		root, err = workspace.Resolve()
		if err != nil {
			return nil, err
		}
	}
	if _, err := env.LoadRoot(root); err != nil {
		return nil, err
	}

	level := logLevel
	if level == "" {
		level = os.Getenv("RIGUP_LOG_LEVEL")
	}
	format := logFormat
	if format == "" {
		format = os.Getenv("RIGUP_LOG_FORMAT")
	}
	log := logging.New(cmd.ErrOrStderr(), level, format)

	cfg, err := config.Load(workspace.RestrictionsPath(root))
	if err != nil {
		return nil, err
	}
	name, err := platform.Detect(cfg.Platforms)
	if err != nil {
		return nil, err
	}

	classifier := script.NewClassifier(cfg.Extensions()...)
	lines, err := script.Read(workspace.SetupPath(root), classifier)
	if err != nil {
		return nil, err
	}

	log.Debug("workspace loaded", "root", root, "platform", name, "lines", len(lines))
	return &app{root: root, cfg: cfg, platform: name, lines: lines, log: log}, nil
}

func runSetup(cmd *cobra.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	printer := notify.New(cmd.OutOrStdout(), quiet)
	runner := &exec.Runner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr(), Dir: a.root}
	eng := &engine.Engine{
		Root:     a.root,
		Platform: a.platform,
		Policy:   &policy.Evaluator{Config: a.cfg, Platform: a.platform, Versions: probe.Prober{}},
		Deps:     depend.NewResolver(a.root, a.platform, a.cfg, runner),
		Runner:   runner,
		Log:      a.log,
		Notify:   printer,
	}

	run := eng.Run(cmd.Context(), a.lines)

	if !noReport {
		if path, err := report.NewStore(a.root).Save(run); err != nil {
			a.log.Warn("could not save run report", "error", err)
		} else {
			a.log.Info("run report saved", "path", path)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d succeeded, %d failed, %d rejected, %d skipped\n",
		run.Summary.Succeeded, run.Summary.Failed, run.Summary.Rejected, run.Summary.Skipped)
	return nil
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Show what a run would do without executing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			eval := &policy.Evaluator{Config: a.cfg, Platform: a.platform, Versions: probe.Prober{}}

			for _, line := range a.lines {
				switch line.Kind {
				case script.Blank, script.Comment:
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tskip\n", line.Number, line.Kind)
				default:
					d := eval.Evaluate(line)
					if d.Allowed {
						fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\trun\t%s\n", line.Number, line.Kind, line.Text)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\treject\t%s\n", line.Number, line.Kind, d.Reason)
					}
				}
			}
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Show workspace, platform and interpreter status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			root := rootDir
			if root == "" {
				var err error
				root, err = workspace.Resolve()
				if err != nil {
					return err
				}
			}
			_, _ = env.LoadRoot(root)

			primary, fallback := platform.Signals()
			fmt.Fprintf(out, "Root: %s\n", root)
			fmt.Fprintf(out, "Signals: OS=%q runtime=%q\n", primary, fallback)
			fmt.Fprintf(out, "Elevated: %v\n", platform.Elevated())

			cfg, err := config.Load(workspace.RestrictionsPath(root))
			if err != nil {
				fmt.Fprintf(out, "Restrictions: %v\n", err)
				return nil
			}
			fmt.Fprintf(out, "Restrictions: %d platforms, %d file rules, %d command rules\n",
				len(cfg.Platforms), len(cfg.Files), len(cfg.Commands))
			for _, ext := range cfg.Extensions() {
				rule, _ := cfg.FileRuleFor(ext)
				fmt.Fprintf(out, "Rule *%s: platform %s, interpreter %s\n", ext, rule.Platform, rule.InterpreterVersion)
			}

			name, err := platform.Detect(cfg.Platforms)
			if err != nil {
				fmt.Fprintf(out, "Platform: %v\n", err)
				return nil
			}
			fmt.Fprintf(out, "Platform: %s\n", name)

			prober := probe.Prober{}
			classifier := script.NewClassifier(cfg.Extensions()...)
			for _, ext := range classifier.Extensions() {
				v := prober.InterpreterVersion(ext)
				if v == "" {
					v = "not found"
				}
				fmt.Fprintf(out, "Interpreter %s: %s\n", ext, v)
			}

			commands := make([]string, 0, len(cfg.Commands))
			for cmdName := range cfg.Commands {
				commands = append(commands, cmdName)
			}
			sort.Strings(commands)
			for _, cmdName := range commands {
				rule := cfg.Commands[cmdName]
				fmt.Fprintf(out, "Rule %s: platform %s, version %s\n", cmdName, rule.Platform, rule.Version)
				ref, ok := rule.Dependency(name)
				if !ok || ref.None {
					continue
				}
				path := ref.Path
				if !filepath.IsAbs(path) {
					path = filepath.Join(root, path)
				}
				status := "present"
				if _, err := os.Stat(path); err != nil {
					status = "missing"
				}
				fmt.Fprintf(out, "Dependency %s: %s (%s)\n", cmdName, ref.Path, status)
			}

			if _, err := os.Stat(workspace.SetupPath(root)); err != nil {
				fmt.Fprintf(out, "Setup file: missing\n")
			} else {
				fmt.Fprintf(out, "Setup file: present\n")
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
