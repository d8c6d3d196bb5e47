// Package cmd implements the milk command line.
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/milkvcs/milk/internal/buildinfo"
	"github.com/milkvcs/milk/internal/config"
	"github.com/milkvcs/milk/internal/git"
	"github.com/milkvcs/milk/internal/output"
	"github.com/milkvcs/milk/internal/theme"
)

// app holds the global flags and the state derived from them in
// PersistentPreRunE. Every subcommand closes over the same app.
type app struct {
	repoPath   string
	configPath string
	quiet      bool
	verbose    bool
	json       bool
	color      string
	theme      string

	cfg      config.Config
	logLevel *slog.LevelVar
}

// Run executes the command line in args and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	err := fang.Execute(ctx, root, fang.WithVersion(buildinfo.String()))
	return output.GetExitCode(err)
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), logLevel: new(slog.LevelVar)}
	cmd := &cobra.Command{
		Use:   "milk [command]",
		Short: "A friendlier front-end for git repositories",
		Long: `milk works on ordinary git repositories with a small, regular set of
commands and one way of naming things:

  (empty)     HEAD
  #name       the tag refs/tags/name
  @           HEAD
  @name       the branch refs/heads/name
  /ref/path   any ref by its full path, e.g. /HEAD or /refs/remotes/o/main
  1a2b3c4     an object by (abbreviated) hash

diff also accepts /INDEX and /WORK for the staging area and the checked-out
files. Unknown commands run milk-<command> from PATH.`,
		Version:           buildinfo.String(),
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runExternal(cmd, "milk", args[0], args[1:])
		},
	}
	// Everything after an external command name belongs to that command.
	cmd.Flags().SetInterspersed(false)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.repoPath, "repo", "p", ".", "path inside the repository")
	pf.StringVar(&a.configPath, "config", "", "config file (default "+config.FileName+" in the milk config directory)")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "only print results and errors")
	pf.BoolVar(&a.verbose, "verbose", false, "enable debug logging")
	pf.BoolVar(&a.json, "json", false, "print results as JSON")
	pf.StringVar(&a.color, "color", "auto", "colorize output: auto, always or never")
	pf.StringVar(&a.theme, "theme", theme.Auto.String(), "diff color theme: auto, light or dark")

	cmd.AddGroup(
		&cobra.Group{ID: "repo", Title: "Repository Commands:"},
		&cobra.Group{ID: "inspect", Title: "Inspection Commands:"},
		&cobra.Group{ID: "refs", Title: "Reference Commands:"},
	)
	addGroupedCommand(cmd, "repo",
		newInitCmd(a),
		newStageCmd(a),
		newUnstageCmd(a),
		newCommitCmd(a),
		newCleanCmd(a),
		newRestoreCmd(a),
		newIgnoreCmd(a),
	)
	addGroupedCommand(cmd, "inspect",
		newStatusCmd(a),
		newDiffCmd(a),
		newShowCmd(a),
		newLsCmd(a),
		newHeadCmd(a),
		newMeCmd(a),
		newWhereCmd(a),
	)
	addGroupedCommand(cmd, "refs",
		newBranchCmd(a),
		newTagCmd(a),
	)
	return cmd
}

func addGroupedCommand(parent *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.GroupID = group
		parent.AddCommand(c)
	}
}

// setup installs the logger and merges the config file under the flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch {
	case a.verbose:
		a.logLevel.Set(slog.LevelDebug)
	case a.quiet:
		a.logLevel.Set(slog.LevelWarn)
	default:
		a.logLevel.Set(slog.LevelInfo)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.logLevel})))

	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return output.NewUserErrorWithCause(err.Error(), err)
	}
	a.cfg = cfg
	if !cmd.Flags().Changed("color") {
		a.color = cfg.Color
	}
	if !cmd.Flags().Changed("theme") {
		a.theme = cfg.Theme
	}
	slog.Debug("configuration loaded",
		slog.String("path", path),
		slog.String("color", a.color),
		slog.String("theme", a.theme),
		slog.Int("context_lines", cfg.ContextLines),
	)
	return nil
}

// run adapts a command body so its errors carry exit codes. With --json
// the error is also written to stdout as an {"error", "code"} object.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := output.FromError(fn(cmd, args))
		if err != nil && a.json {
			a.printer(cmd).Error(err)
		}
		return err
	}
}

func (a *app) service() (*git.Service, error) {
	return git.Discover(a.repoPath)
}

func (a *app) colorEnabled(w io.Writer) bool {
	return output.ResolveColorMode(a.color, output.IsTTY(w))
}

func (a *app) printer(cmd *cobra.Command) *output.Printer {
	return a.printerTo(cmd, cmd.OutOrStdout())
}

// printerTo builds a printer for w, taking color support from the real
// output so renders into a buffer keep their styles.
func (a *app) printerTo(cmd *cobra.Command, w io.Writer) *output.Printer {
	return output.NewPrinter(w, a.json, a.colorEnabled(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr()).
		WithQuiet(a.quiet)
}

// relPaths converts command line paths to worktree-relative ones.
func relPaths(svc *git.Service, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := svc.RelPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}
