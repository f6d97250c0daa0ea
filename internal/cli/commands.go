package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/encap/internal/version"
	"github.com/arthur-debert/encap/pkg/config"
	"github.com/arthur-debert/encap/pkg/encap"
	"github.com/arthur-debert/encap/pkg/encapinfo"
	"github.com/arthur-debert/encap/pkg/epkg"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/filesystem"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/paths"
	"github.com/arthur-debert/encap/pkg/pkgspec"
	"github.com/arthur-debert/encap/pkg/types"
)

func newInstallCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:               "install <package>...",
		Short:             MsgInstallShort,
		Long:              MsgInstallLong,
		Example:           MsgInstallExample,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackages(cmd, g, args, types.ModeInstall)
		},
	}
}

func newRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:               "remove <package>...",
		Aliases:           []string{"rm"},
		Short:             MsgRemoveShort,
		Long:              MsgRemoveLong,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackages(cmd, g, args, types.ModeRemove)
		},
	}
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:               "check <package>...",
		Short:             MsgCheckShort,
		Long:              MsgCheckLong,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.check")

			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}

			showOnly := rt.cfg.Options.ShowOnly
			failed := 0
			for _, report := range rt.session.CheckAll(cmd.Context(), args) {
				rt.summarize(report.Results)
				if report.Err != nil {
					rt.printer.Errorf(MsgErrPrefix, errors.Message(report.Err))
				}
				if epkg.Failed(types.ModeCheck, report.Results, report.Err, showOnly) {
					failed++
				}
			}

			logger.Info().Int("packages", len(args)).Int("failed", failed).Msg("check finished")
			return exitStatus(failed)
		},
	}
}

func newBatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "batch",
		Short:   MsgBatchShort,
		Long:    MsgBatchLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.batch")

			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}

			rt.printer.Header(MsgBatchHeader, rt.dirs.Source)
			results, err := rt.session.Batch(cmd.Context())
			rt.summarize(results)

			showOnly := rt.cfg.Options.ShowOnly
			failed := 0
			for _, r := range results {
				if epkg.Failed(types.ModeInstall, []epkg.Result{r}, nil, showOnly) {
					failed++
				}
			}
			if err != nil {
				rt.printer.Errorf(MsgErrPrefix, errors.Message(err))
				failed++
			}

			logger.Info().Int("results", len(results)).Int("failed", failed).Msg("batch finished")
			return exitStatus(failed)
		},
	}
}

func newCleanCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Short:   MsgCleanShort,
		Long:    MsgCleanLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}

			rt.printer.Header(MsgCleanHeader, rt.dirs.Target)
			stats, err := rt.session.Clean(cmd.Context())
			rt.printer.Header(MsgCleanStats, stats.Removed, stats.Valid, stats.Foreign, stats.Excluded)
			if err != nil {
				rt.printer.Errorf(MsgErrPrefix, errors.Message(err))
				return exitStatus(1)
			}
			return nil
		},
	}
}

func newVersionsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:               "versions <name>...",
		Short:             MsgVersionsShort,
		Long:              MsgVersionsLong,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: packageCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}

			var rows [][]string
			failed := 0
			for _, name := range args {
				versions, err := rt.session.FindVersions(filepath.Base(name))
				if err != nil {
					rt.printer.Errorf(MsgErrPrefix, errors.Message(err))
					failed++
					continue
				}
				if len(versions) == 0 {
					rt.printer.Errorf(MsgErrPrefix, fmt.Sprintf(MsgNoVersions, name))
					failed++
					continue
				}

				selected := len(versions) - 1
				if rt.cfg.Backoff {
					selected--
				}
				for i, v := range versions {
					mark := ""
					if i == selected {
						mark = "*"
					}
					rows = append(rows, []string{filepath.Base(name), v, mark})
				}
			}

			if len(rows) > 0 {
				header := []string{"Package", "Version", "Selected"}
				if err := renderTable(cmd.OutOrStdout(), rt.color, header, rows); err != nil {
					return err
				}
			}
			return exitStatus(failed)
		},
	}
}

func newInfoCmd(g *globalFlags) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:               "info <package>",
		Short:             MsgInfoShort,
		Long:              MsgInfoLong,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: packageCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.setup(cmd)
			if err != nil {
				return err
			}

			fsys := filesystem.NewOS()
			settings := rt.session.Settings()
			pkg, err := encap.Open(fsys, settings.Source, settings.Target, filepath.Base(args[0]), settings.Options, nil)
			if err != nil {
				return err
			}
			defer pkg.Close()
			info := pkg.Info()

			if !write {
				return encapinfo.Write(cmd.OutOrStdout(), info)
			}
			path := filepath.Join(pkg.Dir(), encapinfo.FileName)
			if err := encapinfo.WriteFile(fsys, path, info); err != nil {
				return err
			}
			rt.printer.Header(MsgInfoWritten, path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	return cmd
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	var template bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if template {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.Template())
				return err
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			out, err := config.Dump(cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&template, "template", false, MsgFlagTemplate)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "ENCAP",
				Section: "1",
				Source:  "encap " + version.Version,
				Manual:  "encap manual",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot write man pages to %s", dir)
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten+"\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", MsgFlagManDir)
	return cmd
}

// runPackages installs or removes every spec in order. An install whose
// package can not be found stops the remaining installs.
func runPackages(cmd *cobra.Command, g *globalFlags, specs []string, mode types.Mode) error {
	logger := logging.GetLogger("cmd." + mode.String())

	rt, err := g.setup(cmd)
	if err != nil {
		return err
	}

	op := rt.session.Remove
	if mode == types.ModeInstall {
		op = rt.session.Install
	}

	ctx := cmd.Context()
	showOnly := rt.cfg.Options.ShowOnly
	failed := 0
	for _, spec := range specs {
		if ctx.Err() != nil {
			break
		}
		results, err := op(ctx, spec)
		rt.summarize(results)
		if err != nil {
			rt.printer.Errorf(MsgErrPrefix, errors.Message(err))
			failed++
			if mode == types.ModeInstall {
				logger.Warn().Str("package", spec).Err(err).Msg("stopping after lookup failure")
				break
			}
			continue
		}
		if epkg.Failed(mode, results, nil, showOnly) {
			failed++
		}
	}

	logger.Info().Int("packages", len(specs)).Int("failed", failed).Msg(mode.String() + " finished")
	return exitStatus(failed)
}

// summarize prints the closing line of every package operation that ran.
func (rt *runtime) summarize(results []epkg.Result) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		rt.printer.Summary(r.Mode, r.Outcome)
	}
}

// packageCompletion completes package directory names from the source
// directory.
func packageCompletion(g *globalFlags) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names, err := listPackages(g)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// listPackages returns every package name and package directory found in
// the configured source directory.
func listPackages(g *globalFlags) ([]string, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dirs, err := paths.Resolve(cwd, g.source, g.target, paths.Dirs{Source: cfg.Source, Target: cfg.Target})
	if err != nil {
		return nil, err
	}
	all, err := pkgspec.All(filesystem.NewOS(), dirs.Source, nil)
	if err != nil {
		return nil, err
	}

	var names []string
	for name, versions := range all {
		names = append(names, name)
		for _, v := range versions {
			if pkg, err := pkgspec.Join(name, v); err == nil && pkg != name {
				names = append(names, pkg)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
