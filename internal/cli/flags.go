package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/encap/pkg/config"
	"github.com/arthur-debert/encap/pkg/epkg"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/output"
	"github.com/arthur-debert/encap/pkg/output/styles"
	"github.com/arthur-debert/encap/pkg/paths"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	verbosity int
	quiet     bool

	source string
	target string

	force          bool
	dryRun         bool
	absolute       bool
	noPrereqs      bool
	noScripts      bool
	scriptsOnly    bool
	noExcludes     bool
	noNukeDirs     bool
	pkgdirLinks    bool
	noLinkdirs     bool
	noLinknames    bool
	legacyExcludes bool

	excludes           []string
	noDefaultExcludes  bool
	overrides          []string
	noDefaultOverrides bool

	noVersioning bool
	backoff      bool
	noLog        bool

	configFile string
	color      string
	stylesFile string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()

	f.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	f.BoolVarP(&g.quiet, "quiet", "q", false, MsgFlagQuiet)

	f.StringVarP(&g.source, "source", "s", "", MsgFlagSource)
	f.StringVarP(&g.target, "target", "t", "", MsgFlagTarget)

	f.BoolVarP(&g.force, "force", "f", false, MsgFlagForce)
	f.BoolVarP(&g.dryRun, "dry-run", "n", false, MsgFlagDryRun)
	f.BoolVarP(&g.absolute, "absolute", "a", false, MsgFlagAbsolute)
	f.BoolVar(&g.noPrereqs, "no-prereqs", false, MsgFlagNoPrereqs)
	f.BoolVar(&g.noScripts, "no-scripts", false, MsgFlagNoScripts)
	f.BoolVar(&g.scriptsOnly, "scripts-only", false, MsgFlagScriptsOnly)
	f.BoolVar(&g.noExcludes, "no-excludes", false, MsgFlagNoExcludes)
	f.BoolVar(&g.noNukeDirs, "no-nuke-dirs", false, MsgFlagNoNukeDirs)
	f.BoolVar(&g.pkgdirLinks, "pkgdir-links", false, MsgFlagPkgdirLinks)
	f.BoolVar(&g.noLinkdirs, "no-linkdirs", false, MsgFlagNoLinkdirs)
	f.BoolVar(&g.noLinknames, "no-linknames", false, MsgFlagNoLinknames)
	f.BoolVarP(&g.legacyExcludes, "legacy-excludes", "E", false, MsgFlagLegacyExcludes)

	f.StringArrayVarP(&g.excludes, "exclude", "X", nil, MsgFlagExclude)
	f.BoolVarP(&g.noDefaultExcludes, "no-default-excludes", "N", false, MsgFlagNoDefaultExcludes)
	f.StringArrayVarP(&g.overrides, "override", "O", nil, MsgFlagOverride)
	f.BoolVarP(&g.noDefaultOverrides, "no-default-overrides", "o", false, MsgFlagNoDefaultOverrides)

	f.BoolVarP(&g.noVersioning, "no-versioning", "S", false, MsgFlagNoVersioning)
	f.BoolVarP(&g.backoff, "backoff", "1", false, MsgFlagBackoff)
	f.BoolVarP(&g.noLog, "no-log", "l", false, MsgFlagNoLog)

	f.StringVar(&g.configFile, "config", "", MsgFlagConfig)
	f.StringVar(&g.color, "color", "auto", MsgFlagColor)
	f.StringVar(&g.stylesFile, "styles", "", MsgFlagStyles)
}

// outputVerbosity maps -q and -v onto printer verbosity.
func (g *globalFlags) outputVerbosity() int {
	if g.quiet {
		return output.Quiet
	}
	return output.Normal + g.verbosity
}

// configOverrides turns the flags given on the command line into
// configuration keys. Flags left at their defaults do not override the
// configuration file or the environment.
func (g *globalFlags) configOverrides() map[string]interface{} {
	o := make(map[string]interface{})
	set := func(key string, given bool, value interface{}) {
		if given {
			o[key] = value
		}
	}

	set("options.force", g.force, true)
	set("options.show_only", g.dryRun, true)
	set("options.absolute_links", g.absolute, true)
	set("options.prereqs", g.noPrereqs, false)
	set("options.run_scripts", g.noScripts, false)
	set("options.scripts_only", g.scriptsOnly, true)
	set("options.excludes", g.noExcludes, false)
	set("options.nuke_target_dirs", g.noNukeDirs, false)
	set("options.pkgdir_links", g.pkgdirLinks, true)
	set("options.link_dirs", g.noLinkdirs, false)
	set("options.link_names", g.noLinknames, false)
	set("options.target_excludes", g.legacyExcludes, true)
	set("legacy_excludes", g.legacyExcludes, true)

	set("excludes", g.noDefaultExcludes, []string{})
	set("overrides", g.noDefaultOverrides, []string{})

	set("versioning", g.noVersioning, false)
	set("backoff", g.backoff, true)
	set("write_log", g.noLog, false)
	return o
}

// loadConfig reads the layered configuration with the command line
// applied on top.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{
		File:      paths.ExpandHome(g.configFile),
		Overrides: g.configOverrides(),
	})
}

// runtime is what a package command works with.
type runtime struct {
	cfg     *config.Config
	dirs    paths.Dirs
	printer *output.Printer
	session *epkg.Session
	color   bool
}

// setup loads the configuration, resolves the directories and creates
// the printer and the session.
func (g *globalFlags) setup(cmd *cobra.Command) (*runtime, error) {
	logger := logging.GetLogger("cli")

	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine working directory")
	}
	dirs, err := paths.Resolve(cwd, g.source, g.target, paths.Dirs{Source: cfg.Source, Target: cfg.Target})
	if err != nil {
		return nil, err
	}

	excludes := append(append([]string{}, cfg.Excludes...), g.excludes...)
	if rel, ok := paths.SourceExclude(dirs.Source, dirs.Target); ok {
		excludes = append(excludes, rel)
	}
	overrides := append(append([]string{}, cfg.Overrides...), g.overrides...)

	mode, err := output.ParseColorMode(g.color)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid --color value")
	}
	var styleConfig *styles.Config
	if g.stylesFile != "" {
		styleConfig, err = styles.LoadFile(paths.ExpandHome(g.stylesFile))
		if err != nil {
			return nil, err
		}
	}

	w := cmd.OutOrStdout()
	color := output.UseColor(w, mode)
	printer := output.NewPrinter(w, g.outputVerbosity(), color, styleConfig)

	session, err := epkg.NewSession(epkg.Settings{
		Source:           dirs.Source,
		Target:           dirs.Target,
		Options:          cfg.OptionSet(),
		Excludes:         excludes,
		Overrides:        overrides,
		Versioning:       cfg.Versioning,
		Backoff:          cfg.Backoff,
		WriteLog:         cfg.WriteLog,
		LegacyExcludes:   cfg.LegacyExcludes,
		CheckConcurrency: cfg.CheckConcurrency,
		Reporter:         printer,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", dirs.Source).
		Str("target", dirs.Target).
		Strs("excludes", excludes).
		Strs("overrides", overrides).
		Msg("session ready")

	return &runtime{cfg: cfg, dirs: dirs, printer: printer, session: session, color: color}, nil
}
