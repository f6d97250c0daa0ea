package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/paths"
	"github.com/arthur-debert/encap/pkg/types"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "ENCAP_"

// Options holds one switch per package option.
type Options struct {
	Force          bool `koanf:"force" toml:"force"`
	ShowOnly       bool `koanf:"show_only" toml:"show_only"`
	AbsoluteLinks  bool `koanf:"absolute_links" toml:"absolute_links"`
	Prereqs        bool `koanf:"prereqs" toml:"prereqs"`
	RunScripts     bool `koanf:"run_scripts" toml:"run_scripts"`
	Excludes       bool `koanf:"excludes" toml:"excludes"`
	ScriptsOnly    bool `koanf:"scripts_only" toml:"scripts_only"`
	NukeTargetDirs bool `koanf:"nuke_target_dirs" toml:"nuke_target_dirs"`
	PkgdirLinks    bool `koanf:"pkgdir_links" toml:"pkgdir_links"`
	LinkDirs       bool `koanf:"link_dirs" toml:"link_dirs"`
	LinkNames      bool `koanf:"link_names" toml:"link_names"`
	TargetExcludes bool `koanf:"target_excludes" toml:"target_excludes"`
}

// Config is the effective encap configuration.
type Config struct {
	Source           string   `koanf:"source" toml:"source"`
	Target           string   `koanf:"target" toml:"target"`
	Excludes         []string `koanf:"excludes" toml:"excludes"`
	Overrides        []string `koanf:"overrides" toml:"overrides"`
	Versioning       bool     `koanf:"versioning" toml:"versioning"`
	Backoff          bool     `koanf:"backoff" toml:"backoff"`
	WriteLog         bool     `koanf:"write_log" toml:"write_log"`
	LegacyExcludes   bool     `koanf:"legacy_excludes" toml:"legacy_excludes"`
	CheckConcurrency int      `koanf:"check_concurrency" toml:"check_concurrency"`
	Options          Options  `koanf:"options" toml:"options"`
}

// LoadOptions selects the layers Load reads.
type LoadOptions struct {
	// File is the user configuration file. When empty the XDG location is
	// used if it exists; an explicitly named file must exist.
	File string
	// Overrides are applied last, keyed like the TOML file ("options.force").
	Overrides map[string]interface{}
	// SkipEnv ignores ENCAP_* environment variables.
	SkipEnv bool
}

// Load builds the configuration from the embedded defaults, the user
// configuration file, the environment and the overrides, in that order.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Load user config
	path, required := opts.File, true
	if path == "" {
		path, required = paths.ConfigFile(), false
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
		logger.Debug().Str("path", path).Msg("loaded config file")
	} else if required {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", path).
			WithDetail("path", path)
	}

	// 3. Load env vars
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Load command line overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if cfg.CheckConcurrency < 1 {
		cfg.CheckConcurrency = 1
	}
	return &cfg, nil
}

// envKey maps ENCAP_OPTIONS_SHOW_ONLY to options.show_only and
// ENCAP_WRITE_LOG to write_log.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "options_"); ok {
		return "options." + rest
	}
	return key
}

// OptionSet converts the option switches to a types.Options bit set.
func (c *Config) OptionSet() types.Options {
	o := c.Options
	var opts types.Options
	return opts.
		With(types.OptForce, o.Force).
		With(types.OptShowOnly, o.ShowOnly).
		With(types.OptAbsLinks, o.AbsoluteLinks).
		With(types.OptPrereqs, o.Prereqs).
		With(types.OptRunScripts, o.RunScripts).
		With(types.OptExcludes, o.Excludes).
		With(types.OptScriptsOnly, o.ScriptsOnly).
		With(types.OptNukeTargetDirs, o.NukeTargetDirs).
		With(types.OptPkgdirLinks, o.PkgdirLinks).
		With(types.OptLinkDirs, o.LinkDirs).
		With(types.OptLinkNames, o.LinkNames).
		With(types.OptTargetExcludes, o.TargetExcludes)
}

// Dump renders cfg as TOML.
func Dump(cfg *Config) (string, error) {
	var buf bytes.Buffer
	enc := gotoml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return buf.String(), nil
}

// Template returns the defaults with every value commented out, as a
// starting point for a user configuration file.
func Template() string {
	return commentOutConfigValues(DefaultsContent())
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Keep blank lines as-is
		if trimmed == "" {
			result = append(result, line)
			continue
		}

		// Keep lines that are already comments
		if strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		// Keep section headers (e.g., [options]) as-is
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		// Comment out configuration value lines
		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
