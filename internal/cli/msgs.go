package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Manage Encap packages in a symlink tree"
	MsgInstallShort    = "Install packages into the target directory"
	MsgRemoveShort     = "Remove packages from the target directory"
	MsgCheckShort      = "Check that packages are fully installed"
	MsgBatchShort      = "Install every package in the source directory"
	MsgCleanShort      = "Remove stale links from the target directory"
	MsgVersionsShort   = "List the versions of packages"
	MsgInfoShort       = "Print the metadata of a package"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgCleanHeader    = "cleaning target directory %s..."
	MsgCleanStats     = "    > %d removed, %d valid, %d foreign, %d excluded"
	MsgBatchHeader    = "installing all packages from %s..."
	MsgNoVersions     = "no versions of package %s found"
	MsgInfoWritten    = "wrote %s"
	MsgManWritten     = "man pages written to %s"

	// Error messages
	MsgErrPrefix     = "encap: %s"
	MsgErrNoPackages = "no packages specified"
	MsgErrFailed     = "%d package(s) failed"

	// Flag descriptions
	MsgFlagVerbose            = "Increase verbosity (-v shows changes, -vv paths, -vvv everything; also raises log level)"
	MsgFlagQuiet              = "Only print failures"
	MsgFlagSource             = "Source directory holding package directories"
	MsgFlagTarget             = "Target directory receiving the links"
	MsgFlagForce              = "Replace conflicting files and links"
	MsgFlagDryRun             = "Show what would be done without changing anything"
	MsgFlagAbsolute           = "Create absolute links instead of relative ones"
	MsgFlagNoPrereqs          = "Ignore package prerequisites"
	MsgFlagNoScripts          = "Do not run lifecycle scripts"
	MsgFlagScriptsOnly        = "Only run lifecycle scripts, do not link"
	MsgFlagNoExcludes         = "Ignore package exclude lists"
	MsgFlagNoNukeDirs         = "Keep target directories left empty by a removal"
	MsgFlagPkgdirLinks        = "Link top-level package files into the target directory"
	MsgFlagNoLinkdirs         = "Ignore linkdir directives"
	MsgFlagNoLinknames        = "Ignore linkname directives"
	MsgFlagLegacyExcludes     = "Honor encap.exclude files in the source and target directories"
	MsgFlagExclude            = "Add a target relative path to the exclude list"
	MsgFlagNoDefaultExcludes  = "Start from an empty exclude list"
	MsgFlagOverride           = "Allow the install to replace links of this package"
	MsgFlagNoDefaultOverrides = "Start from an empty override list"
	MsgFlagNoVersioning       = "Treat every package directory on its own"
	MsgFlagBackoff            = "Select the version before the newest"
	MsgFlagNoLog              = "Do not write the transaction log"
	MsgFlagConfig             = "Configuration file (default $XDG_CONFIG_HOME/encap/config.toml)"
	MsgFlagColor              = "Colorize output: auto, always or never"
	MsgFlagStyles             = "YAML file overriding the output styles"
	MsgFlagTemplate           = "Print a commented configuration template"
	MsgFlagWrite              = "Write the metadata to the package encapinfo file"
	MsgFlagManDir             = "Directory receiving the man pages"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)

	//go:embed msgs/check-long.txt
	msgCheckLongRaw string
	MsgCheckLong    = strings.TrimSpace(msgCheckLongRaw)

	//go:embed msgs/batch-long.txt
	msgBatchLongRaw string
	MsgBatchLong    = strings.TrimSpace(msgBatchLongRaw)

	//go:embed msgs/clean-long.txt
	msgCleanLongRaw string
	MsgCleanLong    = strings.TrimSpace(msgCleanLongRaw)

	//go:embed msgs/versions-long.txt
	msgVersionsLongRaw string
	MsgVersionsLong    = strings.TrimSpace(msgVersionsLongRaw)

	//go:embed msgs/info-long.txt
	msgInfoLongRaw string
	MsgInfoLong    = strings.TrimSpace(msgInfoLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
