package cli

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/encap/internal/version"
	"github.com/arthur-debert/encap/pkg/cobrax/topics"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/types"
)

// NewRootCmd creates and returns the root command. Package arguments given
// without a command are installed.
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "encap [packages...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			logging.LogCommand(cmd.Name(), args)
		},
		ValidArgsFunction: packageCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Show help but return an error to indicate incorrect usage
				_ = cmd.Help()
				return errors.New(errors.ErrInvalidInput, MsgErrNoPackages)
			}
			return runPackages(cmd, g, args, types.ModeInstall)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	g.register(rootCmd)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newInstallCmd(g))
	rootCmd.AddCommand(newRemoveCmd(g))
	rootCmd.AddCommand(newCheckCmd(g))
	rootCmd.AddCommand(newBatchCmd(g))
	rootCmd.AddCommand(newCleanCmd(g))
	rootCmd.AddCommand(newVersionsCmd(g))
	rootCmd.AddCommand(newInfoCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	// Initialize topic-based help system
	opts := topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(isTerminal(os.Stdout)),
	}
	if _, err := topics.Initialize(rootCmd, topicsFS(), opts); err != nil {
		log.Warn().Err(err).Msg("help topics unavailable")
	}

	return rootCmd
}
