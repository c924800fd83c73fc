package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "splice",
		Short: "Splice moves node graphs in and out of documents",
		Long: `Splice exports visual-programming node graphs to a portable JSON document
and reconstructs them, rewiring data, control and reference connections and
inserting cast adapters where port types differ.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/splice/splice.toml)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "log debug detail")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "log warnings and errors only")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		c.SetLogLevel(levelFor(c.verbose, c.quiet))
	}

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.compileCommand())
	root.AddCommand(c.roundtripCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.castCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
