package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/pkg/cast"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/nodes"
)

// castCommand creates the cast command.
func (c *CLI) castCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cast <from> <to>",
		Short: "Show the adapter inserted between two port types",
		Long: `Show which adapter node the importer inserts when an output of type <from>
feeds an input of type <to>.

  splice cast int float
  splice cast 'Flux.World.Slot' 'Flux.World.IWorldElement'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := nodes.Standard()
			reg := lib.Registry()

			from, ok := reg.Parse(args[0])
			if !ok {
				return errors.New(errors.ErrCodeTypeResolution, "unknown type %q", args[0])
			}
			to, ok := reg.Parse(args[1])
			if !ok {
				return errors.New(errors.ErrCodeTypeResolution, "unknown type %q", args[1])
			}

			out := cmd.OutOrStdout()
			adapter, err := cast.NewResolver(reg).Resolve(from, to)
			if err != nil {
				return err
			}
			if adapter == nil {
				printSuccess(out, "%s connects to %s directly", from, to)
				return nil
			}
			printSuccess(out, "%s %s %s", from, iconArrow, to)
			printKeyValue(out, "adapter", adapter.String())
			return nil
		},
	}
}
