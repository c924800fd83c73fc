package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/pkg/interchange"
	"github.com/matzehuels/splice/pkg/interchange/mode"
	"github.com/matzehuels/splice/pkg/pipeline"
)

// compileFlags are the import options shared by compile and roundtrip. Set
// flags override the [compile] config section.
type compileFlags struct {
	mode       string
	monopack   bool
	persistent bool
	arrange    bool
	prepare    bool
	casts      bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", pipeline.DefaultMode, "compile mode ("+strings.Join(mode.Names, ", ")+")")
	cmd.Flags().BoolVar(&f.monopack, "monopack", false, "put all nodes into one container")
	cmd.Flags().BoolVar(&f.persistent, "persistent", false, "mark created containers persistent")
	cmd.Flags().BoolVar(&f.arrange, "arrange", false, "lay out documents that request it")
	cmd.Flags().BoolVar(&f.prepare, "prepare", false, "create the import structures the document needs first")
	cmd.Flags().BoolVar(&f.casts, "casts", false, "insert adapters between mismatched data ports")
}

// options merges the flags over the configured defaults.
func (f *compileFlags) options(c *CLI, cmd *cobra.Command) (pipeline.Options, error) {
	opts, err := c.compileDefaults()
	if err != nil {
		return opts, err
	}
	set := cmd.Flags().Changed
	if set("mode") || opts.Mode == "" {
		opts.Mode = f.mode
	}
	if set("monopack") {
		opts.Monopack = f.monopack
	}
	if set("persistent") {
		opts.Persistent = f.persistent
	}
	if set("arrange") {
		opts.Arrange = f.arrange
	}
	if set("casts") {
		opts.Casts = f.casts
	}
	opts.Prepare = f.prepare
	return opts, opts.ValidateAndSetDefaults()
}

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		flags  compileFlags
		tree   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "compile <document>",
		Short: "Reconstruct a document into an in-memory world",
		Long: `Import a document into a fresh world and report what was built and what
was skipped. Skipped items do not fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c, cmd)
			if err != nil {
				return err
			}
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}

			sw := startStopwatch(c.Logger)
			res, err := runner.Compile(cmd.Context(), doc, opts)
			if err != nil {
				return err
			}
			sw.lap("compiled", "document", documentName(args[0]), "nodes", len(res.Report.Nodes))

			out := cmd.OutOrStdout()
			if asJSON {
				return writeRecord(out, res.Report)
			}
			printCompile(out, res)
			if tree {
				fmt.Fprintln(out)
				return res.World.WriteTree(out)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&tree, "tree", false, "print the reconstructed slot hierarchy")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// roundtripCommand creates the roundtrip command.
func (c *CLI) roundtripCommand() *cobra.Command {
	var (
		flags  compileFlags
		output string
		ids    string
	)

	cmd := &cobra.Command{
		Use:   "roundtrip <document>",
		Short: "Compile a document and export the result again",
		Long: `Compile a document, then export the reconstructed graph to a new document.
Comparing input and output shows what survives reconstruction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(c, cmd)
			if err != nil {
				return err
			}
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}

			var exportOpts []interchange.ExportOption
			if ids != "" {
				exportOpts = append(exportOpts, interchange.WithIDs(interchange.SequentialIDs(ids)))
			}
			out, res, err := runner.RoundTrip(cmd.Context(), doc, opts, exportOpts...)
			if err != nil {
				return err
			}

			if err := writeDocument(cmd.OutOrStdout(), out, output); err != nil {
				return err
			}
			if output != "" && output != stdinArg {
				w := cmd.ErrOrStderr()
				printSuccess(w, "%s", res.Report.Summary())
				printFile(w, output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&ids, "ids", "", "assign sequential node ids with this prefix")
	return cmd
}

func printCompile(w io.Writer, res *pipeline.Result) {
	if res.Report.OK() {
		printSuccess(w, "Compiled with %s mode", res.Mode.Name())
	} else {
		printWarning(w, "Compiled with %s mode", res.Mode.Name())
	}
	printReport(w, res.Report)
	printDetail(w, "took %s", res.Stats.CompileTime)
}

func writeRecord(w io.Writer, rep *interchange.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep.Record())
}
