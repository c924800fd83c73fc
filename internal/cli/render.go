package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/httputil"
	"github.com/matzehuels/splice/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts    pipeline.RenderOptions
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Draw a document as a node-link diagram",
		Long: `Draw a document with graphviz. DOT and SVG need no external tools. PNG and PDF
are converted from SVG with rsvg-convert.

Without -o the output is written next to the input as <name>.<format>, or to
stdout for stdin and stored documents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}

			spin := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering "+documentName(args[0]))
			spin.Start()
			data, cached, err := runner.Render(cmd.Context(), doc, opts)
			spin.Stop()
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = defaultRenderPath(args[0], opts.Format)
			}
			if path == stdinArg {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
			}

			w := cmd.ErrOrStderr()
			printSuccess(w, "Rendered %s", strings.ToUpper(opts.Format))
			printRenderStats(w, len(data), cached)
			printFile(w, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", pipeline.FormatSVG, "output format (dot, svg, png, pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout`)
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with ids and edges with ports")
	cmd.Flags().StringVar(&opts.Direction, "direction", pipeline.DefaultDirection, "rank direction (LR, RL, TB, BT)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG scale factor (default 2)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the artifact cache")
	return cmd
}

// defaultRenderPath places the output next to a file input. Stored documents,
// URLs and stdin render to stdout.
func defaultRenderPath(arg, format string) string {
	if arg == stdinArg || strings.HasPrefix(arg, storePrefix) || httputil.IsURL(arg) {
		return stdinArg
	}
	return filepath.Join(filepath.Dir(arg), documentName(arg)+"."+format)
}
