package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
)

// validateResult is one document's entry in --json output.
type validateResult struct {
	Document string           `json:"document"`
	Valid    bool             `json:"valid"`
	Error    string           `json:"error,omitempty"`
	Issues   []graphdoc.Issue `json:"issues"`
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <document>...",
		Short: "Check documents for structural problems",
		Long: `Check that each document decodes and that its node ids, connections,
port indices and import lists are consistent.

A document argument is a file path, "-" for stdin or store:NAME.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			results := make([]validateResult, 0, len(args))
			failed := 0

			for _, arg := range args {
				res := validateResult{Document: arg, Issues: []graphdoc.Issue{}}
				doc, err := c.loadDocument(cmd.Context(), arg)
				if err != nil {
					res.Error = errors.UserMessage(err)
				} else if issues := doc.Validate(); len(issues) > 0 {
					res.Issues = issues
				}
				res.Valid = res.Error == "" && len(res.Issues) == 0
				if !res.Valid {
					failed++
				}
				results = append(results, res)

				if asJSON {
					continue
				}
				switch {
				case res.Error != "":
					printError(out, "%s: %s", arg, res.Error)
				case !res.Valid:
					printError(out, "%s: %d issues", arg, len(res.Issues))
					printIssues(out, res.Issues)
				default:
					printSuccess(out, "%s", arg)
				}
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeInvalidInput, "%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// summarize returns a short count line for a document.
func summarize(d *graphdoc.Document) string {
	return fmt.Sprintf("%d nodes, %d connections, %d comments", len(d.Nodes), d.ConnectionCount(), len(d.Comments))
}
