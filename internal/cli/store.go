package cli

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/splice/pkg/errors"
)

// storeCommand creates the document store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored documents",
		Long: `Manage documents in the configured store. The backend (file, redis or mongo)
is selected in the [store] section of splice.toml.

Stored documents can be passed to other commands as store:NAME.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePushCommand())
	cmd.AddCommand(c.storePullCommand())
	cmd.AddCommand(c.storeRemoveCommand())
	cmd.AddCommand(c.storeBrowseCommand())

	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	var long, asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(names)
			}
			if len(names) == 0 {
				printInfo(out, "No stored documents")
				return nil
			}
			for _, name := range names {
				if !long {
					fmt.Fprintln(out, name)
					continue
				}
				doc, err := st.Get(cmd.Context(), name)
				if err != nil {
					printWarning(out, "%s: %s", name, errors.UserMessage(err))
					continue
				}
				printKeyValue(out, name, summarize(doc))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "show document counts")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print names as JSON")
	return cmd
}

func (c *CLI) storePushCommand() *cobra.Command {
	var name string
	var force bool

	cmd := &cobra.Command{
		Use:   "push <document>",
		Short: "Store a document",
		Long: `Store a document under its file name without extension, or under --name.
Documents with structural issues are rejected unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if issues := doc.Validate(); len(issues) > 0 && !force {
				printError(out, "%s has %d issues", args[0], len(issues))
				printIssues(out, issues)
				return errors.New(errors.ErrCodeInvalidInput, "refusing to store an invalid document (use --force)")
			}

			if name == "" {
				name = documentName(args[0])
			}
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Put(cmd.Context(), name, doc); err != nil {
				return err
			}
			printSuccess(out, "Stored %s", name)
			printDetail(out, "%s", summarize(doc))
			printNextStep(out, "Compile it", "splice compile "+storePrefix+name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "store name (default: file name)")
	cmd.Flags().BoolVar(&force, "force", false, "store documents with issues")
	return cmd
}

func (c *CLI) storePullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <name>",
		Short: "Write a stored document to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), storePrefix+args[0])
			if err != nil {
				return err
			}
			if err := writeDocument(cmd.OutOrStdout(), doc, output); err != nil {
				return err
			}
			if output != "" && output != stdinArg {
				printFile(cmd.ErrOrStderr(), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete stored documents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			for _, name := range args {
				if err := st.Delete(cmd.Context(), name); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Deleted %s", name)
			}
			return nil
		},
	}
}

func (c *CLI) storeBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a stored document interactively and inspect it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				printInfo(out, "No stored documents")
				return nil
			}

			entries := make([]DocumentEntry, 0, len(names))
			for _, name := range names {
				e := DocumentEntry{Name: name}
				if doc, err := st.Get(cmd.Context(), name); err != nil {
					e.Err = errors.UserMessage(err)
				} else {
					e.Nodes, e.Connections = len(doc.Nodes), doc.ConnectionCount()
					e.Issues = len(doc.Validate())
				}
				entries = append(entries, e)
			}

			final, err := tea.NewProgram(NewDocumentListModel(entries), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "browse")
			}
			m, ok := final.(DocumentListModel)
			if !ok || m.Selected == "" {
				return nil
			}

			doc, err := st.Get(cmd.Context(), m.Selected)
			if err != nil {
				return err
			}
			printInspect(out, m.Selected, doc, 10)
			return nil
		},
	}
}
