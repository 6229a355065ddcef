package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgraph/pkg/codec"
	"github.com/matzehuels/cellgraph/pkg/errors"
)

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var output string
	var record string

	cmd := &cobra.Command{
		Use:   "replay <document> <changes.xml>",
		Short: "Apply an XML change log to a document",
		Long: `Replay decodes every edit of an XML change log against the document's
model and applies all changes as one batch. The result is written to
--output, or back to the document.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeDocumentAndLog,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			doc, err := runner.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			g, err := runner.Build(doc)
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "open change log")
			}
			defer f.Close()

			prog := newProgress(documentLogger(loggerFromContext(ctx), args[0]))
			m := g.Model()
			changes, err := codec.Decode(m, f)
			if err != nil {
				return err
			}

			var rec *codec.Recorder
			if record != "" {
				out, err := os.Create(record)
				if err != nil {
					return err
				}
				defer out.Close()
				rec = codec.NewRecorder(m, out)
			}
			codec.Apply(m, changes)
			if rec != nil {
				if err := rec.Close(); err != nil {
					return fmt.Errorf("record edit: %w", err)
				}
			}
			prog.done("applied change log", "log", filepath.Base(args[1]), "changes", len(changes))

			if output == "" {
				output = args[0]
			}
			if err := codec.WriteFile(codec.FromModel(m), output); err != nil {
				return err
			}
			printFile(output)
			if record != "" {
				printFile(record)
			}
			printNextStep("Render the result", appName+" render "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output document (default: overwrite the input)")
	cmd.Flags().StringVar(&record, "record", "", "write the applied batch as an XML edit to this file")
	return cmd
}
