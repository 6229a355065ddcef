package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a document and print its view states",
		Long: `Validate loads a JSON or YAML document, builds its graph and view, and
prints the resulting cell states. Connection rules from the config file are
checked and every violation is listed. The command fails if any cell is
invalid.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(documentLogger(loggerFromContext(ctx), args[0]))
			doc, err := runner.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			g, err := runner.Build(doc)
			if err != nil {
				return err
			}
			report, cached := runner.ValidateWithCacheInfo(ctx, g)
			prog.done("validated", "cells", report.Cells, "invalid", len(report.Errors), "cached", cached)

			if !quiet {
				fmt.Println(renderStateTable(pipeline.States(g)))
			}
			printReport(report, cached)
			if !report.Valid() {
				return errors.New(errors.ErrCodeInvalidDocument, "%d cells failed validation", len(report.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "omit the state table")
	return cmd
}

// printReport prints the summary line and the errors of a report.
func printReport(r pipeline.Report, cached bool) {
	if r.Valid() {
		printSuccess("Document is valid")
	} else {
		printError("Document has %d invalid cells", len(r.Errors))
	}
	printStats(r, cached)
	for _, id := range r.ErrorIDs() {
		printWarning("%s: %s", id, strings.Join(r.Errors[id], "; "))
	}
}
