package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVocabCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect and correct the merchant vocabulary",
	}
	cmd.AddCommand(newVocabListCommand(app))
	cmd.AddCommand(newVocabAddCommand(app))
	return cmd
}

func newVocabListCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned merchants and their categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab, err := app.vocabulary(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := vocab.LoadErr(); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MERCHANT\tCATEGORY")
			for _, e := range vocab.Snapshot().Entries() {
				fmt.Fprintf(tw, "%s\t%s\n", e.Merchant, e.Category)
			}
			return tw.Flush()
		},
	}
}

func newVocabAddCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:     "add <merchant> <category>",
		Short:   "Record a merchant category correction",
		Example: `  statement-ledger vocab add "Foo Mart" Shopping`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab, err := app.vocabulary(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := vocab.AddCorrection(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("%w (categories: %v)", err, vocab.Categories())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], vocab.Categorize(args[0]))
			return nil
		},
	}
}
