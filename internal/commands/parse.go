package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/pipeline"
	"github.com/insightdelivered/statement-ledger/internal/writer"
)

func newParseCommand(app *appContext) *cobra.Command {
	var (
		accounts []string
		output   string
		summary  bool
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "parse <statement> [statement ...]",
		Short: "Convert statements into a categorized ledger",
		Long: `Converts each statement and writes the combined ledger as CSV to stdout,
or to --output (.csv or .xlsx). Accounts are assigned to files in order with
repeated --account flags; a single --account applies to every file and files
without one use their file name.`,
		Example: `  statement-ledger parse --account "HDFC Credit Card" aug.pdf
  statement-ledger parse --account HDFC --account ICICI hdfc.pdf icici.csv --output ledger.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			vocab, err := app.vocabulary(ctx, nil)
			if err != nil {
				return err
			}
			p := app.pipeline(vocab, nil, debug)

			inputs := make([]pipeline.Input, len(args))
			for i, path := range args {
				inputs[i] = pipeline.Input{Path: path, Account: accountFor(accounts, i, path)}
			}
			batch := p.Process(ctx, inputs)

			report(cmd.ErrOrStderr(), batch, debug)
			if len(batch.Failed()) == len(batch.Documents) {
				return errors.New("no statement could be processed")
			}
			return writeLedger(cmd.OutOrStdout(), output, batch.Ledger, summary, app.cfg.Extraction.Currency)
		},
	}

	cmd.Flags().StringArrayVarP(&accounts, "account", "a", nil, "account label for the next statement (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.csv or .xlsx); stdout when empty")
	cmd.Flags().BoolVar(&summary, "summary", false, "prepend debit/credit totals to CSV output")
	cmd.Flags().BoolVar(&debug, "debug", false, "print per-page extraction details")

	return cmd
}

func accountFor(accounts []string, i int, path string) string {
	switch {
	case i < len(accounts):
		return accounts[i]
	case len(accounts) == 1:
		return accounts[0]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// report prints one status line per document, plus page details in debug mode.
func report(w io.Writer, batch *pipeline.Batch, debug bool) {
	for _, d := range batch.Documents {
		switch {
		case d.Failed():
			fmt.Fprintf(w, "FAILED  %s: %v\n", d.Name, d.Err)
		case d.NoTransactions:
			fmt.Fprintf(w, "EMPTY   %s [%s]: no transactions found\n", d.Name, d.Account)
		default:
			fmt.Fprintf(w, "OK      %s [%s]: %d transactions\n", d.Name, d.Account, d.Count)
		}
		if d.OCRUsed {
			fmt.Fprintf(w, "        OCR fallback used\n")
		}
		if d.PageFailures > 0 {
			fmt.Fprintf(w, "        %d page(s) could not be read\n", d.PageFailures)
		}
		if !debug {
			continue
		}
		for _, p := range d.Pages {
			fmt.Fprintf(w, "        page %d: strategy=%q rows=%d candidates=%d", p.Page, p.Strategy, p.Rows, p.Candidates)
			if p.Err != "" {
				fmt.Fprintf(w, " error=%q", p.Err)
			}
			fmt.Fprintln(w)
			for _, l := range p.Lines {
				fmt.Fprintf(w, "          %4d %-8s %-14s %s\n", l.LineNum, l.Result, l.Pattern, l.Text)
			}
		}
	}
}

func writeLedger(stdout io.Writer, output string, txns []models.Transaction, summary bool, currency string) error {
	if output == "" {
		return (&writer.CSVWriter{IncludeSummary: summary, Currency: currency}).Write(stdout, txns)
	}

	switch strings.ToLower(filepath.Ext(output)) {
	case ".xlsx":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", output, err)
		}
		defer f.Close()
		return (&writer.ExcelWriter{Currency: currency}).Write(f, txns)
	case ".csv", "":
		return (&writer.CSVWriter{IncludeSummary: summary, Currency: currency}).WriteToFile(output, txns)
	}
	return fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", filepath.Ext(output))
}
