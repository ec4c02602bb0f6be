package commands

import (
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/api"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	app := &appContext{}

	rootCmd := &cobra.Command{
		Use:   "statement-ledger",
		Short: "Convert bank and card statements into a categorized ledger",
		Long: `Converts PDF, CSV and XLSX statements from any bank into one ledger
of Date, Merchant, Amount, Type, Account and Category, learning merchant
categories from your corrections.`,
		Version: api.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.StringVar(&app.flags.backend, "vocab-backend", "", "vocabulary store: yaml, sqlite, postgres, memory (env VOCAB_BACKEND)")
	flags.StringVar(&app.flags.path, "vocab-path", "", "vocabulary file for the yaml and sqlite backends (env VOCAB_PATH)")
	flags.StringVar(&app.flags.dsn, "vocab-dsn", "", "postgres connection string (env VOCAB_DSN)")
	flags.IntVar(&app.flags.threshold, "threshold", 0, "fuzzy match threshold 0-100 (env LEDGER_FUZZY_THRESHOLD)")

	rootCmd.AddCommand(newParseCommand(app))
	rootCmd.AddCommand(newVocabCommand(app))
	rootCmd.AddCommand(newServeCommand(app))
	closeAfterRun(rootCmd, app)

	return rootCmd
}

// closeAfterRun wraps every RunE so stores opened by a command are closed
// even when it fails.
func closeAfterRun(cmd *cobra.Command, app *appContext) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			defer app.close()
			return run(cmd, args)
		}
	}
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, app)
	}
}
