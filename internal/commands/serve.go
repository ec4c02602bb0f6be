package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/api"
	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(app *appContext) *cobra.Command {
	var (
		addr      string
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				app.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, app, staticDir)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env SERVER_ADDR)")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory of web client files to serve")

	return cmd
}

func runServer(ctx context.Context, app *appContext, staticDir string) error {
	log := logger.Default()

	var (
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
	)
	if app.cfg.Observability.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		gatherer = reg
	}

	vocab, err := app.vocabulary(ctx, m)
	if err != nil {
		return err
	}

	server := api.NewApp(&api.Handler{
		Pipeline:   app.pipeline(vocab, m, false),
		Vocabulary: vocab,
		Currency:   app.cfg.Extraction.Currency,
		StaticDir:  staticDir,
	}, api.ServerConfig{
		BodyLimitMB: app.cfg.Server.BodyLimitMB,
		Gatherer:    gatherer,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", app.cfg.Server.Addr, "ocr", app.cfg.OCR.Enabled, "vocabulary", app.cfg.Categorizer.Backend)
		errCh <- server.Listen(app.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return server.ShutdownWithTimeout(shutdownTimeout)
	}
}
