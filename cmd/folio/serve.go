package main

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/folio/internal/api"
	"github.com/newthinker/folio/internal/api/job"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var templatesDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Folio web dashboard and API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&templatesDir, "templates", "", "load page templates from this directory instead of the embedded set")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())
	cfg := rt.cfg

	rt.log.Info("starting Folio server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("ledger_source", cfg.Ledger.Source),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		TemplatesDir: templatesDir,
		APIKey:       cfg.Server.APIKey,
		MetricsPath:  metricsPath,
		NewsMax:      cfg.News.MaxHeadlines,
	}, api.Dependencies{
		App:     rt.app,
		Jobs:    job.NewStore(100, time.Hour),
		Metrics: rt.metrics,
	}, rt.log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-cmd.Context().Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	rt.log.Info("shutting down Folio server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
