package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amar030383/languageLearning/internal/ai"
	"github.com/amar030383/languageLearning/internal/api"
	"github.com/amar030383/languageLearning/internal/audio"
	"github.com/amar030383/languageLearning/internal/config"
	"github.com/amar030383/languageLearning/internal/core"
	"github.com/amar030383/languageLearning/internal/db"
	"github.com/amar030383/languageLearning/internal/vocab"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "vocab-web",
		Short: "German vocabulary study API",
		Long: `vocab-web serves the vocabulary sheet, its audio recordings and the
learner's excluded words over HTTP.

Examples:
  vocab-web                          # Serve SingeSheet.csv on port 8000
  vocab-web --port 9000 --csv a.csv  # Custom port and sheet`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return err
			}
			return run(cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vocab.yaml)")
	cmd.Flags().Int("port", 8000, "HTTP port")
	cmd.Flags().String("csv", "SingeSheet.csv", "Vocabulary CSV file")
	cmd.Flags().String("audio-dir", "german_audio", "Directory containing generated audio")
	cmd.Flags().String("db", "vocabulary.db", "SQLite database for excluded words")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}

func run(cfg *config.Config) error {
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	database, err := db.NewDatabase(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize database", "path", cfg.DatabasePath, "error", err)
		return err
	}
	defer database.Close()

	translator := ai.NewDefaultChain(cfg.AnthropicAPIKey, cfg.TranslateTimeout, logger)
	processor := core.NewProcessor(
		vocab.NewSource(cfg.CSVPath),
		database,
		audio.NewLocator(cfg.AudioDir),
		translator,
		logger,
	)

	handler := &api.Handler{Processor: processor, Logger: logger}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(handler, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting vocabulary server",
			"addr", srv.Addr,
			"csv", cfg.CSVPath,
			"audio_dir", cfg.AudioDir,
			"database", cfg.DatabasePath,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		return err
	}
	return nil
}
