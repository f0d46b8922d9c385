package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amar030383/languageLearning/internal/audio"
	"github.com/amar030383/languageLearning/internal/config"
	"github.com/amar030383/languageLearning/internal/vocab"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		cfgFile string
		start   int
	)

	cmd := &cobra.Command{
		Use:   "audiogen [file]",
		Short: "Generate missing audio for the vocabulary sheet",
		Long: `audiogen creates the four mp3 recordings (German word, English word,
German sentence, English sentence) for every row of the vocabulary sheet
using OpenAI text-to-speech. Existing non-empty files are skipped, so the
command can be re-run to fill gaps.

Examples:
  audiogen                              # SingeSheet.csv into german_audio/
  audiogen words.csv -o audio -s 0      # Whole sheet into audio/`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.CSVPath = args[0]
			}
			return run(cmd.Context(), cfg, start)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vocab.yaml)")
	cmd.Flags().StringP("output", "o", "german_audio", "Output directory for audio files")
	cmd.Flags().IntVarP(&start, "start", "s", 480, "First row index to generate")
	cmd.Flags().String("openai-model", "tts-1", "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().String("openai-voice", "alloy", "OpenAI voice: alloy, ash, coral, echo, fable, onyx, nova, sage, shimmer")
	cmd.Flags().Float64("openai-speed", 1.0, "OpenAI speech speed (0.25 to 4.0)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, start int) error {
	logger := cfg.NewLogger()

	if start < 0 {
		return fmt.Errorf("start index must not be negative, got %d", start)
	}

	provider, err := audio.NewOpenAIProvider(audio.ProviderConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Voice:  cfg.OpenAIVoice,
		Speed:  cfg.OpenAISpeed,
	})
	if err != nil {
		return fmt.Errorf("%w (set OPENAI_API_KEY)", err)
	}

	if err := os.MkdirAll(cfg.AudioDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, err := vocab.NewSource(cfg.CSVPath).Load(ctx)
	if err != nil {
		return err
	}

	logger.Info("generating audio",
		"csv", cfg.CSVPath,
		"output", cfg.AudioDir,
		"start", start,
		"rows", len(entries),
		"provider", provider.Name(),
	)

	gen := audio.NewGenerator(audio.NewLocator(cfg.AudioDir), provider, logger)
	sum, err := gen.Run(ctx, entries, start)
	fmt.Printf("Audio generation finished: %s\n", sum)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d audio files failed", sum.Failed)
	}
	return nil
}
