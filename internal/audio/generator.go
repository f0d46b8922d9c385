package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amar030383/languageLearning/internal/vocab"
)

// Summary counts what a generation run did.
type Summary struct {
	Created int
	Skipped int
	Failed  int
}

// Generator fills in audio files that are missing or still zero-byte placeholders.
type Generator struct {
	Locator  *Locator
	Provider Provider
	Logger   *slog.Logger
}

// NewGenerator creates a Generator
func NewGenerator(locator *Locator, provider Provider, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		Locator:  locator,
		Provider: provider,
		Logger:   logger,
	}
}

// Run generates audio for every valid entry with index >= start. A failed
// file is logged and counted; the run continues with the next one. Run
// only returns an error when ctx is done.
func (g *Generator) Run(ctx context.Context, entries []vocab.Entry, start int) (Summary, error) {
	var sum Summary

	for _, e := range entries {
		if e.Index < start || !e.Valid() {
			continue
		}

		for _, kind := range Kinds {
			if err := ctx.Err(); err != nil {
				return sum, err
			}

			text := textFor(e, kind)
			if text == "" {
				continue
			}

			ref, err := g.Locator.Resolve(e.Index, kind, e.GermanWord, e.EnglishWord)
			if err != nil {
				return sum, err
			}

			if g.Locator.Exists(ref) {
				sum.Skipped++
				continue
			}

			if err := g.Provider.GenerateAudio(ctx, text, kind.Language(), ref.Path); err != nil {
				sum.Failed++
				g.Logger.Error("audio generation failed",
					"index", e.Index, "kind", kind, "file", ref.Name, "error", err)
				continue
			}

			sum.Created++
			g.Logger.Info("created audio", "file", ref.Name, "provider", g.Provider.Name())
		}
	}

	return sum, nil
}

func textFor(e vocab.Entry, kind Kind) string {
	switch kind {
	case GermanWord:
		return e.GermanWord
	case EnglishWord:
		return e.EnglishWord
	case GermanSentence:
		return e.GermanSentence
	case EnglishSentence:
		return e.EnglishSentence
	}
	return ""
}

// String formats the summary for terminal output
func (s Summary) String() string {
	return fmt.Sprintf("created %d, skipped %d, failed %d", s.Created, s.Skipped, s.Failed)
}
