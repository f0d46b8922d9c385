package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amar030383/languageLearning/internal/ai"
	"github.com/amar030383/languageLearning/internal/audio"
	"github.com/amar030383/languageLearning/internal/db"
	"github.com/amar030383/languageLearning/internal/vocab"
)

// ErrNotFound is returned for an index outside the sheet, an invalid row,
// or a restore of a word that is not excluded.
var ErrNotFound = errors.New("not found")

// VocabularySource loads the vocabulary sheet
type VocabularySource interface {
	Load(ctx context.Context) ([]vocab.Entry, error)
}

// ExclusionStore persists the learner's excluded words
type ExclusionStore interface {
	Exclude(ctx context.Context, index int, snap db.Snapshot) (*db.Exclusion, error)
	Restore(ctx context.Context, index int) error
	ListExclusions(ctx context.Context) ([]*db.Exclusion, error)
	ExcludedIndices(ctx context.Context) (map[int]struct{}, error)
}

// Processor composes the vocabulary sheet, the exclusion store and the
// audio directory into the study view. It holds no state between calls:
// every operation reloads the sheet and reads the store afresh.
type Processor struct {
	Source     VocabularySource
	Exclusions ExclusionStore
	Audio      *audio.Locator
	Translator ai.Translator
	Logger     *slog.Logger
}

// Stats summarises the sheet and the exclusion list
type Stats struct {
	TotalRows int `json:"total_rows"`
	ValidRows int `json:"valid_rows"`
	Excluded  int `json:"excluded"`
	Effective int `json:"effective"`
	Dangling  int `json:"dangling_exclusions"`
}

// NewProcessor creates a new Processor instance
func NewProcessor(source VocabularySource, exclusions ExclusionStore, locator *audio.Locator, translator ai.Translator, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if translator == nil {
		translator = ai.NewChain(nil, logger, ai.Dictionary{})
	}
	return &Processor{
		Source:     source,
		Exclusions: exclusions,
		Audio:      locator,
		Translator: translator,
		Logger:     logger,
	}
}

// GetVocabularyList returns the valid, non-excluded entries in sheet order
func (p *Processor) GetVocabularyList(ctx context.Context) ([]vocab.Entry, error) {
	entries, err := p.Source.Load(ctx)
	if err != nil {
		return nil, err
	}

	excluded, err := p.Exclusions.ExcludedIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load excluded words: %w", err)
	}

	list := make([]vocab.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		if _, ok := excluded[e.Index]; ok {
			continue
		}
		list = append(list, e)
	}

	return list, nil
}

// GetVocabulary returns the entry at index. Exclusions are ignored so an
// excluded word can still be looked up directly.
func (p *Processor) GetVocabulary(ctx context.Context, index int) (vocab.Entry, error) {
	entries, err := p.Source.Load(ctx)
	if err != nil {
		return vocab.Entry{}, err
	}
	return lookup(entries, index)
}

// GetAudio opens the audio file for the entry at index. The kind is
// checked before the index, so a bad kind is reported even for an
// unknown index.
func (p *Processor) GetAudio(ctx context.Context, index int, kindName string) (*audio.Artifact, error) {
	kind, err := audio.ParseKind(kindName)
	if err != nil {
		return nil, err
	}

	entry, err := p.GetVocabulary(ctx, index)
	if err != nil {
		return nil, err
	}

	ref, err := p.Audio.Resolve(entry.Index, kind, entry.GermanWord, entry.EnglishWord)
	if err != nil {
		return nil, err
	}

	return p.Audio.Open(ref)
}

// ExcludeWord marks the entry at index as learned, snapshotting its words
func (p *Processor) ExcludeWord(ctx context.Context, index int) (*db.Exclusion, error) {
	entry, err := p.GetVocabulary(ctx, index)
	if err != nil {
		return nil, err
	}

	ex, err := p.Exclusions.Exclude(ctx, entry.Index, db.Snapshot{
		GermanWord:  entry.GermanWord,
		EnglishWord: entry.EnglishWord,
	})
	if err != nil {
		return nil, err
	}

	p.Logger.Info("word excluded", "index", index, "german_word", entry.GermanWord)
	return ex, nil
}

// RestoreWord removes the exclusion for index
func (p *Processor) RestoreWord(ctx context.Context, index int) error {
	if err := p.Exclusions.Restore(ctx, index); err != nil {
		if errors.Is(err, db.ErrExclusionNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return err
	}

	p.Logger.Info("word restored", "index", index)
	return nil
}

// GetExcludedList returns all exclusions, most recent first
func (p *Processor) GetExcludedList(ctx context.Context) ([]*db.Exclusion, error) {
	return p.Exclusions.ListExclusions(ctx)
}

// GetStats counts rows and exclusions. Exclusions whose index no longer
// points at a valid row are reported as dangling.
func (p *Processor) GetStats(ctx context.Context) (*Stats, error) {
	entries, err := p.Source.Load(ctx)
	if err != nil {
		return nil, err
	}

	excluded, err := p.Exclusions.ExcludedIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load excluded words: %w", err)
	}

	stats := &Stats{TotalRows: len(entries), Excluded: len(excluded)}
	matched := 0
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		stats.ValidRows++
		if _, ok := excluded[e.Index]; ok {
			matched++
		}
	}
	stats.Effective = stats.ValidRows - matched
	stats.Dangling = stats.Excluded - matched

	return stats, nil
}

// Translate forwards to the translator and never fails. Blank text and
// translator failures both degrade to a marked placeholder.
func (p *Processor) Translate(ctx context.Context, english string) (*ai.Translation, error) {
	if strings.TrimSpace(english) == "" {
		return ai.Unavailable(english), nil
	}

	tr, err := p.Translator.Translate(ctx, english)
	if err != nil {
		p.Logger.Warn("translation failed", "error", err)
		return ai.Unavailable(english), nil
	}
	return tr, nil
}

func lookup(entries []vocab.Entry, index int) (vocab.Entry, error) {
	if index < 0 || index >= len(entries) {
		return vocab.Entry{}, fmt.Errorf("%w: vocabulary entry %d", ErrNotFound, index)
	}

	entry := entries[index]
	if !entry.Valid() {
		return vocab.Entry{}, fmt.Errorf("%w: vocabulary entry %d has no word pair", ErrNotFound, index)
	}

	return entry, nil
}
