// Package vocab loads the vocabulary sheet and assigns each row its
// stable positional index. The index is shared with the audio file
// naming convention and the exclusion store, so it must only ever be the
// row's ordinal position in the file.
package vocab

import (
	"context"
	"errors"
	"fmt"

	"github.com/amar030383/languageLearning/internal/parser"
)

// ErrSourceUnavailable is returned when the vocabulary file cannot be read or parsed.
var ErrSourceUnavailable = errors.New("vocabulary source unavailable")

// Entry is one row of the vocabulary sheet.
type Entry struct {
	Index           int    `json:"index"`
	GermanWord      string `json:"german_word"`
	EnglishWord     string `json:"english_word"`
	GermanSentence  string `json:"german_sentence"`
	EnglishSentence string `json:"english_sentence"`
}

// Valid reports whether both words are present. Invalid rows keep their
// index but never appear in listings, lookups or audio resolution.
func (e Entry) Valid() bool {
	return !parser.IsMissing(e.GermanWord) && !parser.IsMissing(e.EnglishWord)
}

// Source reads vocabulary entries from a CSV file.
// Every call to Load re-reads the file.
type Source struct {
	Path string
}

// NewSource creates a Source for the given file path
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// Load returns every row in file order, including invalid ones.
func (s *Source) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := parser.ParseFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, s.Path, err)
	}

	return FromRows(rows), nil
}

// FromRows converts parsed rows into entries, indexing them by position.
func FromRows(rows []parser.Row) []Entry {
	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{
			Index:           i,
			GermanWord:      row[0],
			EnglishWord:     row[1],
			GermanSentence:  sentence(row[2]),
			EnglishSentence: sentence(row[3]),
		}
	}
	return entries
}

// Valid filters entries down to the valid ones, preserving order.
func Valid(entries []Entry) []Entry {
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Valid() {
			valid = append(valid, e)
		}
	}
	return valid
}

func sentence(field string) string {
	if parser.IsMissing(field) {
		return ""
	}
	return field
}
