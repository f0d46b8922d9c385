package db

import "time"

// Snapshot is the pair of words captured when a row is excluded. It is
// a copy, not a reference: later edits to the vocabulary file do not
// change it.
type Snapshot struct {
	GermanWord  string `json:"german_word"`
	EnglishWord string `json:"english_word"`
}

// Exclusion marks a vocabulary row as learned
type Exclusion struct {
	WordIndex int `json:"word_index"`
	Snapshot
	ExcludedAt time.Time `json:"excluded_at"`
}
