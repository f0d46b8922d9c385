package vocab

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amar030383/languageLearning/internal/parser"
)

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

// TestLoad tests that rows are indexed by file position
func TestLoad(t *testing.T) {
	path := writeSheet(t, "Haus,house,Das Haus.,The house.\nnan,book,,\nTisch,table,,\n")

	entries, err := NewSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries including invalid rows, got %d", len(entries))
	}

	for i, e := range entries {
		if e.Index != i {
			t.Errorf("Entry %d has index %d", i, e.Index)
		}
	}

	if entries[0].GermanSentence != "Das Haus." {
		t.Errorf("Unexpected sentence: %q", entries[0].GermanSentence)
	}
	if entries[1].Valid() {
		t.Error("Row with missing German word should be invalid")
	}
	if !entries[2].Valid() {
		t.Error("Row 2 should be valid")
	}
}

// TestLoadRereadsFile tests that Load reflects file changes between calls
func TestLoadRereadsFile(t *testing.T) {
	path := writeSheet(t, "Haus,house,,\n")
	src := NewSource(path)

	first, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if err := os.WriteFile(path, []byte("Haus,house,,\nBuch,book,,\n"), 0600); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}

	second, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}

	if len(first) != 1 || len(second) != 2 {
		t.Errorf("Expected 1 then 2 entries, got %d then %d", len(first), len(second))
	}
}

// TestLoadMissingFile tests that a missing file is a source error, not an empty list
func TestLoadMissingFile(t *testing.T) {
	entries, err := NewSource("/nonexistent/sheet.csv").Load(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
	if entries != nil {
		t.Error("Entries should be nil on error")
	}
}

// TestLoadUnparsableFile tests that a malformed file is a source error
func TestLoadUnparsableFile(t *testing.T) {
	path := writeSheet(t, "a,b,c,d,e,f\n")

	_, err := NewSource(path).Load(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
}

// TestLoadEmptyFile tests that a sheet with no rows is a source error
func TestLoadEmptyFile(t *testing.T) {
	for _, content := range []string{"", "\n\n"} {
		entries, err := NewSource(writeSheet(t, content)).Load(context.Background())
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Fatalf("Expected ErrSourceUnavailable for %q, got %v", content, err)
		}
		if !errors.Is(err, parser.ErrEmptyFile) {
			t.Errorf("Expected parser.ErrEmptyFile for %q, got %v", content, err)
		}
		if entries != nil {
			t.Error("Entries should be nil on error")
		}
	}
}

// TestLoadCancelled tests that a cancelled context stops the load
func TestLoadCancelled(t *testing.T) {
	path := writeSheet(t, "Haus,house,,\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSource(path).Load(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

// TestEntryValid tests the validity predicate
func TestEntryValid(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		valid bool
	}{
		{"both words", Entry{GermanWord: "Haus", EnglishWord: "house"}, true},
		{"empty german", Entry{GermanWord: "", EnglishWord: "house"}, false},
		{"empty english", Entry{GermanWord: "Haus", EnglishWord: ""}, false},
		{"missing marker", Entry{GermanWord: "Haus", EnglishWord: "nan"}, false},
		{"sentences optional", Entry{GermanWord: "Haus", EnglishWord: "house", GermanSentence: ""}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.entry.Valid(); got != tc.valid {
				t.Errorf("Valid() = %v, expected %v", got, tc.valid)
			}
		})
	}
}

// TestFromRowsNormalizesSentences tests that missing sentences become empty
func TestFromRowsNormalizesSentences(t *testing.T) {
	entries := FromRows([]parser.Row{{"Haus", "house", "nan", "nan"}})

	if entries[0].GermanSentence != "" || entries[0].EnglishSentence != "" {
		t.Errorf("Expected empty sentences, got %q and %q", entries[0].GermanSentence, entries[0].EnglishSentence)
	}
}

// TestValidPreservesOrder tests filtering keeps source order
func TestValidPreservesOrder(t *testing.T) {
	entries := FromRows([]parser.Row{
		{"Haus", "house"},
		{"", "book"},
		{"Tisch", "table"},
	})

	valid := Valid(entries)
	if len(valid) != 2 {
		t.Fatalf("Expected 2 valid entries, got %d", len(valid))
	}
	if valid[0].Index != 0 || valid[1].Index != 2 {
		t.Errorf("Expected indices [0 2], got [%d %d]", valid[0].Index, valid[1].Index)
	}
}
