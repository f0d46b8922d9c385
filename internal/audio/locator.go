package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// ContentType is the media type served for every audio file.
const ContentType = "audio/mpeg"

const (
	wordTokenLen     = 20
	sentenceTokenLen = 15
)

var (
	// ErrInvalidKind is returned for an audio kind outside the four known kinds.
	ErrInvalidKind = errors.New("invalid audio kind")

	// ErrArtifactNotFound is returned when the audio file is missing or still a zero-byte placeholder.
	ErrArtifactNotFound = errors.New("audio file not found")
)

// Kind identifies which recording of a vocabulary row is requested.
type Kind string

const (
	GermanWord      Kind = "german_word"
	EnglishWord     Kind = "english_word"
	GermanSentence  Kind = "german_sentence"
	EnglishSentence Kind = "english_sentence"
)

// Kinds lists every valid kind in generation order.
var Kinds = []Kind{GermanWord, EnglishWord, GermanSentence, EnglishSentence}

// ParseKind validates a kind name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case GermanWord, EnglishWord, GermanSentence, EnglishSentence:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Language returns the spoken language of the kind ("de" or "en").
func (k Kind) Language() string {
	if k == GermanWord || k == GermanSentence {
		return "de"
	}
	return "en"
}

// IsSentence reports whether the kind is an example sentence recording.
func (k Kind) IsSentence() bool {
	return k == GermanSentence || k == EnglishSentence
}

func (k Kind) role() string {
	switch k {
	case GermanWord:
		return "german"
	case EnglishWord:
		return "english"
	case GermanSentence:
		return "sentence_de"
	default:
		return "sentence_en"
	}
}

// Sanitize replaces every rune that is not a letter or digit with an
// underscore. Runs of underscores are kept as-is.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func fileName(index int, role, token string, n int) string {
	return fmt.Sprintf("%03d_%s_%s.mp3", index, role, truncate(Sanitize(token), n))
}

// FileName derives the audio file name for a vocabulary row. The name
// must match the files produced by the generator byte for byte.
func FileName(index int, kind Kind, germanWord, englishWord string) (string, error) {
	switch kind {
	case GermanWord:
		return fileName(index, kind.role(), germanWord, wordTokenLen), nil
	case EnglishWord:
		return fileName(index, kind.role(), englishWord, wordTokenLen), nil
	case GermanSentence, EnglishSentence:
		return fileName(index, kind.role(), germanWord, sentenceTokenLen), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, string(kind))
	}
}

// legacyFileName returns the name older generator runs used, if it differs
// from the canonical one. English sentence files were once named after
// the English word.
func legacyFileName(index int, kind Kind, englishWord string) string {
	if kind != EnglishSentence {
		return ""
	}
	return fileName(index, kind.role(), englishWord, sentenceTokenLen)
}

// Ref points to the expected location of an audio file.
type Ref struct {
	Index       int
	Kind        Kind
	Name        string
	Path        string
	ContentType string

	legacyPath string
}

// Artifact is an opened, non-empty audio file. Callers must Close it.
type Artifact struct {
	io.ReadSeekCloser
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Locator resolves audio files inside a directory.
type Locator struct {
	Dir string
}

// NewLocator creates a Locator for the given audio directory
func NewLocator(dir string) *Locator {
	return &Locator{Dir: dir}
}

// Resolve computes where the audio file for a row should live. It does
// not touch the filesystem.
func (l *Locator) Resolve(index int, kind Kind, germanWord, englishWord string) (Ref, error) {
	name, err := FileName(index, kind, germanWord, englishWord)
	if err != nil {
		return Ref{}, err
	}

	ref := Ref{
		Index:       index,
		Kind:        kind,
		Name:        name,
		Path:        filepath.Join(l.Dir, name),
		ContentType: ContentType,
	}
	if legacy := legacyFileName(index, kind, englishWord); legacy != "" && legacy != name {
		ref.legacyPath = filepath.Join(l.Dir, legacy)
	}
	return ref, nil
}

// Exists reports whether the referenced file exists with content.
func (l *Locator) Exists(ref Ref) bool {
	_, _, err := l.find(ref)
	return err == nil
}

// Open opens the referenced file. A missing file and a zero-byte
// placeholder both yield ErrArtifactNotFound.
func (l *Locator) Open(ref Ref) (*Artifact, error) {
	path, info, err := l.find(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, ref.Name)
		}
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	return &Artifact{
		ReadSeekCloser: f,
		Name:           filepath.Base(path),
		Size:           info.Size(),
		ModTime:        info.ModTime(),
		ContentType:    ref.ContentType,
	}, nil
}

func (l *Locator) find(ref Ref) (string, os.FileInfo, error) {
	for _, path := range []string{ref.Path, ref.legacyPath} {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", nil, fmt.Errorf("failed to stat audio file: %w", err)
		}
		if info.Mode().IsRegular() && info.Size() > 0 {
			return path, info, nil
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, ref.Name)
}
