package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/sony/gobreaker"
)

var (
	// ErrEmptyText is returned when there is nothing to translate
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrNoTranslation is returned by the dictionary for unknown words
	ErrNoTranslation = errors.New("no translation available")
)

// SourceUnavailable marks a translation that no translator could produce.
const SourceUnavailable = "unavailable"

// Translation is a best-effort German rendering with example sentences
type Translation struct {
	EnglishWord     string `json:"english_word"`
	GermanWord      string `json:"german_word"`
	EnglishSentence string `json:"english_sentence"`
	GermanSentence  string `json:"german_sentence"`
	Source          string `json:"source"`
	Available       bool   `json:"available"`
}

// Translator defines the interface for English to German translation
type Translator interface {
	Translate(ctx context.Context, english string) (*Translation, error)
	Name() string
}

// dictionary holds the fixed word list used when no remote translator answers.
var dictionary = map[string]string{
	"house":   "Haus",
	"book":    "Buch",
	"table":   "Tisch",
	"chair":   "Stuhl",
	"water":   "Wasser",
	"food":    "Essen",
	"money":   "Geld",
	"time":    "Zeit",
	"day":     "Tag",
	"night":   "Nacht",
	"city":    "Stadt",
	"work":    "Arbeit",
	"person":  "Mensch",
	"man":     "Mann",
	"woman":   "Frau",
	"child":   "Kind",
	"parents": "Eltern",
	"brother": "Bruder",
	"sister":  "Schwester",
	"family":  "Familie",
}

// Dictionary translates from a fixed word list, word by word for phrases.
type Dictionary struct{}

// Name returns the translator name
func (Dictionary) Name() string { return "dictionary" }

// Translate looks every word up in the dictionary. Any unknown word fails
// the whole phrase with ErrNoTranslation.
func (d Dictionary) Translate(ctx context.Context, english string) (*Translation, error) {
	text := normalize(english)
	if text == "" {
		return nil, ErrEmptyText
	}

	words := strings.Fields(text)
	german := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimFunc(w, unicode.IsPunct)
		if w == "" {
			continue
		}
		g, ok := dictionary[w]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoTranslation, w)
		}
		german = append(german, g)
	}
	if len(german) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoTranslation, text)
	}

	return withExamples(text, strings.Join(german, " "), d.Name(), true), nil
}

// Chain tries each translator in order. The first one is guarded by a
// circuit breaker so a failing remote service is skipped quickly.
type Chain struct {
	primary   Translator
	fallbacks []Translator
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewChain creates a translator chain. primary may be nil, in which case
// only the fallbacks are consulted.
func NewChain(primary Translator, logger *slog.Logger, fallbacks ...Translator) *Chain {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Chain{primary: primary, fallbacks: fallbacks, logger: logger}
	if primary != nil {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        primary.Name(),
			MaxRequests: 1,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("translator circuit breaker state changed", "translator", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return c
}

// NewDefaultChain uses Claude when apiKey is set and the dictionary after
// it. Without a key the chain is dictionary-only.
func NewDefaultChain(apiKey string, timeout time.Duration, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(apiKey) == "" {
		logger.Info("ANTHROPIC_API_KEY not set, using dictionary translations only")
		return NewChain(nil, logger, Dictionary{})
	}

	claude, err := NewClaudeTranslator(apiKey, timeout)
	if err != nil {
		logger.Warn("claude translator disabled", "error", err)
		return NewChain(nil, logger, Dictionary{})
	}
	return NewChain(claude, logger, Dictionary{})
}

// Name returns the translator name
func (c *Chain) Name() string { return "chain" }

// Translate never fails for non-empty input: when every translator
// fails, it returns a marked fallback with Available set to false.
func (c *Chain) Translate(ctx context.Context, english string) (*Translation, error) {
	text := normalize(english)
	if text == "" {
		return nil, ErrEmptyText
	}

	if c.primary != nil {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.primary.Translate(ctx, text)
		})
		if err == nil {
			return result.(*Translation), nil
		}
		c.logger.Warn("primary translator failed", "translator", c.primary.Name(), "error", err)
	}

	for _, t := range c.fallbacks {
		tr, err := t.Translate(ctx, text)
		if err == nil {
			return tr, nil
		}
		c.logger.Debug("fallback translator failed", "translator", t.Name(), "error", err)
	}

	return Unavailable(text), nil
}

// Unavailable builds the marked response used when no translation exists.
func Unavailable(english string) *Translation {
	text := normalize(english)
	return withExamples(text, titleCase(text)+" (translation needed)", SourceUnavailable, false)
}

func withExamples(english, german, source string, available bool) *Translation {
	return &Translation{
		EnglishWord:     english,
		GermanWord:      german,
		EnglishSentence: fmt.Sprintf("I see a %s.", english),
		GermanSentence:  fmt.Sprintf("Ich sehe ein %s.", german),
		Source:          source,
		Available:       available,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
