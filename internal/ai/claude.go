package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeTranslator implements Translator using Claude API
type ClaudeTranslator struct {
	client  *anthropic.Client
	timeout time.Duration
}

// AIError represents an error from the AI API
type AIError struct {
	Message     string
	StatusCode  int
	RequestID   string
	RawResponse string
}

func (e *AIError) Error() string {
	msg := fmt.Sprintf("AI API error (%d): %s", e.StatusCode, e.Message)
	if e.RequestID != "" {
		msg += fmt.Sprintf("\n  request-id: %s", e.RequestID)
	}
	if e.RawResponse != "" {
		msg += fmt.Sprintf("\n  raw: %s", e.RawResponse)
	}
	return msg
}

// IsAIError checks if an error is an AIError
func IsAIError(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr)
}

// NewClaudeTranslator creates a new Claude API translator
func NewClaudeTranslator(apiKey string, timeout time.Duration) (*ClaudeTranslator, error) {
	if err := validateAPIKey(apiKey); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &ClaudeTranslator{
		client:  &client,
		timeout: timeout,
	}, nil
}

// Name returns the translator name
func (c *ClaudeTranslator) Name() string { return "claude" }

// Translate asks Claude for a German rendering and example sentences
func (c *ClaudeTranslator) Translate(ctx context.Context, english string) (*Translation, error) {
	english = strings.TrimSpace(english)
	if english == "" {
		return nil, ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaudeSonnet4_5_20250929,
		MaxTokens: 500,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(english))),
		},
	})

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &AIError{
				Message:     apiErr.Error(),
				StatusCode:  apiErr.StatusCode,
				RequestID:   apiErr.RequestID,
				RawResponse: apiErr.RawJSON(),
			}
		}
		return nil, &AIError{
			Message:    fmt.Sprintf("failed to call Claude API: %v", err),
			StatusCode: 500,
		}
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}

	tr, err := parseTranslationResponse(b.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse translation response: %w", err)
	}

	tr.EnglishWord = english
	tr.Source = c.Name()
	tr.Available = true
	return tr, nil
}

// buildPrompt constructs the prompt for Claude
func buildPrompt(english string) string {
	return fmt.Sprintf(`You are a German language tutor. Translate the following English word or phrase into German.

For nouns, include the definite article (der, die, das).
Also write one short, simple example sentence in English that uses the word, and its German translation.

Return ONLY a JSON object with exactly these keys:
{"german_word": "...", "english_sentence": "...", "german_sentence": "..."}

English text:
%s`, english)
}

// parseTranslationResponse extracts a Translation from Claude's JSON response,
// handling optional markdown code block wrappers.
func parseTranslationResponse(response string) (*Translation, error) {
	response = strings.TrimSpace(response)

	// Remove markdown code blocks if present
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var tr Translation
	if err := json.Unmarshal([]byte(response), &tr); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	tr.GermanWord = strings.TrimSpace(tr.GermanWord)
	tr.EnglishSentence = strings.TrimSpace(tr.EnglishSentence)
	tr.GermanSentence = strings.TrimSpace(tr.GermanSentence)
	if tr.GermanWord == "" {
		return nil, fmt.Errorf("response has no german_word")
	}

	return &tr, nil
}

// validateAPIKey checks if the API key is valid
func validateAPIKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	return nil
}
