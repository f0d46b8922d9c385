package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio synthesises text spoken in lang ("de" or "en") and writes it to outputFile
	GenerateAudio(ctx context.Context, text, lang, outputFile string) error

	// Name returns the provider name
	Name() string
}

// ProviderConfig holds the OpenAI TTS settings
type ProviderConfig struct {
	APIKey string
	Model  string  // "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
	Voice  string  // "alloy", "nova", "onyx", ...
	Speed  float64 // 0.25 to 4.0
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Model: string(openai.TTSModel1),
		Voice: string(openai.VoiceAlloy),
		Speed: 1.0,
	}
}

// speechClient is the subset of the OpenAI client used for synthesis.
type speechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAIProvider implements Provider using OpenAI text-to-speech
type OpenAIProvider struct {
	client speechClient
	config ProviderConfig
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config ProviderConfig) (*OpenAIProvider, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	defaults := DefaultProviderConfig()
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.Voice == "" {
		config.Voice = defaults.Voice
	}
	if config.Speed == 0 {
		config.Speed = defaults.Speed
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.APIKey),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai:" + p.config.Model
}

// GenerateAudio generates an mp3 file. The file is written under a
// temporary name and renamed into place so a failed call never leaves a
// truncated file behind.
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text, lang, outputFile string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(p.config.Voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          p.config.Speed,
	}
	if p.config.Model == "gpt-4o-mini-tts" {
		req.Instructions = instructionFor(lang)
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	return writeAtomic(outputFile, response)
}

func instructionFor(lang string) string {
	if lang == "de" {
		return "Speak standard German clearly and slowly for language learners."
	}
	return "Speak clear American English at a moderate pace."
}

func writeAtomic(outputFile string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputFile), ".tmp-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), outputFile); err != nil {
		return fmt.Errorf("failed to move audio file into place: %w", err)
	}
	return nil
}
