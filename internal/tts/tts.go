package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"podforge/internal/core"
)

// Provider represents different TTS service providers
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderElevenLabs Provider = "elevenlabs"
	ProviderMock       Provider = "mock"
)

// Config holds TTS client configuration
type Config struct {
	Provider   Provider
	APIKey     string
	Model      string  // Provider model id, e.g. "tts-1"
	Voice      string  // Default voice when the request carries none
	Speed      float64 // 0.5 - 2.0
	HTTPClient *http.Client
}

// SpeechProvider is the text-to-speech capability consumed by the audio
// synthesis stage. Implementations return raw audio bytes; persistence is
// the caller's concern.
type SpeechProvider interface {
	Synthesize(ctx context.Context, text string, settings core.VoiceSettings) ([]byte, error)
}

// Client handles text-to-speech requests against the configured provider.
type Client struct {
	config *Config
}

// NewClient creates a new TTS client.
func NewClient(config *Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			Timeout: 120 * time.Second,
		}
	}
	if config.Speed == 0 {
		config.Speed = 1.0
	}
	if config.Model == "" {
		config.Model = "tts-1"
	}
	if config.Voice == "" {
		config.Voice = "alloy"
	}

	return &Client{config: config}
}

// openAIRequest represents an OpenAI speech request
type openAIRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}

// elevenLabsRequest represents an ElevenLabs TTS request
type elevenLabsRequest struct {
	Text          string                `json:"text"`
	ModelID       string                `json:"model_id"`
	VoiceSettings elevenLabsVoiceParams `json:"voice_settings"`
}

type elevenLabsVoiceParams struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to audio bytes using the configured provider.
func (c *Client) Synthesize(ctx context.Context, text string, settings core.VoiceSettings) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required for synthesis")
	}
	if err := validateSpeed(effectiveSpeed(settings.Speed, c.config.Speed)); err != nil {
		return nil, err
	}

	switch c.config.Provider {
	case ProviderOpenAI:
		return c.synthesizeOpenAI(ctx, text, settings)
	case ProviderElevenLabs:
		return c.synthesizeElevenLabs(ctx, text, settings)
	case ProviderMock:
		return c.synthesizeMock(text)
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s", c.config.Provider)
	}
}

// synthesizeOpenAI generates audio using the OpenAI speech API
func (c *Client) synthesizeOpenAI(ctx context.Context, text string, settings core.VoiceSettings) ([]byte, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	voice := settings.Voice
	if voice == "" {
		voice = c.config.Voice
	}
	model := settings.Model
	if model == "" {
		model = c.config.Model
	}

	requestData := openAIRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: "mp3",
		Speed:          effectiveSpeed(settings.Speed, c.config.Speed),
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/audio/speech", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OpenAI API error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return audio, nil
}

// synthesizeElevenLabs generates audio using the ElevenLabs API
func (c *Client) synthesizeElevenLabs(ctx context.Context, text string, settings core.VoiceSettings) ([]byte, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("ElevenLabs API key is required")
	}

	voiceID := settings.Voice
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM" // Default Rachel voice
	}

	url := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s", voiceID)

	requestData := elevenLabsRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: elevenLabsVoiceParams{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.config.APIKey)

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs API error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return audio, nil
}

// synthesizeMock returns a fake audio payload for testing
func (c *Client) synthesizeMock(text string) ([]byte, error) {
	mockContent := fmt.Sprintf("MOCK-AUDIO len=%d generated=%s", len(text), time.Now().UTC().Format(time.RFC3339))
	return []byte(mockContent), nil
}

// CleanTextForSpeech strips script markers and markdown so the synthesized
// audio does not read formatting aloud. [pause] markers become sentence
// breaks; other markers are dropped.
func CleanTextForSpeech(text string) string {
	text = strings.ReplaceAll(text, "[pause]", "... ")
	text = strings.ReplaceAll(text, "[emphasis]", "")
	text = strings.ReplaceAll(text, "[transition]", "")

	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "_", "")
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "#", "")

	// Replace common symbols with words
	text = strings.ReplaceAll(text, "&", "and")
	text = strings.ReplaceAll(text, "%", "percent")
	text = strings.ReplaceAll(text, "$", "dollars")

	return strings.TrimSpace(text)
}

// EstimateDurationSeconds estimates audio duration from word count at a
// speaking rate of 150 words per minute. This is an estimate from the text,
// not a measurement of the synthesized stream.
func EstimateDurationSeconds(text string) int {
	words := len(strings.Fields(text))
	return int(math.Round(float64(words) / 150.0 * 60.0))
}

// validateSpeed enforces the provider-supported speed range.
func validateSpeed(speed float64) error {
	if speed < 0.5 || speed > 2.0 {
		return fmt.Errorf("speed must be between 0.5 and 2.0, got %v", speed)
	}
	return nil
}

func effectiveSpeed(requested, fallback float64) float64 {
	if requested == 0 {
		return fallback
	}
	return requested
}

// AvailableProviders returns the supported TTS providers.
func AvailableProviders() []string {
	return []string{
		string(ProviderOpenAI),
		string(ProviderElevenLabs),
		string(ProviderMock),
	}
}
