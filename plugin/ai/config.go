// Package ai wraps the speech and language model providers behind small
// interfaces: transcription, emotion classification and text embedding.
// Providers are OpenAI-compatible; anything speaking that API works by
// pointing BaseURL at it.
package ai

import (
	"github.com/akalem0808/memori/internal/profile"
)

// Config represents the model provider configuration.
type Config struct {
	Enabled bool

	Transcription TranscriptionConfig
	Emotion       EmotionConfig
	Embedding     EmbeddingConfig
}

// TranscriptionConfig configures the speech-to-text model.
type TranscriptionConfig struct {
	Provider string // openai or any OpenAI-compatible endpoint
	Model    string // whisper-1
	APIKey   string
	BaseURL  string
}

// EmotionConfig configures the emotion classification model.
type EmotionConfig struct {
	Provider string
	Model    string // gpt-4o-mini
	APIKey   string
	BaseURL  string
}

// EmbeddingConfig configures the vector embedding model.
type EmbeddingConfig struct {
	Provider   string
	Model      string // text-embedding-3-small
	Dimensions int    // 1536
	APIKey     string
	BaseURL    string
}

// NewConfigFromProfile builds the model configuration from the profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsAIEnabled(),
	}
	if !cfg.Enabled {
		return cfg
	}

	cfg.Transcription = TranscriptionConfig{
		Provider: p.AIProvider,
		Model:    p.AITranscribeModel,
		APIKey:   p.AIAPIKey,
		BaseURL:  p.AIBaseURL,
	}
	cfg.Emotion = EmotionConfig{
		Provider: p.AIProvider,
		Model:    p.AIEmotionModel,
		APIKey:   p.AIAPIKey,
		BaseURL:  p.AIBaseURL,
	}
	cfg.Embedding = EmbeddingConfig{
		Provider:   p.AIProvider,
		Model:      p.AIEmbeddingModel,
		Dimensions: 1536,
		APIKey:     p.AIAPIKey,
		BaseURL:    p.AIBaseURL,
	}
	return cfg
}
