package ai

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	// Transcribe reads the audio stream and returns the transcript.
	// filename carries the original extension so the provider can pick
	// a decoder.
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

type transcriber struct {
	client *openai.Client
	model  string
}

// NewTranscriber creates a Transcriber backed by an OpenAI-compatible
// speech endpoint.
func NewTranscriber(cfg *TranscriptionConfig) (Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("transcription api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	return &transcriber{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (t *transcriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   audio,
		FilePath: filename,
	})
	if err != nil {
		return "", errors.Wrap(err, "create transcription failed")
	}
	return strings.TrimSpace(resp.Text), nil
}
