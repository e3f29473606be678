package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// EmotionResult is the output of emotion classification.
type EmotionResult struct {
	Emotion string             `json:"emotion"`
	Scores  map[string]float64 `json:"scores"`
}

// EmotionClassifier labels journal text with an emotion.
type EmotionClassifier interface {
	Classify(ctx context.Context, text string) (*EmotionResult, error)
}

type emotionClassifier struct {
	client *openai.Client
	model  string
}

const emotionSystemPrompt = `You are an emotion classifier for personal journal entries.
Given the entry text, respond with a single JSON object:
{"emotion": "<label>", "scores": {"<label>": <confidence 0..1>, ...}}
Valid labels: joy, sadness, anger, fear, surprise, disgust, neutral.
Respond with the JSON object only.`

// NewEmotionClassifier creates an EmotionClassifier backed by a chat model.
func NewEmotionClassifier(cfg *EmotionConfig) (EmotionClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("emotion api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &emotionClassifier{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (c *emotionClassifier) Classify(ctx context.Context, text string) (*EmotionResult, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: emotionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty chat completion response")
	}

	result, err := parseEmotionResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parseEmotionResponse tolerates a markdown code fence around the JSON,
// which chat models add despite instructions.
func parseEmotionResponse(content string) (*EmotionResult, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result EmotionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, errors.Wrap(err, "failed to parse emotion response")
	}
	if result.Emotion == "" {
		result.Emotion = "neutral"
	}
	if result.Scores == nil {
		result.Scores = map[string]float64{}
	}
	return &result, nil
}
