package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmotionResponse(t *testing.T) {
	result, err := parseEmotionResponse(`{"emotion": "joy", "scores": {"joy": 0.9, "neutral": 0.1}}`)
	require.NoError(t, err)
	assert.Equal(t, "joy", result.Emotion)
	assert.InDelta(t, 0.9, result.Scores["joy"], 1e-9)
}

func TestParseEmotionResponseCodeFence(t *testing.T) {
	result, err := parseEmotionResponse("```json\n{\"emotion\": \"sadness\", \"scores\": {}}\n```")
	require.NoError(t, err)
	assert.Equal(t, "sadness", result.Emotion)
}

func TestParseEmotionResponseDefaults(t *testing.T) {
	result, err := parseEmotionResponse(`{}`)
	require.NoError(t, err)
	assert.Equal(t, "neutral", result.Emotion)
	assert.NotNil(t, result.Scores)
}

func TestParseEmotionResponseInvalid(t *testing.T) {
	_, err := parseEmotionResponse("not json at all")
	assert.Error(t, err)
}
