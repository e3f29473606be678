package v1

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// External JSON is normalized here, at the boundary, so the engine and
// store only ever see clean values.

const (
	maxTextLength  = 50000
	maxTags        = 20
	maxTagLength   = 50
	maxTopics      = 10
	maxTopicLength = 100
)

var validEmotions = map[string]bool{
	"joy": true, "sadness": true, "anger": true, "fear": true,
	"surprise": true, "disgust": true, "neutral": true,
	"positive": true, "negative": true, "happy": true, "sad": true,
}

// normalizeText strips null bytes, trims, and caps the length. The cap
// counts characters, not bytes, so multibyte text is never cut mid-rune.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxTextLength {
		runes := []rune(text)
		text = string(runes[:maxTextLength])
	}
	return text
}

// normalizeEmotion folds the label and maps anything outside the known
// set to neutral. An absent label stays absent.
func normalizeEmotion(emotion string) string {
	emotion = strings.ToLower(strings.TrimSpace(emotion))
	if emotion == "" {
		return ""
	}
	if !validEmotions[emotion] {
		return "neutral"
	}
	return emotion
}

// normalizeTags lowercases, trims, dedupes and caps tags.
func normalizeTags(tags []string) []string {
	return normalizeLabels(tags, maxTags, maxTagLength)
}

// normalizeTopics lowercases, trims, dedupes and caps topics.
func normalizeTopics(topics []string) []string {
	return normalizeLabels(topics, maxTopics, maxTopicLength)
}

func normalizeLabels(labels []string, maxCount, maxLen int) []string {
	if len(labels) > maxCount {
		labels = labels[:maxCount]
	}
	out := []string{}
	seen := map[string]bool{}
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if len(label) > maxLen {
			label = label[:maxLen]
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// normalizeScores keeps only labelled confidences inside [0,1].
func normalizeScores(scores map[string]float64) map[string]float64 {
	out := map[string]float64{}
	for label, score := range scores {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" || score < 0 || score > 1 {
			continue
		}
		out[label] = score
	}
	return out
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// parseTimestamp accepts RFC3339, unix seconds and fractional unix
// seconds. It returns 0 (unknown) for anything unparseable.
func parseTimestamp(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Unix()
	}
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil && seconds > 0 {
		return seconds
	}
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil && seconds > 0 {
		return int64(seconds)
	}
	return 0
}
