package v1

import (
	"strings"
	"time"
)

// Heuristics applied to every new entry when no model output is
// available (or on top of it, for importance and tags).

var importantKeywords = []string{
	"important", "urgent", "deadline", "decision", "critical", "meeting",
}

// calculateImportance scores an entry from its length, keyword presence
// and the intensity of the detected emotion. emotionScore is the
// confidence of the dominant emotion, 0 when unknown.
func calculateImportance(text string, emotionScore float64) float64 {
	importance := 0.5

	if len(text) > 100 {
		importance += 0.1
	}

	lower := strings.ToLower(text)
	for _, keyword := range importantKeywords {
		if strings.Contains(lower, keyword) {
			importance += 0.1
			break
		}
	}

	importance += emotionScore * 0.2

	if importance > 1.0 {
		importance = 1.0
	}
	return importance
}

// generateTags derives searchable tags from the entry: its emotion, a
// few topic keywords, and a time-of-day tag from the capture time.
func generateTags(text, emotion string, capturedAt time.Time) []string {
	tags := []string{}
	if emotion != "" {
		tags = append(tags, emotion)
	}

	lower := strings.ToLower(text)
	if containsAny(lower, "meeting", "discussion", "call") {
		tags = append(tags, "meeting")
	}
	if containsAny(lower, "project", "work", "task") {
		tags = append(tags, "work")
	}
	if containsAny(lower, "decision", "choose", "decide") {
		tags = append(tags, "decision")
	}

	switch hour := capturedAt.Hour(); {
	case hour >= 9 && hour <= 12:
		tags = append(tags, "morning")
	case hour >= 13 && hour <= 17:
		tags = append(tags, "afternoon")
	case hour >= 18 && hour <= 21:
		tags = append(tags, "evening")
	}

	return tags
}

func containsAny(text string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
