package v1

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmotion(t *testing.T) {
	assert.Equal(t, "joy", normalizeEmotion(" Joy "))
	assert.Equal(t, "neutral", normalizeEmotion("ecstatic"))
	assert.Equal(t, "", normalizeEmotion(""))
	assert.Equal(t, "happy", normalizeEmotion("HAPPY"))
}

func TestNormalizeTags(t *testing.T) {
	tags := normalizeTags([]string{" Work ", "work", "", "Family"})
	assert.Equal(t, []string{"work", "family"}, tags)
}

func TestNormalizeTagsCap(t *testing.T) {
	many := make([]string, 30)
	for i := range many {
		many[i] = string(rune('a' + i))
	}
	assert.Len(t, normalizeTags(many), maxTags)
}

func TestNormalizeTopicsCap(t *testing.T) {
	many := make([]string, 15)
	for i := range many {
		many[i] = string(rune('a' + i))
	}
	assert.Len(t, normalizeTopics(many), maxTopics)
}

func TestNormalizeScores(t *testing.T) {
	scores := normalizeScores(map[string]float64{
		"Joy":     0.9,
		"sadness": -0.1, // out of range, dropped
		"anger":   1.5,  // out of range, dropped
		"":        0.5,  // unlabelled, dropped
	})
	assert.Equal(t, map[string]float64{"joy": 0.9}, scores)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hello", normalizeText("  hello\x00  "))
	assert.Equal(t, "", normalizeText("   "))
}

func TestNormalizeTextCapsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", maxTextLength+10)
	got := normalizeText(long)
	assert.Equal(t, maxTextLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", maxTextLength), got)
}

func TestParseTimestamp(t *testing.T) {
	assert.Equal(t, int64(0), parseTimestamp(""))
	assert.Equal(t, int64(0), parseTimestamp("not a time"))
	assert.Equal(t, int64(1700000000), parseTimestamp("1700000000"))
	assert.Equal(t, int64(1700000000), parseTimestamp("1700000000.25"))

	want := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, want, parseTimestamp("2025-06-15T12:00:00Z"))
}

func TestCalculateImportance(t *testing.T) {
	// Base score for an unremarkable short entry.
	assert.InDelta(t, 0.5, calculateImportance("a walk", 0), 1e-9)

	// Keyword bonus.
	assert.InDelta(t, 0.6, calculateImportance("urgent note", 0), 1e-9)

	// Length + keyword + full emotion intensity caps below 1.
	long := "important " + string(make([]byte, 120))
	assert.InDelta(t, 0.9, calculateImportance(long, 1.0), 1e-9)
}

func TestGenerateTags(t *testing.T) {
	morning := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tags := generateTags("a project meeting to decide the roadmap", "joy", morning)

	assert.Contains(t, tags, "joy")
	assert.Contains(t, tags, "meeting")
	assert.Contains(t, tags, "work")
	assert.Contains(t, tags, "decision")
	assert.Contains(t, tags, "morning")
}
