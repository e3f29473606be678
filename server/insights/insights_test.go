package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/akalem0808/memori/store"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func score(v float64) *float64 { return &v }

func findByType(insights []Insight, insightType string) *Insight {
	for i := range insights {
		if insights[i].Type == insightType {
			return &insights[i]
		}
	}
	return nil
}

func TestTrendSlope(t *testing.T) {
	assert.Zero(t, trendSlope(nil))
	assert.Zero(t, trendSlope([]float64{5}))
	assert.InDelta(t, 1.0, trendSlope([]float64{1, 2, 3, 4, 5}), 1e-9)
	assert.InDelta(t, -2.0, trendSlope([]float64{10, 8, 6, 4}), 1e-9)
	assert.Zero(t, trendSlope([]float64{3, 3, 3}))
}

func TestGenerateTooFewRecords(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	records := []*store.MemoryRecord{
		{UID: "a", Emotion: "joy"},
		{UID: "b", Emotion: "joy"},
	}

	assert.Empty(t, engine.Generate(records, testNow))
}

func TestGenerateDominantEmotion(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	records := make([]*store.MemoryRecord, 0, 10)
	for i := 0; i < 8; i++ {
		records = append(records, &store.MemoryRecord{
			Emotion:   "joy",
			CreatedTs: testNow.Add(-time.Duration(i) * time.Hour).Unix(),
			Text:      "a fine day with plenty of things to remember about it",
		})
	}
	records = append(records,
		&store.MemoryRecord{Emotion: "sadness", CreatedTs: testNow.Add(-9 * time.Hour).Unix()},
		&store.MemoryRecord{Emotion: "anger", CreatedTs: testNow.Add(-10 * time.Hour).Unix()},
	)

	insights := engine.Generate(records, testNow)
	pattern := findByType(insights, "emotion_pattern")
	assert.NotNil(t, pattern)
	assert.Contains(t, pattern.Message, "joy")
}

func TestGenerateImportanceDistribution(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	records := []*store.MemoryRecord{}
	for i := 0; i < 6; i++ {
		records = append(records, &store.MemoryRecord{
			Emotion:         "joy",
			ImportanceScore: score(0.9),
			CreatedTs:       testNow.Add(-time.Duration(i) * time.Hour).Unix(),
		})
	}

	insights := engine.Generate(records, testNow)
	pattern := findByType(insights, "importance_pattern")
	assert.NotNil(t, pattern)
	assert.Contains(t, pattern.Message, "highly important")
}

func TestGenerateTopicFocus(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	records := []*store.MemoryRecord{}
	for i := 0; i < 6; i++ {
		records = append(records, &store.MemoryRecord{
			Emotion:   "joy",
			Topics:    []string{"work"},
			CreatedTs: testNow.Add(-time.Duration(i) * time.Minute).Unix(),
		})
	}

	insights := engine.Generate(records, testNow)
	pattern := findByType(insights, "topic_pattern")
	assert.NotNil(t, pattern)
	assert.Contains(t, pattern.Message, "work")
}

func TestSelectTopCapsCategory(t *testing.T) {
	config := DefaultConfig()
	config.MaxPerCategory = 2
	engine := NewEngine(config)

	insights := engine.selectTop([]Insight{
		{Type: "x", Confidence: 0.7},
		{Type: "x", Confidence: 0.9},
		{Type: "x", Confidence: 0.8},
		{Type: "x", Confidence: 0.3}, // below threshold, dropped
	})

	assert.Len(t, insights, 2)
	assert.Equal(t, 0.9, insights[0].Confidence)
	assert.Equal(t, 0.8, insights[1].Confidence)
}
