package engine

import (
	"sort"
	"time"

	"github.com/akalem0808/memori/store"
)

// DefaultRecentEmotionBound caps the recentEmotions sequence in a Summary.
const DefaultRecentEmotionBound = 5

// Summary holds display-ready statistics derived from a record collection.
// It is recomputed on demand and never persisted.
type Summary struct {
	TotalMemories  int        `json:"totalMemories"`
	TopEmotion     string     `json:"topEmotion"`
	TopTopic       string     `json:"topTopic"`
	AvgImportance  float64    `json:"avgImportance"`
	LastUpload     *time.Time `json:"lastUploadTimestamp,omitempty"`
	RecentEmotions []string   `json:"recentEmotions"`
}

// labelCount tracks occurrences of a label together with the index of the
// record that introduced it, so ties resolve to whichever label appeared
// first in collection order.
type labelCount struct {
	count     int
	firstSeen int
}

// Aggregate computes a Summary over records. bound caps RecentEmotions;
// values <= 0 fall back to DefaultRecentEmotionBound. The input is read
// only, never reordered.
func Aggregate(records []*store.MemoryRecord, bound int) Summary {
	if bound <= 0 {
		bound = DefaultRecentEmotionBound
	}

	summary := Summary{
		TotalMemories:  len(records),
		TopEmotion:     "N/A",
		TopTopic:       "N/A",
		RecentEmotions: []string{},
	}

	emotionCounts := map[string]*labelCount{}
	topicCounts := map[string]*labelCount{}
	seen := 0

	var importanceSum float64
	var importanceN int
	var lastUpload int64

	type timedEmotion struct {
		ts      int64
		index   int
		emotion string
	}
	timed := []timedEmotion{}

	for i, record := range records {
		if record.Emotion != "" {
			countLabel(emotionCounts, record.Emotion, &seen)
		}
		for _, topic := range record.Topics {
			countLabel(topicCounts, topic, &seen)
		}
		if record.ImportanceScore != nil {
			importanceSum += *record.ImportanceScore
			importanceN++
		}
		if record.CreatedTs > lastUpload {
			lastUpload = record.CreatedTs
		}
		if record.CreatedTs != 0 && record.Emotion != "" {
			timed = append(timed, timedEmotion{ts: record.CreatedTs, index: i, emotion: record.Emotion})
		}
	}

	if label, ok := topLabel(emotionCounts); ok {
		summary.TopEmotion = label
	}
	if label, ok := topLabel(topicCounts); ok {
		summary.TopTopic = label
	}
	if importanceN > 0 {
		summary.AvgImportance = importanceSum / float64(importanceN)
	}
	if lastUpload > 0 {
		t := time.Unix(lastUpload, 0).UTC()
		summary.LastUpload = &t
	}

	// Most recent first; equal timestamps keep collection order.
	sort.SliceStable(timed, func(a, b int) bool {
		return timed[a].ts > timed[b].ts
	})
	for _, te := range timed {
		if len(summary.RecentEmotions) == bound {
			break
		}
		summary.RecentEmotions = append(summary.RecentEmotions, te.emotion)
	}

	return summary
}

func countLabel(counts map[string]*labelCount, label string, seen *int) {
	if c, ok := counts[label]; ok {
		c.count++
		return
	}
	counts[label] = &labelCount{count: 1, firstSeen: *seen}
	*seen++
}

func topLabel(counts map[string]*labelCount) (string, bool) {
	best := ""
	var bestCount *labelCount
	for label, c := range counts {
		if bestCount == nil ||
			c.count > bestCount.count ||
			(c.count == bestCount.count && c.firstSeen < bestCount.firstSeen) {
			best, bestCount = label, c
		}
	}
	return best, bestCount != nil
}
