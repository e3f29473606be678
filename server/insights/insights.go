// Package insights derives qualitative observations from a memory
// collection: activity level and trend, emotion patterns, importance
// distribution, topic focus, temporal peaks and content shape. Like the
// filtering engine it is pure; "now" is injected by the caller.
package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/akalem0808/memori/store"
)

// Config holds the detection thresholds. Defaults follow long-observed
// journaling behavior; callers rarely need to change them.
type Config struct {
	HighActivityPerDay  float64 // memories per day
	LowActivityPerDay   float64
	HighImportance      float64
	MediumImportance    float64
	TrendDays           int
	ConfidenceThreshold float64
	MaxPerCategory      int
	MinSampleSize       int
}

func DefaultConfig() Config {
	return Config{
		HighActivityPerDay:  10,
		LowActivityPerDay:   2,
		HighImportance:      0.8,
		MediumImportance:    0.5,
		TrendDays:           7,
		ConfidenceThreshold: 0.6,
		MaxPerCategory:      5,
		MinSampleSize:       5,
	}
}

// Insight is one observation with a confidence score in [0,1].
type Insight struct {
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	Confidence float64        `json:"confidence"`
	Data       map[string]any `json:"data,omitempty"`
}

type Engine struct {
	config Config
}

func NewEngine(config Config) *Engine {
	if config.MaxPerCategory <= 0 {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// Generate produces the insight list for records. Collections smaller
// than the minimum sample size yield no insights rather than noise.
func (e *Engine) Generate(records []*store.MemoryRecord, now time.Time) []Insight {
	if len(records) < e.config.MinSampleSize {
		return []Insight{}
	}

	insights := []Insight{}
	insights = append(insights, e.activityPatterns(records)...)
	insights = append(insights, e.emotionTrends(records, now)...)
	insights = append(insights, e.importanceDistribution(records)...)
	insights = append(insights, e.topicPatterns(records)...)
	insights = append(insights, e.temporalPatterns(records)...)
	insights = append(insights, e.contentPatterns(records)...)

	return e.selectTop(insights)
}

// selectTop drops low-confidence insights and caps each category,
// keeping the highest-confidence entries per type.
func (e *Engine) selectTop(insights []Insight) []Insight {
	byType := map[string][]Insight{}
	order := []string{}
	for _, insight := range insights {
		if insight.Confidence < e.config.ConfidenceThreshold {
			continue
		}
		if _, ok := byType[insight.Type]; !ok {
			order = append(order, insight.Type)
		}
		byType[insight.Type] = append(byType[insight.Type], insight)
	}

	selected := []Insight{}
	for _, insightType := range order {
		group := byType[insightType]
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].Confidence > group[b].Confidence
		})
		if len(group) > e.config.MaxPerCategory {
			group = group[:e.config.MaxPerCategory]
		}
		selected = append(selected, group...)
	}
	return selected
}

func (e *Engine) activityPatterns(records []*store.MemoryRecord) []Insight {
	insights := []Insight{}

	dailyCounts := map[string]int{}
	days := []string{}
	for _, record := range records {
		if record.CreatedTs == 0 {
			continue
		}
		day := time.Unix(record.CreatedTs, 0).UTC().Format("2006-01-02")
		if _, ok := dailyCounts[day]; !ok {
			days = append(days, day)
		}
		dailyCounts[day]++
	}
	if len(dailyCounts) == 0 {
		return insights
	}

	var total float64
	for _, count := range dailyCounts {
		total += float64(count)
	}
	avgDaily := total / float64(len(dailyCounts))

	if avgDaily > e.config.HighActivityPerDay {
		insights = append(insights, Insight{
			Type:       "activity_pattern",
			Message:    fmt.Sprintf("High memory activity detected: averaging %.1f memories per day", avgDaily),
			Confidence: math.Min(0.9, avgDaily/20),
			Data:       map[string]any{"averageDaily": avgDaily},
		})
	} else if avgDaily < e.config.LowActivityPerDay {
		insights = append(insights, Insight{
			Type:       "activity_pattern",
			Message:    fmt.Sprintf("Low memory activity: only %.1f memories per day on average", avgDaily),
			Confidence: 0.8,
			Data:       map[string]any{"averageDaily": avgDaily},
		})
	}

	// Trend over the most recent days, chronological order.
	sort.Strings(days)
	if len(days) > e.config.TrendDays {
		days = days[len(days)-e.config.TrendDays:]
	}
	if len(days) >= 3 {
		values := make([]float64, 0, len(days))
		for _, day := range days {
			values = append(values, float64(dailyCounts[day]))
		}
		slope := trendSlope(values)
		switch {
		case slope > 0.2:
			insights = append(insights, Insight{
				Type:       "activity_trend",
				Message:    "Memory creation is trending upward",
				Confidence: math.Min(0.9, math.Abs(slope)*2),
				Data:       map[string]any{"trendSlope": slope},
			})
		case slope < -0.2:
			insights = append(insights, Insight{
				Type:       "activity_trend",
				Message:    "Memory creation is trending downward",
				Confidence: math.Min(0.9, math.Abs(slope)*2),
				Data:       map[string]any{"trendSlope": slope},
			})
		}
	}

	return insights
}

func (e *Engine) emotionTrends(records []*store.MemoryRecord, now time.Time) []Insight {
	insights := []Insight{}

	counts := map[string]int{}
	recentCounts := map[string]int{}
	cutoff := now.AddDate(0, 0, -e.config.TrendDays).Unix()

	for _, record := range records {
		emotion := record.Emotion
		if emotion == "" {
			emotion = "neutral"
		}
		counts[emotion]++
		if record.CreatedTs >= cutoff && record.CreatedTs != 0 {
			recentCounts[emotion]++
		}
	}

	dominant, dominantCount := maxCount(counts)
	percentage := float64(dominantCount) / float64(len(records))
	if percentage > 0.5 {
		insights = append(insights, Insight{
			Type:       "emotion_pattern",
			Message:    fmt.Sprintf("Dominant emotion pattern detected: %s (%.0f%% of memories)", dominant, percentage*100),
			Confidence: math.Min(0.9, percentage*1.5),
			Data:       map[string]any{"emotion": dominant, "percentage": percentage},
		})
	}

	if recentDominant, _ := maxCount(recentCounts); recentDominant != "" && recentDominant != dominant {
		insights = append(insights, Insight{
			Type:       "emotion_trend",
			Message:    fmt.Sprintf("Recent emotional shift detected: trending toward %s", recentDominant),
			Confidence: 0.7,
			Data:       map[string]any{"recentEmotion": recentDominant, "overallEmotion": dominant},
		})
	}

	diversity := float64(len(counts)) / float64(len(records))
	if diversity > 0.3 {
		insights = append(insights, Insight{
			Type:       "emotion_pattern",
			Message:    fmt.Sprintf("High emotional diversity detected across %d different emotions", len(counts)),
			Confidence: math.Min(0.9, diversity*2),
			Data:       map[string]any{"diversityScore": diversity, "uniqueEmotions": len(counts)},
		})
	}

	return insights
}

func (e *Engine) importanceDistribution(records []*store.MemoryRecord) []Insight {
	insights := []Insight{}

	scores := []float64{}
	for _, record := range records {
		if record.ImportanceScore != nil {
			scores = append(scores, *record.ImportanceScore)
		}
	}
	if len(scores) < e.config.MinSampleSize {
		return insights
	}

	var high, low int
	for _, score := range scores {
		if score >= e.config.HighImportance {
			high++
		}
		if score < e.config.MediumImportance {
			low++
		}
	}

	if ratio := float64(high) / float64(len(scores)); ratio > 0.3 {
		insights = append(insights, Insight{
			Type:       "importance_pattern",
			Message:    fmt.Sprintf("High proportion of important memories: %.0f%% are highly important", ratio*100),
			Confidence: math.Min(0.9, ratio*2),
			Data:       map[string]any{"highImportanceRatio": ratio},
		})
	}
	if ratio := float64(low) / float64(len(scores)); ratio > 0.7 {
		insights = append(insights, Insight{
			Type:       "importance_pattern",
			Message:    fmt.Sprintf("Many memories have low importance scores: %.0f%% below medium threshold", ratio*100),
			Confidence: 0.8,
			Data:       map[string]any{"lowImportanceRatio": ratio},
		})
	}

	if len(scores) >= e.config.TrendDays {
		recent := scores[len(scores)-e.config.TrendDays:]
		slope := trendSlope(recent)
		if math.Abs(slope) > 0.05 {
			direction := "increasing"
			if slope < 0 {
				direction = "decreasing"
			}
			insights = append(insights, Insight{
				Type:       "importance_trend",
				Message:    fmt.Sprintf("Memory importance is %s over time", direction),
				Confidence: math.Min(0.9, math.Abs(slope)*10),
				Data:       map[string]any{"trendSlope": slope, "direction": direction},
			})
		}
	}

	return insights
}

func (e *Engine) topicPatterns(records []*store.MemoryRecord) []Insight {
	insights := []Insight{}

	topicCounts := map[string]int{}
	tagCounts := map[string]int{}
	for _, record := range records {
		for _, topic := range record.Topics {
			if topic = strings.ToLower(strings.TrimSpace(topic)); topic != "" {
				topicCounts[topic]++
			}
		}
		for _, tag := range record.Tags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				tagCounts[tag]++
			}
		}
	}

	if topTopic, count := maxCount(topicCounts); topTopic != "" {
		if ratio := float64(count) / float64(len(records)); ratio > 0.2 {
			insights = append(insights, Insight{
				Type:       "topic_pattern",
				Message:    fmt.Sprintf("Strong focus on %q topic: %d memories (%.0f%%)", topTopic, count, ratio*100),
				Confidence: math.Min(0.9, ratio*3),
				Data:       map[string]any{"topTopic": topTopic, "count": count, "ratio": ratio},
			})
		}
	}
	if topTag, count := maxCount(tagCounts); topTag != "" {
		if ratio := float64(count) / float64(len(records)); ratio > 0.25 {
			insights = append(insights, Insight{
				Type:       "tag_pattern",
				Message:    fmt.Sprintf("Frequently used tag: %q appears in %.0f%% of memories", topTag, ratio*100),
				Confidence: math.Min(0.9, ratio*2),
				Data:       map[string]any{"topTag": topTag, "count": count, "ratio": ratio},
			})
		}
	}

	return insights
}

func (e *Engine) temporalPatterns(records []*store.MemoryRecord) []Insight {
	insights := []Insight{}

	hourCounts := map[int]int{}
	dayCounts := map[string]int{}
	for _, record := range records {
		if record.CreatedTs == 0 {
			continue
		}
		t := time.Unix(record.CreatedTs, 0).UTC()
		hourCounts[t.Hour()]++
		dayCounts[t.Weekday().String()]++
	}

	peakHour, peakHourCount := -1, 0
	for hour, count := range hourCounts {
		if count > peakHourCount || (count == peakHourCount && hour < peakHour) {
			peakHour, peakHourCount = hour, count
		}
	}
	if peakHourCount > 0 && float64(peakHourCount) > float64(len(records))*0.15 {
		insights = append(insights, Insight{
			Type:       "temporal_pattern",
			Message:    fmt.Sprintf("Peak memory creation time: %02d:00 with %d memories", peakHour, peakHourCount),
			Confidence: 0.8,
			Data:       map[string]any{"peakHour": peakHour, "count": peakHourCount},
		})
	}

	if peakDay, count := maxCount(dayCounts); peakDay != "" && float64(count) > float64(len(records))*0.2 {
		insights = append(insights, Insight{
			Type:       "temporal_pattern",
			Message:    fmt.Sprintf("Most active day: %s with %d memories", peakDay, count),
			Confidence: 0.8,
			Data:       map[string]any{"peakDay": peakDay, "count": count},
		})
	}

	return insights
}

func (e *Engine) contentPatterns(records []*store.MemoryRecord) []Insight {
	insights := []Insight{}

	lengths := []float64{}
	for _, record := range records {
		lengths = append(lengths, float64(len(record.Text)))
	}
	if len(lengths) == 0 {
		return insights
	}

	var sum float64
	for _, l := range lengths {
		sum += l
	}
	avgLength := sum / float64(len(lengths))

	if avgLength > 500 {
		insights = append(insights, Insight{
			Type:       "content_pattern",
			Message:    fmt.Sprintf("Detailed memory entries: average %.0f characters per memory", avgLength),
			Confidence: math.Min(0.9, avgLength/1000),
			Data:       map[string]any{"avgLength": avgLength},
		})
	} else if avgLength < 50 {
		insights = append(insights, Insight{
			Type:       "content_pattern",
			Message:    fmt.Sprintf("Brief memory entries: average only %.0f characters", avgLength),
			Confidence: 0.8,
			Data:       map[string]any{"avgLength": avgLength},
		})
	}

	if len(lengths) >= e.config.MinSampleSize && avgLength > 0 {
		var variance float64
		for _, l := range lengths {
			variance += (l - avgLength) * (l - avgLength)
		}
		stddev := math.Sqrt(variance / float64(len(lengths)-1))
		variability := stddev / avgLength
		if variability > 1.0 {
			insights = append(insights, Insight{
				Type:       "content_pattern",
				Message:    "High variability in memory detail levels",
				Confidence: math.Min(0.9, variability/2),
				Data:       map[string]any{"variability": variability, "stdDev": stddev},
			})
		}
	}

	return insights
}

// trendSlope fits a least-squares line through values at x = 0..n-1 and
// returns its slope.
func trendSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// maxCount returns the key with the highest count, smallest key winning
// ties so the result is deterministic across map iteration orders.
func maxCount(counts map[string]int) (string, int) {
	best, bestCount := "", 0
	for key, count := range counts {
		if count > bestCount || (count == bestCount && key < best) {
			best, bestCount = key, count
		}
	}
	return best, bestCount
}
