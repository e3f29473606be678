package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akalem0808/memori/store"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func record(uid string, opts ...func(*store.MemoryRecord)) *store.MemoryRecord {
	r := &store.MemoryRecord{UID: uid}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func withEmotion(emotion string) func(*store.MemoryRecord) {
	return func(r *store.MemoryRecord) { r.Emotion = emotion }
}

func withTopics(topics ...string) func(*store.MemoryRecord) {
	return func(r *store.MemoryRecord) { r.Topics = topics }
}

func withTags(tags ...string) func(*store.MemoryRecord) {
	return func(r *store.MemoryRecord) { r.Tags = tags }
}

func withText(text string) func(*store.MemoryRecord) {
	return func(r *store.MemoryRecord) { r.Text = text }
}

func withCreatedAgo(d time.Duration) func(*store.MemoryRecord) {
	return func(r *store.MemoryRecord) { r.CreatedTs = testNow.Add(-d).Unix() }
}

func withImportance(score float64) func(*store.MemoryRecord) {
	return func(r *store.MemoryRecord) { r.ImportanceScore = &score }
}

func uids(records []*store.MemoryRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.UID)
	}
	return out
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		raw      string
		want     DateRange
		degraded bool
	}{
		{"today", DateRangeToday, false},
		{"Week", DateRangeWeek, false},
		{" month ", DateRangeMonth, false},
		{"year", DateRangeYear, false},
		{"all", DateRangeAll, false},
		{"", DateRangeAll, false},
		{"fortnight", DateRangeAll, true},
	}
	for _, tt := range tests {
		got, degraded := ParseDateRange(tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		assert.Equal(t, tt.degraded, degraded, "raw=%q", tt.raw)
	}
}

func TestFilterEmptyConfigIsIdentity(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("happy"), withCreatedAgo(time.Hour)),
		record("b"),
		record("c", withText("anything")),
	}

	filtered := Filter(records, FilterConfig{}, testNow)
	require.Equal(t, uids(records), uids(filtered))
}

func TestFilterIsIdempotent(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("happy")),
		record("b", withEmotion("sad")),
		record("c", withEmotion("happy")),
	}
	cfg := FilterConfig{Emotion: "happy"}

	once := Filter(records, cfg, testNow)
	twice := Filter(once, cfg, testNow)
	assert.Equal(t, uids(once), uids(twice))
}

func TestFilterPreservesOrder(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("happy")),
		record("b", withEmotion("sad")),
		record("c", withEmotion("happy")),
		record("d", withEmotion("happy")),
	}

	filtered := Filter(records, FilterConfig{Emotion: "happy"}, testNow)
	assert.Equal(t, []string{"a", "c", "d"}, uids(filtered))
}

func TestFilterEmptyInput(t *testing.T) {
	filtered := Filter(nil, FilterConfig{Emotion: "happy"}, testNow)
	require.NotNil(t, filtered)
	assert.Empty(t, filtered)
}

func TestFilterEmotionCaseNormalized(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("Happy")),
		record("b", withEmotion("sad")),
	}

	filtered := Filter(records, FilterConfig{Emotion: "happy"}, testNow)
	assert.Equal(t, []string{"a"}, uids(filtered))
}

func TestFilterTopicExactMembership(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withTopics("work", "family")),
		record("b", withTopics("workout")),
		record("c"),
	}

	filtered := Filter(records, FilterConfig{Topic: "work"}, testNow)
	assert.Equal(t, []string{"a"}, uids(filtered))
}

func TestFilterDateRangeWeek(t *testing.T) {
	records := []*store.MemoryRecord{
		record("recent", withCreatedAgo(2*24*time.Hour)),
		record("stale", withCreatedAgo(10*24*time.Hour)),
		record("ancient", withCreatedAgo(400*24*time.Hour)),
		record("undated"),
	}

	filtered := Filter(records, FilterConfig{DateRange: DateRangeWeek}, testNow)
	assert.Equal(t, []string{"recent"}, uids(filtered))
}

func TestFilterDateRangeToday(t *testing.T) {
	records := []*store.MemoryRecord{
		record("morning", withCreatedAgo(11*time.Hour)), // 01:00 same day
		record("yesterday", withCreatedAgo(13*time.Hour)),
	}

	filtered := Filter(records, FilterConfig{DateRange: DateRangeToday}, testNow)
	assert.Equal(t, []string{"morning"}, uids(filtered))
}

func TestFilterUndatedRecordsPassAllRange(t *testing.T) {
	records := []*store.MemoryRecord{record("undated")}

	assert.Len(t, Filter(records, FilterConfig{DateRange: DateRangeAll}, testNow), 1)
	assert.Empty(t, Filter(records, FilterConfig{DateRange: DateRangeYear}, testNow))
}

func TestFilterCombinedDimensions(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("happy"), withTopics("work")),
		record("b", withEmotion("happy"), withTopics("family")),
		record("c", withEmotion("sad"), withTopics("work")),
	}

	filtered := Filter(records, FilterConfig{Emotion: "happy", Topic: "work"}, testNow)
	assert.Equal(t, []string{"a"}, uids(filtered))
}

func TestMatchesSearchCaseFolding(t *testing.T) {
	r := record("a", withText("Morning Coffee"))

	assert.True(t, MatchesSearch(r, "morning"))
	assert.True(t, MatchesSearch(r, "COFFEE"))
	assert.False(t, MatchesSearch(r, "tea"))
}

func TestMatchesSearchBlankQueryMatchesAll(t *testing.T) {
	r := record("a")

	assert.True(t, MatchesSearch(r, ""))
	assert.True(t, MatchesSearch(r, "   "))
}

func TestMatchesSearchTagsAndTopics(t *testing.T) {
	r := record("a", withTags("gratitude"), withTopics("Evening Walk"))

	assert.True(t, MatchesSearch(r, "grat"))
	assert.True(t, MatchesSearch(r, "evening"))
	assert.False(t, MatchesSearch(r, "missing"))
}

func TestAggregateEmptyCollection(t *testing.T) {
	summary := Aggregate(nil, 0)

	assert.Equal(t, 0, summary.TotalMemories)
	assert.Equal(t, "N/A", summary.TopEmotion)
	assert.Equal(t, "N/A", summary.TopTopic)
	assert.Zero(t, summary.AvgImportance)
	assert.Nil(t, summary.LastUpload)
	assert.Empty(t, summary.RecentEmotions)
}

func TestAggregateTotals(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withImportance(0.2)),
		record("b", withImportance(0.8)),
		record("c"), // no score, excluded from the mean
	}

	summary := Aggregate(records, 0)
	assert.Equal(t, 3, summary.TotalMemories)
	assert.InDelta(t, 0.5, summary.AvgImportance, 1e-9)
}

func TestAggregateAvgImportanceZeroWhenAbsent(t *testing.T) {
	records := []*store.MemoryRecord{record("a"), record("b")}

	summary := Aggregate(records, 0)
	assert.Zero(t, summary.AvgImportance)
}

func TestAggregateTopEmotionTieBreak(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("happy")),
		record("b", withEmotion("happy")),
		record("c", withEmotion("sad")),
		record("d", withEmotion("sad")),
	}

	// happy appeared first, so it wins the tie.
	summary := Aggregate(records, 0)
	assert.Equal(t, "happy", summary.TopEmotion)
}

func TestAggregateTopTopic(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withTopics("work", "health")),
		record("b", withTopics("health")),
		record("c", withTopics("work", "health")),
	}

	summary := Aggregate(records, 0)
	assert.Equal(t, "health", summary.TopTopic)
}

func TestAggregateLastUpload(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withCreatedAgo(48*time.Hour)),
		record("b", withCreatedAgo(time.Hour)),
		record("c"),
	}

	summary := Aggregate(records, 0)
	require.NotNil(t, summary.LastUpload)
	assert.Equal(t, testNow.Add(-time.Hour).Unix(), summary.LastUpload.Unix())
}

func TestAggregateRecentEmotionsBound(t *testing.T) {
	emotions := []string{"joy", "sadness", "anger", "fear", "surprise", "disgust", "neutral"}
	records := make([]*store.MemoryRecord, 0, len(emotions))
	for i, emotion := range emotions {
		records = append(records, record(emotion,
			withEmotion(emotion),
			withCreatedAgo(time.Duration(i+1)*time.Hour),
		))
	}

	summary := Aggregate(records, 0)
	// Records were built oldest-last, so the five most recent come first.
	assert.Equal(t, []string{"joy", "sadness", "anger", "fear", "surprise"}, summary.RecentEmotions)
}

func TestAggregateRecentEmotionsSkipsUnqualified(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("joy"), withCreatedAgo(time.Hour)),
		record("b", withCreatedAgo(2*time.Hour)),    // no emotion
		record("c", withEmotion("sadness")),         // no timestamp
	}

	summary := Aggregate(records, 0)
	assert.Equal(t, []string{"joy"}, summary.RecentEmotions)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	records := []*store.MemoryRecord{
		record("a", withEmotion("joy"), withCreatedAgo(3*time.Hour)),
		record("b", withEmotion("sadness"), withCreatedAgo(time.Hour)),
		record("c", withEmotion("anger"), withCreatedAgo(2*time.Hour)),
	}

	Aggregate(records, 0)
	assert.Equal(t, []string{"a", "b", "c"}, uids(records))
}
