package v1

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/akalem0808/memori/server/engine"
	"github.com/akalem0808/memori/server/timezone"
	"github.com/akalem0808/memori/store"
)

// GetMemoryStats serves the cached summary, recomputing locally when the
// collector has not run yet.
func (s *APIV1Service) GetMemoryStats(c echo.Context) error {
	snapshot := s.Collector.GetSnapshot()
	if snapshot.LastUpdated.IsZero() {
		records, err := s.Store.ListMemoryRecords(c.Request().Context(), &store.FindMemoryRecord{})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute stats").SetInternal(err)
		}
		snapshot.Summary = engine.Aggregate(records, engine.DefaultRecentEmotionBound)
		snapshot.LastUpdated = time.Now()
	}
	return c.JSON(http.StatusOK, snapshot)
}

type filterOptionsResponse struct {
	Emotions []string `json:"emotions"`
	Topics   []string `json:"topics"`
}

// GetFilterOptions enumerates the emotion and topic values currently in
// use, for the filter-selection UI.
func (s *APIV1Service) GetFilterOptions(c echo.Context) error {
	records, err := s.Store.ListMemoryRecords(c.Request().Context(), &store.FindMemoryRecord{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list memories").SetInternal(err)
	}

	emotionSet := map[string]bool{}
	topicSet := map[string]bool{}
	for _, record := range records {
		if record.Emotion != "" {
			emotionSet[record.Emotion] = true
		}
		for _, topic := range record.Topics {
			topicSet[topic] = true
		}
	}

	resp := filterOptionsResponse{Emotions: []string{}, Topics: []string{}}
	for emotion := range emotionSet {
		resp.Emotions = append(resp.Emotions, emotion)
	}
	for topic := range topicSet {
		resp.Topics = append(resp.Topics, topic)
	}
	sort.Strings(resp.Emotions)
	sort.Strings(resp.Topics)

	return c.JSON(http.StatusOK, resp)
}

// GetInsights runs the insight engine over the full collection.
func (s *APIV1Service) GetInsights(c echo.Context) error {
	records, err := s.Store.ListMemoryRecords(c.Request().Context(), &store.FindMemoryRecord{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list memories").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"insights": s.InsightEngine.Generate(records, time.Now()),
	})
}

type trendDay struct {
	Date     string         `json:"date"`
	Total    int            `json:"total"`
	Emotions map[string]int `json:"emotions"`
}

// GetTrends returns per-day emotion counts for the last N days
// (default 30, max 365), oldest first. An optional tz parameter groups
// days in the caller's timezone instead of UTC.
func (s *APIV1Service) GetTrends(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}

	loc, err := timezone.ParseTimezone(c.QueryParam("tz"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown timezone")
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days).Unix()
	records, err := s.Store.ListMemoryRecords(c.Request().Context(), &store.FindMemoryRecord{CreatedAfter: &since})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list memories").SetInternal(err)
	}

	byDay := map[string]*trendDay{}
	for _, record := range records {
		if record.CreatedTs == 0 {
			continue
		}
		date := timezone.DayKey(record.CreatedTs, loc)
		day, ok := byDay[date]
		if !ok {
			day = &trendDay{Date: date, Emotions: map[string]int{}}
			byDay[date] = day
		}
		day.Total++
		if record.Emotion != "" {
			day.Emotions[record.Emotion]++
		}
	}

	trends := make([]*trendDay, 0, len(byDay))
	for _, day := range byDay {
		trends = append(trends, day)
	}
	sort.Slice(trends, func(a, b int) bool {
		return trends[a].Date < trends[b].Date
	})

	return c.JSON(http.StatusOK, map[string]any{"days": days, "trends": trends})
}

// ExportMemories streams the full collection as JSON or CSV.
func (s *APIV1Service) ExportMemories(c echo.Context) error {
	records, err := s.Store.ListMemoryRecords(c.Request().Context(), &store.FindMemoryRecord{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list memories").SetInternal(err)
	}

	format := strings.ToLower(c.QueryParam("format"))
	switch format {
	case "", "json":
		memories := make([]*Memory, 0, len(records))
		for _, record := range records {
			memories = append(memories, convertMemoryRecord(record))
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="memories.json"`)
		return c.JSON(http.StatusOK, memories)

	case "csv":
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="memories.csv"`)
		c.Response().WriteHeader(http.StatusOK)

		w := csv.NewWriter(c.Response())
		if err := w.Write([]string{"id", "timestamp", "text", "emotion", "topics", "tags", "importance"}); err != nil {
			return err
		}
		for _, record := range records {
			timestamp := ""
			if record.CreatedTs != 0 {
				timestamp = time.Unix(record.CreatedTs, 0).UTC().Format(time.RFC3339)
			}
			importance := ""
			if record.ImportanceScore != nil {
				importance = fmt.Sprintf("%.3f", *record.ImportanceScore)
			}
			row := []string{
				record.UID,
				timestamp,
				record.Text,
				record.Emotion,
				strings.Join(record.Topics, ";"),
				strings.Join(record.Tags, ";"),
				importance,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json or csv")
	}
}
