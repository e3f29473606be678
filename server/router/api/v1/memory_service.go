package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/akalem0808/memori/server/engine"
	"github.com/akalem0808/memori/server/finops"
	"github.com/akalem0808/memori/server/service/memory"
	"github.com/akalem0808/memori/store"
)

// Memory is the JSON shape of a record on the wire.
type Memory struct {
	UID             string             `json:"id"`
	Timestamp       *time.Time         `json:"timestamp,omitempty"`
	Text            string             `json:"textContent"`
	Emotion         string             `json:"emotion,omitempty"`
	EmotionScores   map[string]float64 `json:"emotionScores,omitempty"`
	Topics          []string           `json:"topics"`
	Tags            []string           `json:"tags"`
	ImportanceScore *float64           `json:"importanceScore,omitempty"`
	Metadata        map[string]any     `json:"metadata,omitempty"`
	AudioPath       string             `json:"audioPath,omitempty"`
}

func convertMemoryRecord(record *store.MemoryRecord) *Memory {
	m := &Memory{
		UID:             record.UID,
		Text:            record.Text,
		Emotion:         record.Emotion,
		EmotionScores:   record.EmotionScores,
		Topics:          record.Topics,
		Tags:            record.Tags,
		ImportanceScore: record.ImportanceScore,
		Metadata:        record.Metadata,
		AudioPath:       record.AudioPath,
	}
	if m.Topics == nil {
		m.Topics = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if record.CreatedTs != 0 {
		t := time.Unix(record.CreatedTs, 0).UTC()
		m.Timestamp = &t
	}
	return m
}

type listMemoriesResponse struct {
	Memories []*Memory             `json:"memories"`
	Total    int                   `json:"total"`
	Results  []memory.SearchResult `json:"searchResults,omitempty"`
}

// ListMemories returns records matching the query parameters. The SQL
// layer narrows by emotion and date bound; the full filter (topic,
// search, the works) runs on top so the response is exact either way.
func (s *APIV1Service) ListMemories(c echo.Context) error {
	ctx := c.Request().Context()
	now := time.Now()

	dateRange, degraded := engine.ParseDateRange(c.QueryParam("dateRange"))
	if degraded {
		slog.Warn("unrecognized dateRange value, treating as all", "value", c.QueryParam("dateRange"))
	}
	// Filter values are compared, not stored; fold the case and leave
	// unknown labels alone so they match nothing.
	cfg := engine.FilterConfig{
		Emotion:   strings.ToLower(strings.TrimSpace(c.QueryParam("emotion"))),
		Topic:     c.QueryParam("topic"),
		DateRange: dateRange,
		Search:    c.QueryParam("search"),
	}

	find := &store.FindMemoryRecord{}
	if cfg.Emotion != "" {
		find.Emotion = &cfg.Emotion
	}
	if start, bounded := cfg.DateRange.Start(now); bounded {
		createdAfter := start.Unix()
		find.CreatedAfter = &createdAfter
	}

	records, err := s.Store.ListMemoryRecords(ctx, find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list memories").SetInternal(err)
	}

	filtered := engine.Filter(records, cfg, now)

	// Pagination applies after filtering so offsets are stable for a
	// given filter configuration.
	total := len(filtered)
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if offset > 0 {
		if offset > total {
			offset = total
		}
		filtered = filtered[offset:]
	}
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}

	resp := &listMemoriesResponse{
		Memories: make([]*Memory, 0, len(filtered)),
		Total:    total,
	}
	for _, record := range filtered {
		resp.Memories = append(resp.Memories, convertMemoryRecord(record))
	}

	if cfg.Search != "" {
		s.Collector.RecordSearch()
		resp.Results = s.Highlighter.HighlightRecords(filtered, cfg.Search)
	}

	return c.JSON(http.StatusOK, resp)
}

type createMemoryRequest struct {
	Text            string             `json:"textContent"`
	Timestamp       string             `json:"timestamp"`
	Emotion         string             `json:"emotion"`
	EmotionScores   map[string]float64 `json:"emotionScores"`
	Topics          []string           `json:"topics"`
	Tags            []string           `json:"tags"`
	ImportanceScore *float64           `json:"importanceScore"`
	Metadata        map[string]any     `json:"metadata"`
}

// CreateMemory stores a text entry, running the emotion model and the
// importance/tag heuristics over it.
func (s *APIV1Service) CreateMemory(c echo.Context) error {
	var req createMemoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed memory payload")
	}

	record, err := s.buildRecord(c, &req)
	if err != nil {
		return err
	}

	created, err := s.Store.CreateMemoryRecord(c.Request().Context(), record)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create memory").SetInternal(err)
	}

	s.upsertEmbedding(c, created)

	return c.JSON(http.StatusOK, convertMemoryRecord(created))
}

// buildRecord normalizes the request and fills in derived fields.
func (s *APIV1Service) buildRecord(c echo.Context, req *createMemoryRequest) (*store.MemoryRecord, error) {
	text := normalizeText(req.Text)
	if text == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "textContent is required")
	}

	ctx := c.Request().Context()
	now := time.Now()

	emotion := normalizeEmotion(req.Emotion)
	scores := normalizeScores(req.EmotionScores)
	if emotion == "" && s.EmotionClassifier != nil {
		started := time.Now()
		result, err := s.EmotionClassifier.Classify(ctx, text)
		s.CostMonitor.RecordEmotion(finops.EstimateTokens(text), time.Since(started), err)
		if err == nil {
			emotion = normalizeEmotion(result.Emotion)
			scores = normalizeScores(result.Scores)
		} else {
			slog.Warn("emotion classification failed", "error", err)
		}
	}
	if emotion == "" {
		emotion = "neutral"
	}

	createdTs := parseTimestamp(req.Timestamp)
	capturedAt := now
	if createdTs != 0 {
		capturedAt = time.Unix(createdTs, 0).UTC()
	} else {
		createdTs = now.Unix()
	}

	importance := req.ImportanceScore
	if importance == nil {
		v := calculateImportance(text, scores[emotion])
		importance = &v
	} else {
		v := clampScore(*importance)
		importance = &v
	}

	tags := append(normalizeTags(req.Tags), generateTags(text, emotion, capturedAt)...)

	return &store.MemoryRecord{
		UID:             shortuuid.New(),
		CreatorID:       currentUserID(c),
		CreatedTs:       createdTs,
		UpdatedTs:       now.Unix(),
		Text:            text,
		Emotion:         emotion,
		EmotionScores:   scores,
		Topics:          normalizeTopics(req.Topics),
		Tags:            normalizeTags(tags),
		ImportanceScore: importance,
		Metadata:        req.Metadata,
	}, nil
}

// upsertEmbedding stores the record's vector when the stack supports it.
// Failure is logged, never surfaced; embeddings are an enhancement.
func (s *APIV1Service) upsertEmbedding(c echo.Context, record *store.MemoryRecord) {
	if s.EmbeddingService == nil {
		return
	}
	ctx := c.Request().Context()
	started := time.Now()
	vector, err := s.EmbeddingService.Embed(ctx, record.Text)
	s.CostMonitor.RecordEmbedding(finops.EstimateTokens(record.Text), time.Since(started), err)
	if err != nil {
		slog.Warn("embedding failed", "uid", record.UID, "error", err)
		return
	}
	if err := s.Store.UpsertMemoryEmbedding(ctx, record.ID, vector); err != nil {
		slog.Warn("embedding upsert failed", "uid", record.UID, "error", err)
	}
}

// GetMemory returns one record by uid.
func (s *APIV1Service) GetMemory(c echo.Context) error {
	uid := c.Param("uid")
	record, err := s.Store.GetMemoryRecord(c.Request().Context(), &store.FindMemoryRecord{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get memory").SetInternal(err)
	}
	if record == nil {
		return echo.NewHTTPError(http.StatusNotFound, "memory not found")
	}
	return c.JSON(http.StatusOK, convertMemoryRecord(record))
}

type updateMemoryRequest struct {
	Text            *string             `json:"textContent"`
	Emotion         *string             `json:"emotion"`
	EmotionScores   *map[string]float64 `json:"emotionScores"`
	Topics          *[]string           `json:"topics"`
	Tags            *[]string           `json:"tags"`
	ImportanceScore *float64            `json:"importanceScore"`
	Metadata        *map[string]any     `json:"metadata"`
}

// UpdateMemory applies a partial update to a record.
func (s *APIV1Service) UpdateMemory(c echo.Context) error {
	var req updateMemoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed memory payload")
	}

	ctx := c.Request().Context()
	uid := c.Param("uid")
	record, err := s.Store.GetMemoryRecord(ctx, &store.FindMemoryRecord{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get memory").SetInternal(err)
	}
	if record == nil {
		return echo.NewHTTPError(http.StatusNotFound, "memory not found")
	}

	update := &store.UpdateMemoryRecord{ID: record.ID}
	if req.Text != nil {
		text := normalizeText(*req.Text)
		if text == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "textContent cannot be emptied")
		}
		update.Text = &text
	}
	if req.Emotion != nil {
		emotion := normalizeEmotion(*req.Emotion)
		update.Emotion = &emotion
	}
	if req.EmotionScores != nil {
		update.EmotionScores = normalizeScores(*req.EmotionScores)
	}
	if req.Topics != nil {
		update.Topics = normalizeTopics(*req.Topics)
	}
	if req.Tags != nil {
		update.Tags = normalizeTags(*req.Tags)
	}
	if req.ImportanceScore != nil {
		v := clampScore(*req.ImportanceScore)
		update.ImportanceScore = &v
	}
	if req.Metadata != nil {
		update.Metadata = *req.Metadata
	}
	updatedTs := time.Now().Unix()
	update.UpdatedTs = &updatedTs

	if err := s.Store.UpdateMemoryRecord(ctx, update); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update memory").SetInternal(err)
	}

	updated, err := s.Store.GetMemoryRecord(ctx, &store.FindMemoryRecord{UID: &uid})
	if err != nil || updated == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reload memory").SetInternal(err)
	}
	return c.JSON(http.StatusOK, convertMemoryRecord(updated))
}

// DeleteMemory removes one record by uid.
func (s *APIV1Service) DeleteMemory(c echo.Context) error {
	uid := c.Param("uid")

	record, err := s.Store.GetMemoryRecord(c.Request().Context(), &store.FindMemoryRecord{UID: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get memory").SetInternal(err)
	}
	if record == nil {
		return echo.NewHTTPError(http.StatusNotFound, "memory not found")
	}

	if err := s.Store.DeleteMemoryRecord(c.Request().Context(), &store.DeleteMemoryRecord{UID: &uid}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete memory").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	UIDs []string `json:"uids"`
}

// BulkDeleteMemories removes a batch of records; missing uids are
// ignored rather than failing the batch.
func (s *APIV1Service) BulkDeleteMemories(c echo.Context) error {
	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed bulk delete payload")
	}
	if len(req.UIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "uids is required")
	}

	if err := s.Store.DeleteMemoryRecord(c.Request().Context(), &store.DeleteMemoryRecord{UIDs: req.UIDs}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete memories").SetInternal(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": len(req.UIDs)})
}
