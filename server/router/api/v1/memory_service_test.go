package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akalem0808/memori/internal/profile"
	"github.com/akalem0808/memori/server/stats"
	"github.com/akalem0808/memori/store"
)

// fakeDriver keeps records in memory so handlers can be tested without a
// database.
type fakeDriver struct {
	nextID  int32
	records []*store.MemoryRecord
	users   []*store.User
}

func (d *fakeDriver) GetDB() *sql.DB                            { return nil }
func (d *fakeDriver) Close() error                              { return nil }
func (d *fakeDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *fakeDriver) CreateMemoryRecord(_ context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	d.nextID++
	create.ID = d.nextID
	d.records = append(d.records, create)
	return create, nil
}

func (d *fakeDriver) ListMemoryRecords(_ context.Context, find *store.FindMemoryRecord) ([]*store.MemoryRecord, error) {
	list := []*store.MemoryRecord{}
	for _, r := range d.records {
		if find.ID != nil && r.ID != *find.ID {
			continue
		}
		if find.UID != nil && r.UID != *find.UID {
			continue
		}
		if find.Emotion != nil && r.Emotion != *find.Emotion {
			continue
		}
		if find.CreatedAfter != nil && r.CreatedTs < *find.CreatedAfter {
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

func (d *fakeDriver) UpdateMemoryRecord(_ context.Context, update *store.UpdateMemoryRecord) error {
	for _, r := range d.records {
		if r.ID == update.ID {
			if update.Text != nil {
				r.Text = *update.Text
			}
			if update.Emotion != nil {
				r.Emotion = *update.Emotion
			}
			if update.Topics != nil {
				r.Topics = update.Topics
			}
			if update.Tags != nil {
				r.Tags = update.Tags
			}
			if update.ImportanceScore != nil {
				r.ImportanceScore = update.ImportanceScore
			}
			return nil
		}
	}
	return nil
}

func (d *fakeDriver) DeleteMemoryRecord(_ context.Context, delete *store.DeleteMemoryRecord) error {
	kept := []*store.MemoryRecord{}
	for _, r := range d.records {
		drop := false
		if delete.UID != nil && r.UID == *delete.UID {
			drop = true
		}
		for _, uid := range delete.UIDs {
			if r.UID == uid {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, r)
		}
	}
	d.records = kept
	return nil
}

func (d *fakeDriver) UpsertMemoryEmbedding(context.Context, int32, []float32) error {
	return store.ErrVectorSearchNotSupported
}

func (d *fakeDriver) SearchMemoriesByVector(context.Context, []float32, int) ([]*store.MemoryRecord, []float32, error) {
	return nil, nil, store.ErrVectorSearchNotSupported
}

func (d *fakeDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	d.users = append(d.users, create)
	return create, nil
}

func (d *fakeDriver) UpdateUser(context.Context, *store.UpdateUser) (*store.User, error) {
	return nil, nil
}

func (d *fakeDriver) ListUsers(_ context.Context, find *store.FindUser) ([]*store.User, error) {
	list := []*store.User{}
	for _, u := range d.users {
		if find.Username != nil && u.Username != *find.Username {
			continue
		}
		list = append(list, u)
	}
	return list, nil
}

func (d *fakeDriver) DeleteUser(context.Context, *store.DeleteUser) error { return nil }

func newTestService(t *testing.T, driver *fakeDriver) (*APIV1Service, *echo.Echo) {
	t.Helper()
	prof := &profile.Profile{Mode: "demo", Driver: "sqlite", Data: t.TempDir()}
	st := store.New(driver, prof)
	t.Cleanup(func() { _ = st.Close() })

	svc := NewAPIV1Service("test-secret", prof, st, stats.NewCollector(st))
	return svc, echo.New()
}

func seedRecord(driver *fakeDriver, uid, emotion string, topics []string, ts int64) {
	driver.nextID++
	driver.records = append(driver.records, &store.MemoryRecord{
		ID:        driver.nextID,
		UID:       uid,
		Emotion:   emotion,
		Topics:    topics,
		Text:      "entry " + uid,
		CreatedTs: ts,
	})
}

func TestListMemoriesCombinedFilter(t *testing.T) {
	driver := &fakeDriver{}
	now := time.Now().Unix()
	seedRecord(driver, "a", "happy", []string{"work"}, now)
	seedRecord(driver, "b", "happy", []string{"family"}, now)
	seedRecord(driver, "c", "sad", []string{"work"}, now)

	svc, e := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?emotion=happy&topic=work", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.ListMemories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listMemoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Memories, 1)
	assert.Equal(t, "a", resp.Memories[0].UID)
	assert.Equal(t, 1, resp.Total)
}

func TestListMemoriesUnknownEmotionMatchesNothing(t *testing.T) {
	driver := &fakeDriver{}
	now := time.Now().Unix()
	seedRecord(driver, "a", "neutral", nil, now)
	seedRecord(driver, "b", "happy", nil, now)

	svc, e := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?emotion=bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.ListMemories(c))

	var resp listMemoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Memories)
	assert.Zero(t, resp.Total)

	// Case still folds; an uppercase known label matches.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/memories?emotion=Happy", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	require.NoError(t, svc.ListMemories(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Memories, 1)
	assert.Equal(t, "b", resp.Memories[0].UID)
}

func TestListMemoriesUnknownDateRangeDegradesToAll(t *testing.T) {
	driver := &fakeDriver{}
	seedRecord(driver, "a", "happy", nil, time.Now().Unix())
	seedRecord(driver, "b", "sad", nil, 0) // undated

	svc, e := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?dateRange=fortnight", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.ListMemories(c))

	var resp listMemoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Memories, 2)
}

func TestListMemoriesSearchIncludesHighlights(t *testing.T) {
	driver := &fakeDriver{}
	seedRecord(driver, "a", "happy", nil, time.Now().Unix())

	svc, e := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?search=entry", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.ListMemories(c))

	var resp listMemoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.NotEmpty(t, resp.Results[0].Highlights)

	assert.Equal(t, int64(1), svc.Collector.GetSnapshot().TotalSearches)
}

func TestCreateMemoryNormalizesInput(t *testing.T) {
	driver := &fakeDriver{}
	svc, e := newTestService(t, driver)

	body := `{
		"textContent": "  an important meeting about the project  ",
		"emotion": "Ecstatic",
		"topics": ["Work", "work", "Life"],
		"importanceScore": 7.5
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.CreateMemory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var m Memory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "an important meeting about the project", m.Text)
	assert.Equal(t, "neutral", m.Emotion) // unknown label degrades
	assert.Equal(t, []string{"work", "life"}, m.Topics)
	require.NotNil(t, m.ImportanceScore)
	assert.InDelta(t, 1.0, *m.ImportanceScore, 1e-9) // clamped
	assert.Contains(t, m.Tags, "meeting")
	assert.NotNil(t, m.Timestamp)
}

func TestCreateMemoryRejectsEmptyText(t *testing.T) {
	svc, e := newTestService(t, &fakeDriver{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories", strings.NewReader(`{"textContent": "   "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := svc.CreateMemory(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestGetMemoryNotFound(t *testing.T) {
	svc, e := newTestService(t, &fakeDriver{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uid")
	c.SetParamValues("missing")

	err := svc.GetMemory(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestBulkDelete(t *testing.T) {
	driver := &fakeDriver{}
	now := time.Now().Unix()
	seedRecord(driver, "a", "happy", nil, now)
	seedRecord(driver, "b", "sad", nil, now)
	seedRecord(driver, "c", "joy", nil, now)

	svc, e := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/bulk-delete",
		strings.NewReader(`{"uids": ["a", "c", "missing"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.BulkDeleteMemories(c))
	assert.Len(t, driver.records, 1)
	assert.Equal(t, "b", driver.records[0].UID)
}

func TestGetFilterOptions(t *testing.T) {
	driver := &fakeDriver{}
	now := time.Now().Unix()
	seedRecord(driver, "a", "happy", []string{"work"}, now)
	seedRecord(driver, "b", "sad", []string{"family", "work"}, now)

	svc, e := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/filters", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.GetFilterOptions(c))

	var resp filterOptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"happy", "sad"}, resp.Emotions)
	assert.Equal(t, []string{"family", "work"}, resp.Topics)
}

func TestGetMemoryStatsFallback(t *testing.T) {
	driver := &fakeDriver{}
	now := time.Now().Unix()
	seedRecord(driver, "a", "happy", nil, now)
	seedRecord(driver, "b", "happy", nil, now)

	svc, e := newTestService(t, driver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, svc.GetMemoryStats(c))

	var snapshot stats.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, 2, snapshot.Summary.TotalMemories)
	assert.Equal(t, "happy", snapshot.Summary.TopEmotion)
}
