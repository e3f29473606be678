package embedding

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akalem0808/memori/internal/profile"
	"github.com/akalem0808/memori/store"
)

type fakeDriver struct {
	pending  []*store.MemoryRecord
	upserted map[int32][]float32
}

func (d *fakeDriver) GetDB() *sql.DB                              { return nil }
func (d *fakeDriver) Close() error                                { return nil }
func (d *fakeDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *fakeDriver) CreateMemoryRecord(_ context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	return create, nil
}

func (d *fakeDriver) ListMemoryRecords(_ context.Context, find *store.FindMemoryRecord) ([]*store.MemoryRecord, error) {
	if find.MissingEmbedding {
		pending := []*store.MemoryRecord{}
		for _, r := range d.pending {
			if _, done := d.upserted[r.ID]; !done {
				pending = append(pending, r)
			}
		}
		return pending, nil
	}
	return d.pending, nil
}

func (d *fakeDriver) UpdateMemoryRecord(context.Context, *store.UpdateMemoryRecord) error { return nil }
func (d *fakeDriver) DeleteMemoryRecord(context.Context, *store.DeleteMemoryRecord) error { return nil }

func (d *fakeDriver) UpsertMemoryEmbedding(_ context.Context, recordID int32, embedding []float32) error {
	d.upserted[recordID] = embedding
	return nil
}

func (d *fakeDriver) SearchMemoriesByVector(context.Context, []float32, int) ([]*store.MemoryRecord, []float32, error) {
	return nil, nil, store.ErrVectorSearchNotSupported
}

func (d *fakeDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	return create, nil
}
func (d *fakeDriver) UpdateUser(context.Context, *store.UpdateUser) (*store.User, error) {
	return nil, nil
}
func (d *fakeDriver) ListUsers(context.Context, *store.FindUser) ([]*store.User, error) {
	return nil, nil
}
func (d *fakeDriver) DeleteUser(context.Context, *store.DeleteUser) error { return nil }

type fakeEmbedder struct {
	calls int
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text))}
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int { return 1 }

func TestRunOnceBackfillsPendingRecords(t *testing.T) {
	driver := &fakeDriver{upserted: map[int32][]float32{}}
	for i := int32(1); i <= 10; i++ {
		driver.pending = append(driver.pending, &store.MemoryRecord{ID: i, UID: "r", Text: "entry"})
	}
	st := store.New(driver, &profile.Profile{Mode: "demo"})
	t.Cleanup(func() { _ = st.Close() })
	embedder := &fakeEmbedder{}

	r := NewRunner(st, embedder)
	require.NoError(t, r.RunOnce(context.Background()))

	assert.Len(t, driver.upserted, 10)
	// 10 records in batches of 8.
	assert.Equal(t, 2, embedder.calls)
}

func TestRunOnceNothingPending(t *testing.T) {
	driver := &fakeDriver{upserted: map[int32][]float32{}}
	st := store.New(driver, &profile.Profile{Mode: "demo"})
	t.Cleanup(func() { _ = st.Close() })
	embedder := &fakeEmbedder{}

	r := NewRunner(st, embedder)
	require.NoError(t, r.RunOnce(context.Background()))
	assert.Zero(t, embedder.calls)
}
