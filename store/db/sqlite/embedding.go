package sqlite

import (
	"context"

	"github.com/akalem0808/memori/store"
)

// SQLite keeps the journal lightweight and has no vector index. Semantic
// search is available on the postgres driver only.

func (*DB) UpsertMemoryEmbedding(_ context.Context, _ int32, _ []float32) error {
	return store.ErrVectorSearchNotSupported
}

func (*DB) SearchMemoriesByVector(_ context.Context, _ []float32, _ int) ([]*store.MemoryRecord, []float32, error) {
	return nil, nil, store.ErrVectorSearchNotSupported
}
