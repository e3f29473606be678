// Package embedding backfills vectors for records created while the
// embedding service was unavailable, or imported before AI was enabled.
package embedding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/akalem0808/memori/plugin/ai"
	"github.com/akalem0808/memori/store"
)

type Runner struct {
	store            *store.Store
	embeddingService ai.EmbeddingService
	interval         time.Duration
	batchSize        int
}

func NewRunner(store *store.Store, embeddingService ai.EmbeddingService) *Runner {
	return &Runner{
		store:            store,
		embeddingService: embeddingService,
		interval:         2 * time.Minute,
		batchSize:        8,
	}
}

// Run starts the background task. It returns when the context is
// cancelled or when the active driver turns out to have no vector
// storage.
func (r *Runner) Run(ctx context.Context) {
	if err := r.RunOnce(ctx); errors.Is(err, store.ErrVectorSearchNotSupported) {
		slog.Info("embedding runner disabled, driver has no vector storage")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.RunOnce(ctx); errors.Is(err, store.ErrVectorSearchNotSupported) {
				slog.Info("embedding runner disabled, driver has no vector storage")
				return
			}
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce processes all records currently missing a vector.
func (r *Runner) RunOnce(ctx context.Context) error {
	fetchLimit := r.batchSize * 20
	records, err := r.store.ListMemoryRecords(ctx, &store.FindMemoryRecord{
		MissingEmbedding: true,
		Limit:            &fetchLimit,
	})
	if err != nil {
		slog.Error("failed to find records without embedding", "error", err)
		return err
	}
	if len(records) == 0 {
		return nil
	}

	slog.Info("backfilling embeddings", "count", len(records))

	for i := 0; i < len(records); i += r.batchSize {
		select {
		case <-ctx.Done():
			slog.Info("embedding backfill cancelled", "processed", i, "total", len(records))
			return ctx.Err()
		default:
		}

		end := min(i+r.batchSize, len(records))
		if err := r.processBatch(ctx, records[i:end]); err != nil {
			if errors.Is(err, store.ErrVectorSearchNotSupported) {
				return err
			}
			slog.Error("failed to process embedding batch", "error", err)
		}
	}
	return nil
}

func (r *Runner) processBatch(ctx context.Context, records []*store.MemoryRecord) error {
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	vectors, err := r.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	for i, record := range records {
		if err := r.store.UpsertMemoryEmbedding(ctx, record.ID, vectors[i]); err != nil {
			if errors.Is(err, store.ErrVectorSearchNotSupported) {
				return err
			}
			slog.Error("failed to upsert embedding", "uid", record.UID, "error", err)
		}
	}
	return nil
}
