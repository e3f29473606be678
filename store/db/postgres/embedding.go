package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/akalem0808/memori/store"
)

// UpsertMemoryEmbedding stores the embedding vector on the record row.
func (d *DB) UpsertMemoryEmbedding(ctx context.Context, recordID int32, embedding []float32) error {
	stmt := `UPDATE memory_record SET embedding = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	result, err := d.db.ExecContext(ctx, stmt, pgvector.NewVector(embedding), recordID)
	if err != nil {
		return errors.Wrap(err, "failed to upsert memory embedding")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Errorf("memory record %d not found", recordID)
	}
	return nil
}

// SearchMemoriesByVector returns the records nearest to the query vector
// by cosine similarity, most similar first.
func (d *DB) SearchMemoriesByVector(ctx context.Context, embedding []float32, limit int) ([]*store.MemoryRecord, []float32, error) {
	if limit <= 0 {
		limit = 10
	}

	// The <=> operator computes cosine distance (1 - cosine_similarity),
	// so ordering by distance ASC yields the most similar rows first.
	query := `
		SELECT
			id, uid, creator_id, created_ts, updated_ts,
			text, emotion, emotion_scores, topics, tags,
			importance_score, metadata, audio_path,
			1 - (embedding <=> ` + placeholder(1) + `) AS score
		FROM memory_record
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> ` + placeholder(2) + `
		LIMIT ` + placeholder(3)

	vector := pgvector.NewVector(embedding)
	rows, err := d.db.QueryContext(ctx, query, vector, vector, limit)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	records := []*store.MemoryRecord{}
	scores := []float32{}
	for rows.Next() {
		var record store.MemoryRecord
		var emotionScores, topics, tags, metadata string
		var importanceScore sql.NullFloat64
		var score float32

		if err := rows.Scan(
			&record.ID,
			&record.UID,
			&record.CreatorID,
			&record.CreatedTs,
			&record.UpdatedTs,
			&record.Text,
			&record.Emotion,
			&emotionScores,
			&topics,
			&tags,
			&importanceScore,
			&metadata,
			&record.AudioPath,
			&score,
		); err != nil {
			return nil, nil, errors.Wrap(err, "failed to scan vector search result")
		}

		record.EmotionScores = unmarshalScoreMap(emotionScores)
		record.Topics = unmarshalStringSlice(topics)
		record.Tags = unmarshalStringSlice(tags)
		record.Metadata = unmarshalMetadata(metadata)
		if importanceScore.Valid {
			record.ImportanceScore = &importanceScore.Float64
		}

		records = append(records, &record)
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to iterate vector search results")
	}

	return records, scores, nil
}
