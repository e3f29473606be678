package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/akalem0808/memori/store"
)

func (d *DB) CreateMemoryRecord(ctx context.Context, create *store.MemoryRecord) (*store.MemoryRecord, error) {
	fields := []string{
		"uid", "creator_id", "text", "emotion", "emotion_scores",
		"topics", "tags", "metadata", "audio_path",
	}
	placeholderValues := []any{
		create.UID, create.CreatorID, create.Text, create.Emotion,
		marshalJSON(create.EmotionScores, "{}"),
		marshalJSON(create.Topics, "[]"),
		marshalJSON(create.Tags, "[]"),
		marshalJSON(create.Metadata, "{}"),
		create.AudioPath,
	}

	if create.ImportanceScore != nil {
		fields = append(fields, "importance_score")
		placeholderValues = append(placeholderValues, *create.ImportanceScore)
	}
	// Capture time of 0 means unknown; keep the column default.
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO memory_record (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create memory record")
	}

	return create, nil
}

func (d *DB) ListMemoryRecords(ctx context.Context, find *store.FindMemoryRecord) ([]*store.MemoryRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "memory_record.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "memory_record.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "memory_record.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Emotion; v != nil {
		where, args = append(where, "memory_record.emotion = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "memory_record.created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if find.MissingEmbedding {
		where = append(where, "memory_record.embedding IS NULL")
	}

	query := `
		SELECT
			id, uid, creator_id, created_ts, updated_ts,
			text, emotion, emotion_scores, topics, tags,
			importance_score, metadata, audio_path
		FROM memory_record
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY memory_record.created_ts DESC, memory_record.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query memory records")
	}
	defer rows.Close()

	list := make([]*store.MemoryRecord, 0)
	for rows.Next() {
		record, err := scanMemoryRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate memory records")
	}

	return list, nil
}

func scanMemoryRecord(rows *sql.Rows) (*store.MemoryRecord, error) {
	var record store.MemoryRecord
	var emotionScores, topics, tags, metadata string
	var importanceScore sql.NullFloat64

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
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan memory record")
	}

	record.EmotionScores = unmarshalScoreMap(emotionScores)
	record.Topics = unmarshalStringSlice(topics)
	record.Tags = unmarshalStringSlice(tags)
	record.Metadata = unmarshalMetadata(metadata)
	if importanceScore.Valid {
		record.ImportanceScore = &importanceScore.Float64
	}

	return &record, nil
}

func (d *DB) UpdateMemoryRecord(ctx context.Context, update *store.UpdateMemoryRecord) error {
	set, args := []string{}, []any{}

	if v := update.Text; v != nil {
		set, args = append(set, "text = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Emotion; v != nil {
		set, args = append(set, "emotion = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.EmotionScores; v != nil {
		set, args = append(set, "emotion_scores = "+placeholder(len(args)+1)), append(args, marshalJSON(v, "{}"))
	}
	if v := update.Topics; v != nil {
		set, args = append(set, "topics = "+placeholder(len(args)+1)), append(args, marshalJSON(v, "[]"))
	}
	if v := update.Tags; v != nil {
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, marshalJSON(v, "[]"))
	}
	if v := update.ImportanceScore; v != nil {
		set, args = append(set, "importance_score = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Metadata; v != nil {
		set, args = append(set, "metadata = "+placeholder(len(args)+1)), append(args, marshalJSON(v, "{}"))
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)

	stmt := `UPDATE memory_record SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to update memory record")
	}

	return nil
}

func (d *DB) DeleteMemoryRecord(ctx context.Context, delete *store.DeleteMemoryRecord) error {
	where, args := []string{}, []any{}

	if v := delete.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := delete.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(delete.UIDs) > 0 {
		marks := []string{}
		for _, uid := range delete.UIDs {
			marks = append(marks, placeholder(len(args)+1))
			args = append(args, uid)
		}
		where = append(where, "uid IN ("+strings.Join(marks, ", ")+")")
	}
	if len(where) == 0 {
		return errors.New("no delete condition provided")
	}

	stmt := `DELETE FROM memory_record WHERE ` + strings.Join(where, " AND ")
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return errors.Wrap(err, "failed to delete memory record")
	}

	// Bulk deletion by UIDs tolerates missing rows; targeted deletion does not.
	if delete.ID != nil || delete.UID != nil {
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("memory record not found")
		}
	}

	return nil
}
