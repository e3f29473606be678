package store

// MemoryRecord represents one captured or transcribed audio event with its
// derived metadata. All fields except ID/UID are optional; readers must
// tolerate zero values.
type MemoryRecord struct {
	ID        int32
	UID       string
	CreatorID int32
	// CreatedTs is the capture time as unix seconds UTC. 0 means the capture
	// time is unknown; such records are excluded from recency aggregates.
	CreatedTs int64
	UpdatedTs int64

	// Text is the transcribed or user-entered content. May be empty.
	Text string
	// Emotion is a single categorical label. Empty means absent.
	Emotion string
	// EmotionScores maps emotion label to confidence in [0,1].
	EmotionScores map[string]float64
	// Topics is an ordered sequence of topic labels; order is display-relevant.
	Topics []string
	// Tags is a set of free-form labels.
	Tags []string
	// ImportanceScore is in [0,1]; nil means absent.
	ImportanceScore *float64
	// Metadata is an open key-value structure, opaque to filtering.
	Metadata map[string]any
	// AudioPath is the stored upload path relative to the data dir, if any.
	AudioPath string
}

// FindMemoryRecord specifies the conditions for finding memory records.
// Conditions are combined with AND; nil fields are ignored.
type FindMemoryRecord struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	Emotion   *string
	// CreatedAfter is an inclusive unix-seconds lower bound on CreatedTs.
	CreatedAfter *int64
	// MissingEmbedding selects records that have no stored vector yet.
	// Drivers without vector storage report none.
	MissingEmbedding bool
	Limit            *int
	Offset           *int
}

// UpdateMemoryRecord specifies the fields to update; nil fields are unchanged.
type UpdateMemoryRecord struct {
	ID              int32
	Text            *string
	Emotion         *string
	EmotionScores   map[string]float64
	Topics          []string
	Tags            []string
	ImportanceScore *float64
	Metadata        map[string]any
	UpdatedTs       *int64
}

// DeleteMemoryRecord specifies the conditions for deleting memory records.
type DeleteMemoryRecord struct {
	ID  *int32
	UID *string
	// UIDs enables bulk deletion.
	UIDs []string
}
