package postgres

import (
	"encoding/json"
	"fmt"
	"strings"
)

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func placeholders(n int) string {
	list := []string{}
	for i := 1; i <= n; i++ {
		list = append(list, placeholder(i))
	}
	return strings.Join(list, ", ")
}

// marshalJSON serializes v for a JSONB column, falling back to a literal
// when v is nil or cannot be serialized.
func marshalJSON(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(bytes)
}

func unmarshalStringSlice(raw string) []string {
	list := []string{}
	if raw == "" {
		return list
	}
	_ = json.Unmarshal([]byte(raw), &list)
	return list
}

func unmarshalScoreMap(raw string) map[string]float64 {
	scores := map[string]float64{}
	if raw == "" {
		return scores
	}
	_ = json.Unmarshal([]byte(raw), &scores)
	return scores
}

func unmarshalMetadata(raw string) map[string]any {
	metadata := map[string]any{}
	if raw == "" {
		return metadata
	}
	_ = json.Unmarshal([]byte(raw), &metadata)
	return metadata
}
