package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	apierrors "github.com/akalem0808/memori/server/internal/errors"
	"github.com/akalem0808/memori/store"
)

type similarRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit"`
}

type similarMemory struct {
	Memory *Memory `json:"memory"`
	Score  float32 `json:"score"`
}

// FindSimilarMemories embeds the query text and searches by vector
// similarity. Only available on drivers with a vector index.
func (s *APIV1Service) FindSimilarMemories(c echo.Context) error {
	if s.EmbeddingService == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "semantic search requires AI to be enabled").
			SetInternal(apierrors.ModelUnavailable("embedding service is not configured"))
	}

	var req similarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed similar payload")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	if req.Limit <= 0 || req.Limit > 50 {
		req.Limit = 10
	}

	ctx := c.Request().Context()
	vector, err := s.EmbeddingService.Embed(ctx, req.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "embedding failed").SetInternal(err)
	}

	records, scores, err := s.Store.SearchMemoriesByVector(ctx, vector, req.Limit)
	if err != nil {
		if errors.Is(err, store.ErrVectorSearchNotSupported) {
			return echo.NewHTTPError(http.StatusNotImplemented, "semantic search requires the postgres driver").
				SetInternal(apierrors.VectorSearchUnsupported())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "vector search failed").SetInternal(err)
	}

	results := make([]similarMemory, 0, len(records))
	for i, record := range records {
		results = append(results, similarMemory{
			Memory: convertMemoryRecord(record),
			Score:  scores[i],
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}
