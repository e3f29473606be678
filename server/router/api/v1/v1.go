// Package v1 exposes the REST API: authentication, memory CRUD, audio
// upload, filtering, statistics, insights and export.
package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/akalem0808/memori/internal/profile"
	"github.com/akalem0808/memori/plugin/ai"
	"github.com/akalem0808/memori/server/finops"
	"github.com/akalem0808/memori/server/insights"
	"github.com/akalem0808/memori/server/service/memory"
	"github.com/akalem0808/memori/server/stats"
	"github.com/akalem0808/memori/store"
)

// APIV1Service bundles everything the v1 handlers need.
type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	Collector      *stats.Collector
	InsightEngine  *insights.Engine
	Highlighter    *memory.Highlighter
	CostMonitor    *finops.CostMonitor

	Transcriber       ai.Transcriber
	EmotionClassifier ai.EmotionClassifier
	EmbeddingService  ai.EmbeddingService

	// transcribeSemaphore caps concurrent transcriptions; audio decoding
	// is the most memory-hungry thing this server does.
	transcribeSemaphore *semaphore.Weighted
}

func NewAPIV1Service(secret string, prof *profile.Profile, st *store.Store, collector *stats.Collector) *APIV1Service {
	s := &APIV1Service{
		Secret:              secret,
		Profile:             prof,
		Store:               st,
		Collector:           collector,
		InsightEngine:       insights.NewEngine(insights.DefaultConfig()),
		Highlighter:         memory.NewHighlighter(),
		CostMonitor:         finops.NewCostMonitor(),
		transcribeSemaphore: semaphore.NewWeighted(3),
	}

	if prof.IsAIEnabled() {
		cfg := ai.NewConfigFromProfile(prof)
		if transcriber, err := ai.NewTranscriber(&cfg.Transcription); err == nil {
			s.Transcriber = transcriber
		} else {
			slog.Warn("transcriber disabled", "error", err)
		}
		if classifier, err := ai.NewEmotionClassifier(&cfg.Emotion); err == nil {
			s.EmotionClassifier = classifier
		} else {
			slog.Warn("emotion classifier disabled", "error", err)
		}
		if embedder, err := ai.NewEmbeddingService(&cfg.Embedding); err == nil {
			s.EmbeddingService = embedder
		} else {
			slog.Warn("embedding service disabled", "error", err)
		}
	}

	return s
}

// RegisterRoutes mounts the v1 routes on the echo group.
func (s *APIV1Service) RegisterRoutes(apiGroup *echo.Group) {
	apiGroup.POST("/auth/token", s.SignIn)

	memories := apiGroup.Group("/memories", s.JWTMiddleware())
	memories.GET("", s.ListMemories)
	memories.POST("", s.CreateMemory)
	memories.POST("/upload", s.UploadMemory)
	memories.POST("/bulk-delete", s.BulkDeleteMemories)
	memories.POST("/similar", s.FindSimilarMemories)
	memories.GET("/stats", s.GetMemoryStats)
	memories.GET("/filters", s.GetFilterOptions)
	memories.GET("/insights", s.GetInsights)
	memories.GET("/trends", s.GetTrends)
	memories.GET("/export", s.ExportMemories)
	memories.GET("/usage", s.GetAIUsage)
	memories.GET("/:uid", s.GetMemory)
	memories.PUT("/:uid", s.UpdateMemory)
	memories.DELETE("/:uid", s.DeleteMemory)
}
