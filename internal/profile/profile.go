package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory (database file, uploaded audio)
	Data string
	// DSN points to where memori stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your memori instance.
	InstanceURL string
	// Secret signs access tokens.
	Secret string

	// AI Configuration
	AIEnabled         bool   // MEMORI_AI_ENABLED
	AIProvider        string // MEMORI_AI_PROVIDER (default: openai)
	AIAPIKey          string // MEMORI_AI_API_KEY
	AIBaseURL         string // MEMORI_AI_BASE_URL (default: https://api.openai.com/v1)
	AITranscribeModel string // MEMORI_AI_TRANSCRIBE_MODEL (default: whisper-1)
	AIEmotionModel    string // MEMORI_AI_EMOTION_MODEL (default: gpt-4o-mini)
	AIEmbeddingModel  string // MEMORI_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads AI and secret configuration from MEMORI_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("MEMORI_AI_ENABLED") == "true"
	p.AIProvider = getEnvOrDefault("MEMORI_AI_PROVIDER", "openai")
	p.AIAPIKey = os.Getenv("MEMORI_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("MEMORI_AI_BASE_URL", "https://api.openai.com/v1")
	p.AITranscribeModel = getEnvOrDefault("MEMORI_AI_TRANSCRIBE_MODEL", "whisper-1")
	p.AIEmotionModel = getEnvOrDefault("MEMORI_AI_EMOTION_MODEL", "gpt-4o-mini")
	p.AIEmbeddingModel = getEnvOrDefault("MEMORI_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	if v := os.Getenv("MEMORI_SECRET"); v != "" {
		p.Secret = v
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "memori")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/memori"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("memori_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
