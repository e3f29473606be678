package v1

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierrors "github.com/akalem0808/memori/server/internal/errors"
)

const maxUploadBytes = 64 << 20 // 64 MiB

var audioExtensions = map[string]bool{
	".mp3": true, ".mp4": true, ".m4a": true, ".wav": true,
	".webm": true, ".ogg": true, ".flac": true, ".mpeg": true, ".mpga": true,
}

// UploadMemory accepts a multipart audio upload, transcribes it and runs
// the transcript through the same pipeline as a text entry. An optional
// "metadata" part carries a createMemoryRequest JSON to merge in.
func (s *APIV1Service) UploadMemory(c echo.Context) error {
	if s.Transcriber == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "transcription is not configured").
			SetInternal(apierrors.ModelUnavailable("transcriber is not configured"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "audio file too large")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get(echo.HeaderContentType)
	if !audioExtensions[ext] && !strings.HasPrefix(contentType, "audio/") {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported file type, expected audio")
	}

	ctx := c.Request().Context()

	// Transcription holds decoded audio in memory; cap how many run at
	// once.
	if err := s.transcribeSemaphore.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server busy").SetInternal(err)
	}
	defer s.transcribeSemaphore.Release(1)

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload").SetInternal(err)
	}
	defer src.Close()

	audioPath, err := s.saveAudio(src, ext)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store audio").SetInternal(err)
	}

	audioFile, err := os.Open(filepath.Join(s.Profile.Data, audioPath))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reopen audio").SetInternal(err)
	}
	defer audioFile.Close()

	started := time.Now()
	transcript, err := s.Transcriber.Transcribe(ctx, audioFile, fileHeader.Filename)
	// Billing is per audio minute; without decoding the file, a megabyte
	// per minute is a workable estimate for compressed speech.
	s.CostMonitor.RecordTranscription(
		time.Duration(float64(fileHeader.Size)/(1<<20)*float64(time.Minute)),
		time.Since(started), err)
	if err != nil {
		s.removeAudio(audioPath)
		return echo.NewHTTPError(http.StatusBadGateway, "transcription failed").
			SetInternal(apierrors.TranscriptionFailed("audio model rejected the file", err))
	}
	if transcript == "" {
		s.removeAudio(audioPath)
		return echo.NewHTTPError(http.StatusBadRequest, "no speech detected in audio")
	}

	req := &createMemoryRequest{}
	if raw := c.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), req); err != nil {
			s.removeAudio(audioPath)
			return echo.NewHTTPError(http.StatusBadRequest, "malformed metadata json")
		}
	}
	req.Text = transcript

	record, err := s.buildRecord(c, req)
	if err != nil {
		s.removeAudio(audioPath)
		return err
	}
	record.AudioPath = audioPath

	created, err := s.Store.CreateMemoryRecord(ctx, record)
	if err != nil {
		s.removeAudio(audioPath)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create memory").SetInternal(err)
	}

	s.upsertEmbedding(c, created)

	return c.JSON(http.StatusOK, convertMemoryRecord(created))
}

// saveAudio writes the upload under the data dir and returns its
// relative path.
func (s *APIV1Service) saveAudio(src io.Reader, ext string) (string, error) {
	dir := filepath.Join(s.Profile.Data, "uploads")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	name := time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return filepath.Join("uploads", name), nil
}

func (s *APIV1Service) removeAudio(audioPath string) {
	if err := os.Remove(filepath.Join(s.Profile.Data, audioPath)); err != nil {
		slog.Warn("failed to remove audio file", "path", audioPath, "error", err)
	}
}
