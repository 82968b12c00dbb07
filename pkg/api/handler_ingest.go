package api

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/fileprocessor"
	"github.com/rafiq-ai/rafiq/pkg/ingestion"
)

// IngestTextRequest is the POST /ingest/text request body (spec.md §6).
type IngestTextRequest struct {
	Text       string   `json:"text"`
	SourceType string   `json:"source_type"`
	Tags       []string `json:"tags"`
	Topic      string   `json:"topic"`
	SessionID  string   `json:"session_id"`
}

// IngestResponse is the common ingest_text/ingest_file/ingest_url response
// shape.
type IngestResponse struct {
	Status         string   `json:"status"`
	ChunksStored   int      `json:"chunks_stored"`
	FactsExtracted int      `json:"facts_extracted"`
	Entities       []string `json:"entities"`
	FileHash       string   `json:"file_hash,omitempty"`
}

func toIngestResponse(out *ingestion.Output, fileHash string) *IngestResponse {
	return &IngestResponse{
		Status:         out.Status,
		ChunksStored:   out.ChunksStored,
		FactsExtracted: out.FactsExtracted,
		Entities:       out.Entities,
		FileHash:       fileHash,
	}
}

// ingestTextHandler handles POST /ingest/text.
func (s *Server) ingestTextHandler(c *echo.Context) error {
	var req IngestTextRequest
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	in := ingestion.Input{
		Text:       req.Text,
		SourceType: req.SourceType,
		Tags:       req.Tags,
		Topic:      req.Topic,
		SessionID:  req.SessionID,
	}

	out, err := s.pipeline.Ingest(c.Request().Context(), in)
	if err != nil {
		return mapServiceError(err)
	}
	s.broadcastIfChanged(out)
	return c.JSON(http.StatusOK, toIngestResponse(out, ""))
}

// broadcastIfChanged notifies /graph/viz/live subscribers whenever an
// ingest actually wrote new graph state.
func (s *Server) broadcastIfChanged(out *ingestion.Output) {
	if out.Status != "duplicate" {
		s.broadcaster.Publish("graph_changed")
	}
}

// storedFilePath builds the data/files/{hash[:2]}/{hash}.{ext} layout
// path (spec.md §6 persisted layout).
func storedFilePath(dataDir, hash, ext string) string {
	prefix := hash
	if len(prefix) > 2 {
		prefix = hash[:2]
	}
	return filepath.Join(dataDir, "files", prefix, hash+ext)
}

// ingestFileHandler handles POST /ingest/file (multipart upload).
func (s *Server) ingestFileHandler(c *echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not open uploaded file")
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}

	hash := ingestion.HashBytes(raw)
	filename := fileHeader.Filename
	sessionID := c.FormValue("session_id")

	decision, err := s.pipeline.ResolveReupload(c.Request().Context(), filename, hash)
	if err != nil {
		return mapServiceError(err)
	}
	if decision.Duplicate {
		return c.JSON(http.StatusOK, &IngestResponse{Status: "duplicate", FileHash: hash})
	}

	result, text, err := s.processUploadedFile(c, raw, fileHeader, hash)
	if err != nil {
		return err
	}

	in := ingestion.Input{
		Text:       text,
		SourceType: string(result.Class),
		FileHash:   hash,
		Filename:   filename,
		SessionID:  sessionID,
	}

	var out *ingestion.Output
	if decision.OldHash != "" {
		out, err = s.pipeline.IngestReplacing(c.Request().Context(), in, decision.OldHash)
	} else {
		out, err = s.pipeline.Ingest(c.Request().Context(), in)
	}
	if err != nil {
		return mapServiceError(err)
	}

	s.broadcastIfChanged(out)
	return c.JSON(http.StatusOK, toIngestResponse(out, hash))
}

// processUploadedFile dispatches to the File Processor by content type,
// persists the raw bytes to the data/files layout, and returns the
// extracted text ready for ingestion.
func (s *Server) processUploadedFile(c *echo.Context, raw []byte, header *multipart.FileHeader, hash string) (*fileprocessor.Result, string, error) {
	ctx := c.Request().Context()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimeType := header.Header.Get("Content-Type")

	path := storedFilePath(s.cfg.DataDir, hash, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, "", mapServiceError(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, "", mapServiceError(err)
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		result, err := s.files.ProcessImage(ctx, raw, mimeType)
		if err != nil {
			return nil, "", mapServiceError(err)
		}
		return result, result.Text, nil
	case ext == ".pdf" || mimeType == "application/pdf":
		result, err := s.files.ProcessPDF(raw)
		if err != nil {
			return nil, "", mapServiceError(err)
		}
		return result, result.Text, nil
	case strings.HasPrefix(mimeType, "audio/"):
		result, err := s.files.TranscribeAudio(ctx, raw, header.Filename)
		if err != nil {
			return nil, "", mapServiceError(err)
		}
		return result, result.Text, nil
	default:
		result := s.files.ProcessText(raw)
		return result, result.Text, nil
	}
}

// ingestURLHandler handles POST /ingest/url.
func (s *Server) ingestURLHandler(c *echo.Context) error {
	var req struct {
		URL       string `json:"url"`
		SessionID string `json:"session_id"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	result, err := s.files.FetchURL(c.Request().Context(), req.URL)
	if err != nil {
		return mapServiceError(err)
	}

	in := ingestion.Input{
		Text:       result.Text,
		SourceType: string(result.Class),
		SessionID:  req.SessionID,
	}
	out, err := s.pipeline.Ingest(c.Request().Context(), in)
	if err != nil {
		return mapServiceError(err)
	}
	s.broadcastIfChanged(out)
	return c.JSON(http.StatusOK, toIngestResponse(out, ""))
}

// ingestFileDownloadHandler handles GET /ingest/file/{hash}.
func (s *Server) ingestFileDownloadHandler(c *echo.Context) error {
	hash := c.Param("hash")
	if hash == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "hash is required")
	}

	dir := filepath.Join(s.cfg.DataDir, "files", hash[:min(2, len(hash))])
	entries, err := os.ReadDir(dir)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), hash) {
			return c.File(filepath.Join(dir, entry.Name()))
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "file not found")
}
