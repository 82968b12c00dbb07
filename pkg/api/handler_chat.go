package api

import (
	"bufio"
	"encoding/json"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
)

// ChatRequest is the POST /chat/ and /chat/stream request body.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the POST /chat/ response body.
type ChatResponse struct {
	Reply         string   `json:"reply"`
	ToolsUsed     []string `json:"tools_used"`
	Fallback      bool     `json:"fallback"`
	WriteOccurred bool     `json:"write_occurred"`
}

// chatHandler handles POST /chat/ (spec.md §6, non-streaming turn).
func (s *Server) chatHandler(c *echo.Context) error {
	var req ChatRequest
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.SessionID == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and message are required")
	}

	reply, err := s.orch.Run(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return mapServiceError(err)
	}
	if reply.WriteOccurred {
		s.broadcaster.Publish("graph_changed")
	}

	return c.JSON(http.StatusOK, &ChatResponse{
		Reply:         reply.Text,
		ToolsUsed:     reply.ToolsUsed,
		Fallback:      reply.Fallback,
		WriteOccurred: reply.WriteOccurred,
	})
}

// ndjsonEvent is one line of the /chat/stream response, tolerant of
// unknown "type" values per spec.md §6 NDJSON contract.
type ndjsonEvent struct {
	Type      string   `json:"type"`
	Token     string   `json:"token,omitempty"`
	ToolsUsed []string `json:"tools_used,omitempty"`
	Reply     string   `json:"reply,omitempty"`
	Fallback  bool     `json:"fallback,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// chatStreamHandler handles POST /chat/stream: an NDJSON stream of
// meta/token/tool_call/done lines (spec.md §6).
func (s *Server) chatStreamHandler(c *echo.Context) error {
	var req ChatRequest
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.SessionID == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and message are required")
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.WriteHeader(http.StatusOK)

	w := bufio.NewWriter(resp)
	defer w.Flush()

	writeLine := func(ev ndjsonEvent) {
		b, err := json.Marshal(ev)
		if err != nil {
			return
		}
		_, _ = w.Write(b)
		_, _ = w.Write([]byte("\n"))
		w.Flush()
		resp.Flush()
	}

	writeLine(ndjsonEvent{Type: "meta", ToolsUsed: []string{}})

	for ev := range s.orch.RunStream(c.Request().Context(), req.SessionID, req.Message) {
		switch ev.Type {
		case llmgateway.StreamToken:
			writeLine(ndjsonEvent{Type: "token", Token: ev.Token})
		case llmgateway.StreamToolCall:
			writeLine(ndjsonEvent{Type: "tool_call", ToolsUsed: ev.ToolsUsed})
		case llmgateway.StreamDone:
			if ev.Done != nil {
				if ev.Done.WriteOccurred {
					s.broadcaster.Publish("graph_changed")
				}
				writeLine(ndjsonEvent{
					Type:      "done",
					Reply:     ev.Done.Text,
					ToolsUsed: ev.Done.ToolsUsed,
					Fallback:  ev.Done.Fallback,
				})
			} else {
				writeLine(ndjsonEvent{Type: "done"})
			}
		case llmgateway.StreamError:
			msg := ""
			if ev.Err != nil {
				msg = ev.Err.Error()
			}
			writeLine(ndjsonEvent{Type: "error", Error: msg})
		}
	}

	return nil
}

// chatSummaryHandler handles GET /chat/summary?session_id=.
func (s *Server) chatSummaryHandler(c *echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	// The conversation summary lives in the Memory Store, reached through
	// the orchestrator's own wiring; route a thin read through the graph
	// service's wired memory store is not exposed here, so the
	// orchestrator is asked to hand back the current summary directly.
	summary, err := s.orch.ConversationSummary(c.Request().Context(), sessionID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"session_id": sessionID, "summary": summary})
}
