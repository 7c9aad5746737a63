package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/aly-chat/internal/completion"
	"github.com/wolfman30/aly-chat/internal/observability/metrics"
	"github.com/wolfman30/aly-chat/internal/prompts"
	"github.com/wolfman30/aly-chat/pkg/logging"
)

const maxRequestBody = 1 << 20

var missingKeyResponse = ErrorResponse{
	Error:   "OpenRouter API key not configured",
	Details: "Please set OPENROUTER_API_KEY environment variable",
}

// Handler serves the chat endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
}

func NewHandler(service *Service, logger *logging.Logger, m *metrics.ChatMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger, metrics: m}
}

// ChatRequest is the inbound chat body.
type ChatRequest struct {
	Messages  []completion.Message `json:"messages"`
	Model     string               `json:"model"`
	FocusMode string               `json:"focusMode"`
}

// Request converts the body, falling back to the general mode for unknown
// focus modes.
func (b ChatRequest) Request() Request {
	return Request{
		Messages:  b.Messages,
		Model:     b.Model,
		FocusMode: prompts.ParseFocusMode(b.FocusMode),
	}
}

// ErrorResponse is the JSON error body returned to callers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if !h.service.Configured() {
		h.logger.Error("chat: completion provider key missing")
		writeJSON(w, http.StatusInternalServerError, missingKeyResponse)
		return
	}

	var body ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.service.MaxDuration())
	defer cancel()

	start := time.Now()
	reply, err := h.service.Respond(ctx, body.Request())
	if err != nil {
		h.writeError(w, err)
		return
	}

	if reply.Stream == nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, reply.Text)
		return
	}
	defer reply.Stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		text, err := reply.Stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				h.logger.Info("chat: stream ended by cancellation", "reason", ctx.Err().Error(), "path", reply.Path)
			} else {
				h.logger.Error("chat: stream read failed", "error", err, "path", reply.Path)
			}
			break
		}
		if _, err := io.WriteString(w, text); err != nil {
			h.logger.Info("chat: client went away mid-stream", "error", err, "path", reply.Path)
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	h.metrics.ObserveCompletion(reply.Path, time.Since(start).Seconds())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		h.logger.Info("chat: client went away before the reply started")
		return
	}
	status, resp := DescribeError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("chat: request failed", "error", err)
	}
	writeJSON(w, status, resp)
}

// StatusClientClosedRequest is reported for requests the caller abandoned.
const StatusClientClosedRequest = 499

// DescribeError maps a Respond error to an HTTP status and error body.
// Provider failures mirror the upstream status; the stream cap maps to 504.
func DescribeError(err error) (int, ErrorResponse) {
	var upErr *completion.UpstreamError
	switch {
	case errors.As(err, &upErr):
		status := upErr.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, ErrorResponse{
			Error:   "Failed to get response from OpenRouter",
			Details: upErr.Details,
		}
	case errors.Is(err, completion.ErrMissingAPIKey):
		return http.StatusInternalServerError, missingKeyResponse
	case errors.Is(err, ErrEmptyConversation), errors.Is(err, ErrNoUserMessage):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid conversation", Details: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "Request timed out", Details: err.Error()}
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, ErrorResponse{Error: "Request cancelled", Details: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process chat request",
			Details: err.Error(),
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
