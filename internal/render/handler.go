package render

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/aly-chat/pkg/logging"
)

const maxRenderBody = 1 << 20

// Handler exposes the sanitizer over HTTP for the chat front end.
type Handler struct {
	logger *logging.Logger
}

func NewHandler(logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{logger: logger}
}

type renderRequest struct {
	Content string `json:"content"`
}

type renderResponse struct {
	HTML string `json:"html"`
}

// Render handles POST /api/render.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRenderBody)).Decode(&req); err != nil {
		h.logger.Debug("render: invalid request body", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body", "details": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(renderResponse{HTML: Render(req.Content)})
}
