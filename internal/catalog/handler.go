package catalog

import (
	"encoding/json"
	"net/http"
)

// Handler serves the read-only catalog endpoints.
type Handler struct {
	defaultModel string
}

func NewHandler(defaultModel string) *Handler {
	if defaultModel == "" {
		defaultModel = models[0].ID
	}
	return &Handler{defaultModel: defaultModel}
}

type modelsResponse struct {
	Models        []Model `json:"models"`
	Default       string  `json:"default"`
	PreferenceKey string  `json:"preferenceKey"`
}

// Models handles GET /api/models.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{
		Models:        Models(),
		Default:       h.defaultModel,
		PreferenceKey: ModelPreferenceKey,
	})
}

// Examples handles GET /api/examples.
func (h *Handler) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"groups": Examples()})
}

// Modes handles GET /api/modes.
func (h *Handler) Modes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"modes": Modes()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
