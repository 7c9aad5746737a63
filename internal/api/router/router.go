package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/aly-chat/internal/catalog"
	"github.com/wolfman30/aly-chat/internal/chat"
	httpmiddleware "github.com/wolfman30/aly-chat/internal/http/middleware"
	"github.com/wolfman30/aly-chat/internal/render"
	"github.com/wolfman30/aly-chat/internal/webchat"
	"github.com/wolfman30/aly-chat/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	WebChatHandler     *webchat.Handler
	CatalogHandler     *catalog.Handler
	RenderHandler      *render.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// chat replies stream, so no Compress here
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.ChatHandler != nil {
			api.Post("/chat", cfg.ChatHandler.Chat)
		}
		if cfg.WebChatHandler != nil {
			api.Get("/chat/ws", cfg.WebChatHandler.HandleWebSocket)
		}
		if cfg.CatalogHandler != nil {
			api.Get("/models", cfg.CatalogHandler.Models)
			api.Get("/examples", cfg.CatalogHandler.Examples)
			api.Get("/modes", cfg.CatalogHandler.Modes)
		}
		if cfg.RenderHandler != nil {
			api.Post("/render", cfg.RenderHandler.Render)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
