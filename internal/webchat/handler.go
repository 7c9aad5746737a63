package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/aly-chat/internal/chat"
	"github.com/wolfman30/aly-chat/internal/completion"
	"github.com/wolfman30/aly-chat/pkg/logging"
	"golang.org/x/net/websocket"
)

// Responder produces chat replies.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (*chat.Reply, error)
	Configured() bool
	MaxDuration() time.Duration
}

// Handler serves the WebSocket chat transport. Each connection runs at most
// one generation at a time; a "stop" frame cancels it.
type Handler struct {
	responder Responder
	logger    *logging.Logger
	origins   map[string]struct{}

	mu       sync.RWMutex
	sessions map[string]*session
}

// InboundMessage is what the browser sends.
type InboundMessage struct {
	Type string `json:"type"` // "chat", "stop", "ping"
	chat.ChatRequest
}

// OutboundMessage is what we send to the browser.
type OutboundMessage struct {
	Type      string `json:"type"` // "session", "delta", "done", "error", "pong"
	Text      string `json:"text,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Path      string `json:"path,omitempty"`
	Stopped   bool   `json:"stopped,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   string `json:"details,omitempty"`
	Status    int    `json:"status,omitempty"`
}

type session struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex

	genMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHandler creates a WebSocket chat handler. An empty allowedOrigins, or
// one containing "*", accepts any origin.
func NewHandler(responder Responder, allowedOrigins []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	origins := map[string]struct{}{}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			origins = map[string]struct{}{}
			break
		}
		if o != "" {
			origins[o] = struct{}{}
		}
	}
	return &Handler{
		responder: responder,
		logger:    logger,
		origins:   origins,
		sessions:  make(map[string]*session),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// ActiveSessions reports the number of open connections.
func (h *Handler) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// HandleWebSocket upgrades to WebSocket and serves chat turns.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	srv := websocket.Server{
		Handshake: h.handshake,
		Handler: func(conn *websocket.Conn) {
			h.serveWS(conn)
		},
	}
	srv.ServeHTTP(w, r)
}

func (h *Handler) handshake(cfg *websocket.Config, r *http.Request) error {
	origin, err := websocket.Origin(cfg, r)
	if err != nil {
		return err
	}
	cfg.Origin = origin
	if len(h.origins) == 0 {
		return nil
	}
	if origin == nil {
		return errors.New("webchat: missing origin")
	}
	if _, ok := h.origins[originString(origin)]; !ok {
		return fmt.Errorf("webchat: origin %s not allowed", originString(origin))
	}
	return nil
}

func originString(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

func (h *Handler) serveWS(conn *websocket.Conn) {
	s := &session{id: generateSessionID(), conn: conn}
	// hijacked connections keep the server's write deadline
	_ = conn.SetDeadline(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	defer func() {
		cancel()
		s.wg.Wait()
		h.mu.Lock()
		delete(h.sessions, s.id)
		h.mu.Unlock()
	}()

	h.logger.Info("webchat: connection opened", "session_id", s.id)
	s.send(OutboundMessage{Type: "session", SessionID: s.id})

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Debug("webchat: receive failed", "session_id", s.id, "error", err)
			}
			h.logger.Info("webchat: connection closed", "session_id", s.id)
			return
		}

		switch msg.Type {
		case "ping":
			s.send(OutboundMessage{Type: "pong"})
		case "stop":
			s.stop()
		case "chat":
			h.startGeneration(ctx, s, msg.ChatRequest)
		default:
			s.send(OutboundMessage{Type: "error", Error: "Unknown message type", Details: msg.Type})
		}
	}
}

func (h *Handler) startGeneration(parent context.Context, s *session, body chat.ChatRequest) {
	if !h.responder.Configured() {
		_, resp := chat.DescribeError(completion.ErrMissingAPIKey)
		s.send(errorMessage(http.StatusInternalServerError, resp))
		return
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.cancel != nil {
		s.send(OutboundMessage{Type: "error", Error: "A response is already in progress", Details: "send a stop message first"})
		return
	}
	ctx, cancel := context.WithTimeout(parent, h.responder.MaxDuration())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.genMu.Lock()
			s.cancel = nil
			s.genMu.Unlock()
			cancel()
		}()
		h.generate(ctx, s, body.Request())
	}()
}

func (h *Handler) generate(ctx context.Context, s *session, req chat.Request) {
	reply, err := h.responder.Respond(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		s.send(OutboundMessage{Type: "done", Stopped: true})
		return
	}
	if err != nil {
		status, resp := chat.DescribeError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("webchat: request failed", "session_id", s.id, "error", err)
		}
		s.send(errorMessage(status, resp))
		return
	}
	if reply.Stream == nil {
		if ctx.Err() != nil {
			s.send(OutboundMessage{Type: "done", Path: reply.Path, Stopped: true})
			return
		}
		s.send(OutboundMessage{Type: "delta", Text: reply.Text, Path: reply.Path})
		s.send(OutboundMessage{Type: "done", Path: reply.Path})
		return
	}
	defer reply.Stream.Close()

	for {
		text, err := reply.Stream.Recv()
		if errors.Is(err, io.EOF) {
			s.send(OutboundMessage{Type: "done", Path: reply.Path, Stopped: ctx.Err() != nil})
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				s.send(OutboundMessage{Type: "done", Path: reply.Path, Stopped: true})
				return
			}
			h.logger.Error("webchat: stream read failed", "session_id", s.id, "error", err)
			s.send(OutboundMessage{Type: "error", Error: "Stream interrupted", Details: err.Error()})
			return
		}
		if err := s.send(OutboundMessage{Type: "delta", Text: text}); err != nil {
			return
		}
	}
}

func errorMessage(status int, resp chat.ErrorResponse) OutboundMessage {
	return OutboundMessage{Type: "error", Error: resp.Error, Details: resp.Details, Status: status}
}

func (s *session) send(msg OutboundMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return websocket.JSON.Send(s.conn, msg)
}

func (s *session) stop() {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
