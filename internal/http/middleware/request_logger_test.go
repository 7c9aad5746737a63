package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/aly-chat/pkg/logging"
)

func TestRequestLoggerRecordsStatusAndPreservesFlusher(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("info", &buf)

	flushed := false
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, "chunk")
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
			flushed = true
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !flushed {
		t.Fatalf("expected wrapped writer to implement http.Flusher")
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	var entries []map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(entries))
	}
	done := entries[1]
	if done["msg"] != "request completed" || done["request_id"] != "req-123" {
		t.Fatalf("unexpected completion entry %v", done)
	}
	if done["status"] != float64(http.StatusAccepted) || done["bytes"] != float64(5) {
		t.Fatalf("expected status and bytes, got %v", done)
	}
}

func TestRequestLoggerGeneratesRequestID(t *testing.T) {
	handler := RequestLogger(logging.New("error"))(okHandler(nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Fatalf("expected uuid request id, got %q", rec.Header().Get("X-Request-ID"))
	}
}
