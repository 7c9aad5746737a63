package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wolfman30/aly-chat/internal/completion"
	"github.com/wolfman30/aly-chat/internal/observability/metrics"
	"github.com/wolfman30/aly-chat/internal/search"
	"github.com/wolfman30/aly-chat/pkg/logging"
)

type providerCall struct {
	Model       string               `json:"model"`
	Messages    []completion.Message `json:"messages"`
	Stream      bool                 `json:"stream"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
}

// fakeProvider mimics the OpenRouter chat completions endpoint.
type fakeProvider struct {
	mu             sync.Mutex
	calls          []providerCall
	optimized      string
	optimizeStatus int
	streamStatus   int
	streamBody     string
	fragments      []string
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var call providerCall
	_ = json.NewDecoder(r.Body).Decode(&call)
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if !call.Stream {
		if f.optimizeStatus != 0 {
			w.WriteHeader(f.optimizeStatus)
			io.WriteString(w, `{"error":{"message":"optimizer unavailable"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":%q}}]}`, f.optimized)
		return
	}

	if f.streamStatus != 0 {
		w.WriteHeader(f.streamStatus)
		io.WriteString(w, f.streamBody)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	flusher := w.(http.Flusher)
	for _, fragment := range f.fragments {
		payload, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"index": 0, "delta": map[string]any{"content": fragment}}},
		})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
	io.WriteString(w, "data: [DONE]\n\n")
}

func (f *fakeProvider) snapshot() []providerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]providerCall(nil), f.calls...)
}

func (f *fakeProvider) streamCalls() []providerCall {
	var out []providerCall
	for _, c := range f.snapshot() {
		if c.Stream {
			out = append(out, c)
		}
	}
	return out
}

type fakeSearcher struct {
	mu      sync.Mutex
	outcome search.Outcome
	queries []string
	limits  []int
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) search.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	out := f.outcome
	out.Query = query
	return out
}

func newTestService(t *testing.T, provider *fakeProvider, searcher Searcher) *Service {
	t.Helper()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)
	logger := logging.New("error")
	client := completion.NewClient("sk-or-test", completion.WithBaseURL(srv.URL), completion.WithLogger(logger))
	return NewService(Config{
		Completion: client,
		Search:     searcher,
		Logger:     logger,
	})
}

func drain(t *testing.T, s *completion.Stream) string {
	t.Helper()
	defer s.Close()
	var out string
	for {
		text, err := s.Recv()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		out += text
	}
}

// blockingSearcher parks until the caller's context is done and reports the
// failure the Brave client would.
type blockingSearcher struct {
	started chan struct{}
}

func newBlockingSearcher() *blockingSearcher {
	return &blockingSearcher{started: make(chan struct{})}
}

func (b *blockingSearcher) Search(ctx context.Context, query string, _ int) search.Outcome {
	close(b.started)
	<-ctx.Done()
	return search.Outcome{Success: false, Results: []search.Result{}, Query: query, Error: search.FailureMessage}
}

// stallingProvider accepts the streaming request but never answers it.
func stallingProvider(arrived chan<- struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var call providerCall
		_ = json.NewDecoder(r.Body).Decode(&call)
		if !call.Stream {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"q"}}]}`)
			return
		}
		close(arrived)
		<-r.Context().Done()
	}
}

func newMeteredService(t *testing.T, provider http.Handler, searcher Searcher) (*Service, *prometheus.Registry) {
	t.Helper()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)
	logger := logging.New("error")
	reg := prometheus.NewRegistry()
	m := metrics.NewChatMetrics(reg)
	client := completion.NewClient("sk-or-test", completion.WithBaseURL(srv.URL), completion.WithLogger(logger), completion.WithMetrics(m))
	return NewService(Config{Completion: client, Search: searcher, Logger: logger, Metrics: m}), reg
}

// counterTotal sums every series of a counter family; missing families are 0.
func counterTotal(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
