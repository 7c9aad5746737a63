package chat

import (
	"context"
	"errors"
	"time"

	"github.com/wolfman30/aly-chat/internal/completion"
	"github.com/wolfman30/aly-chat/internal/observability/metrics"
	"github.com/wolfman30/aly-chat/internal/prompts"
	"github.com/wolfman30/aly-chat/internal/search"
	"github.com/wolfman30/aly-chat/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultModel             = "deepseek/deepseek-r1-0528:free"
	DefaultMaxStreamDuration = 300 * time.Second
)

var tracer = otel.Tracer("aly.internal.chat")

var (
	ErrEmptyConversation = errors.New("chat: conversation has no messages")
	ErrNoUserMessage     = errors.New("chat: last message must come from the user")
)

// Completer is the completion provider used by the service.
type Completer interface {
	completer
	Stream(ctx context.Context, req completion.Request) (*completion.Stream, error)
	Configured() bool
}

// Searcher runs a web search and reports the outcome.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) search.Outcome
}

// Config wires the service dependencies.
type Config struct {
	Completion        Completer
	Search            Searcher
	DefaultModel      string
	SearchResultCount int
	MaxStreamDuration time.Duration
	Logger            *logging.Logger
	Metrics           *metrics.ChatMetrics
}

// Request is one inbound chat turn.
type Request struct {
	Messages  []completion.Message
	Model     string
	FocusMode prompts.FocusMode
}

// Reply is either a fixed Text body or a live Stream.
type Reply struct {
	Path           string
	Text           string
	Stream         *completion.Stream
	OptimizedQuery string
}

// Service runs classify, optimize, search, compose and complete for a request.
type Service struct {
	client      Completer
	searcher    Searcher
	optimizer   *Optimizer
	model       string
	resultCount int
	maxDuration time.Duration
	logger      *logging.Logger
	metrics     *metrics.ChatMetrics
}

func NewService(cfg Config) *Service {
	if cfg.Completion == nil {
		panic("chat: completion client cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	model := cfg.DefaultModel
	if model == "" {
		model = DefaultModel
	}
	limit := cfg.SearchResultCount
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	maxDuration := cfg.MaxStreamDuration
	if maxDuration <= 0 {
		maxDuration = DefaultMaxStreamDuration
	}
	return &Service{
		client:      cfg.Completion,
		searcher:    cfg.Search,
		optimizer:   NewOptimizer(cfg.Completion, logger, cfg.Metrics),
		model:       model,
		resultCount: limit,
		maxDuration: maxDuration,
		logger:      logger,
		metrics:     cfg.Metrics,
	}
}

// Configured reports whether the completion provider has credentials.
func (s *Service) Configured() bool {
	return s.client.Configured()
}

// MaxDuration caps a single request including its stream.
func (s *Service) MaxDuration() time.Duration {
	return s.maxDuration
}

// Respond produces the reply for req. Provider failures are returned as
// *completion.UpstreamError; search and optimizer failures are absorbed.
// Once ctx is done Respond returns ctx.Err() instead of an apology.
func (s *Service) Respond(ctx context.Context, req Request) (*Reply, error) {
	ctx, span := tracer.Start(ctx, "chat.respond")
	defer span.End()

	if len(req.Messages) == 0 {
		return nil, ErrEmptyConversation
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != completion.RoleUser {
		return nil, ErrNoUserMessage
	}
	model := req.Model
	if model == "" {
		model = s.model
	}
	mode := req.FocusMode
	if !mode.Valid() {
		mode = prompts.ModeGeneral
	}
	span.SetAttributes(
		attribute.String("aly.model", model),
		attribute.String("aly.focus_mode", mode.String()),
	)

	if !search.NeedsSearch(last.Content) {
		span.SetAttributes(attribute.String("aly.path", metrics.PathDirect))
		stream, err := s.client.Stream(ctx, completion.Request{
			Model:       model,
			Messages:    prompts.DirectMessages(mode, req.Messages),
			Temperature: completion.DirectTemperature,
			MaxTokens:   completion.ResponseMaxTokens,
		})
		if err != nil {
			span.RecordError(err)
			s.observeProviderError(ctx, err, metrics.PathDirect)
			return nil, err
		}
		s.metrics.ObserveRequest(mode.String(), metrics.PathDirect)
		return &Reply{Path: metrics.PathDirect, Stream: stream}, nil
	}

	optimized := s.optimizer.Optimize(ctx, last.Content, model, mode)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outcome := s.search(ctx, optimized)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !outcome.Success || len(outcome.Results) == 0 {
		status := "empty"
		if !outcome.Success {
			status = "failed"
		}
		s.metrics.ObserveSearch(status)
		s.metrics.ObserveRequest(mode.String(), metrics.PathApology)
		span.SetAttributes(attribute.String("aly.path", metrics.PathApology))
		s.logger.Warn("chat: search returned no usable results", "status", status, "query", optimized, "error", outcome.Error)
		return &Reply{
			Path:           metrics.PathApology,
			Text:           prompts.SearchApology(last.Content, optimized, outcome.Error),
			OptimizedQuery: optimized,
		}, nil
	}
	s.metrics.ObserveSearch("ok")

	span.SetAttributes(attribute.String("aly.path", metrics.PathSearch))
	stream, err := s.client.Stream(ctx, completion.Request{
		Model:       model,
		Messages:    prompts.AnalysisMessages(mode, last.Content, optimized, outcome.Results),
		Temperature: completion.AnalysisTemperature,
		MaxTokens:   completion.ResponseMaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		s.observeProviderError(ctx, err, metrics.PathSearch)
		return nil, err
	}
	s.metrics.ObserveRequest(mode.String(), metrics.PathSearch)
	return &Reply{Path: metrics.PathSearch, Stream: stream, OptimizedQuery: optimized}, nil
}

func (s *Service) search(ctx context.Context, query string) search.Outcome {
	if s.searcher == nil {
		return search.Outcome{Query: query, Results: []search.Result{}, Timestamp: time.Now().UTC(), Error: search.FailureMessage}
	}
	return s.searcher.Search(ctx, query, s.resultCount)
}

func (s *Service) observeProviderError(ctx context.Context, err error, path string) {
	if ctx.Err() != nil {
		s.logger.Info("chat: request ended before completion started", "reason", ctx.Err().Error(), "path", path)
		return
	}
	var upErr *completion.UpstreamError
	if errors.As(err, &upErr) {
		s.metrics.ObserveUpstreamError(upErr.Status)
		s.logger.Error("chat: completion provider rejected request", "status", upErr.Status, "details", upErr.Details, "path", path)
		return
	}
	s.metrics.ObserveUpstreamError(0)
	s.logger.Error("chat: completion request failed", "error", err, "path", path)
}
