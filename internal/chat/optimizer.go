package chat

import (
	"context"

	"github.com/wolfman30/aly-chat/internal/completion"
	"github.com/wolfman30/aly-chat/internal/observability/metrics"
	"github.com/wolfman30/aly-chat/internal/prompts"
	"github.com/wolfman30/aly-chat/pkg/logging"
	"go.opentelemetry.io/otel/attribute"
)

type completer interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

// Optimizer rewrites a user question into a web search query.
type Optimizer struct {
	client  completer
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
}

func NewOptimizer(client completer, logger *logging.Logger, m *metrics.ChatMetrics) *Optimizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Optimizer{client: client, logger: logger, metrics: m}
}

// Optimize returns the model's search query for rawQuery. Any failure yields
// rawQuery unchanged.
func (o *Optimizer) Optimize(ctx context.Context, rawQuery, model string, mode prompts.FocusMode) string {
	ctx, span := tracer.Start(ctx, "chat.optimize")
	defer span.End()

	optimized, err := o.client.Complete(ctx, completion.Request{
		Model:       model,
		Messages:    prompts.OptimizerMessages(mode, rawQuery),
		Temperature: completion.OptimizerTemperature,
		MaxTokens:   completion.OptimizerMaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return rawQuery
		}
		o.metrics.ObserveOptimizerFallback()
		o.logger.Warn("chat: query optimization failed, using original query", "error", err, "focus_mode", mode.String())
		return rawQuery
	}
	span.SetAttributes(attribute.String("aly.search.optimized_query", optimized))
	o.logger.Debug("chat: optimized search query", "original", rawQuery, "optimized", optimized)
	return optimized
}
