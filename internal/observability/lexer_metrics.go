package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/csstree/pkg/lexer"
)

const (
	metricMatchesTotal    = "csstree.lexer.matches.total"
	metricMatchIterations = "csstree.lexer.match.iterations"

	attrKind   = "kind"
	attrResult = "result"

	resultMatch    = "match"
	resultMismatch = "mismatch"
)

// iterationBucketBoundaries spans trivial keyword matches up to the
// default iteration cap.
var iterationBucketBoundaries = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 15000}

// LexerMetrics holds OTel instruments for value matching.
type LexerMetrics struct {
	matchesTotal metric.Int64Counter
	iterations   metric.Int64Histogram
}

// NewLexerMetrics creates lexer metric instruments from the given meter.
func NewLexerMetrics(mt metric.Meter) (*LexerMetrics, error) {
	matches, err := mt.Int64Counter(metricMatchesTotal,
		metric.WithDescription("Total value matches by kind and result"),
		metric.WithUnit("{match}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMatchesTotal, err)
	}

	iterations, err := mt.Int64Histogram(metricMatchIterations,
		metric.WithDescription("Matcher iterations per match"),
		metric.WithUnit("{iteration}"),
		metric.WithExplicitBucketBoundaries(iterationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMatchIterations, err)
	}

	return &LexerMetrics{matchesTotal: matches, iterations: iterations}, nil
}

// Observe records one finished match. It has the signature of
// lexer.Config.OnMatch. Safe to call on a nil receiver (no-op).
func (lm *LexerMetrics) Observe(stats lexer.MatchStats) {
	if lm == nil {
		return
	}

	ctx := context.Background()

	result := resultMismatch
	if stats.Matched {
		result = resultMatch
	}

	lm.matchesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrKind, stats.Kind),
		attribute.String(attrResult, result),
	))
	lm.iterations.Record(ctx, int64(stats.Iterations), metric.WithAttributes(
		attribute.String(attrKind, stats.Kind),
	))
}
