package app

import (
	"context"

	"github.com/okian/schedluck/internal/adapters/mq/queue"
	"github.com/okian/schedluck/internal/domain/headtohead"
	"github.com/okian/schedluck/internal/domain/record"
	"github.com/okian/schedluck/internal/domain/schedule"
	"github.com/okian/schedluck/internal/domain/scores"
	"github.com/okian/schedluck/pkg/metrics"
)

// rangeRunner adapts the aggregator to worker.Runner. Each runner owns its
// resolver, so its cache is never shared between goroutines.
type rangeRunner struct {
	enum     *schedule.Enumerator
	weeks    int
	resolver *headtohead.Resolver
	agg      *record.Aggregator
}

func newRangeRunner(enum *schedule.Enumerator, matrix *scores.Matrix) *rangeRunner {
	resolver := headtohead.New(matrix)
	return &rangeRunner{
		enum:     enum,
		weeks:    matrix.Weeks(),
		resolver: resolver,
		agg:      record.NewAggregator(resolver),
	}
}

func (r *rangeRunner) Run(ctx context.Context, j queue.Job) (record.Distribution, error) {
	start := j.Range.Start
	count := min(j.Range.Count, r.enum.Cardinality()-min(start, r.enum.Cardinality()))

	hits, misses, _ := r.resolver.Stats()
	dist, err := r.agg.Aggregate(ctx, j.Team, r.enum.Range(start, count), r.weeks, count)
	h, m, _ := r.resolver.Stats()
	metrics.RecordCacheStats(h-hits, m-misses)
	if err != nil {
		return record.Distribution{}, err
	}
	metrics.RecordSchedulesEvaluated(count)
	return dist, nil
}

// mergeSink adapts record.Merger to worker.Sink.
type mergeSink struct {
	merger *record.Merger
}

func (s mergeSink) Merge(ctx context.Context, _ queue.Job, part record.Distribution) error {
	return s.merger.Merge(ctx, part)
}
