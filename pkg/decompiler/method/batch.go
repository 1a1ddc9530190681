package method

import (
	"context"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcome is the analysis result of one method of a batch.
// Exactly one of Result and Err is set.
type Outcome struct {
	Method string
	Result *Result
	Err    error
}

type BatchStats struct {
	Succeeded int64
	Failed    int64
	Skipped   int64
}

// AnalyzeAll analyses independent methods with at most workers goroutines.
// A failed method never cancels its siblings. Once ctx is done no new
// methods are started and the remaining outcomes carry ctx.Err().
// Outcomes are returned in the order of methods.
func AnalyzeAll(ctx context.Context, methods []Method, workers int, opts ...Option) ([]Outcome, BatchStats) {
	if workers < 1 {
		workers = 1
	}
	o := newOptions(opts)
	var (
		succeeded = atomic.NewInt64(0)
		failed    = atomic.NewInt64(0)
		skipped   = atomic.NewInt64(0)
	)
	outcomes := make([]Outcome, len(methods))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range methods {
		i := i
		m := methods[i]
		outcomes[i].Method = m.Name
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			skipped.Inc()
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				skipped.Inc()
				return nil
			}
			res, err := Analyze(ctx, m, opts...)
			if err != nil {
				o.logger.Error("Failed to analyse method", zap.String("method", m.Name), zap.Error(err))
				outcomes[i].Err = err
				failed.Inc()
				return nil
			}
			outcomes[i].Result = res
			succeeded.Inc()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return outcomes, BatchStats{
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
	}
}
