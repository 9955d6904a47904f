// Package worker runs several independent backtests concurrently and
// collects their reports, fanning out the way the teacher stack's
// multi-source aggregator does: one goroutine per unit of work, guarded
// by an errgroup and a mutex around the shared results slice.
package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/backforge/backforge/internal/engine"
	"github.com/backforge/backforge/internal/manifest"
	"github.com/backforge/backforge/internal/plugin"
	"github.com/backforge/backforge/pkg/models"
)

// Run is one concurrently-evaluated unit of work: one strategy run over
// one bar sequence, under its own host parameters.
type Run struct {
	Label    string
	Strategy plugin.Strategy
	Params   *manifest.HostParams
	Bars     []models.Bar
}

// Result pairs a Run's label with its outcome. Exactly one of Report or
// Err is meaningful.
type Result struct {
	Label  string
	Report *models.BacktestReport
	Err    error
}

// RunMany executes every Run concurrently, each in its own Engine
// instance (Engine holds per-run mutable state and cannot be shared
// across goroutines), and returns one Result per input Run in the same
// order. A single Run's failure does not cancel the others — each
// error is carried in its own Result rather than aborting the group,
// since a strategy-parameter sweep should report every run it can.
func RunMany(ctx context.Context, runs []Run) []Result {
	results := make([]Result, len(runs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, run := range runs {
		i, run := i, run
		g.Go(func() error {
			select {
			case <-gctx.Done():
				mu.Lock()
				results[i] = Result{Label: run.Label, Err: gctx.Err()}
				mu.Unlock()
				return nil
			default:
			}

			e, err := engine.New(run.Params, nil)
			if err != nil {
				mu.Lock()
				results[i] = Result{Label: run.Label, Err: fmt.Errorf("%s: %w", run.Label, err)}
				mu.Unlock()
				return nil
			}

			rep, err := e.Run(run.Strategy, run.Bars)
			mu.Lock()
			if err != nil {
				results[i] = Result{Label: run.Label, Err: fmt.Errorf("%s: %w", run.Label, err)}
			} else {
				results[i] = Result{Label: run.Label, Report: rep}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
