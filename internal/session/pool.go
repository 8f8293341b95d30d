package session

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pool runs independent scripted consultations concurrently, bounded by the
// configured worker count. Used for batch mode, where each script is one
// user's opening message followed by their answers in order.
type Pool struct {
	mgr     *Manager
	workers int
}

func NewPool(mgr *Manager, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{mgr: mgr, workers: workers}
}

// RunScripts executes every script and returns the final turn of each, in
// input order. A script that runs out of answers before its session
// terminates yields its last result as-is. The first hard error cancels the
// remaining scripts.
func (p *Pool) RunScripts(ctx context.Context, scripts [][]string) ([]*TurnResult, error) {
	results := make([]*TurnResult, len(scripts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, script := range scripts {
		g.Go(func() error {
			if len(script) == 0 {
				return fmt.Errorf("script %d is empty", i)
			}
			id, res, err := p.mgr.Create(ctx, script[0])
			if err != nil {
				return fmt.Errorf("script %d: %w", i, err)
			}
			for _, answer := range script[1:] {
				if res.Type != TurnQuestion {
					break
				}
				res, err = p.mgr.Submit(ctx, id, answer)
				if err != nil {
					return fmt.Errorf("script %d: %w", i, err)
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
