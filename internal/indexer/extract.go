package indexer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"slot0Scope/internal/model"
	"slot0Scope/internal/slot0"
)

// extractAll extracts n blocks with at most workers in flight. block(i) yields
// the i-th input; results keep input order. The first error cancels the rest.
func extractAll(
	ctx context.Context,
	extractor *slot0.Extractor,
	workers int,
	n int,
	block func(ctx context.Context, i int) (model.Block, error),
	after func(ctx context.Context, changes model.BlockPriceChanges),
) ([]model.BlockPriceChanges, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]model.BlockPriceChanges, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			input, err := block(gctx, i)
			if err != nil {
				return err
			}
			changes, err := extractor.Extract(input)
			if err != nil {
				return err
			}
			if after != nil {
				after(gctx, changes)
			}
			results[i] = changes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
