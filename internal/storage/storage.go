package storage

import (
	"context"

	"slot0Scope/internal/model"
)

// Storage defines a sink for per-block price change records.
type Storage interface {
	PutBlockBatch(ctx context.Context, blocks []model.BlockPriceChanges) error
}

// Multi writes every batch to each sink in order, stopping at the first error.
type Multi []Storage

func (m Multi) PutBlockBatch(ctx context.Context, blocks []model.BlockPriceChanges) error {
	for _, sink := range m {
		if err := sink.PutBlockBatch(ctx, blocks); err != nil {
			return err
		}
	}
	return nil
}
