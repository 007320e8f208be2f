package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"slot0Scope/internal/model"
	"slot0Scope/internal/slot0"
	"slot0Scope/internal/storage"
)

// Verifier cross-checks extracted changes against another view of the chain.
type Verifier interface {
	Verify(ctx context.Context, changes model.BlockPriceChanges) error
}

// RunConfig holds runtime settings for the runner.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	Checkpoint   CheckpointStore
	Verifier     Verifier
}

// Runner walks a block range, extracts slot0 changes and writes them to storage.
type Runner struct {
	cfg       RunConfig
	source    BlockSource
	extractor *slot0.Extractor
	storage   storage.Storage
	logger    *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source BlockSource, extractor *slot0.Extractor, sink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		source:    source,
		extractor: extractor,
		storage:   sink,
		logger:    logger,
	}
}

// Run executes the extraction loop. A block that fails extraction stops the
// run; progress up to the previous batch stays checkpointed.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("block source is nil")
	}
	if r.extractor == nil {
		return fmt.Errorf("extractor is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.latestBlockWithRetry(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if r.cfg.Checkpoint != nil {
		last, ok, err := r.cfg.Checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r.logger.Info("fetch blocks", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		results, err := extractAll(ctx, r.extractor, r.cfg.Workers, int(blockRange.Len()),
			func(ctx context.Context, i int) (model.Block, error) {
				return r.fetchBlockWithRetry(ctx, blockRange.From+uint64(i))
			},
			r.verify,
		)
		if err != nil {
			return fmt.Errorf("extract blocks %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		if err := r.storage.PutBlockBatch(ctx, results); err != nil {
			return fmt.Errorf("store price changes: %w", err)
		}

		if r.cfg.Checkpoint != nil {
			if err := r.cfg.Checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Int("changes", countChanges(results)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
		)
	}

	return nil
}

func (r *Runner) verify(ctx context.Context, changes model.BlockPriceChanges) {
	if r.cfg.Verifier == nil {
		return
	}
	if err := r.cfg.Verifier.Verify(ctx, changes); err != nil {
		r.logger.Warn("slot0 verification failed", zap.Uint64("block_number", changes.BlockNumber), zap.Error(err))
	}
}

func (r *Runner) fetchBlockWithRetry(ctx context.Context, number uint64) (model.Block, error) {
	var block model.Block
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		block, err = r.source.FetchBlock(ctx, number)
		if err != nil {
			r.logger.Warn("fetch block failed", zap.Error(err), zap.Uint64("block_number", number))
		}
		return err
	})
	if err != nil {
		return model.Block{}, fmt.Errorf("fetch block %d: %w", number, err)
	}
	return block, nil
}

func (r *Runner) latestBlockWithRetry(ctx context.Context) (uint64, error) {
	var latest uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		latest, err = r.source.LatestBlockNumber(ctx)
		return err
	})
	return latest, err
}

func countChanges(results []model.BlockPriceChanges) int {
	total := 0
	for _, res := range results {
		total += len(res.Slot0Changes)
	}
	return total
}
