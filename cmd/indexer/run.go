package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slot0Scope/internal/chain"
	"slot0Scope/internal/config"
	"slot0Scope/internal/dex"
	"slot0Scope/internal/indexer"
	"slot0Scope/internal/slot0"
)

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	target, err := indexer.ParseTarget(cfg.Pool, cfg.Slot)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	sink, store, err := openSinks(ctx, cfg.Out, cfg.PGDSN, target)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	var checkpoint indexer.CheckpointStore = indexer.NewFileCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)
	if store != nil && cfg.CheckpointEnabled {
		checkpoint = &indexer.DBCheckpointStore{
			Store: store,
			Name:  fmt.Sprintf("slot0:%s:%s", target.Pool.Hex(), target.Slot.Hex()),
		}
	}

	var verifier indexer.Verifier
	if cfg.Verify {
		v, err := dex.NewSlot0Verifier(chainClient, target.Pool)
		if err != nil {
			return err
		}
		verifier = v
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		BatchSize:    cfg.BatchSize,
		Workers:      cfg.Workers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Checkpoint:   checkpoint,
		Verifier:     verifier,
	}, indexer.NewRPCSource(chainClient), slot0.NewExtractor(target), sink, logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("pool", target.Pool.Hex()),
		zap.String("slot", target.Slot.Hex()),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Int("workers", cfg.Workers),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.Bool("verify", cfg.Verify),
	)

	return runner.Run(ctx)
}
