package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slot0Scope/internal/config"
	"slot0Scope/internal/indexer"
	"slot0Scope/internal/slot0"
)

func runExtract(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadExtract(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	target, err := indexer.ParseTarget(cfg.Pool, cfg.Slot)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	sink, store, err := openSinks(ctx, cfg.Out, cfg.PGDSN, target)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	logger.Info("extract start",
		zap.String("input", cfg.In),
		zap.String("pool", target.Pool.Hex()),
		zap.String("slot", target.Slot.Hex()),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Int("workers", cfg.Workers),
		zap.Int("chunk_size", cfg.ChunkSize),
	)

	stats, err := indexer.ExtractStream(ctx, inputFile, slot0.NewExtractor(target), sink, indexer.StreamConfig{
		Workers:   cfg.Workers,
		ChunkSize: cfg.ChunkSize,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("extract complete",
		zap.Int("blocks", stats.Blocks),
		zap.Int("changes", stats.Changes),
		zap.Int("diagnostics", stats.Diagnostics),
	)
	return nil
}
