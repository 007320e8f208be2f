package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"slot0Scope/internal/slot0"
	"slot0Scope/internal/storage"
	"slot0Scope/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Pool slot0 price change extractor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Extract slot0 changes from an RPC node",
		Long: "Extract slot0 changes from an RPC node. Blocks are traced with debug_traceBlockByNumber\n" +
			"and a JavaScript tracer that reports every SSTORE, so the node must expose the debug\n" +
			"namespace and support JavaScript tracers (geth does).",
		RunE: runIndexer,
	}

	runCmd.Flags().String("rpc", "", "RPC URL (must serve debug_traceBlockByNumber with JavaScript tracers)")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().String("pool", "", "pool contract address")
	runCmd.Flags().String("slot", "0x0", "storage slot of slot0")
	runCmd.Flags().Uint64("batch-size", 100, "blocks per batch")
	runCmd.Flags().Int("workers", 4, "blocks fetched and extracted in parallel")
	runCmd.Flags().String("out", "./data/price_changes.jsonl", "output JSONL path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().Bool("verify", false, "cross-check each block against slot0() (requires archive RPC)")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract slot0 changes from a JSONL block file",
		RunE:  runExtract,
	}

	extractCmd.Flags().String("in", "", "input blocks JSONL")
	extractCmd.Flags().String("out", "./data/price_changes.jsonl", "output JSONL path")
	extractCmd.Flags().String("pg-dsn", "", "optional Postgres DSN")
	extractCmd.Flags().String("pool", "", "pool contract address")
	extractCmd.Flags().String("slot", "0x0", "storage slot of slot0")
	extractCmd.Flags().Int("workers", 4, "blocks extracted in parallel")
	extractCmd.Flags().Int("chunk-size", 256, "blocks per write")
	extractCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(extractCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openSinks returns the JSONL sink, fanned out to Postgres when dsn is set.
// The returned store is nil without a dsn and must be closed by the caller otherwise.
func openSinks(ctx context.Context, out, dsn string, target slot0.Target) (storage.Storage, *postgres.Store, error) {
	if out == "" {
		return nil, nil, fmt.Errorf("output path is required")
	}
	jsonl := storage.NewJsonlStorage(out)
	if dsn == "" {
		return jsonl, nil, nil
	}

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	return storage.Multi{jsonl, &postgres.Sink{
		Store: store,
		Pool:  common.Bytes2Hex(target.Pool.Bytes()),
		Slot:  common.Bytes2Hex(target.Slot.Bytes()),
	}}, store, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
