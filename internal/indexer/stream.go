package indexer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"slot0Scope/internal/model"
	"slot0Scope/internal/slot0"
	"slot0Scope/internal/storage"
)

// StreamConfig controls JSONL extraction.
type StreamConfig struct {
	Workers   int
	ChunkSize int
}

// StreamStats summarizes a JSONL extraction.
type StreamStats struct {
	Blocks      int
	Changes     int
	Diagnostics int
}

// ExtractStream reads one model.Block per JSONL line, extracts in chunks and
// writes each chunk to sink in input order. Malformed lines and undecodable
// slot values stop the stream; chunks already written stay written.
func ExtractStream(
	ctx context.Context,
	in io.Reader,
	extractor *slot0.Extractor,
	sink storage.Storage,
	cfg StreamConfig,
	logger *zap.Logger,
) (StreamStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1
	}

	var stats StreamStats
	chunk := make([]model.Block, 0, cfg.ChunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		results, err := extractAll(ctx, extractor, cfg.Workers, len(chunk),
			func(_ context.Context, i int) (model.Block, error) { return chunk[i], nil },
			nil,
		)
		if err != nil {
			return err
		}
		if err := sink.PutBlockBatch(ctx, results); err != nil {
			return fmt.Errorf("store price changes: %w", err)
		}
		for _, res := range results {
			stats.Blocks++
			stats.Changes += len(res.Slot0Changes)
			if res.Diagnostic != "" {
				stats.Diagnostics++
			}
		}
		logger.Debug("chunk complete",
			zap.Uint64("first_block", results[0].BlockNumber),
			zap.Uint64("last_block", results[len(results)-1].BlockNumber),
		)
		chunk = chunk[:0]
		return nil
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var block model.Block
		if err := json.Unmarshal(line, &block); err != nil {
			return stats, fmt.Errorf("line %d: parse block: %w", lineNo, err)
		}
		chunk = append(chunk, block)

		if len(chunk) >= cfg.ChunkSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}
