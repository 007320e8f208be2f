package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"slot0Scope/internal/chain"
	"slot0Scope/internal/model"
)

// BlockSource yields blocks in the extractor's input model.
type BlockSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FetchBlock(ctx context.Context, number uint64) (model.Block, error)
}

type tracingClient interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number uint64) (*types.Block, error)
	TraceBlockStorageWrites(ctx context.Context, number uint64) ([]chain.TxStorageWrites, error)
}

// RPCSource builds blocks from a node's storage write traces.
type RPCSource struct {
	client tracingClient
}

func NewRPCSource(client tracingClient) *RPCSource {
	return &RPCSource{client: client}
}

func (s *RPCSource) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return s.client.LatestBlockNumber(ctx)
}

// FetchBlock loads the block body and its traces. Inconsistent traces are
// reported as permanent errors so they are not retried.
func (s *RPCSource) FetchBlock(ctx context.Context, number uint64) (model.Block, error) {
	block, err := s.client.BlockByNumber(ctx, number)
	if err != nil {
		return model.Block{}, err
	}
	traces, err := s.client.TraceBlockStorageWrites(ctx, number)
	if err != nil {
		return model.Block{}, err
	}

	txs := block.Transactions()
	hashes := make([]common.Hash, 0, len(txs))
	for _, tx := range txs {
		hashes = append(hashes, tx.Hash())
	}

	out, err := buildBlock(blockHeader{
		Hash:     block.Hash(),
		Number:   block.NumberU64(),
		Time:     block.Time(),
		TxHashes: hashes,
	}, traces)
	if err != nil {
		return model.Block{}, permanent(err)
	}
	return out, nil
}
