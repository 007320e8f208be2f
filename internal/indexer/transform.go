package indexer

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"slot0Scope/internal/chain"
	"slot0Scope/internal/model"
)

// blockHeader carries the block fields the adapter copies into model.Block.
type blockHeader struct {
	Hash     common.Hash
	Number   uint64
	Time     uint64
	TxHashes []common.Hash
}

// buildBlock converts a block's storage write traces into an extended model.Block.
// Each transaction becomes a single call whose storage changes keep execution
// order, with ordinals counted across the whole block.
func buildBlock(header blockHeader, traces []chain.TxStorageWrites) (model.Block, error) {
	if len(traces) != len(header.TxHashes) {
		return model.Block{}, fmt.Errorf("block %d: %d traces for %d transactions", header.Number, len(traces), len(header.TxHashes))
	}

	block := model.Block{
		Hash:             header.Hash,
		Number:           header.Number,
		Timestamp:        time.Unix(int64(header.Time), 0).UTC(),
		DetailLevel:      model.DetailLevelExtended,
		TransactionCount: uint64(len(header.TxHashes)),
		Transactions:     make([]model.Transaction, 0, len(traces)),
	}

	var ordinal uint64
	for i, trace := range traces {
		hash := header.TxHashes[i]
		if trace.TxHash != (common.Hash{}) && trace.TxHash != hash {
			return model.Block{}, fmt.Errorf("block %d: trace %d is for tx %s, expected %s", header.Number, i, trace.TxHash.Hex(), hash.Hex())
		}
		if trace.Error != "" {
			return model.Block{}, fmt.Errorf("block %d tx %s: tracer error: %s", header.Number, hash.Hex(), trace.Error)
		}

		block.Transactions = append(block.Transactions, model.Transaction{
			Hash:  hash,
			Calls: []model.Call{{StorageChanges: storageChanges(trace.Result, &ordinal)}},
		})
	}

	return block, nil
}

// storageChanges converts a transaction's writes in execution order, counting
// ordinals across the block. Writes that leave the value unchanged are included.
func storageChanges(writes []chain.StorageWrite, ordinal *uint64) []model.StorageChange {
	changes := make([]model.StorageChange, 0, len(writes))
	for _, w := range writes {
		*ordinal++
		changes = append(changes, model.StorageChange{
			Address:  w.Address,
			Key:      w.Key,
			OldValue: w.Old.Bytes(),
			NewValue: w.New.Bytes(),
			Ordinal:  *ordinal,
		})
	}
	return changes
}
