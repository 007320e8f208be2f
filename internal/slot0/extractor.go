package slot0

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"slot0Scope/internal/model"
)

// Diagnostics attached to blocks without slot0 changes.
const (
	DiagnosticBlockDetailLevel      = "block detail level"
	DiagnosticNoMatchingTransaction = "No matching transaction for pool"
)

// Extractor turns blocks into per-block slot0 change summaries for one target.
// It holds no mutable state and may be shared across goroutines.
type Extractor struct {
	target Target
}

// NewExtractor builds an Extractor for the given pool and slot.
func NewExtractor(target Target) *Extractor {
	return &Extractor{target: target}
}

// Extract builds the BlockPriceChanges of a block. A slot0 value that cannot be
// decoded fails the whole block; no partial result is returned.
func (e *Extractor) Extract(block model.Block) (model.BlockPriceChanges, error) {
	out := model.BlockPriceChanges{
		BlockHash:        common.Bytes2Hex(block.Hash.Bytes()),
		BlockNumber:      block.Number,
		BlockTimestamp:   block.Timestamp,
		TransactionCount: block.TotalTransactions(),
		Slot0Changes:     []model.Slot0Change{},
	}

	if block.DetailLevel != model.DetailLevelExtended {
		out.Diagnostic = DiagnosticBlockDetailLevel
		return out, nil
	}

	for _, tx := range block.Transactions {
		change, ok, err := e.extractTransaction(tx)
		if err != nil {
			return model.BlockPriceChanges{}, fmt.Errorf("block %d tx %s: %w", block.Number, tx.Hash.Hex(), err)
		}
		if ok {
			out.Slot0Changes = append(out.Slot0Changes, change)
		}
	}

	if len(out.Slot0Changes) == 0 {
		out.Diagnostic = DiagnosticNoMatchingTransaction
	}
	return out, nil
}

func (e *Extractor) extractTransaction(tx model.Transaction) (model.Slot0Change, bool, error) {
	candidates := ScanTransaction(tx, e.target)
	if len(candidates) == 0 {
		return model.Slot0Change{}, false, nil
	}

	latest := LatestChange(candidates)
	decoded, err := Decode(latest.NewValue)
	if err != nil {
		return model.Slot0Change{}, false, fmt.Errorf("decode ordinal %d: %w", latest.Ordinal, err)
	}

	return model.Slot0Change{
		TransactionHash: common.Bytes2Hex(tx.Hash.Bytes()),
		SqrtPriceX96:    decoded.SqrtPriceX96.String(),
		Tick:            decoded.Tick,
	}, true, nil
}
