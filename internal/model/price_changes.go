package model

import "time"

// Slot0Change is the effective slot0 value at the end of one transaction.
type Slot0Change struct {
	TransactionHash string `json:"transaction_hash"`
	SqrtPriceX96    string `json:"sqrt_price"`
	Tick            int32  `json:"tick"`
}

// BlockPriceChanges summarizes every slot0 change of the tracked pool in a block.
type BlockPriceChanges struct {
	BlockHash        string        `json:"block_hash"`
	BlockNumber      uint64        `json:"block_number"`
	BlockTimestamp   time.Time     `json:"block_timestamp"`
	TransactionCount uint64        `json:"transaction_count"`
	Slot0Changes     []Slot0Change `json:"slot_changes"`
	Diagnostic       string        `json:"diagnostic,omitempty"`
}

// Last returns the final slot0 change of the block, if any.
func (b BlockPriceChanges) Last() (Slot0Change, bool) {
	if len(b.Slot0Changes) == 0 {
		return Slot0Change{}, false
	}
	return b.Slot0Changes[len(b.Slot0Changes)-1], true
}
