package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DetailLevel tells whether a block carries call-level storage changes.
type DetailLevel int

const (
	DetailLevelUnknown DetailLevel = iota
	DetailLevelBase
	DetailLevelExtended
)

func (d DetailLevel) String() string {
	switch d {
	case DetailLevelBase:
		return "base"
	case DetailLevelExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// MarshalText encodes the level as its lowercase name.
func (d DetailLevel) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the lowercase name, case-insensitively.
func (d *DetailLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "base":
		*d = DetailLevelBase
	case "extended":
		*d = DetailLevelExtended
	case "", "unknown":
		*d = DetailLevelUnknown
	default:
		return fmt.Errorf("unknown detail level: %s", text)
	}
	return nil
}

// StorageChange is a single storage write observed during a call.
// Ordinal totally orders every write within the block.
type StorageChange struct {
	Address  common.Address `json:"address"`
	Key      common.Hash    `json:"key"`
	OldValue hexutil.Bytes  `json:"old_value"`
	NewValue hexutil.Bytes  `json:"new_value"`
	Ordinal  uint64         `json:"ordinal"`
}

// Call is one execution frame of a transaction, already flattened by ingestion.
type Call struct {
	StorageChanges []StorageChange `json:"storage_changes"`
}

// Transaction is a successful transaction with its flattened calls.
type Transaction struct {
	Hash  common.Hash `json:"hash"`
	Calls []Call      `json:"calls"`
}

// Block is the ingestion-layer view of a block.
type Block struct {
	Hash             common.Hash   `json:"hash"`
	Number           uint64        `json:"number"`
	Timestamp        time.Time     `json:"timestamp"`
	DetailLevel      DetailLevel   `json:"detail_level"`
	TransactionCount uint64        `json:"transaction_count"`
	Transactions     []Transaction `json:"transactions"`
}

// TotalTransactions returns the number of transaction traces in the block,
// falling back to the successful transactions when ingestion did not set it.
func (b Block) TotalTransactions() uint64 {
	if b.TransactionCount > 0 {
		return b.TransactionCount
	}
	return uint64(len(b.Transactions))
}
