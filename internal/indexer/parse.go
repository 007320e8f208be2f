package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"slot0Scope/internal/slot0"
)

// ParseTarget converts the configured pool address and slot key into a slot0.Target.
func ParseTarget(pool, slot string) (slot0.Target, error) {
	pool = strings.TrimSpace(pool)
	if pool == "" {
		return slot0.Target{}, fmt.Errorf("pool address is required")
	}
	if !common.IsHexAddress(pool) {
		return slot0.Target{}, fmt.Errorf("invalid pool address: %s", pool)
	}

	key, err := ParseSlot(slot)
	if err != nil {
		return slot0.Target{}, err
	}

	return slot0.Target{Pool: common.HexToAddress(pool), Slot: key}, nil
}

// ParseSlot converts a hex storage key into common.Hash. Short keys such as
// "0x0" are left-padded to 32 bytes.
func ParseSlot(input string) (common.Hash, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Hash{}, fmt.Errorf("slot is required")
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if len(digits) > 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid slot length: %s", input)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	data, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid slot: %s", input)
	}
	return common.BytesToHash(data), nil
}
