package model

import "math/big"

// Slot0 holds the decoded price fields of a pool's packed slot0 word.
type Slot0 struct {
	SqrtPriceX96 *big.Int
	Tick         int32
}
