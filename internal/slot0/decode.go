package slot0

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"slot0Scope/internal/model"
)

// WordSize is the length of a storage word.
const WordSize = 32

// Tick bounds of the pool math (int24 is wider).
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

/*
Slot0 word layout, most significant byte first:

	byte  0      unused
	bytes 1..2   unlocked, feeProtocol
	bytes 3..8   observationCardinalityNext, observationCardinality, observationIndex
	bytes 9..11  tick (int24)
	bytes 12..31 sqrtPriceX96 (uint160)
*/
const (
	sqrtPriceBits = 160
	tickBits      = 24
	tickShift     = sqrtPriceBits
)

var (
	// ErrInvalidLength reports a storage value that is not a full word.
	ErrInvalidLength = errors.New("slot0 value must be 32 bytes")

	sqrtPriceMask = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), sqrtPriceBits), uint256.NewInt(1))
)

const (
	tickMask = 1<<tickBits - 1
	minInt24 = -1 << (tickBits - 1)
	maxInt24 = 1<<(tickBits-1) - 1
)

// Decode extracts sqrtPriceX96 and tick from a packed slot0 word.
func Decode(value []byte) (model.Slot0, error) {
	if len(value) != WordSize {
		return model.Slot0{}, fmt.Errorf("%w: got %d", ErrInvalidLength, len(value))
	}

	word := new(uint256.Int).SetBytes(value)
	sqrtPrice := new(uint256.Int).And(word, sqrtPriceMask)

	raw := uint32(new(uint256.Int).Rsh(word, tickShift).Uint64() & tickMask)
	// shift the int24 sign bit into bit 31, then back with sign extension
	tick := int32(raw<<(32-tickBits)) >> (32 - tickBits)

	return model.Slot0{
		SqrtPriceX96: sqrtPrice.ToBig(),
		Tick:         tick,
	}, nil
}

// Encode packs sqrtPriceX96 and tick into a slot0 word, leaving the other fields zero.
func Encode(s model.Slot0) ([]byte, error) {
	if s.SqrtPriceX96 == nil {
		return nil, fmt.Errorf("sqrt price is nil")
	}
	if s.SqrtPriceX96.Sign() < 0 || s.SqrtPriceX96.BitLen() > sqrtPriceBits {
		return nil, fmt.Errorf("sqrt price out of uint160 range: %s", s.SqrtPriceX96)
	}
	if s.Tick < minInt24 || s.Tick > maxInt24 {
		return nil, fmt.Errorf("int24 overflow: %d", s.Tick)
	}

	word, _ := uint256.FromBig(s.SqrtPriceX96)
	tick := uint256.NewInt(uint64(uint32(s.Tick) & tickMask))
	word.Or(word, tick.Lsh(tick, tickShift))

	out := word.Bytes32()
	return out[:], nil
}
