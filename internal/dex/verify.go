package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"slot0Scope/internal/model"
)

// ErrSlot0Mismatch reports an extracted slot0 that differs from the pool's view.
var ErrSlot0Mismatch = errors.New("slot0 mismatch")

// ContractCaller performs eth_call at a block height.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Slot0Verifier compares the last extracted slot0 of a block against slot0()
// evaluated at the end of that block.
type Slot0Verifier struct {
	caller  ContractCaller
	pool    common.Address
	poolABI abi.ABI
}

// NewSlot0Verifier builds a verifier for pool.
func NewSlot0Verifier(caller ContractCaller, pool common.Address) (*Slot0Verifier, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	return &Slot0Verifier{caller: caller, pool: pool, poolABI: poolABI}, nil
}

// FetchSlot0 calls slot0() on the pool at blockNumber.
func (v *Slot0Verifier) FetchSlot0(ctx context.Context, blockNumber uint64) (model.Slot0, error) {
	data, err := v.poolABI.Pack("slot0")
	if err != nil {
		return model.Slot0{}, fmt.Errorf("pack slot0: %w", err)
	}
	pool := v.pool
	resp, err := v.caller.CallContract(ctx, ethereum.CallMsg{To: &pool, Data: data}, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return model.Slot0{}, fmt.Errorf("call slot0: %w", err)
	}
	values, err := v.poolABI.Unpack("slot0", resp)
	if err != nil {
		return model.Slot0{}, fmt.Errorf("unpack slot0: %w", err)
	}
	if len(values) < 2 {
		return model.Slot0{}, fmt.Errorf("unexpected slot0 values: %d", len(values))
	}

	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return model.Slot0{}, err
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return model.Slot0{}, err
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return model.Slot0{}, err
	}
	return model.Slot0{SqrtPriceX96: sqrtPrice, Tick: tick}, nil
}

// Verify checks the block's last change. Blocks without changes pass.
func (v *Slot0Verifier) Verify(ctx context.Context, changes model.BlockPriceChanges) error {
	last, ok := changes.Last()
	if !ok {
		return nil
	}

	onChain, err := v.FetchSlot0(ctx, changes.BlockNumber)
	if err != nil {
		return err
	}

	if onChain.SqrtPriceX96.String() != last.SqrtPriceX96 || onChain.Tick != last.Tick {
		return fmt.Errorf("%w at block %d: extracted sqrt=%s tick=%d, pool sqrt=%s tick=%d",
			ErrSlot0Mismatch, changes.BlockNumber,
			last.SqrtPriceX96, last.Tick,
			onChain.SqrtPriceX96, onChain.Tick,
		)
	}
	return nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
