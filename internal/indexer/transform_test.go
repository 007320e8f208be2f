package indexer

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"slot0Scope/internal/chain"
	"slot0Scope/internal/model"
	"slot0Scope/internal/slot0"
)

var (
	poolAddr  = common.HexToAddress("0x840deeef2f115cf50da625f7368c24af6fe74410")
	tokenAddr = common.HexToAddress("0x0000000000000000000000000000000000000a11")
)

func TestBuildBlockOrdinals(t *testing.T) {
	tx1 := common.HexToHash("0x01")
	tx2 := common.HexToHash("0x02")
	slot0Key := common.Hash{}
	slot1Key := common.HexToHash("0x01")

	traces := []chain.TxStorageWrites{
		{
			TxHash: tx1,
			Result: []chain.StorageWrite{
				{Address: poolAddr, Key: slot1Key, Old: common.HexToHash("0x05"), New: common.HexToHash("0x06")},
				{Address: tokenAddr, Key: slot0Key, Old: common.HexToHash("0x07")},
				{Address: poolAddr, Key: slot0Key, Old: common.HexToHash("0x10"), New: common.HexToHash("0x11")},
			},
		},
		{
			Result: []chain.StorageWrite{
				{Address: poolAddr, Key: slot0Key, Old: common.HexToHash("0x11"), New: common.HexToHash("0x12")},
			},
		},
	}

	block, err := buildBlock(blockHeader{
		Hash:     common.HexToHash("0xaa"),
		Number:   100,
		Time:     1700000000,
		TxHashes: []common.Hash{tx1, tx2},
	}, traces)
	if err != nil {
		t.Fatalf("build block: %v", err)
	}

	if block.DetailLevel != model.DetailLevelExtended || block.TransactionCount != 2 {
		t.Fatalf("block meta mismatch: %+v", block)
	}
	if block.Timestamp.Unix() != 1700000000 {
		t.Fatalf("timestamp mismatch: %s", block.Timestamp)
	}
	if block.Transactions[1].Hash != tx2 {
		t.Fatalf("missing trace tx hash should fall back to block tx hash")
	}

	var got []uint64
	var addrs []common.Address
	for _, tx := range block.Transactions {
		if len(tx.Calls) != 1 {
			t.Fatalf("expected one call per transaction, got %d", len(tx.Calls))
		}
		for _, c := range tx.Calls[0].StorageChanges {
			got = append(got, c.Ordinal)
			addrs = append(addrs, c.Address)
		}
	}

	// execution order is kept
	if !reflect.DeepEqual(got, []uint64{1, 2, 3, 4}) {
		t.Fatalf("ordinals mismatch: %v", got)
	}
	wantAddrs := []common.Address{poolAddr, tokenAddr, poolAddr, poolAddr}
	if !reflect.DeepEqual(addrs, wantAddrs) {
		t.Fatalf("address order mismatch: %v", addrs)
	}

	cleared := block.Transactions[0].Calls[0].StorageChanges[1]
	if !reflect.DeepEqual([]byte(cleared.NewValue), make([]byte, 32)) || len(cleared.OldValue) != 32 {
		t.Fatalf("cleared slot should carry full zero word: %+v", cleared)
	}
}

func TestBuildBlockKeepsUnchangedWrites(t *testing.T) {
	value, err := slot0.Encode(model.Slot0{SqrtPriceX96: new(big.Int).Lsh(big.NewInt(1), 96), Tick: 0})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	unlocked := common.BytesToHash(value)
	unlocked[1] = 0x01
	locked := unlocked
	locked[1] = 0x00

	// lock and unlock around a mint: slot0 ends where it started
	traces := []chain.TxStorageWrites{{
		TxHash: common.HexToHash("0x01"),
		Result: []chain.StorageWrite{
			{Address: poolAddr, Key: common.Hash{}, Old: unlocked, New: locked},
			{Address: poolAddr, Key: common.Hash{}, Old: locked, New: unlocked},
		},
	}}
	block, err := buildBlock(blockHeader{Number: 7, TxHashes: []common.Hash{common.HexToHash("0x01")}}, traces)
	if err != nil {
		t.Fatalf("build block: %v", err)
	}

	got, err := slot0.NewExtractor(slot0.Target{Pool: poolAddr}).Extract(block)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.Diagnostic != "" || len(got.Slot0Changes) != 1 {
		t.Fatalf("transaction rewriting slot0 to the same value should be reported: %+v", got)
	}
	if got.Slot0Changes[0].SqrtPriceX96 != "79228162514264337593543950336" || got.Slot0Changes[0].Tick != 0 {
		t.Fatalf("change mismatch: %+v", got.Slot0Changes[0])
	}
}

func TestBuildBlockEmptyTrace(t *testing.T) {
	header := blockHeader{Number: 1, TxHashes: []common.Hash{common.HexToHash("0x01")}}

	block, err := buildBlock(header, []chain.TxStorageWrites{{}})
	if err != nil {
		t.Fatalf("build block: %v", err)
	}
	if len(block.Transactions) != 1 || len(block.Transactions[0].Calls[0].StorageChanges) != 0 {
		t.Fatalf("reverted transaction should carry no changes: %+v", block.Transactions)
	}
}

func TestBuildBlockErrors(t *testing.T) {
	header := blockHeader{Number: 1, TxHashes: []common.Hash{common.HexToHash("0x01")}}

	if _, err := buildBlock(header, nil); err == nil {
		t.Fatalf("expected error for trace count mismatch")
	}
	if _, err := buildBlock(header, []chain.TxStorageWrites{{TxHash: common.HexToHash("0x02")}}); err == nil {
		t.Fatalf("expected error for tx hash mismatch")
	}
	if _, err := buildBlock(header, []chain.TxStorageWrites{{Error: "execution timeout"}}); err == nil {
		t.Fatalf("expected error for tracer failure")
	}
}
