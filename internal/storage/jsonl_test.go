package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slot0Scope/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "price_changes.jsonl")
	sink := NewJsonlStorage(path)
	ctx := context.Background()

	first := []model.BlockPriceChanges{{
		BlockHash:      "aa",
		BlockNumber:    1,
		BlockTimestamp: time.Unix(1700000000, 0).UTC(),
		Slot0Changes:   []model.Slot0Change{{TransactionHash: "bb", SqrtPriceX96: "79228162514264337593543950336", Tick: 0}},
	}}
	second := []model.BlockPriceChanges{{
		BlockHash:    "cc",
		BlockNumber:  2,
		Slot0Changes: []model.Slot0Change{},
		Diagnostic:   "No matching transaction for pool",
	}}

	if err := sink.PutBlockBatch(ctx, first); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := sink.PutBlockBatch(ctx, second); err != nil {
		t.Fatalf("put second: %v", err)
	}
	if err := sink.PutBlockBatch(ctx, nil); err != nil {
		t.Fatalf("put empty: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.BlockPriceChanges
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.BlockPriceChanges
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, rec)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].BlockNumber != 1 || got[0].Slot0Changes[0].SqrtPriceX96 != "79228162514264337593543950336" {
		t.Fatalf("first record mismatch: %+v", got[0])
	}
	if got[1].Diagnostic != "No matching transaction for pool" {
		t.Fatalf("second record mismatch: %+v", got[1])
	}
}

type recordingSink struct {
	batches [][]model.BlockPriceChanges
	err     error
}

func (r *recordingSink) PutBlockBatch(_ context.Context, blocks []model.BlockPriceChanges) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, blocks)
	return nil
}

func TestMultiStopsAtFirstError(t *testing.T) {
	failing := &recordingSink{err: os.ErrClosed}
	after := &recordingSink{}
	ok := &recordingSink{}

	err := Multi{ok, failing, after}.PutBlockBatch(context.Background(), []model.BlockPriceChanges{{BlockNumber: 1}})
	if err != os.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if len(ok.batches) != 1 || len(after.batches) != 0 {
		t.Fatalf("unexpected writes: ok=%d after=%d", len(ok.batches), len(after.batches))
	}
}
