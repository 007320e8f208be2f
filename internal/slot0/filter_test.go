package slot0

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"slot0Scope/internal/model"
)

var (
	testPool  = common.HexToAddress("0x840deeef2f115cf50da625f7368c24af6fe74410")
	otherPool = common.HexToAddress("0x1111111111111111111111111111111111111111")
	slotZero  = common.Hash{}
	slotOne   = common.BigToHash(common.Big1)
)

func TestFilterStorageChanges(t *testing.T) {
	changes := []model.StorageChange{
		{Address: testPool, Key: slotZero, Ordinal: 1},
		{Address: otherPool, Key: slotZero, Ordinal: 2},
		{Address: testPool, Key: slotOne, Ordinal: 3},
		{Address: testPool, Key: slotZero, Ordinal: 4},
		{Address: otherPool, Key: slotOne, Ordinal: 5},
	}

	got := FilterStorageChanges(changes, testPool, slotZero)
	want := []model.StorageChange{changes[0], changes[3]}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filter mismatch: %+v != %+v", got, want)
	}
}

func TestFilterStorageChangesNoMatch(t *testing.T) {
	changes := []model.StorageChange{{Address: otherPool, Key: slotZero, Ordinal: 1}}
	if got := FilterStorageChanges(changes, testPool, slotZero); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
	if got := FilterStorageChanges(nil, testPool, slotZero); len(got) != 0 {
		t.Fatalf("expected no matches on nil input, got %+v", got)
	}
}

func TestFilterStorageChangesPreservesOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	addrs := []common.Address{testPool, otherPool}
	keys := []common.Hash{slotZero, slotOne}

	for round := 0; round < 50; round++ {
		changes := make([]model.StorageChange, rng.Intn(30))
		for i := range changes {
			changes[i] = model.StorageChange{
				Address: addrs[rng.Intn(len(addrs))],
				Key:     keys[rng.Intn(len(keys))],
				Ordinal: uint64(i),
			}
		}

		got := FilterStorageChanges(changes, testPool, slotZero)
		var want []model.StorageChange
		for _, c := range changes {
			if c.Address == testPool && c.Key == slotZero {
				want = append(want, c)
			}
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round %d: filter mismatch: %+v != %+v", round, got, want)
		}
	}
}

func TestLatestChange(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for round := 0; round < 50; round++ {
		n := rng.Intn(10) + 1
		changes := make([]model.StorageChange, n)
		for i, ordinal := range rng.Perm(n) {
			changes[i] = model.StorageChange{Address: testPool, Ordinal: uint64(ordinal * 3)}
		}

		got := LatestChange(changes)
		if got.Ordinal != uint64((n-1)*3) {
			t.Fatalf("round %d: latest ordinal %d, want %d", round, got.Ordinal, (n-1)*3)
		}
	}
}

func TestLatestChangeTieKeepsFirst(t *testing.T) {
	changes := []model.StorageChange{
		{Ordinal: 4, NewValue: []byte{1}},
		{Ordinal: 9, NewValue: []byte{2}},
		{Ordinal: 9, NewValue: []byte{3}},
	}
	got := LatestChange(changes)
	if got.NewValue[0] != 2 {
		t.Fatalf("expected first of tied changes, got %+v", got)
	}
}

func TestScanTransaction(t *testing.T) {
	tx := model.Transaction{
		Calls: []model.Call{
			{StorageChanges: []model.StorageChange{
				{Address: testPool, Key: slotZero, Ordinal: 5},
				{Address: otherPool, Key: slotZero, Ordinal: 6},
			}},
			{},
			{StorageChanges: []model.StorageChange{
				{Address: testPool, Key: slotOne, Ordinal: 8},
				{Address: testPool, Key: slotZero, Ordinal: 9},
			}},
		},
	}

	got := ScanTransaction(tx, Target{Pool: testPool, Slot: slotZero})
	if len(got) != 2 || got[0].Ordinal != 5 || got[1].Ordinal != 9 {
		t.Fatalf("scan mismatch: %+v", got)
	}
}
