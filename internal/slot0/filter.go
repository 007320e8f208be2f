package slot0

import (
	"github.com/ethereum/go-ethereum/common"

	"slot0Scope/internal/model"
)

// Target identifies the storage slot being tracked.
type Target struct {
	Pool common.Address
	Slot common.Hash
}

// FilterStorageChanges keeps the changes written to slot of pool, in input order.
func FilterStorageChanges(changes []model.StorageChange, pool common.Address, slot common.Hash) []model.StorageChange {
	var out []model.StorageChange
	for _, change := range changes {
		if change.Address != pool || change.Key != slot {
			continue
		}
		out = append(out, change)
	}
	return out
}

// LatestChange returns the change with the highest ordinal. Ties keep the first one seen.
// changes must not be empty.
func LatestChange(changes []model.StorageChange) model.StorageChange {
	latest := changes[0]
	for _, change := range changes[1:] {
		if change.Ordinal > latest.Ordinal {
			latest = change
		}
	}
	return latest
}

// ScanTransaction collects the target's storage changes across every call of tx.
func ScanTransaction(tx model.Transaction, target Target) []model.StorageChange {
	var out []model.StorageChange
	for _, call := range tx.Calls {
		out = append(out, FilterStorageChanges(call.StorageChanges, target.Pool, target.Slot)...)
	}
	return out
}
