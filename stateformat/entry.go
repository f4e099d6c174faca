package stateformat

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// EntrySize is the fixed size of a StorageEntry's binary encoding:
// address (20) + tree_index (32) + value (32).
const EntrySize = 84

// StorageEntry is one (address, tree_index) -> value record of state.bin.
type StorageEntry struct {
	Address   [20]byte
	TreeIndex [32]byte
	Value     [32]byte
}

// ToBytes encodes e into exactly EntrySize bytes.
func (e StorageEntry) ToBytes() []byte {
	buf := make([]byte, EntrySize)
	copy(buf[0:20], e.Address[:])
	copy(buf[20:52], e.TreeIndex[:])
	copy(buf[52:84], e.Value[:])
	return buf
}

// StorageEntryFromBytes decodes a StorageEntry from exactly EntrySize bytes.
func StorageEntryFromBytes(buf []byte) (StorageEntry, error) {
	if len(buf) != EntrySize {
		return StorageEntry{}, fmt.Errorf("stateformat: entry is %d bytes, expected %d", len(buf), EntrySize)
	}
	var e StorageEntry
	copy(e.Address[:], buf[0:20])
	copy(e.TreeIndex[:], buf[20:52])
	copy(e.Value[:], buf[52:84])
	return e, nil
}

// TreeKey computes the 32-byte sort key state.bin orders entries by:
// blake3(address_padded32 || tree_index[0..31])[0..31] || tree_index[31].
func (e StorageEntry) TreeKey() [32]byte {
	var padded [32]byte
	copy(padded[:20], e.Address[:])

	h := blake3.New()
	h.Write(padded[:])
	h.Write(e.TreeIndex[:31])
	sum := h.Sum(nil)

	var key [32]byte
	copy(key[:31], sum[:31])
	key[31] = e.TreeIndex[31]
	return key
}

// SortEntries sorts entries in place by ascending tree key, the order
// state.bin is required to be delivered in.
func SortEntries(entries []StorageEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ki, kj := entries[i].TreeKey(), entries[j].TreeKey()
		return bytes.Compare(ki[:], kj[:]) < 0
	})
}

// IsSorted reports whether entries are already in ascending tree-key order,
// without re-sorting them. Read and ReadFile do not call it.
func IsSorted(entries []StorageEntry) bool {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1].TreeKey(), entries[i].TreeKey()
		if bytes.Compare(prev[:], cur[:]) > 0 {
			return false
		}
	}
	return true
}
