package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// ErrStemNotFound is returned by StemIndex.ComputePIRIndex when an
// account's stem isn't present in the index.
var ErrStemNotFound = errors.New("index: stem not found")

// Subindex byte assignment within an EIP-7864 unified binary tree key,
// restored from the original implementation's ubt_index.rs: the distilled
// spec only says "the subindex byte of the tree key is added to
// start_offset"; this pins down what each subindex byte range actually
// means.
const (
	SubindexBasicData      = 0
	SubindexCodeHash       = 1
	SubindexStorageStart   = 64
	SubindexStorageEnd     = 127
	SubindexCodeChunkStart = 128
	SubindexCodeChunkEnd   = 255
)

// StemEntry is one (stem, start_offset) pair.
type StemEntry struct {
	Stem        [31]byte
	StartOffset uint64
}

// StemIndex is a sorted list of StemEntry, binary-searchable by stem.
type StemIndex struct {
	Entries []StemEntry
}

// NewStemIndex sorts entries by stem and returns a StemIndex.
func NewStemIndex(entries []StemEntry) *StemIndex {
	sorted := append([]StemEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Stem[:], sorted[j].Stem[:]) < 0
	})
	return &StemIndex{Entries: sorted}
}

// ComputeStem derives the 31-byte stem of (address, treeIndex):
// blake3(address_padded32 || tree_index[0..31])[0..31].
func ComputeStem(address [20]byte, treeIndex [32]byte) [31]byte {
	var padded [32]byte
	copy(padded[:20], address[:])

	h := blake3.New()
	h.Write(padded[:])
	h.Write(treeIndex[:31])
	sum := h.Sum(nil)

	var stem [31]byte
	copy(stem[:], sum[:31])
	return stem
}

// Lookup binary-searches for stem, returning its start_offset.
func (s *StemIndex) Lookup(stem [31]byte) (uint64, bool) {
	i := sort.Search(len(s.Entries), func(i int) bool {
		return bytes.Compare(s.Entries[i].Stem[:], stem[:]) >= 0
	})
	if i < len(s.Entries) && s.Entries[i].Stem == stem {
		return s.Entries[i].StartOffset, true
	}
	return 0, false
}

// ComputePIRIndex resolves (address, treeIndex)'s final PIR index: the
// stem's start_offset plus the tree key's subindex byte (tree_index[31]).
func (s *StemIndex) ComputePIRIndex(address [20]byte, treeIndex [32]byte) (uint64, error) {
	stem := ComputeStem(address, treeIndex)
	start, ok := s.Lookup(stem)
	if !ok {
		return 0, ErrStemNotFound
	}
	return start + uint64(treeIndex[31]), nil
}

// stemEntrySize is the encoded size of one StemEntry: 31-byte stem + u64
// start offset.
const stemEntrySize = 39

// ToBytes encodes the stem index as entry_count:u32 followed by
// entry_count*39-byte entries, in sorted order.
func (s *StemIndex) ToBytes() []byte {
	buf := make([]byte, 4+len(s.Entries)*stemEntrySize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(s.Entries)))
	off := 4
	for _, e := range s.Entries {
		copy(buf[off:off+31], e.Stem[:])
		binary.LittleEndian.PutUint64(buf[off+31:off+39], e.StartOffset)
		off += stemEntrySize
	}
	return buf
}

// StemIndexFromBytes decodes a StemIndex previously produced by ToBytes.
func StemIndexFromBytes(buf []byte) (*StemIndex, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("index: stem index too short")
	}
	count := binary.LittleEndian.Uint32(buf[0:4])
	want := 4 + int(count)*stemEntrySize
	if len(buf) != want {
		return nil, fmt.Errorf("index: stem index is %d bytes, expected %d", len(buf), want)
	}
	entries := make([]StemEntry, count)
	off := 4
	for i := range entries {
		var e StemEntry
		copy(e.Stem[:], buf[off:off+31])
		e.StartOffset = binary.LittleEndian.Uint64(buf[off+31 : off+39])
		entries[i] = e
		off += stemEntrySize
	}
	return &StemIndex{Entries: entries}, nil
}
