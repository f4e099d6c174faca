package index

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// BucketEntry is one changed bucket's new count, as carried by a
// BucketDelta.
type BucketEntry struct {
	BucketID uint32
	NewCount uint16
}

// BucketDelta summarizes the bucket-count changes a new block caused,
// sorted by BucketID. Applying it to a BucketIndex is commutative across
// deltas touching disjoint bucket sets, and idempotent when the same delta
// is applied twice, since it is a plain overwrite rather than an
// accumulate.
type BucketDelta struct {
	BlockNumber uint64
	Entries     []BucketEntry
}

// NewBucketDelta sorts entries by bucket id and returns a BucketDelta.
func NewBucketDelta(blockNumber uint64, entries []BucketEntry) BucketDelta {
	sorted := append([]BucketEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BucketID < sorted[j].BucketID })
	return BucketDelta{BlockNumber: blockNumber, Entries: sorted}
}

// ApplyDelta overwrites every touched bucket's count with the delta's value
// and recomputes cumulative sums, then advances BlockNumber.
func (b *BucketIndex) ApplyDelta(d BucketDelta) {
	for _, e := range d.Entries {
		b.Counts[e.BucketID] = e.NewCount
	}
	b.recomputeCumulative()
	b.BlockNumber = d.BlockNumber
}

// deltaEntrySize is the encoded size of one BucketEntry: a u32 bucket id
// and a u16 count.
const deltaEntrySize = 6

// ToBytes encodes a BucketDelta as block_number:u64, entry_count:u32,
// followed by entry_count*6-byte entries.
func (d BucketDelta) ToBytes() []byte {
	buf := make([]byte, 12+len(d.Entries)*deltaEntrySize)
	binary.LittleEndian.PutUint64(buf[0:8], d.BlockNumber)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(d.Entries)))
	off := 12
	for _, e := range d.Entries {
		binary.LittleEndian.PutUint32(buf[off:off+4], e.BucketID)
		binary.LittleEndian.PutUint16(buf[off+4:off+6], e.NewCount)
		off += deltaEntrySize
	}
	return buf
}

// BucketDeltaFromBytes decodes a BucketDelta previously produced by
// ToBytes.
func BucketDeltaFromBytes(buf []byte) (BucketDelta, error) {
	if len(buf) < 12 {
		return BucketDelta{}, fmt.Errorf("index: delta too short (%d bytes)", len(buf))
	}
	blockNumber := binary.LittleEndian.Uint64(buf[0:8])
	count := binary.LittleEndian.Uint32(buf[8:12])
	want := 12 + int(count)*deltaEntrySize
	if len(buf) != want {
		return BucketDelta{}, fmt.Errorf("index: delta is %d bytes, expected %d", len(buf), want)
	}
	entries := make([]BucketEntry, count)
	off := 12
	for i := range entries {
		entries[i] = BucketEntry{
			BucketID: binary.LittleEndian.Uint32(buf[off : off+4]),
			NewCount: binary.LittleEndian.Uint16(buf[off+4 : off+6]),
		}
		off += deltaEntrySize
	}
	return BucketDelta{BlockNumber: blockNumber, Entries: entries}, nil
}
