// Package index implements the bucket/stem lookup index and the
// range-delta sync protocol: mapping (address, slot) pairs to PIR
// positions, and letting clients catch up to chain tip without
// redownloading the whole index. Grounded on the original implementation's
// inspire-core/src/bucket_index.rs and ubt_index.rs (restored via
// original_source for the EIP-7864 subindex layout) and on the teacher's
// blake3 dependency for hashing.
package index

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"
)

// NumBuckets is the fixed bucket-table size: 2^18 buckets, selected by the
// first 18 bits of blake3(address || slot).
const NumBuckets = 1 << 18

// BucketID returns the bucket for (address, slot): the top 18 bits of
// blake3(address || slot).
func BucketID(address [20]byte, slot [32]byte) uint32 {
	h := blake3.New()
	h.Write(address[:])
	h.Write(slot[:])
	sum := h.Sum(nil)
	v := binary.BigEndian.Uint32(sum[0:4])
	return v >> (32 - 18)
}

// BucketIndex holds a per-bucket entry count and the cumulative-sum array
// derived from it: Cumulative[i] is the PIR index of bucket i's first
// entry, and Cumulative[NumBuckets] equals the total entry count.
type BucketIndex struct {
	Counts      []uint16
	Cumulative  []uint64
	BlockNumber uint64
}

// NewBucketIndex builds a BucketIndex from a fresh count array (len must be
// NumBuckets), computing cumulative sums immediately.
func NewBucketIndex(counts []uint16, blockNumber uint64) (*BucketIndex, error) {
	if len(counts) != NumBuckets {
		return nil, fmt.Errorf("index: counts has %d entries, expected %d", len(counts), NumBuckets)
	}
	b := &BucketIndex{
		Counts:      counts,
		Cumulative:  make([]uint64, NumBuckets+1),
		BlockNumber: blockNumber,
	}
	b.recomputeCumulative()
	return b, nil
}

func (b *BucketIndex) recomputeCumulative() {
	var sum uint64
	for i, c := range b.Counts {
		b.Cumulative[i] = sum
		sum += uint64(c)
	}
	b.Cumulative[len(b.Counts)] = sum
}

// TotalEntries returns the total number of entries across every bucket.
func (b *BucketIndex) TotalEntries() uint64 {
	return b.Cumulative[len(b.Cumulative)-1]
}

// Lookup returns the bucket id, starting PIR index, and entry count for
// (address, slot). The client must issue Count sequential PIR queries
// starting at Start to scan the bucket.
func (b *BucketIndex) Lookup(address [20]byte, slot [32]byte) (bucketID uint32, start uint64, count uint16) {
	id := BucketID(address, slot)
	return id, b.Cumulative[id], b.Counts[id]
}

// ToBytes encodes the 512 KiB count array, little-endian u16 per bucket.
// Cumulative sums and block number are not serialized: they are derived or
// travel alongside out of band (GET /index/info).
func (b *BucketIndex) ToBytes() []byte {
	buf := make([]byte, len(b.Counts)*2)
	for i, c := range b.Counts {
		binary.LittleEndian.PutUint16(buf[i*2:], c)
	}
	return buf
}

// BucketIndexFromBytes decodes a count array previously produced by
// ToBytes and recomputes cumulative sums.
func BucketIndexFromBytes(buf []byte, blockNumber uint64) (*BucketIndex, error) {
	if len(buf) != NumBuckets*2 {
		return nil, fmt.Errorf("index: bucket index is %d bytes, expected %d", len(buf), NumBuckets*2)
	}
	counts := make([]uint16, NumBuckets)
	for i := range counts {
		counts[i] = binary.LittleEndian.Uint16(buf[i*2:])
	}
	return NewBucketIndex(counts, blockNumber)
}

// Equals reports whether two bucket indexes hold the same counts and block
// number (used by the round-trip test law; cumulative sums are derived so
// are not compared independently).
func (b *BucketIndex) Equals(other *BucketIndex) bool {
	if b.BlockNumber != other.BlockNumber || len(b.Counts) != len(other.Counts) {
		return false
	}
	for i := range b.Counts {
		if b.Counts[i] != other.Counts[i] {
			return false
		}
	}
	return true
}
