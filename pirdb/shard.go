// Package pirdb implements the encoded-database layer: splitting a flat
// byte array of fixed-size entries into shards of at most d entries,
// packing each shard into a bundle of NTT-form polynomials, and serving
// those polynomials back out through either an in-memory or a
// memory-mapped backend. It is grounded on the original implementation's
// state encoding (inspire-server/src/state.rs LaneDatabase) and the
// teacher's NTT-domain storage convention (every ring.Poly this package
// hands out is already transformed, matching how lattigo keeps ciphertexts
// and plaintexts in NTT form between operations).
package pirdb

import (
	"fmt"

	"github.com/statepir/inspire/ring"
)

// ShardConfig describes how entries of a lane's database are packed into
// polynomials. It assumes the plaintext modulus's bit width is a multiple
// of 8 (true of the default P=65536), so each symbol occupies a whole
// number of bytes and no bit-level packing across byte boundaries is
// needed.
type ShardConfig struct {
	D            int // ring dimension; entries per shard
	EntrySize    int // bytes per entry
	TotalEntries int
	SymbolBytes  int // bytes per plaintext symbol (SymbolBits/8)
	PolysPerShard int // ceil(EntrySize / SymbolBytes)
	NumShards    int
}

// NewShardConfig validates and builds a ShardConfig. symbolBits is the bit
// width of the plaintext modulus P (e.g. 16 for P=65536).
func NewShardConfig(d, entrySize, totalEntries, symbolBits int) (ShardConfig, error) {
	if d <= 0 || d&(d-1) != 0 {
		return ShardConfig{}, fmt.Errorf("pirdb: d=%d must be a power of two", d)
	}
	if entrySize <= 0 {
		return ShardConfig{}, fmt.Errorf("pirdb: entrySize must be positive")
	}
	if totalEntries == 0 {
		return ShardConfig{}, fmt.Errorf("pirdb: empty database is rejected")
	}
	if symbolBits%8 != 0 {
		return ShardConfig{}, fmt.Errorf("pirdb: symbolBits=%d must be byte-aligned", symbolBits)
	}
	symbolBytes := symbolBits / 8
	polysPerShard := (entrySize + symbolBytes - 1) / symbolBytes
	numShards := (totalEntries + d - 1) / d

	return ShardConfig{
		D:             d,
		EntrySize:     entrySize,
		TotalEntries:  totalEntries,
		SymbolBytes:   symbolBytes,
		PolysPerShard: polysPerShard,
		NumShards:     numShards,
	}, nil
}

// EntryRange returns the half-open [start, end) range of global entry
// indices covered by shard i; the last shard may cover fewer than D
// entries, the remainder implicitly zero-padded.
func (c ShardConfig) EntryRange(i int) (start, end int) {
	start = i * c.D
	end = start + c.D
	if end > c.TotalEntries {
		end = c.TotalEntries
	}
	return
}

// ShardOf returns the shard index and within-shard offset for a global
// entry index.
func (c ShardConfig) ShardOf(index int) (shard, offset int) {
	return index / c.D, index % c.D
}

// ShardByteSize returns the on-disk size of one shard file: PolysPerShard
// polynomials of D uint64 coefficients each, 8 bytes per coefficient.
func (c ShardConfig) ShardByteSize() int {
	return c.PolysPerShard * c.D * 8
}

// EncodeShard packs entries (each a byte slice of length EntrySize, already
// sliced to this shard's range, the final partial shard having fewer than D
// elements) into PolysPerShard NTT-form polynomials: coefficient j of
// polynomial k holds the k-th SymbolBytes-wide little-endian symbol of
// entries[j]; missing entries (past len(entries), in the padded tail of the
// final shard) stay zero.
func (c ShardConfig) EncodeShard(r *ring.Ring, entries [][]byte) ([]*ring.Poly, error) {
	if len(entries) > c.D {
		return nil, fmt.Errorf("pirdb: shard has %d entries, more than D=%d", len(entries), c.D)
	}
	polys := make([]*ring.Poly, c.PolysPerShard)
	for k := range polys {
		polys[k] = r.NewPoly()
	}
	for j, entry := range entries {
		if len(entry) > c.EntrySize {
			return nil, fmt.Errorf("pirdb: entry %d is %d bytes, expected at most %d", j, len(entry), c.EntrySize)
		}
		for k := 0; k < c.PolysPerShard; k++ {
			off := k * c.SymbolBytes
			var sym uint64
			for b := 0; b < c.SymbolBytes; b++ {
				if off+b < len(entry) {
					sym |= uint64(entry[off+b]) << (8 * uint(b))
				}
			}
			polys[k].Coeffs[j] = sym
		}
	}
	for _, p := range polys {
		r.NTT(p, p)
	}
	return polys, nil
}

// DecodeEntry reconstructs a single entry's bytes from a shard's
// coefficient-form polynomials (used by tests and by offline verification
// tooling; the live query path never decodes server-side).
func (c ShardConfig) DecodeEntry(coeffPolys []*ring.Poly, offset int) []byte {
	out := make([]byte, c.EntrySize)
	for k := 0; k < c.PolysPerShard; k++ {
		sym := coeffPolys[k].Coeffs[offset]
		off := k * c.SymbolBytes
		for b := 0; b < c.SymbolBytes; b++ {
			if off+b < c.EntrySize {
				out[off+b] = byte(sym >> (8 * uint(b)))
			}
		}
	}
	return out
}
