package pirdb

import (
	"fmt"

	"github.com/statepir/inspire/ring"
)

// Database is the read path every respond() call uses: fetch the
// PolysPerShard NTT-form polynomials for one shard. Implementations never
// decrypt or inspect query contents; they only hand back plaintext data the
// server already owns.
type Database interface {
	Config() ShardConfig
	GetShard(i int) ([]*ring.Poly, error)
	Close() error
}

// InMemoryDatabase keeps every shard's encoded polynomials resident, used
// for small lanes (the toy "hot" lane in tests, or a cold lane small enough
// to fit in RAM comfortably).
type InMemoryDatabase struct {
	cfg    ShardConfig
	shards [][]*ring.Poly
}

// EncodeInMemory packs raw into an InMemoryDatabase: raw is a flat byte
// array of cfg.TotalEntries entries of cfg.EntrySize bytes each (the final
// shard's missing entries are implicitly zero-padded).
func EncodeInMemory(r *ring.Ring, cfg ShardConfig, raw []byte) (*InMemoryDatabase, error) {
	shards := make([][]*ring.Poly, cfg.NumShards)
	for i := 0; i < cfg.NumShards; i++ {
		start, end := cfg.EntryRange(i)
		entries := make([][]byte, end-start)
		for j := start; j < end; j++ {
			off := j * cfg.EntrySize
			if off+cfg.EntrySize > len(raw) {
				return nil, fmt.Errorf("pirdb: raw data too short for entry %d", j)
			}
			entries[j-start] = raw[off : off+cfg.EntrySize]
		}
		polys, err := cfg.EncodeShard(r, entries)
		if err != nil {
			return nil, err
		}
		shards[i] = polys
	}
	return &InMemoryDatabase{cfg: cfg, shards: shards}, nil
}

func (db *InMemoryDatabase) Config() ShardConfig { return db.cfg }

func (db *InMemoryDatabase) GetShard(i int) ([]*ring.Poly, error) {
	if i < 0 || i >= len(db.shards) {
		return nil, fmt.Errorf("pirdb: shard index %d out of range [0,%d)", i, len(db.shards))
	}
	return db.shards[i], nil
}

func (db *InMemoryDatabase) Close() error { return nil }
