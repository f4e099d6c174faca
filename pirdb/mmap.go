package pirdb

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"

	"github.com/statepir/inspire/ring"
)

// shardFileName mirrors the original implementation's on-disk shard naming
// (inspire-server/src/state.rs writes shard_{i:08}.bin) so an operator can
// line a server's data directory up against the original tool's output.
func shardFileName(i int) string {
	return fmt.Sprintf("shard_%08d.bin", i)
}

// WriteShards encodes db and writes one file per shard under dir, each
// holding PolysPerShard*D uint64 coefficients, little-endian, back to back.
// A later MmapDatabase opened on the same directory serves coefficients
// straight out of the page cache instead of re-encoding anything.
func WriteShards(dir string, r *ring.Ring, cfg ShardConfig, raw []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i := 0; i < cfg.NumShards; i++ {
		start, end := cfg.EntryRange(i)
		entries := make([][]byte, end-start)
		for j := start; j < end; j++ {
			off := j * cfg.EntrySize
			if off+cfg.EntrySize > len(raw) {
				return fmt.Errorf("pirdb: raw data too short for entry %d", j)
			}
			entries[j-start] = raw[off : off+cfg.EntrySize]
		}
		polys, err := cfg.EncodeShard(r, entries)
		if err != nil {
			return err
		}
		if err := writeShardFile(filepath.Join(dir, shardFileName(i)), cfg, polys); err != nil {
			return err
		}
	}
	return nil
}

func writeShardFile(path string, cfg ShardConfig, polys []*ring.Poly) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 8)
	for _, p := range polys {
		for _, c := range p.Coeffs {
			binary.LittleEndian.PutUint64(buf, c)
			if _, err := f.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

// MmapDatabase serves shards out of memory-mapped files instead of RAM,
// used for the cold lane's catch-all bucket (§9's "multi-gigabyte" scale,
// where loading everything resident would blow the server's memory
// budget). Each shard file is mapped read-only and independently. A reload
// opens a new MmapDatabase that maps every shard file again (an existing
// MmapDatabase is never remapped in place), so the previous one keeps
// serving, unchanged, for any snapshot still holding it.
type MmapDatabase struct {
	cfg   ShardConfig
	dir   string
	files []*os.File
	maps  []mmap.MMap
}

// OpenMmapDatabase maps every shard file in dir (as written by WriteShards).
func OpenMmapDatabase(dir string, cfg ShardConfig) (*MmapDatabase, error) {
	db := &MmapDatabase{
		cfg:   cfg,
		dir:   dir,
		files: make([]*os.File, cfg.NumShards),
		maps:  make([]mmap.MMap, cfg.NumShards),
	}
	for i := 0; i < cfg.NumShards; i++ {
		path := filepath.Join(dir, shardFileName(i))
		f, err := os.Open(path)
		if err != nil {
			db.Close()
			return nil, err
		}
		m, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			f.Close()
			db.Close()
			return nil, err
		}
		want := cfg.ShardByteSize()
		if len(m) != want {
			m.Unmap()
			f.Close()
			db.Close()
			return nil, fmt.Errorf("pirdb: shard file %s is %d bytes, expected %d", path, len(m), want)
		}
		db.files[i] = f
		db.maps[i] = m
	}
	return db, nil
}

func (db *MmapDatabase) Config() ShardConfig { return db.cfg }

// GetShard decodes the mapped bytes for shard i into polynomials. The
// backing mmap.MMap is read directly (no copy of the file into a fresh
// buffer first); only the per-call []uint64 coefficient slices are
// allocated, since ring.Poly wants its own owned slice.
func (db *MmapDatabase) GetShard(i int) ([]*ring.Poly, error) {
	if i < 0 || i >= len(db.maps) {
		return nil, fmt.Errorf("pirdb: shard index %d out of range [0,%d)", i, len(db.maps))
	}
	data := db.maps[i]
	polys := make([]*ring.Poly, db.cfg.PolysPerShard)
	off := 0
	for k := range polys {
		p := ring.NewPoly(db.cfg.D)
		for j := 0; j < db.cfg.D; j++ {
			p.Coeffs[j] = binary.LittleEndian.Uint64(data[off : off+8])
			off += 8
		}
		polys[k] = p
	}
	return polys, nil
}

func (db *MmapDatabase) Close() error {
	var firstErr error
	for i := range db.maps {
		if db.maps[i] != nil {
			if err := db.maps[i].Unmap(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if db.files[i] != nil {
			if err := db.files[i].Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
