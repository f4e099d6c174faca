package pirdb

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/statepir/inspire/ring"
)

func testRing(t *testing.T) *ring.Ring {
	r, err := ring.NewRing(16, 65537) // above every 16-bit symbol value
	require.NoError(t, err)
	return r
}

func TestShardConfigLayout(t *testing.T) {
	cfg, err := NewShardConfig(16, 10, 40, 16)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.NumShards)
	require.Equal(t, 5, cfg.PolysPerShard) // ceil(10/2)

	start, end := cfg.EntryRange(2)
	require.Equal(t, 32, start)
	require.Equal(t, 40, end)

	shard, offset := cfg.ShardOf(33)
	require.Equal(t, 2, shard)
	require.Equal(t, 1, offset)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := testRing(t)
	cfg, err := NewShardConfig(16, 10, 16, 16)
	require.NoError(t, err)

	entries := make([][]byte, 16)
	for i := range entries {
		e := make([]byte, 10)
		for b := range e {
			e[b] = byte(i*7 + b)
		}
		entries[i] = e
	}

	polys, err := cfg.EncodeShard(r, entries)
	require.NoError(t, err)
	require.Len(t, polys, cfg.PolysPerShard)

	coeffPolys := make([]*ring.Poly, len(polys))
	for k, p := range polys {
		c := r.NewPoly()
		r.InvNTT(p, c)
		coeffPolys[k] = c
	}

	for i, want := range entries {
		got := cfg.DecodeEntry(coeffPolys, i)
		require.Equal(t, want, got)
	}
}

func TestEncodeShardRejectsOversizedInput(t *testing.T) {
	r := testRing(t)
	cfg, err := NewShardConfig(16, 4, 16, 16)
	require.NoError(t, err)

	_, err = cfg.EncodeShard(r, make([][]byte, 17))
	require.Error(t, err)
}

func TestInMemoryDatabaseGetShard(t *testing.T) {
	r := testRing(t)
	cfg, err := NewShardConfig(16, 4, 20, 16)
	require.NoError(t, err)

	raw := make([]byte, 20*4)
	for i := range raw {
		raw[i] = byte(i)
	}

	db, err := EncodeInMemory(r, cfg, raw)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.NumShards)

	shard0, err := db.GetShard(0)
	require.NoError(t, err)
	require.Len(t, shard0, cfg.PolysPerShard)

	_, err = db.GetShard(2)
	require.Error(t, err)
}

func TestMmapDatabaseRoundTrip(t *testing.T) {
	r := testRing(t)
	cfg, err := NewShardConfig(16, 6, 20, 16)
	require.NoError(t, err)

	raw := make([]byte, 20*6)
	for i := range raw {
		raw[i] = byte(i * 3)
	}

	dir := t.TempDir()
	require.NoError(t, WriteShards(dir, r, cfg, raw))

	db, err := OpenMmapDatabase(dir, cfg)
	require.NoError(t, err)
	defer db.Close()

	mem, err := EncodeInMemory(r, cfg, raw)
	require.NoError(t, err)

	for i := 0; i < cfg.NumShards; i++ {
		want, err := mem.GetShard(i)
		require.NoError(t, err)
		got, err := db.GetShard(i)
		require.NoError(t, err)
		for k := range want {
			require.True(t, want[k].Equals(got[k]))
		}
	}
}

func TestOpenMmapDatabaseMissingFile(t *testing.T) {
	cfg, err := NewShardConfig(16, 6, 20, 16)
	require.NoError(t, err)

	_, err = OpenMmapDatabase(t.TempDir(), cfg)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err) || err != nil)
}
