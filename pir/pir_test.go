package pir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

func testParams() rlwe.ParameterSet {
	return rlwe.ParameterSet{
		LogN:         4,
		Q:            1152921504606830593, // 60-bit prime, 1 mod 32; keeps noise far below Delta/2
		P:            256,
		Sigma:        1.0,
		GadgetLogB:   20,
		GadgetLength: 3,
		Version:      rlwe.ParamsVersion,
	}
}

func testRingAndConfig(t *testing.T) (*ring.Ring, pirdb.ShardConfig, []byte) {
	r, err := ring.NewRing(16, 1152921504606830593)
	require.NoError(t, err)

	cfg, err := pirdb.NewShardConfig(16, 4, 37, 8)
	require.NoError(t, err)

	raw := make([]byte, cfg.TotalEntries*cfg.EntrySize)
	for i := range raw {
		raw[i] = byte(i*13 + 7)
	}
	return r, cfg, raw
}

func TestPIRRoundTripAcrossShards(t *testing.T) {
	r, cfg, raw := testRingAndConfig(t)
	params := testParams()

	db, err := pirdb.EncodeInMemory(r, cfg, raw)
	require.NoError(t, err)

	bundle, err := Setup(r, params, []byte("pir-test-crs"))
	require.NoError(t, err)
	require.Equal(t, params.Version, bundle.Params.Version)

	for _, index := range []int{0, 1, 15, 16, 17, 35, 36} {
		skPRNG := ring.NewKeyedPRNG([]byte("client-sk"))
		sk := rlwe.NewSecretKey(r, skPRNG)

		queryPRNG := ring.NewKeyedPRNG(append([]byte("query-"), byte(index)))
		state, q, err := NewQuery(r, params, cfg, index, sk, queryPRNG)
		require.NoError(t, err)

		resp, err := Respond(r, db, q, params)
		require.NoError(t, err)

		got, err := Extract(r, params, cfg, resp, state)
		require.NoError(t, err)

		want := raw[index*cfg.EntrySize : (index+1)*cfg.EntrySize]
		require.Equal(t, want, got, "index %d", index)
	}
}

func TestPIRSeededQueryMatchesPlainQuery(t *testing.T) {
	r, cfg, raw := testRingAndConfig(t)
	params := testParams()

	db, err := pirdb.EncodeInMemory(r, cfg, raw)
	require.NoError(t, err)

	index := 20
	skPRNG := ring.NewKeyedPRNG([]byte("seeded-client-sk"))
	sk := rlwe.NewSecretKey(r, skPRNG)

	noisePRNG := ring.NewKeyedPRNG([]byte("seeded-noise"))
	state, sq, err := NewSeededQuery(r, params, cfg, index, sk, []byte("query-seed-42"), noisePRNG)
	require.NoError(t, err)

	expanded := ExpandSeededQuery(r, sq)
	require.Len(t, expanded.Packing, cfg.NumShards)

	resp, err := Respond(r, db, expanded, params)
	require.NoError(t, err)

	got, err := Extract(r, params, cfg, resp, state)
	require.NoError(t, err)

	want := raw[index*cfg.EntrySize : (index+1)*cfg.EntrySize]
	require.Equal(t, want, got)
}

func TestQueryRejectsOutOfBoundsIndex(t *testing.T) {
	r, cfg, _ := testRingAndConfig(t)
	params := testParams()

	prng := ring.NewKeyedPRNG([]byte("oob-sk"))
	sk := rlwe.NewSecretKey(r, prng)

	_, _, err := NewQuery(r, params, cfg, cfg.TotalEntries, sk, prng)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)

	_, _, err = NewQuery(r, params, cfg, -1, sk, prng)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestRespondRejectsShardCountMismatch(t *testing.T) {
	r, cfg, raw := testRingAndConfig(t)
	params := testParams()

	db, err := pirdb.EncodeInMemory(r, cfg, raw)
	require.NoError(t, err)

	prng := ring.NewKeyedPRNG([]byte("mismatch-sk"))
	sk := rlwe.NewSecretKey(r, prng)
	_, q, err := NewQuery(r, params, cfg, 0, sk, prng)
	require.NoError(t, err)

	q.Packing = q.Packing[:len(q.Packing)-1]
	_, err = Respond(r, db, q, params)
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestRespondRejectsParamsVersionMismatch(t *testing.T) {
	r, cfg, raw := testRingAndConfig(t)
	params := testParams()

	db, err := pirdb.EncodeInMemory(r, cfg, raw)
	require.NoError(t, err)

	prng := ring.NewKeyedPRNG([]byte("version-sk"))
	sk := rlwe.NewSecretKey(r, prng)
	_, q, err := NewQuery(r, params, cfg, 0, sk, prng)
	require.NoError(t, err)

	q.ParamsVersion = params.Version + 1
	_, err = Respond(r, db, q, params)
	require.ErrorIs(t, err, ErrInvalidQuery)
}
