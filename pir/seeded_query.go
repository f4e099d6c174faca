package pir

import (
	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// SeededQuery is the bandwidth-reduced form of Query: every packing
// ciphertext's public polynomial a is reproducible from Seed, so only the B
// components travel over the wire. ExpandSeededQuery turns one back into a
// full Query by regenerating each a_i exactly as NewSeededQuery did.
type SeededQuery struct {
	NumShards     int
	ParamsVersion uint16
	Seed          []byte
	B             []*ring.Poly
}

// NewSeededQuery builds a SeededQuery for index, deriving every packing
// ciphertext's public polynomial from seed via a CRS and drawing noise from
// prng (noise does not need to be seeded: only the public a components have
// to match between client and server).
func NewSeededQuery(r *ring.Ring, params rlwe.ParameterSet, cfg pirdb.ShardConfig, index int, sk *rlwe.SecretKey, seed []byte, prng *ring.PRNG) (*ClientState, *SeededQuery, error) {
	if index < 0 || index >= cfg.TotalEntries {
		return nil, nil, ErrIndexOutOfBounds
	}
	shardIdx, offset := cfg.ShardOf(index)

	seedCRS := rlwe.NewCRS(seed, r)
	enc := rlwe.NewEncryptor(r, params, prng)

	bs := make([]*ring.Poly, cfg.NumShards)
	for i := 0; i < cfg.NumShards; i++ {
		m := r.NewPoly()
		if i == shardIdx {
			m.Coeffs[selectorCoefficient(cfg.D, offset)] = selectorValue(params.P, offset)
		}
		a := seedCRS.Uniform(packingLabel(i))
		ct := enc.Encrypt(sk, m, a)
		bs[i] = ct.B
	}

	state := &ClientState{ShardIndex: shardIdx, Offset: offset, SecretKey: sk}
	sq := &SeededQuery{
		NumShards:     cfg.NumShards,
		ParamsVersion: params.Version,
		Seed:          append([]byte(nil), seed...),
		B:             bs,
	}
	return state, sq, nil
}

// ExpandSeededQuery regenerates every packing ciphertext's a component from
// sq.Seed and reassembles a full Query, indistinguishable from one built by
// NewQuery once expanded: the resulting ciphertexts decrypt identically
// either way.
func ExpandSeededQuery(r *ring.Ring, sq *SeededQuery) *Query {
	crs := rlwe.NewCRS(sq.Seed, r)
	packing := make([]*rlwe.Ciphertext, sq.NumShards)
	for i := 0; i < sq.NumShards; i++ {
		a := crs.Uniform(packingLabel(i))
		packing[i] = &rlwe.Ciphertext{B: sq.B[i], A: a}
	}
	return &Query{NumShards: sq.NumShards, ParamsVersion: sq.ParamsVersion, Packing: packing}
}
