package pir

import (
	"fmt"

	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// Query is what a client ships to the server for a single private lookup:
// one packing ciphertext per shard. Exactly one of them (the one at
// ShardIndex, known only to the client) encrypts the one-hot monomial that
// selects the desired entry; every other one encrypts the all-zero
// polynomial. RLWE's IND-CPA security is what keeps those two cases
// computationally indistinguishable to the server.
type Query struct {
	NumShards     int
	ParamsVersion uint16
	Packing       []*rlwe.Ciphertext
}

// ClientState is kept by the client between Query/NewSeededQuery and
// Extract: the secret key an RLWE ciphertext was produced under, and where
// in the response the requested entry will land.
type ClientState struct {
	ShardIndex int
	Offset     int
	SecretKey  *rlwe.SecretKey
}

// packingLabel names the CRS derivation for shard i's packing ciphertext's
// public polynomial a on the seeded-query path (NewSeededQuery and
// ExpandSeededQuery), where a is reproducible from a seed. NewQuery does not
// use it: it samples a fresh random a for every shard.
func packingLabel(i int) string {
	return fmt.Sprintf("pir-packing-%d", i)
}

// selectorCoefficient returns the ring position a one-hot monomial must set
// so that X^position * p(X) carries the entry at offset down to
// coefficient 0. For offset 0 this is position 0 and nothing wraps. For any
// other offset, position = d-offset, and the X^d = -1 reduction needed to
// bring that term's exponent back into range flips its sign once: the
// coefficient landing at 0 is -p_offset, not +p_offset. selectorValue
// supplies the matching monomial coefficient (P-1, i.e. -1 mod P, instead
// of 1) that cancels that flip, so the two combined always recover
// +p_offset at coefficient 0.
func selectorCoefficient(d, offset int) int {
	return (d - offset) % d
}

// selectorValue returns the plaintext value to place at selectorCoefficient
// so the recovered coefficient is +p_offset rather than its negacyclic
// complement P-p_offset. See selectorCoefficient.
func selectorValue(p uint64, offset int) uint64 {
	if offset == 0 {
		return 1
	}
	return p - 1
}

// NewQuery builds a private lookup for index against a database shaped by
// cfg, encrypted under sk, drawing packing randomness from prng.
func NewQuery(r *ring.Ring, params rlwe.ParameterSet, cfg pirdb.ShardConfig, index int, sk *rlwe.SecretKey, prng *ring.PRNG) (*ClientState, *Query, error) {
	if index < 0 || index >= cfg.TotalEntries {
		return nil, nil, ErrIndexOutOfBounds
	}
	shardIdx, offset := cfg.ShardOf(index)

	enc := rlwe.NewEncryptor(r, params, prng)
	us := ring.NewUniformSampler(prng, r)

	packing := make([]*rlwe.Ciphertext, cfg.NumShards)
	for i := 0; i < cfg.NumShards; i++ {
		m := r.NewPoly()
		if i == shardIdx {
			m.Coeffs[selectorCoefficient(cfg.D, offset)] = selectorValue(params.P, offset)
		}
		a := us.ReadNew()
		packing[i] = enc.Encrypt(sk, m, a)
	}

	state := &ClientState{ShardIndex: shardIdx, Offset: offset, SecretKey: sk}
	q := &Query{NumShards: cfg.NumShards, ParamsVersion: params.Version, Packing: packing}
	return state, q, nil
}
