package rlwe

import "github.com/statepir/inspire/ring"

// KeyGenerator bundles a ring, parameter set and PRNG so callers don't have
// to thread all three through every key-generation call, mirroring the
// teacher's KeyGenerator (core/rlwe/keygenerator.go) minus the public-key
// and relinearization-key paths this protocol doesn't use.
type KeyGenerator struct {
	Ring   *ring.Ring
	Params ParameterSet
	PRNG   *ring.PRNG
}

// NewKeyGenerator constructs a KeyGenerator for the given ring and params,
// seeded from prng.
func NewKeyGenerator(r *ring.Ring, params ParameterSet, prng *ring.PRNG) *KeyGenerator {
	return &KeyGenerator{Ring: r, Params: params, PRNG: prng}
}

// GenSecretKey generates a fresh ternary secret key.
func (kg *KeyGenerator) GenSecretKey() *SecretKey {
	return NewSecretKey(kg.Ring, kg.PRNG)
}

// GenAutomorphismKeys generates one AutomorphismKey per generator in gens.
// Package pir's Setup stores such a set in its Bundle; pir.Respond itself
// applies no automorphism (its shard selector is a per-shard packing
// ciphertext built by the client).
func (kg *KeyGenerator) GenAutomorphismKeys(sk *SecretKey, gens []uint64, crs *CRS) map[uint64]*AutomorphismKey {
	enc := NewEncryptor(kg.Ring, kg.Params, kg.PRNG)
	base := ring.NewGadgetBase(kg.Params.GadgetLogB, kg.Params.GadgetLength)

	keys := make(map[uint64]*AutomorphismKey, len(gens))
	for _, g := range gens {
		keys[g] = GenAutomorphismKey(kg.Ring, enc, sk, g, base, crs)
	}
	return keys
}
