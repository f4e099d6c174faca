package rlwe

import "github.com/statepir/inspire/ring"

// CRS is the common reference string shared by a server and its clients:
// every "public" uniform polynomial a server's ciphertexts use is derived
// deterministically from a seed plus a label, following the teacher's
// PRNG/CRPGenerator pattern (dbfv/collective_CRS.go) where a blake2b-chained
// clock expands one seed into an unbounded stream of uniform ring elements.
// This lets a seeded query (see package pir) ship only the seed instead of
// the full uniform polynomial, and lets a server regenerate its own
// automorphism/key-switching keys deterministically across a reload.
type CRS struct {
	seed []byte
	ring *ring.Ring
}

// NewCRS binds a seed to a ring.
func NewCRS(seed []byte, r *ring.Ring) *CRS {
	return &CRS{seed: append([]byte(nil), seed...), ring: r}
}

// Seed returns the seed this CRS was constructed from.
func (c *CRS) Seed() []byte {
	return append([]byte(nil), c.seed...)
}

// Uniform derives a uniform ring element for the given label. Distinct
// labels ("ksk-digit-0", "autokey-gen-3-digit-1", ...) yield independent
// polynomials from the same seed. Uniform polynomials are sampled directly
// in NTT representation: sampling uniformly and then applying NTT is itself
// uniform, so skipping the transform saves a pass over every coefficient
// without changing the distribution.
func (c *CRS) Uniform(label string) *ring.Poly {
	prng := ring.NewKeyedPRNG(append(c.seed, []byte(label)...))
	return ring.NewUniformSampler(prng, c.ring).ReadNew()
}
