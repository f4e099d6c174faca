package rlwe

import "github.com/statepir/inspire/ring"

// SecretKey holds a ternary polynomial in NTT form, ready for pointwise
// multiplication against ciphertext components.
type SecretKey struct {
	Value *ring.Poly
}

// NewSecretKey generates a fresh ternary secret key for the given ring,
// sampling coefficients from {-1, 0, 1} with P(0)=1/3 (the teacher's
// default ternary density) and transforming into NTT form so Encrypt and
// Decrypt can multiply against it directly.
func NewSecretKey(r *ring.Ring, prng *ring.PRNG) *SecretKey {
	ts := ring.NewTernarySampler(prng, r, 1.0/3.0)
	s := ts.ReadNew()
	sNTT := r.NewPoly()
	r.NTT(s, sNTT)
	return &SecretKey{Value: sNTT}
}
