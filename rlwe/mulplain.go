package rlwe

import "github.com/statepir/inspire/ring"

// MulPlain multiplies ct by a known (unencrypted) NTT-domain polynomial p,
// returning a new ciphertext. This needs no key-switching: for ct = (B, A)
// encrypting m under S (B + A*S ~= m), (B*p, A*p) encrypts m*p under the
// same S, since (B*p) + (A*p)*S = (B+A*S)*p. This is the core operation
// package pir uses to apply a client's selector ciphertext against a
// shard's plaintext database polynomials without ever decrypting anything
// server-side.
func MulPlain(r *ring.Ring, ct *Ciphertext, p *ring.Poly) *Ciphertext {
	b := r.NewPoly()
	a := r.NewPoly()
	r.MulCoeffs(ct.B, p, b)
	r.MulCoeffs(ct.A, p, a)
	return &Ciphertext{B: b, A: a}
}

// MulPlainAndAdd computes acc += ct*p in place, avoiding an intermediate
// allocation in the shard accumulation loop.
func MulPlainAndAdd(r *ring.Ring, ct *Ciphertext, p *ring.Poly, acc *Ciphertext) {
	r.MulCoeffsAndAdd(ct.B, p, acc.B)
	r.MulCoeffsAndAdd(ct.A, p, acc.A)
}

// Zero returns the additive identity ciphertext (both components zero).
func Zero(r *ring.Ring) *Ciphertext {
	return &Ciphertext{B: r.NewPoly(), A: r.NewPoly()}
}
