package rlwe

import "github.com/statepir/inspire/ring"

// Ciphertext is an RLWE encryption (B, A) of a plaintext message under some
// secret key S, always stored in NTT form: for the key the ciphertext was
// produced under, B + A*S ~= Delta*M + E. Both B and A are NTT-domain
// polynomials (the teacher's Ciphertext wraps an Element[ring.Poly] with a
// IsNTT/IsMontgomery-tagged MetaData; this package always keeps ciphertexts
// in NTT form and drops the metadata since there is only one modulus and no
// level to track).
type Ciphertext struct {
	B *ring.Poly
	A *ring.Poly
}

// CopyNew returns a deep copy of ct.
func (ct *Ciphertext) CopyNew() *Ciphertext {
	return &Ciphertext{B: ct.B.CopyNew(), A: ct.A.CopyNew()}
}

// Add returns ct + other as a new ciphertext (valid for ciphertexts under
// the same secret key and ring).
func Add(r *ring.Ring, ct, other *Ciphertext) *Ciphertext {
	b := r.NewPoly()
	a := r.NewPoly()
	r.Add(ct.B, other.B, b)
	r.Add(ct.A, other.A, a)
	return &Ciphertext{B: b, A: a}
}
