package rlwe

import "github.com/statepir/inspire/ring"

// KeySwitch re-encrypts ct (valid under whatever secret key ksk's source
// was generated from) to be valid under ksk's destination key, via the
// gadget product described by ksk.Rows: b' = ct.B + <decompose(ct.A), ksk.B>,
// a' = <decompose(ct.A), ksk.A>. This mirrors the teacher's GadgetProduct
// (core/rlwe/evaluator_gadget_product.go) without the RNS mod-down step,
// since there is only one modulus to begin with.
func KeySwitch(r *ring.Ring, ct *Ciphertext, ksk *GadgetCiphertext) *Ciphertext {
	// Decompose in coefficient form, where the digit polynomials are small,
	// then bring each digit back to NTT form for the pointwise products.
	aCoeff := r.NewPoly()
	r.InvNTT(ct.A, aCoeff)
	decomposed := r.Decompose(aCoeff, ksk.Base)

	accB := r.NewPoly()
	accA := r.NewPoly()
	for i, d := range decomposed {
		r.NTT(d, d)
		r.MulCoeffsAndAdd(d, ksk.Rows[i].B, accB)
		r.MulCoeffsAndAdd(d, ksk.Rows[i].A, accA)
	}

	newB := r.NewPoly()
	r.Add(ct.B, accB, newB)

	return &Ciphertext{B: newB, A: accA}
}
