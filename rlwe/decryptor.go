package rlwe

import "github.com/statepir/inspire/ring"

// Decryptor inverts Encryptor.Encrypt: recovers the coefficient-domain
// plaintext modulo P from a ciphertext under the matching secret key.
type Decryptor struct {
	ring   *ring.Ring
	params ParameterSet
}

// NewDecryptor constructs a Decryptor for the given ring and parameter set.
func NewDecryptor(r *ring.Ring, params ParameterSet) *Decryptor {
	return &Decryptor{ring: r, params: params}
}

// DecryptCoeffs returns B + A*S reduced to coefficient form, without
// rounding back down to the plaintext modulus. Useful when the caller
// wants to inspect raw noise (tests) or do its own rounding (package pir
// extracts only specific coefficients of a large response polynomial).
func (d *Decryptor) DecryptCoeffs(ct *Ciphertext, sk *SecretKey) *ring.Poly {
	r := d.ring
	prod := r.NewPoly()
	r.MulCoeffs(ct.A, sk.Value, prod)

	sum := r.NewPoly()
	r.Add(ct.B, prod, sum)

	coeff := r.NewPoly()
	r.InvNTT(sum, coeff)
	return coeff
}

// Decrypt recovers the plaintext modulo P by rounding each noisy
// coefficient-domain coefficient to the nearest multiple of Delta =
// floor(Q/P) and dividing it out.
func (d *Decryptor) Decrypt(ct *Ciphertext, sk *SecretKey) *ring.Poly {
	coeff := d.DecryptCoeffs(ct, sk)
	return d.Round(coeff)
}

// Round maps a noisy coefficient-domain polynomial back to Z_P by rounding
// each coefficient to the nearest multiple of Delta and dividing.
func (d *Decryptor) Round(coeff *ring.Poly) *ring.Poly {
	q := d.params.Q
	delta := d.params.Delta()
	p := d.params.P

	out := d.ring.NewPoly()
	for i, c := range coeff.Coeffs {
		// Center c into (-Q/2, Q/2] before rounding so that encryptions of
		// small negative residues (e.g. wraparound noise) round correctly
		// instead of always rounding up.
		signed := int64(c)
		if c > q/2 {
			signed = int64(c) - int64(q)
		}
		// Floor division: Go's / truncates toward zero, which would round
		// negative centered values up by one step.
		num := signed + int64(delta)/2
		rounded := num / int64(delta)
		if num < 0 && num%int64(delta) != 0 {
			rounded--
		}
		rounded = ((rounded % int64(p)) + int64(p)) % int64(p)
		out.Coeffs[i] = uint64(rounded)
	}
	return out
}
