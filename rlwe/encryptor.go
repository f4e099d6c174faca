package rlwe

import "github.com/statepir/inspire/ring"

// Encryptor produces symmetric-key RLWE encryptions under the secret key
// passed to each call, mirroring the teacher's Encryptor
// (core/rlwe/encryptor.go) but without the public-key/relinearization paths
// this protocol never uses: the PIR client encrypts its queries under its
// own secret key and is also the only party that decrypts the response, so
// only WithKey-style secret encryption is implemented.
type Encryptor struct {
	ring   *ring.Ring
	params ParameterSet
	prng   *ring.PRNG
	gauss  *ring.GaussianSampler
}

// NewEncryptor constructs an Encryptor that draws its Gaussian noise from
// prng (typically seeded from crypto/rand; a keyed PRNG makes the noise
// reproducible). The public polynomial a is supplied by the caller of
// Encrypt/EncryptZero, which is how a seeded query derives it from its seed.
func NewEncryptor(r *ring.Ring, params ParameterSet, prng *ring.PRNG) *Encryptor {
	bound := int64(6 * params.Sigma)
	return &Encryptor{
		ring:   r,
		params: params,
		prng:   prng,
		gauss:  ring.NewGaussianSampler(prng, r, params.Sigma, bound),
	}
}

// EncryptZero produces an encryption of the zero plaintext under sk, using
// the public polynomial a (from a CRS, or freshly sampled by the caller).
// B = -(A*S) + E, A = a.
func (enc *Encryptor) EncryptZero(sk *SecretKey, a *ring.Poly) *Ciphertext {
	r := enc.ring

	prod := r.NewPoly()
	r.MulCoeffs(a, sk.Value, prod)

	e := enc.gauss.ReadNew()
	eNTT := r.NewPoly()
	r.NTT(e, eNTT)

	neg := r.NewPoly()
	r.Neg(prod, neg)

	b := r.NewPoly()
	r.Add(neg, eNTT, b)

	return &Ciphertext{B: b, A: a.CopyNew()}
}

// Encrypt produces an encryption of m (a coefficient-domain polynomial with
// entries in [0, P)) under sk, scaling by Delta = floor(Q/P) to embed the
// plaintext modulus into the ciphertext modulus.
func (enc *Encryptor) Encrypt(sk *SecretKey, m *ring.Poly, a *ring.Poly) *Ciphertext {
	r := enc.ring
	delta := enc.params.Delta()

	scaled := r.NewPoly()
	r.MulScalar(m, delta, scaled)

	scaledNTT := r.NewPoly()
	r.NTT(scaled, scaledNTT)

	ct := enc.EncryptZero(sk, a)
	r.Add(ct.B, scaledNTT, ct.B)
	return ct
}
