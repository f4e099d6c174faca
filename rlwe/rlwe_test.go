package rlwe

import (
	"testing"

	"github.com/statepir/inspire/ring"
	"github.com/stretchr/testify/require"
)

// testParams mirrors the teacher's small test_params.go fixtures: a ring
// small enough to run in milliseconds (N=16, Q=12289) but large enough to
// exercise NTT, gadget decomposition and automorphism the same way the
// production N=2048 parameter set does.
func testParams() ParameterSet {
	return ParameterSet{
		LogN:         4,
		Q:            12289, // NTT-friendly prime (NewHope's modulus), 1 mod 32
		P:            8,
		Sigma:        2.0,
		GadgetLogB:   5,
		GadgetLength: 3,
		Version:      ParamsVersion,
	}
}

func testRing(t *testing.T) *ring.Ring {
	r, err := ring.NewRing(16, 12289)
	require.NoError(t, err)
	return r
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	params := testParams()
	r := testRing(t)
	prng := ring.NewKeyedPRNG([]byte("keygen-seed"))
	crs := NewCRS([]byte("crs-seed"), r)

	sk := NewSecretKey(r, prng)
	enc := NewEncryptor(r, params, prng)
	dec := NewDecryptor(r, params)

	m := r.NewPoly()
	for i := range m.Coeffs {
		m.Coeffs[i] = uint64(i) % params.P
	}

	a := crs.Uniform("query-a")
	ct := enc.Encrypt(sk, m, a)

	got := dec.Decrypt(ct, sk)
	require.True(t, m.Equals(got))
}

func TestKeySwitchPreservesPlaintext(t *testing.T) {
	params := testParams()
	r := testRing(t)
	prng := ring.NewKeyedPRNG([]byte("ks-seed"))
	crs := NewCRS([]byte("ks-crs"), r)

	skOld := NewSecretKey(r, prng)
	skNew := NewSecretKey(r, prng)
	enc := NewEncryptor(r, params, prng)
	dec := NewDecryptor(r, params)

	base := ring.NewGadgetBase(params.GadgetLogB, params.GadgetLength)
	ksk := GenGadgetCiphertext(r, enc, skNew, skOld.Value, base, crs, "ksk")

	m := r.NewPoly()
	for i := range m.Coeffs {
		m.Coeffs[i] = uint64(i*3+1) % params.P
	}

	a := crs.Uniform("ks-query-a")
	ct := enc.Encrypt(skOld, m, a)

	switched := KeySwitch(r, ct, ksk)

	got := dec.Decrypt(switched, skNew)
	require.True(t, m.Equals(got))
}

func TestAutomorphismPreservesPlaintextShape(t *testing.T) {
	params := testParams()
	r := testRing(t)
	prng := ring.NewKeyedPRNG([]byte("auto-seed"))
	crs := NewCRS([]byte("auto-crs"), r)

	sk := NewSecretKey(r, prng)
	enc := NewEncryptor(r, params, prng)
	dec := NewDecryptor(r, params)

	base := ring.NewGadgetBase(params.GadgetLogB, params.GadgetLength)
	ak := GenAutomorphismKey(r, enc, sk, 3, base, crs)

	m := r.NewPoly()
	m.Coeffs[1] = 5 % params.P

	a := crs.Uniform("auto-query-a")
	ct := enc.Encrypt(sk, m, a)

	rotated := Automorph(r, ct, ak)

	want := expectedAutomorphism(r.N, 3, params.P, m)

	got := dec.Decrypt(rotated, sk)
	require.True(t, want.Equals(got))
}

// expectedAutomorphism computes sigma_gen(m) directly in Z_p signed
// arithmetic, independent of the ring's Q, as an oracle for Automorph.
func expectedAutomorphism(n int, gen uint64, p uint64, m *ring.Poly) *ring.Poly {
	mask := uint64(n) - 1
	logN := 0
	for (1 << logN) < n {
		logN++
	}

	out := ring.NewPoly(n)
	for i := 0; i < n; i++ {
		if m.Coeffs[i] == 0 {
			continue
		}
		raw := uint64(i) * gen
		index := raw & mask
		negate := (raw >> logN) & 1

		v := m.Coeffs[i] % p
		if negate == 1 && v != 0 {
			v = p - v
		}
		out.Coeffs[index] = v
	}
	return out
}

func TestParameterSetValidate(t *testing.T) {
	require.NoError(t, DefaultParameters.Validate())

	bad := DefaultParameters
	bad.P = bad.Q + 1
	require.Error(t, bad.Validate())
}
