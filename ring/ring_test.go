package ring

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRing returns a small NTT-friendly ring: N=16, Q=97 (97-1=96=32*3, so
// 97 = 1 mod 2N), enough to exercise wraparound and negacyclic reduction
// without the cost of the real 2048-degree parameter set.
func testRing(t *testing.T) *Ring {
	r, err := NewRing(16, 97)
	require.NoError(t, err)
	return r
}

func randPoly(t *testing.T, r *Ring) *Poly {
	prng := NewKeyedPRNG([]byte("ring-test-seed"))
	p := r.NewPoly()
	NewUniformSampler(prng, r).Read(p)
	return p
}

func TestNTTRoundTrip(t *testing.T) {
	r := testRing(t)
	p := randPoly(t, r)
	orig := p.CopyNew()

	r.NTT(p, p)
	r.InvNTT(p, p)

	require.True(t, orig.Equals(p))
}

func TestMulMatchesSchoolbookNegacyclic(t *testing.T) {
	r := testRing(t)
	a := randPoly(t, r)
	b := randPoly(t, r)

	got := r.NewPoly()
	r.Mul(a, b, got)

	want := schoolbookNegacyclicMul(r, a, b)
	require.True(t, want.Equals(got))
}

// schoolbookNegacyclicMul computes a*b mod (Q, X^N+1) directly, as a
// reference oracle for the NTT-based Mul.
func schoolbookNegacyclicMul(r *Ring, a, b *Poly) *Poly {
	n := r.N
	q := r.Q
	acc := make([]uint64, n)
	for i := 0; i < n; i++ {
		if a.Coeffs[i] == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			if b.Coeffs[j] == 0 {
				continue
			}
			v := BRed(a.Coeffs[i], b.Coeffs[j], q, BRedConstant(q))
			k := i + j
			if k < n {
				acc[k] = (acc[k] + v) % q
			} else {
				k -= n
				acc[k] = (acc[k] + q - v) % q
			}
		}
	}
	return &Poly{Coeffs: acc}
}

func TestAddSubNeg(t *testing.T) {
	r := testRing(t)
	a := randPoly(t, r)
	b := randPoly(t, r)

	sum := r.NewPoly()
	r.Add(a, b, sum)

	back := r.NewPoly()
	r.Sub(sum, b, back)
	require.True(t, a.Equals(back))

	negB := r.NewPoly()
	r.Neg(b, negB)
	sumZero := r.NewPoly()
	r.Add(b, negB, sumZero)
	for _, c := range sumZero.Coeffs {
		require.Equal(t, uint64(0), c)
	}
}

func TestBRedMatchesNaiveModMultiply(t *testing.T) {
	q := uint64(1152921504606830593) // the production 60-bit NTT-friendly prime
	u := BRedConstant(q)

	cases := []struct{ x, y uint64 }{
		{0, 0},
		{1, 1},
		{q - 1, q - 1},
		{q - 1, 1},
		{123456789, 987654321},
		{q / 2, q/2 + 1},
	}
	for _, c := range cases {
		got := BRed(c.x, c.y, q, u)
		want := new(big.Int).Mod(
			new(big.Int).Mul(new(big.Int).SetUint64(c.x), new(big.Int).SetUint64(c.y)),
			new(big.Int).SetUint64(q),
		).Uint64()
		require.Equal(t, want, got, "x=%d y=%d", c.x, c.y)
	}
}

func TestAutomorphismInvolution(t *testing.T) {
	r := testRing(t)
	p := randPoly(t, r)

	// gen=3 and its inverse mod 2N=32: 3*11=33=1 mod 32.
	gen := uint64(3)
	genInv := uint64(11)

	tmp := r.NewPoly()
	back := r.NewPoly()
	r.Automorphism(p, gen, tmp)
	r.Automorphism(tmp, genInv, back)

	require.True(t, p.Equals(back))
}

func TestGadgetDecomposeRecompose(t *testing.T) {
	r := testRing(t)
	g := NewGadgetBase(3, 3) // base 8, 3 digits covers up to 511 > Q=97

	p := randPoly(t, r)
	decomposed := r.Decompose(p, g)
	powers := g.PowersOfBase(r.Q)

	recomposed := r.NewPoly()
	for i, d := range decomposed {
		scaled := r.NewPoly()
		r.MulScalar(d, powers[i], scaled)
		r.Add(recomposed, scaled, recomposed)
	}

	require.True(t, p.Equals(recomposed))
}

func TestUniformSamplerStaysInRange(t *testing.T) {
	r := testRing(t)
	p := randPoly(t, r)
	for _, c := range p.Coeffs {
		require.Less(t, c, r.Q)
	}
}

func TestGaussianSamplerRespectsBound(t *testing.T) {
	r := testRing(t)
	prng := NewKeyedPRNG([]byte("gaussian-seed"))
	gs := NewGaussianSampler(prng, r, 3.2, 19)
	p := gs.ReadNew()
	for _, c := range p.Coeffs {
		require.True(t, c < r.Q)
		require.True(t, c <= 19 || c >= r.Q-19, "coefficient %d outside +/-19", c)
	}
}

func TestDeterministicPRNGReproducible(t *testing.T) {
	a := NewKeyedPRNG([]byte("same-seed"))
	b := NewKeyedPRNG([]byte("same-seed"))
	for i := 0; i < 8; i++ {
		require.Equal(t, a.Clock(), b.Clock())
	}
}
