// Package ring implements the polynomial ring R_q = Z_q[X]/(X^N+1) used by
// the rlwe package: coefficient/NTT-domain arithmetic, Montgomery and
// Barrett modular reduction, and the samplers (uniform, discrete Gaussian,
// ternary) that drive key and noise generation. It is a single-modulus
// simplification of a multi-modulus (RNS) ring package: the spec's
// parameter set uses one 60-bit NTT-friendly prime, so there is no residue
// decomposition, no level, and no CRT reconstruction to carry.
package ring

import (
	"fmt"
)

// Ring holds one polynomial ring Z_q[X]/(X^N+1) and its NTT/reduction
// precomputation.
type Ring struct {
	N int
	Q uint64

	mask uint64

	bredConstant []uint64 // Barrett: floor(2^128/Q) as two 64-bit limbs
	mredConstant uint64   // Montgomery: Q^-1 mod 2^64

	nInv uint64 // N^-1 mod Q, in Montgomery form

	rootsForward  []uint64 // Psi^bitrev(i) in Montgomery form, length N
	rootsBackward []uint64 // PsiInv^bitrev(i) in Montgomery form, length N
}

// NewRing constructs the ring Z_q[X]/(X^N+1). N must be a power of two and
// q must be prime with q = 1 mod 2N so that a 2N-th primitive root of unity
// exists and NTT multiplication is defined.
func NewRing(n int, q uint64) (*Ring, error) {
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("ring: N=%d is not a power of two", n)
	}
	if !IsPrime(q) {
		return nil, fmt.Errorf("ring: Q=%d is not prime", q)
	}
	nthRoot := uint64(2 * n)
	if (q-1)%nthRoot != 0 {
		return nil, fmt.Errorf("ring: Q=%d is not congruent to 1 mod 2N=%d", q, nthRoot)
	}

	r := &Ring{
		N:            n,
		Q:            q,
		mask:         (uint64(1) << bitLen(q-1)) - 1,
		bredConstant: BRedConstant(q),
		mredConstant: MRedParams(q),
	}

	if err := r.genNTTTables(nthRoot); err != nil {
		return nil, err
	}
	return r, nil
}

func bitLen(x uint64) int {
	n := 0
	for x != 0 {
		n++
		x >>= 1
	}
	return n
}

// NewPoly allocates a zero polynomial sized for this ring.
func (r *Ring) NewPoly() *Poly {
	return NewPoly(r.N)
}

// Reduce reduces every coefficient of p1 mod Q into p2 (p1 may equal p2).
func (r *Ring) Reduce(p1, p2 *Poly) {
	for i, c := range p1.Coeffs {
		p2.Coeffs[i] = c % r.Q
	}
}

// Add computes p3 = p1 + p2 mod Q, coefficient-wise.
func (r *Ring) Add(p1, p2, p3 *Poly) {
	q := r.Q
	for i := range p3.Coeffs {
		s := p1.Coeffs[i] + p2.Coeffs[i]
		if s >= q {
			s -= q
		}
		p3.Coeffs[i] = s
	}
}

// Sub computes p3 = p1 - p2 mod Q, coefficient-wise.
func (r *Ring) Sub(p1, p2, p3 *Poly) {
	q := r.Q
	for i := range p3.Coeffs {
		var d uint64
		if p1.Coeffs[i] >= p2.Coeffs[i] {
			d = p1.Coeffs[i] - p2.Coeffs[i]
		} else {
			d = q - (p2.Coeffs[i] - p1.Coeffs[i])
		}
		p3.Coeffs[i] = d
	}
}

// Neg computes p2 = -p1 mod Q, coefficient-wise.
func (r *Ring) Neg(p1, p2 *Poly) {
	q := r.Q
	for i, c := range p1.Coeffs {
		if c == 0 {
			p2.Coeffs[i] = 0
		} else {
			p2.Coeffs[i] = q - c
		}
	}
}

// MulScalar computes p2 = p1 * scalar mod Q, coefficient-wise.
func (r *Ring) MulScalar(p1 *Poly, scalar uint64, p2 *Poly) {
	scalar %= r.Q
	for i, c := range p1.Coeffs {
		p2.Coeffs[i] = BRed(c, scalar, r.Q, r.bredConstant)
	}
}

// MulCoeffs computes p3 = p1 .* p2 mod Q, a pointwise product of two
// polynomials already in NTT form (this is the NTT-domain equivalent of
// negacyclic convolution).
func (r *Ring) MulCoeffs(p1, p2, p3 *Poly) {
	for i := range p3.Coeffs {
		p3.Coeffs[i] = BRed(p1.Coeffs[i], p2.Coeffs[i], r.Q, r.bredConstant)
	}
}

// MulCoeffsAndAdd computes p3 += p1 .* p2 mod Q.
func (r *Ring) MulCoeffsAndAdd(p1, p2, p3 *Poly) {
	q := r.Q
	for i := range p3.Coeffs {
		v := BRed(p1.Coeffs[i], p2.Coeffs[i], q, r.bredConstant)
		s := p3.Coeffs[i] + v
		if s >= q {
			s -= q
		}
		p3.Coeffs[i] = s
	}
}

// Mul computes p3 = p1 * p2 mod (Q, X^N+1) via NTT: both operands are
// transformed into NTT form, multiplied pointwise, and transformed back.
// p1 and p2 are left unmodified.
func (r *Ring) Mul(p1, p2, p3 *Poly) {
	a := p1.CopyNew()
	b := p2.CopyNew()
	r.NTT(a, a)
	r.NTT(b, b)
	r.MulCoeffs(a, b, p3)
	r.InvNTT(p3, p3)
}

// Equal reports whether two rings share the same dimension and modulus.
func (r *Ring) Equal(other *Ring) bool {
	return r.N == other.N && r.Q == other.Q
}
