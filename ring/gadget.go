package ring

import "math/bits"

// GadgetBase describes a base-B, length-L gadget decomposition used to keep
// key-switching noise growth logarithmic in Q: each ring element is split
// into L digits of B bits so that summing digit_i * B^i reconstructs the
// original value, and each digit individually contributes only O(B) noise
// when multiplied against a key-switching key row.
type GadgetBase struct {
	Base   uint64
	Length int
}

// NewGadgetBase constructs a gadget base. logBase is the bit width of each
// digit (B = 2^logBase); length is the number of digits L, chosen so that
// B^L comfortably exceeds Q.
func NewGadgetBase(logBase uint64, length int) GadgetBase {
	return GadgetBase{Base: uint64(1) << logBase, Length: length}
}

// DecomposeCoeff splits a single coefficient c (0 <= c < Q) into g.Length
// unsigned base-g.Base digits, least-significant digit first.
func (g GadgetBase) DecomposeCoeff(c uint64) []uint64 {
	digits := make([]uint64, g.Length)
	mask := g.Base - 1
	shift := bitLen(g.Base - 1)
	for i := 0; i < g.Length; i++ {
		digits[i] = c & mask
		c >>= shift
	}
	return digits
}

// Decompose splits every coefficient of p into g.Length polynomials of
// matching digits: decomposed[i].Coeffs[j] is the i-th digit of p.Coeffs[j].
func (r *Ring) Decompose(p *Poly, g GadgetBase) []*Poly {
	decomposed := make([]*Poly, g.Length)
	for i := range decomposed {
		decomposed[i] = r.NewPoly()
	}
	for j, c := range p.Coeffs {
		digits := g.DecomposeCoeff(c)
		for i, d := range digits {
			decomposed[i].Coeffs[j] = d
		}
	}
	return decomposed
}

// PowersOfBase returns [B^0, B^1, ..., B^(L-1)] reduced mod Q, the weights
// that reconstruct a coefficient from its digit decomposition.
func (g GadgetBase) PowersOfBase(q uint64) []uint64 {
	powers := make([]uint64, g.Length)
	p := uint64(1) % q
	for i := range powers {
		powers[i] = p
		p = mulModSmall(p, g.Base, q)
	}
	return powers
}

func mulModSmall(a, b, q uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	if hi == 0 {
		return (a * b) % q
	}
	return BRed(a, b, q, BRedConstant(q))
}
