package ring

import (
	"math/big"
	"math/bits"
)

// This file adapts the Barrett/Montgomery reduction primitives of the
// teacher's multi-modulus ring package to a single 64-bit-word modulus:
// MRedParams/MRed/MForm/InvMForm compute Montgomery products and domain
// switches, BRedConstant/BRed/BRedAdd compute Barrett-reduced products and
// additions, all via math/bits.Mul64 rather than math/big.

// MRedParams computes qInv = q^-1 mod 2^64, the constant required by MRed.
func MRedParams(q uint64) (qInv uint64) {
	qInv = 1
	x := q
	for i := 0; i < 63; i++ {
		qInv *= x
		x *= x
	}
	return
}

// MRed computes x*y*(1/2^64) mod q (Montgomery multiplication).
func MRed(x, y, q, qInv uint64) (r uint64) {
	ahi, alo := bits.Mul64(x, y)
	h, _ := bits.Mul64(alo*qInv, q)
	r = ahi - h + q
	if r >= q {
		r -= q
	}
	return
}

// MForm switches a into the Montgomery domain: a*2^64 mod q.
func MForm(a, q uint64, bredConstant []uint64) (r uint64) {
	hi, _ := bits.Mul64(a, bredConstant[1])
	r = -(a*bredConstant[0] + hi) * q
	if r >= q {
		r -= q
	}
	return
}

// InvMForm switches a out of the Montgomery domain: a*(1/2^64) mod q.
func InvMForm(a, q, qInv uint64) (r uint64) {
	r, _ = bits.Mul64(a*qInv, q)
	r = q - r
	if r >= q {
		r -= q
	}
	return
}

// BRedConstant computes the two 64-bit limbs of floor(2^128/q), used by
// BRed/BRedAdd for Barrett reduction without a 128-bit divide per call.
func BRedConstant(q uint64) []uint64 {
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))
	mhi := new(big.Int).Rsh(bigR, 64).Uint64()
	mlo := bigR.Uint64()
	return []uint64{mhi, mlo}
}

// BRedAdd reduces x (assumed < q^2) mod q using Barrett reduction.
func BRedAdd(x, q uint64, u []uint64) (r uint64) {
	s0, _ := bits.Mul64(x, u[0])
	r = x - s0*q
	if r >= q {
		r -= q
	}
	return
}

// BRed computes x*y mod q using the two-limb Barrett product (u =
// BRedConstant(q)), avoiding a 128-bit divide per call. This is the
// pointwise-multiply primitive MulCoeffs/MulScalar call, which
// pir.Respond's per-shard worker pool drives on every query: the hottest
// path in the server, not an off-path one, so it is written the way the
// teacher's ring package writes its own BRed, not with a big.Int product.
func BRed(x, y, q uint64, u []uint64) (r uint64) {
	var lhi, mhi, mlo, s0, s1, carry uint64

	ahi, alo := bits.Mul64(x, y)

	lhi, _ = bits.Mul64(alo, u[1])

	mhi, mlo = bits.Mul64(alo, u[0])
	s0, carry = bits.Add64(mlo, lhi, 0)
	s1 = mhi + carry

	mhi, mlo = bits.Mul64(ahi, u[1])
	_, carry = bits.Add64(mlo, s0, 0)
	lhi = mhi + carry

	s0 = ahi*u[0] + s1 + lhi

	r = alo - s0*q
	if r >= q {
		r -= q
	}
	return
}
