package rlwe

import (
	"strconv"

	"github.com/statepir/inspire/ring"
)

// GadgetCiphertext is a key-switching key: an encryption, under a
// destination secret key, of each gadget power of a source secret key
// (or of an automorphism of it). Summing decompose(x) against Rows
// reconstructs x under the destination key with noise growth bounded by the
// gadget base rather than by Q, the same "power matrix" construction as the
// teacher's GadgetCiphertext (core/rlwe/gadgetciphertext.go), minus the RNS
// basis-extension machinery this single-modulus ring has no use for.
type GadgetCiphertext struct {
	Rows []*Ciphertext
	Base ring.GadgetBase
}

// GenGadgetCiphertext encrypts, under destSK, each gadget power of source
// (source*B^0, source*B^1, ..., source*B^(L-1)), using a fresh uniform
// polynomial per row drawn from crs under the given label prefix.
func GenGadgetCiphertext(r *ring.Ring, enc *Encryptor, destSK *SecretKey, source *ring.Poly, base ring.GadgetBase, crs *CRS, labelPrefix string) *GadgetCiphertext {
	powers := base.PowersOfBase(r.Q)

	rows := make([]*Ciphertext, base.Length)
	for i := 0; i < base.Length; i++ {
		scaled := r.NewPoly()
		r.MulScalar(source, powers[i], scaled)

		a := crs.Uniform(labelPrefix + digitLabel(i))
		ct := enc.EncryptZero(destSK, a)
		r.Add(ct.B, scaled, ct.B)
		rows[i] = ct
	}
	return &GadgetCiphertext{Rows: rows, Base: base}
}

func digitLabel(i int) string {
	return "-digit-" + strconv.Itoa(i)
}
