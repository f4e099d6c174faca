package rlwe

import (
	"strconv"

	"github.com/statepir/inspire/ring"
)

// AutomorphismKey is a key-switching key from sigma_gen(S) back to S,
// letting Automorph fold a rotated ciphertext back under the original
// secret so a chain of automorphisms can be applied without the secret key
// drifting with every step.
type AutomorphismKey struct {
	Gen uint64
	Key *GadgetCiphertext
}

// GenAutomorphismKey builds the key-switching key for the automorphism
// X -> X^gen under secret key sk: it encrypts sigma_gen(S) (in coefficient
// form, reapplied in NTT form to match secret-key storage) under S itself.
func GenAutomorphismKey(r *ring.Ring, enc *Encryptor, sk *SecretKey, gen uint64, base ring.GadgetBase, crs *CRS) *AutomorphismKey {
	sCoeff := r.NewPoly()
	r.InvNTT(sk.Value, sCoeff)

	rotated := r.NewPoly()
	r.Automorphism(sCoeff, gen, rotated)

	rotatedNTT := r.NewPoly()
	r.NTT(rotated, rotatedNTT)

	key := GenGadgetCiphertext(r, enc, sk, rotatedNTT, base, crs, "autokey-gen-"+strconv.FormatUint(gen, 10))
	return &AutomorphismKey{Gen: gen, Key: key}
}

// Automorph applies X -> X^gen to ct (valid under sk) and key-switches the
// result back under sk using ak, which must have been generated for the
// same gen and the same sk.
func Automorph(r *ring.Ring, ct *Ciphertext, ak *AutomorphismKey) *Ciphertext {
	bCoeff, aCoeff := r.NewPoly(), r.NewPoly()
	r.InvNTT(ct.B, bCoeff)
	r.InvNTT(ct.A, aCoeff)

	bRot, aRot := r.NewPoly(), r.NewPoly()
	r.Automorphism(bCoeff, ak.Gen, bRot)
	r.Automorphism(aCoeff, ak.Gen, aRot)

	bRotNTT, aRotNTT := r.NewPoly(), r.NewPoly()
	r.NTT(bRot, bRotNTT)
	r.NTT(aRot, aRotNTT)

	rotated := &Ciphertext{B: bRotNTT, A: aRotNTT}
	return KeySwitch(r, rotated, ak.Key)
}
