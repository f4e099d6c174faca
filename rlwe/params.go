// Package rlwe implements the Ring-LWE primitives the PIR protocol is built
// from: secret-key generation, symmetric encryption/decryption, gadget
// key-switching and automorphisms. It is grounded on the teacher's
// core/rlwe package (ciphertext.go, keygenerator.go, encryptor.go,
// decryptor.go, gadgetciphertext.go, evaluator_gadget_product.go,
// evaluator_automorphism.go) but works over the single NTT-friendly
// modulus package ring provides instead of the teacher's RNS modulus chain,
// since this scheme never needs more than one 60-bit prime.
package rlwe

import (
	"fmt"
	"math/bits"
)

// ParamsVersion is bumped whenever the parameter set below changes shape in
// a way that makes ciphertexts from an old version undecryptable under a
// new one. Servers and clients exchange it in CRS metadata (see CRS) and
// refuse to talk to each other on a mismatch.
const ParamsVersion uint16 = 2

// ParameterSet fixes the ring dimension, ciphertext modulus, plaintext
// modulus, noise width and gadget shape for one PIR deployment. Both lanes
// (hot and cold) share the same ParameterSet; only the database contents
// and shard counts differ between them.
type ParameterSet struct {
	LogN         int     // ring dimension N = 2^LogN
	Q            uint64  // ciphertext modulus, NTT-friendly prime
	P            uint64  // plaintext modulus
	Sigma        float64 // Gaussian noise standard deviation
	GadgetLogB   uint64  // gadget digit width in bits
	GadgetLength int     // number of gadget digits
	Version      uint16
}

// N returns the ring dimension 2^LogN.
func (p ParameterSet) N() int {
	return 1 << p.LogN
}

// Delta returns floor(Q/P), the scaling factor that embeds a plaintext
// modulo P into the ciphertext modulus Q.
func (p ParameterSet) Delta() uint64 {
	return p.Q / p.P
}

// DefaultParameters is the production parameter set: ring dimension 2048,
// a 60-bit NTT-friendly prime (2^60 - 2^14 + 1), plaintext modulus 2^16 and
// a noise width of sigma=6.4, matching the original implementation's
// PIR_PARAMS (inspire-core/src/params.rs).
var DefaultParameters = ParameterSet{
	LogN:         11,
	Q:            1152921504606830593,
	P:            65536,
	Sigma:        6.4,
	GadgetLogB:   20,
	GadgetLength: 3,
	Version:      ParamsVersion,
}

// Validate checks internal consistency: N must be a power of two, and the
// gadget must be wide enough to cover Q (B^L > Q), or decomposition would
// silently drop high-order bits of every ciphertext coefficient.
func (p ParameterSet) Validate() error {
	if p.LogN <= 0 {
		return fmt.Errorf("rlwe: LogN must be positive, got %d", p.LogN)
	}
	if p.Q == 0 || p.P == 0 {
		return fmt.Errorf("rlwe: Q and P must be non-zero")
	}
	if p.P > p.Q {
		return fmt.Errorf("rlwe: P=%d must not exceed Q=%d", p.P, p.Q)
	}
	qBits := uint64(bits.Len64(p.Q))
	gadgetBits := p.GadgetLogB * uint64(p.GadgetLength)
	if gadgetBits < qBits {
		return fmt.Errorf("rlwe: gadget base^length (%d bits) too small to cover Q (%d bits)", gadgetBits, qBits)
	}
	return nil
}
