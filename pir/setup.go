package pir

import (
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// Bundle is the output of Setup: a CRS every client and server derive
// identical uniform polynomials from, plus a set of automorphism keys
// generated from a throwaway setup secret and then kept (the secret itself
// is discarded once GenAutomorphismKeys returns, matching the data model's
// "setup secret used for internal key-switching-key construction and then
// discarded"). Clients never see these keys or the setup secret; they
// generate and hold their own secret key for every query.
type Bundle struct {
	CRS              *rlwe.CRS
	AutomorphismKeys map[uint64]*rlwe.AutomorphismKey
	Params           rlwe.ParameterSet
}

// Setup builds a Bundle for a deployment: the ring, parameter set and a CRS
// seed are fixed ahead of time (e.g. read from lane configuration); Setup
// derives everything else.
func Setup(r *ring.Ring, params rlwe.ParameterSet, crsSeed []byte) (*Bundle, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	crs := rlwe.NewCRS(crsSeed, r)
	prng := ring.NewKeyedPRNG(append([]byte("pir-setup-"), crsSeed...))
	kg := rlwe.NewKeyGenerator(r, params, prng)

	setupSK := kg.GenSecretKey()
	gens := standardGaloisGenerators(params.N())
	autoKeys := kg.GenAutomorphismKeys(setupSK, gens, crs)
	// setupSK goes out of scope here uncopied; nothing in Bundle retains it.

	return &Bundle{CRS: crs, AutomorphismKeys: autoKeys, Params: params}, nil
}

// standardGaloisGenerators returns the power-of-two-plus-one Galois elements
// 2^logN+1, ..., 2^1+1 that a logarithmic chain of automorphisms over a
// ring of dimension n would use. The current Respond implementation doesn't
// walk this chain (see DESIGN.md for why), but Bundle still carries the
// keys so the CRS's shape matches the full data model and so a future
// bandwidth-optimized query expansion has them ready.
func standardGaloisGenerators(n int) []uint64 {
	logN := 0
	for (1 << logN) < n {
		logN++
	}
	gens := make([]uint64, 0, logN)
	for k := 0; k < logN; k++ {
		gens = append(gens, uint64(1<<uint(logN-k))+1)
	}
	return gens
}
