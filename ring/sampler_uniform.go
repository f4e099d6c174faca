package ring

// UniformSampler draws polynomials with coefficients uniform over [0, Q),
// grounded on the teacher's rejection-sampling RandUniform (ring/sampler_uniform.go):
// draw a random 64-bit word, mask it down to bitlen(Q) bits, and reject
// values >= Q rather than reduce, so the output distribution is exactly
// uniform rather than biased low.
type UniformSampler struct {
	prng *PRNG
	ring *Ring
}

// NewUniformSampler constructs a sampler drawing from prng into ring's
// modulus.
func NewUniformSampler(prng *PRNG, ring *Ring) *UniformSampler {
	return &UniformSampler{prng: prng, ring: ring}
}

// RandUniform draws one coefficient uniform over [0, Q) by rejection
// sampling against mask.
func RandUniform(prng *PRNG, q, mask uint64) uint64 {
	for {
		v := prng.Uint64() & mask
		if v < q {
			return v
		}
	}
}

// Read fills p with independent uniform coefficients.
func (s *UniformSampler) Read(p *Poly) {
	q, mask := s.ring.Q, s.ring.mask
	for i := range p.Coeffs {
		p.Coeffs[i] = RandUniform(s.prng, q, mask)
	}
}

// ReadNew allocates and fills a new uniform polynomial.
func (s *UniformSampler) ReadNew() *Poly {
	p := s.ring.NewPoly()
	s.Read(p)
	return p
}
