package ring

// TernarySampler draws secret-key coefficients from {-1, 0, 1}, grounded on
// the teacher's TernarySampler (ring/sampler_ternary.go) but simplified to
// its density-parameterized path: P is the probability of a zero
// coefficient, with the remaining mass split evenly between -1 and +1.
type TernarySampler struct {
	prng *PRNG
	ring *Ring
	p    float64
}

// NewTernarySampler constructs a ternary sampler with P(coeff==0) = p.
func NewTernarySampler(prng *PRNG, ring *Ring, p float64) *TernarySampler {
	return &TernarySampler{prng: prng, ring: ring, p: p}
}

func (s *TernarySampler) sampleOne() uint64 {
	q := s.ring.Q
	const scale = float64(1 << 53)
	v := s.prng.Uint64() >> 11
	u := float64(v) / scale

	pZero := s.p
	pNeg := pZero + (1-pZero)/2

	switch {
	case u < pZero:
		return 0
	case u < pNeg:
		return q - 1
	default:
		return 1
	}
}

// Read fills p with independent ternary samples.
func (s *TernarySampler) Read(p *Poly) {
	for i := range p.Coeffs {
		p.Coeffs[i] = s.sampleOne()
	}
}

// ReadNew allocates and fills a new ternary polynomial.
func (s *TernarySampler) ReadNew() *Poly {
	p := s.ring.NewPoly()
	s.Read(p)
	return p
}
