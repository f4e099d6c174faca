package ring

import "math"

// GaussianSampler draws discrete Gaussian noise for RLWE encryption error
// terms. The teacher's own sampler (ring/sampler_gaussian.go) implements a
// Ziggurat algorithm tuned for constant-time sampling of many moduli at
// once; this single-modulus scheme instead draws a continuous Gaussian via
// Box-Muller, rounds to the nearest integer, and rejects anything outside
// +/- bound (an absolute integer bound, not a multiple of sigma), matching the teacher's DiscreteGaussian
// bound-and-reject contract without the RNS-specific Ziggurat tables.
type GaussianSampler struct {
	prng  *PRNG
	ring  *Ring
	sigma float64
	bound int64
}

// NewGaussianSampler constructs a sampler with the given standard deviation
// and rejection bound (the teacher's constants use bound = 6*sigma).
func NewGaussianSampler(prng *PRNG, ring *Ring, sigma float64, bound int64) *GaussianSampler {
	return &GaussianSampler{prng: prng, ring: ring, sigma: sigma, bound: bound}
}

// uniformOpen01 draws a float64 uniform in (0, 1), never returning 0 so that
// log(u) below never diverges.
func (s *GaussianSampler) uniformOpen01() float64 {
	for {
		v := s.prng.Uint64() >> 11 // 53 significant bits
		if v != 0 {
			return float64(v) / float64(uint64(1)<<53)
		}
	}
}

func (s *GaussianSampler) sampleInt() int64 {
	for {
		u1 := s.uniformOpen01()
		u2 := s.uniformOpen01()
		r := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		v := int64(math.Round(r * s.sigma))
		if v >= -s.bound && v <= s.bound {
			return v
		}
	}
}

// toCoeff maps a signed integer into [0, Q): negative values wrap around Q.
func (r *Ring) toCoeff(v int64) uint64 {
	if v >= 0 {
		return uint64(v) % r.Q
	}
	return r.Q - (uint64(-v) % r.Q)
}

// Read fills p with independent discrete Gaussian samples.
func (s *GaussianSampler) Read(p *Poly) {
	for i := range p.Coeffs {
		p.Coeffs[i] = s.ring.toCoeff(s.sampleInt())
	}
}

// ReadNew allocates and fills a new Gaussian polynomial.
func (s *GaussianSampler) ReadNew() *Poly {
	p := s.ring.NewPoly()
	s.Read(p)
	return p
}

// ReadAndAdd draws fresh noise and adds it onto p in place.
func (s *GaussianSampler) ReadAndAdd(p *Poly) {
	q := s.ring.Q
	for i := range p.Coeffs {
		c := s.ring.toCoeff(s.sampleInt())
		v := p.Coeffs[i] + c
		if v >= q {
			v -= q
		}
		p.Coeffs[i] = v
	}
}
