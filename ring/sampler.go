package ring

// Sampler is satisfied by UniformSampler, GaussianSampler and
// TernarySampler: anything that can fill a polynomial with independent
// coefficients drawn from its distribution.
type Sampler interface {
	Read(p *Poly)
}

var (
	_ Sampler = (*UniformSampler)(nil)
	_ Sampler = (*GaussianSampler)(nil)
	_ Sampler = (*TernarySampler)(nil)
)
