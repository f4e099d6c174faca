package ring

// Automorphism applies the Galois automorphism X -> X^gen (gen odd) to pIn
// in coefficient representation, writing the result to pOut. pOut must not
// alias pIn.
func (r *Ring) Automorphism(pIn *Poly, gen uint64, pOut *Poly) {
	n := uint64(r.N)
	mask := n - 1
	logN := uint64(log2(r.N))
	q := r.Q

	for i := uint64(0); i < n; i++ {
		raw := i * gen
		index := raw & mask
		negate := (raw >> logN) & 1

		c := pIn.Coeffs[i]
		if negate == 1 && c != 0 {
			c = q - c
		}
		pOut.Coeffs[index] = c
	}
}
