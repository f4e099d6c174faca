package ring

// genNTTTables finds a 2N-th primitive root of unity mod Q and derives the
// bit-reversed power tables used by NTT/InvNTT, following the teacher's
// subring.go generateNTTConstants (simplified to one modulus, no level).
func (r *Ring) genNTTTables(nthRoot uint64) error {
	g, err := PrimitiveRoot(r.Q)
	if err != nil {
		return err
	}

	q := r.Q
	n := r.N
	logN := log2(n)

	psi := ModExp(g, (q-1)/nthRoot, q)
	psiInv := ModExp(g, q-1-(q-1)/nthRoot, q)

	r.nInv = MForm(ModExp(uint64(n), q-2, q), q, r.bredConstant)

	r.rootsForward = make([]uint64, n)
	r.rootsBackward = make([]uint64, n)

	r.rootsForward[0] = MForm(1, q, r.bredConstant)
	r.rootsBackward[0] = MForm(1, q, r.bredConstant)

	psiMont := MForm(psi, q, r.bredConstant)
	psiInvMont := MForm(psiInv, q, r.bredConstant)

	for j := uint64(1); j < uint64(n); j++ {
		prev := BitReverse64(j-1, logN)
		next := BitReverse64(j, logN)
		r.rootsForward[next] = MRed(r.rootsForward[prev], psiMont, q, r.mredConstant)
		r.rootsBackward[next] = MRed(r.rootsBackward[prev], psiInvMont, q, r.mredConstant)
	}

	return nil
}

// butterfly computes the Cooley-Tukey step X, Y = U + V*psi, U - V*psi mod Q.
// psi is in Montgomery form; U, V, X, Y are in [0, Q).
func butterfly(u, v, psiMont, q, qInv uint64) (x, y uint64) {
	t := MRed(v, psiMont, q, qInv)
	x = u + t
	if x >= q {
		x -= q
	}
	y = u + q - t
	if y >= q {
		y -= q
	}
	return
}

// invButterfly computes the Gentleman-Sande step X, Y = U + V, (U - V)*psi mod Q.
func invButterfly(u, v, psiMont, q, qInv uint64) (x, y uint64) {
	x = u + v
	if x >= q {
		x -= q
	}
	t := u + q - v
	if t >= q {
		t -= q
	}
	y = MRed(t, psiMont, q, qInv)
	return
}

// NTT transforms pIn from coefficient representation into NTT (evaluation)
// representation, writing the result to pOut (which may alias pIn).
func (r *Ring) NTT(pIn, pOut *Poly) {
	n := r.N
	q := r.Q
	qInv := r.mredConstant

	if !isSameSlice(pIn, pOut) {
		copy(pOut.Coeffs, pIn.Coeffs)
	}
	a := pOut.Coeffs

	t := n
	for m := 1; m < n; m <<= 1 {
		t >>= 1
		for i := 0; i < m; i++ {
			psi := r.rootsForward[m+i]
			j1 := 2 * i * t
			j2 := j1 + t
			for j := j1; j < j2; j++ {
				a[j], a[j+t] = butterfly(a[j], a[j+t], psi, q, qInv)
			}
		}
	}
}

// InvNTT transforms pIn from NTT representation back to coefficient
// representation, writing the result to pOut (which may alias pIn).
func (r *Ring) InvNTT(pIn, pOut *Poly) {
	n := r.N
	q := r.Q
	qInv := r.mredConstant

	if !isSameSlice(pIn, pOut) {
		copy(pOut.Coeffs, pIn.Coeffs)
	}
	a := pOut.Coeffs

	t := 1
	for m := n; m > 1; m >>= 1 {
		h := m >> 1
		j1 := 0
		for i := 0; i < h; i++ {
			psi := r.rootsBackward[h+i]
			j2 := j1 + t
			for j := j1; j < j2; j++ {
				a[j], a[j+t] = invButterfly(a[j], a[j+t], psi, q, qInv)
			}
			j1 += 2 * t
		}
		t <<= 1
	}

	nInv := r.nInv
	for j := 0; j < n; j++ {
		a[j] = MRed(a[j], nInv, q, qInv)
	}
}

func isSameSlice(a, b *Poly) bool {
	return len(a.Coeffs) > 0 && len(b.Coeffs) > 0 && &a.Coeffs[0] == &b.Coeffs[0]
}
