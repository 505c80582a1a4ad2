package transit

import "math"

// QuadraticProfile evaluates the quadratic limb-darkening law
// I(mu) = 1 - u(1-mu) - v(1-mu)^2 at the z-grid means zm, where
// mu = sqrt(1-z^2).
func QuadraticProfile(u, v float64, zm []float64) []float64 {
	ldp := make([]float64, len(zm))
	for i, z := range zm {
		mu := math.Sqrt(1.0 - z*z)
		t := 1.0 - mu
		ldp[i] = 1.0 - u*t - v*t*t
	}
	return ldp
}

// QuadraticIStar returns the disk-integrated stellar intensity for the
// quadratic law, the closed form of 2*pi*int I(z) z dz over the disk.
func QuadraticIStar(u, v float64) float64 {
	return math.Pi * (1.0 - u/3.0 - v/6.0)
}

// IntegrateProfile numerically integrates an arbitrary limb-darkening
// profile sampled on the z-grid bins over the stellar disk, weighting each
// bin value by its annulus area. Used in place of QuadraticIStar when the
// profile does not come from the quadratic law.
func IntegrateProfile(ldp []float64, ze []float64) float64 {
	total := 0.0
	z0 := 0.0
	for i, z1 := range ze {
		total += ldp[i] * math.Pi * (z1*z1 - z0*z0)
		z0 = z1
	}
	return total
}

// MapLDC maps triangular (q1,q2) limb-darkening parametrisation pairs to
// quadratic-law (u,v) coefficient pairs. The input and output rows are laid
// out as [q1_0, q2_0, q1_1, q2_1, ...] per population member.
func MapLDC(ldc [][]float64) [][]float64 {
	uv := make([][]float64, len(ldc))
	for ipv, row := range ldc {
		out := make([]float64, len(row))
		for j := 0; j+1 < len(row); j += 2 {
			a := math.Sqrt(row[j])
			b := 2.0 * row[j+1]
			out[j] = a * b
			out[j+1] = a * (1.0 - b)
		}
		uv[ipv] = out
	}
	return uv
}
