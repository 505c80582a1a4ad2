package transit

import "math"

// ZGrid is a monotonically increasing grid of projected-distance samples
// covering the stellar disk, denser near the limb where the limb-darkening
// profile changes fastest. Edges hold the bin boundaries and Means the bin
// midpoints; Means[0] is always 0.
type ZGrid struct {
	Edges []float64
	Means []float64
}

// NewZGrid builds a z grid with nin uniformly spaced interior points below
// the cutoff zcut and nedge near-limb points spaced uniformly in
// mu = sqrt(1-z^2) beyond it.
func NewZGrid(zcut float64, nin, nedge int) ZGrid {
	mucut := math.Sqrt(1.0 - zcut*zcut)
	dz := zcut / float64(nin)
	dmu := mucut / float64(nedge)

	n := nin + nedge
	edges := make([]float64, n)
	means := make([]float64, n)

	for i := 0; i < nin-1; i++ {
		edges[i] = float64(i+1) * dz
	}
	for i := 0; i <= nedge; i++ {
		m := float64(i) * dmu
		edges[n-i-1] = math.Sqrt(1 - m*m)
	}
	for i := 0; i < n-1; i++ {
		means[i+1] = 0.5 * (edges[i] + edges[i+1])
	}
	return ZGrid{Edges: edges, Means: means}
}

// NewZGridAcos builds an nz-point grid via the z = acos(u)/(pi/2)
// reparametrisation of a uniform grid on [1,0], which clusters samples
// smoothly towards the limb without an explicit cutoff.
func NewZGridAcos(nz int) ZGrid {
	edges := make([]float64, nz)
	means := make([]float64, nz)

	for i := 0; i < nz; i++ {
		u := 1.0 - float64(i)/float64(nz-1)
		edges[i] = math.Acos(u) / (0.5 * math.Pi)
	}
	for i := 0; i < nz-1; i++ {
		means[i+1] = 0.5 * (edges[i] + edges[i+1])
	}
	return ZGrid{Edges: edges, Means: means}
}
