package transit

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// interpolateLimbDarkening linearly interpolates a limb-darkening profile
// ldp sampled at the z-grid means mz at projected distance z. Queries beyond
// the last mean return the edge value; negative z returns NaN as an
// out-of-domain sentinel rather than an error.
//
// The bracketing interval is found by walking from the grid midpoint. The
// grid is monotonic and small, so the linear walk stays competitive with a
// binary search while matching the reference behaviour exactly.
func interpolateLimbDarkening(z float64, mz, ldp []float64) float64 {
	if z < 0.0 {
		return math.NaN()
	}
	if z > mz[len(mz)-1] {
		return ldp[len(ldp)-1]
	}

	i := len(mz) / 2
	if z > mz[i] {
		for z > mz[i+1] {
			i++
		}
	} else {
		for z < mz[i] {
			i--
		}
	}

	a := (z - mz[i]) / (mz[i+1] - mz[i])
	return (1.0-a)*ldp[i] + a*ldp[i+1]
}

// interpolateLimbDarkeningV is the vectorised form of
// interpolateLimbDarkening; each query restarts the walk from the midpoint.
func interpolateLimbDarkeningV(zs, mz, ldp []float64) []float64 {
	ld := make([]float64, len(zs))
	for i, z := range zs {
		ld[i] = interpolateLimbDarkening(z, mz, ldp)
	}
	return ld
}

// lerp linearly interpolates the pre-dotted intensity row ldw at grazing
// parameter g with grid step dg. Grazing parameters at or beyond 1 mean the
// planet has left the stellar disk: the blocked intensity is 0.
func lerp(g, dg float64, ldw []float64) float64 {
	if g >= 1.0 {
		return 0.0
	}
	ng := g / dg
	ig := int(ng)
	if ig >= len(ldw)-1 {
		// g inside the sub-grid-step sliver below 1.
		return ldw[len(ldw)-1]
	}
	ag := ng - float64(ig)
	return (1.0-ag)*ldw[ig] + ag*ldw[ig+1]
}

// blockedIntensity returns the mean limb-darkening intensity blocked by the
// planet at grazing parameter g, blending the two bracketing weight-table
// rows dotted against the profile ldp.
func blockedIntensity(g, dg float64, weights [][]float64, ldp []float64) float64 {
	if g >= 1.0 {
		return 0.0
	}
	ng := g / dg
	ig := int(ng)
	if ig >= len(weights)-1 {
		return floats.Dot(weights[len(weights)-1], ldp)
	}
	ag := ng - float64(ig)
	return (1.0-ag)*floats.Dot(weights[ig], ldp) + ag*floats.Dot(weights[ig+1], ldp)
}

// blockedIntensity3D is the radius-ratio-resolved form: standard bilinear
// interpolation across the k and g axes of a precomputed 3D table,
// combining the four corner rows with products of the fractional offsets.
func blockedIntensity3D(k, g, dk, dg float64, weights [][][]float64, ldp []float64, k0 float64) float64 {
	if g >= 1.0 {
		return 0.0
	}
	nk := (k - k0) / dk
	ik := int(nk)
	if ik >= len(weights)-1 {
		ik = len(weights) - 2
	}
	ak1 := nk - float64(ik)
	ak2 := 1.0 - ak1

	ng := g / dg
	ig := int(ng)
	if ig >= len(weights[ik])-1 {
		ig = len(weights[ik]) - 2
	}
	ag1 := ng - float64(ig)
	ag2 := 1.0 - ag1

	l00 := floats.Dot(weights[ik][ig], ldp)
	l01 := floats.Dot(weights[ik][ig+1], ldp)
	l10 := floats.Dot(weights[ik+1][ig], ldp)
	l11 := floats.Dot(weights[ik+1][ig+1], ldp)

	return l00*ak2*ag2 + l10*ak1*ag2 + l01*ak2*ag1 + l11*ak1*ag1
}

// blockedIntensityV evaluates the blocked intensity for a slice of grazing
// parameters, dotting the weight rows against ldp once up front.
func blockedIntensityV(gs []float64, dg float64, weights [][]float64, ldp []float64) []float64 {
	ldw := dotRows(weights, ldp)
	im := make([]float64, len(gs))
	for i, g := range gs {
		im[i] = lerp(g, dg, ldw)
	}
	return im
}

// dotRows dots every weight row against the limb-darkening profile,
// collapsing a [ng][nz] table into a [ng] intensity row.
func dotRows(weights [][]float64, ldp []float64) []float64 {
	ldw := make([]float64, len(weights))
	for i, row := range weights {
		ldw[i] = floats.Dot(row, ldp)
	}
	return ldw
}
