package transit

import "gonum.org/v1/gonum/floats"

// FluxZDirect computes the flux for a precomputed projected-separation
// series z and radius ratio k, building the grazing weight table on the
// fly. ldp is the limb-darkening profile on the z-grid means and istar the
// disk-integrated stellar intensity. The parallel flag only changes the
// scheduling, never the result.
func FluxZDirect(z []float64, k, istar float64, ng int, ldp, ze []float64, parallel bool, workers int) []float64 {
	wt := NewWeightTable(k, ze, ng)
	ldw := dotRows(wt.Weights, ldp)
	return fluxZ(z, k, istar, wt.Dg, ldw, parallel, workers)
}

// FluxZInterpolated computes the flux for a projected-separation series
// using a precomputed radius-ratio weight table, blending the two tables
// bracketing k.
func FluxZInterpolated(z []float64, k, istar float64, ldp []float64, table *WeightTable3D, parallel bool, workers int) ([]float64, error) {
	ik, ak, err := table.bracket(k)
	if err != nil {
		return nil, err
	}
	w0 := dotRows(table.Weights[ik], ldp)
	w1 := dotRows(table.Weights[ik+1], ldp)
	ldw := make([]float64, len(w0))
	for i := range ldw {
		ldw[i] = (1.0-ak)*w0[i] + ak*w1[i]
	}
	return fluxZ(z, k, istar, table.Dg, ldw, parallel, workers), nil
}

func fluxZ(z []float64, k, istar, dg float64, ldw []float64, parallel bool, workers int) []float64 {
	flux := make([]float64, len(z))
	ztog := 1.0 / (1.0 + k)
	if !parallel {
		workers = 1
	} else if workers <= 0 {
		workers = defaultWorkers()
	}
	parallelFor(len(z), workers, func(i int) {
		iplanet := lerp(z[i]*ztog, dg, ldw)
		aplanet := CircleCircleIntersectionArea(1.0, k, z[i])
		flux[i] = (istar - iplanet*aplanet) / istar
	})
	return flux
}

// MeanBlockedIntensity exposes the weight-table dot product for a grazing
// parameter series: the per-point mean limb-darkening intensity covered by
// the planet. Exported for diagnostics and tests of the interpolation
// tables.
func MeanBlockedIntensity(gs []float64, wt WeightTable, ldp []float64) []float64 {
	return blockedIntensityV(gs, wt.Dg, wt.Weights, ldp)
}

// RowSums returns the per-row weight sums of a table, which are 1 for a
// correctly normalised table.
func RowSums(wt WeightTable) []float64 {
	sums := make([]float64, len(wt.Weights))
	for i, row := range wt.Weights {
		sums[i] = floats.Sum(row)
	}
	return sums
}
