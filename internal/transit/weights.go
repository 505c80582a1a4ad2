package transit

import (
	"gonum.org/v1/gonum/floats"
)

// gridEnd keeps the last grazing sample strictly below 1 so that the
// bilinear interpolation never indexes past the table.
const gridEnd = 1.0 - 1e-7

// WeightTable holds the grazing-parameter weight rows for a single radius
// ratio. Row ig discretises the stellar surface covered by the planet at
// grazing parameter Gs[ig] against the z grid; every row sums to 1 after
// normalisation, so dotting a row with a limb-darkening profile yields the
// mean blocked intensity.
type WeightTable struct {
	Gs      []float64
	Dg      float64
	Weights [][]float64 // [ng][nz]
}

// NewWeightTable builds the weight table for radius ratio k over the z-grid
// edges ze with ng grazing-parameter samples. The rows are successive
// differences of the cumulative circle-circle overlap evaluated at the grid
// edges, normalised to unit sum.
func NewWeightTable(k float64, ze []float64, ng int) WeightTable {
	gs := make([]float64, ng)
	for i := range gs {
		gs[i] = gridEnd * float64(i) / float64(ng-1)
	}

	nz := len(ze)
	weights := make([][]float64, ng)
	for ig := 0; ig < ng; ig++ {
		row := make([]float64, nz)
		b := gs[ig] * (1.0 + k)
		a0 := CircleCircleIntersectionArea(ze[0], k, b)
		row[0] = a0
		for i := 1; i < nz; i++ {
			a1 := CircleCircleIntersectionArea(ze[i], k, b)
			row[i] = a1 - a0
			a0 = a1
		}
		floats.Scale(1.0/floats.Sum(row), row)
		weights[ig] = row
	}
	return WeightTable{Gs: gs, Dg: gs[1] - gs[0], Weights: weights}
}

// WeightTable3D precomputes weight tables over a linear grid of nk radius
// ratios spanning [K0,K1], adding a leading radius-ratio axis. Built once
// per model configuration and reused read-only; bilinear interpolation
// across the k and g axes then replaces per-call table construction.
type WeightTable3D struct {
	K0, K1  float64
	Dk      float64
	Dg      float64
	Weights [][][]float64 // [nk][ng][nz]
}

// NewWeightTable3D builds the radius-ratio-resolved weight table.
func NewWeightTable3D(nk int, k0, k1 float64, ze []float64, ng int) WeightTable3D {
	weights := make([][][]float64, nk)
	var dg float64
	for ik := 0; ik < nk; ik++ {
		k := k0 + (k1-k0)*float64(ik)/float64(nk-1)
		wt := NewWeightTable(k, ze, ng)
		weights[ik] = wt.Weights
		dg = wt.Dg
	}
	return WeightTable3D{
		K0: k0, K1: k1,
		Dk:      (k1 - k0) / float64(nk),
		Dg:      dg,
		Weights: weights,
	}
}
