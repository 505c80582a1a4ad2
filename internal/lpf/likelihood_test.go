package lpf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLnLikeNormalClosedForm(t *testing.T) {
	// Perfect fit: residuals are zero and the likelihood collapses to the
	// normalisation term.
	o := []float64{1.0, 1.0, 0.99, 1.01}
	e := 0.002
	want := -4.0*math.Log(e) - 2.0*log2Pi
	assert.InDelta(t, want, LnLikeNormalS(o, o, e), 1e-10)

	ev := []float64{e, e, e, e}
	assert.InDelta(t, want, LnLikeNormal(o, o, ev), 1e-10)
}

func TestLnLikeNormalResiduals(t *testing.T) {
	o := []float64{1.0, 0.5}
	m := []float64{0.9, 0.7}
	e := 0.1
	// ssr = 0.01 + 0.04
	want := -2.0*math.Log(e) - log2Pi - 0.5*0.05/(e*e)
	assert.InDelta(t, want, LnLikeNormalS(o, m, e), 1e-10)
}

func TestLnLikeNormalVGrouping(t *testing.T) {
	// Two light curves sharing points but mapped to different noise
	// blocks: the per-member likelihood is the sum of the per-block
	// scalar likelihoods.
	o := []float64{1.0, 1.001, 0.999, 1.0, 0.998, 1.002}
	m0 := []float64{1.0, 1.0, 1.0, 1.0, 1.0, 1.0}
	lcids := []int{0, 0, 0, 1, 1, 1}
	noiseIDs := []int{0, 1}

	e0, e1 := 0.002, 0.005
	lnl := LnLikeNormalV(o, [][]float64{m0}, [][]float64{{e0, e1}}, noiseIDs, lcids, 1)
	require.Len(t, lnl, 1)

	want := LnLikeNormalS(o[:3], m0[:3], e0) + LnLikeNormalS(o[3:], m0[3:], e1)
	assert.InDelta(t, want, lnl[0], 1e-10)
}

func TestLnLikeNormalVInvalidMember(t *testing.T) {
	o := []float64{1.0, 1.0, 1.0}
	lcids := []int{0, 0, 0}
	noiseIDs := []int{0}

	inf := math.Inf(1)
	m := [][]float64{
		{1.0, 1.0, 1.0},
		{inf, inf, inf},
		{1.0, 1.0, 1.0},
	}
	e := [][]float64{{0.001}, {0.001}, {0.001}}

	lnl := LnLikeNormalV(o, m, e, noiseIDs, lcids, 1)
	require.Len(t, lnl, 3)
	assert.False(t, math.IsInf(lnl[0], 0))
	assert.True(t, math.IsInf(lnl[1], -1), "invalid member must score -Inf")
	assert.Equal(t, lnl[0], lnl[2], "invalid members must not leak into their neighbours")
}

func TestLnLikeNormalVSerialParallel(t *testing.T) {
	n := 120
	o := make([]float64, n)
	lcids := make([]int, n)
	for j := range o {
		o[j] = 1.0 + 0.001*math.Sin(float64(j))
		lcids[j] = j % 3
	}
	noiseIDs := []int{0, 1, 1}

	npv := 17
	m := make([][]float64, npv)
	e := make([][]float64, npv)
	for i := range m {
		row := make([]float64, n)
		for j := range row {
			row[j] = 1.0 + 0.0005*float64(i)
		}
		m[i] = row
		e[i] = []float64{0.001 + 0.0001*float64(i), 0.002}
	}

	serial := LnLikeNormalV(o, m, e, noiseIDs, lcids, 1)
	parallel := LnLikeNormalV(o, m, e, noiseIDs, lcids, 4)
	assert.Equal(t, serial, parallel)
}
