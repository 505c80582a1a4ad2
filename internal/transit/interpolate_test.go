package transit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolateLimbDarkening(t *testing.T) {
	g := NewZGrid(0.7, 100, 50)
	// A profile linear in z is reproduced exactly by linear interpolation.
	ldp := make([]float64, len(g.Means))
	for i, z := range g.Means {
		ldp[i] = 1.0 - 0.5*z
	}

	for _, z := range []float64{0.0, 0.1, 0.33, 0.7, 0.95} {
		got := interpolateLimbDarkening(z, g.Means, ldp)
		assert.InDelta(t, 1.0-0.5*z, got, 1e-9, "z=%v", z)
	}

	// Beyond the last mean: edge value.
	assert.Equal(t, ldp[len(ldp)-1], interpolateLimbDarkening(2.0, g.Means, ldp))

	// Negative z: NaN sentinel, not a panic.
	assert.True(t, math.IsNaN(interpolateLimbDarkening(-0.1, g.Means, ldp)))
}

func TestInterpolateLimbDarkeningV_MatchesScalar(t *testing.T) {
	g := NewZGrid(0.7, 100, 50)
	ldp := QuadraticProfile(0.4, 0.2, g.Means)
	zs := []float64{-1.0, 0.0, 0.2, 0.69, 0.71, 0.999, 1.5}
	got := interpolateLimbDarkeningV(zs, g.Means, ldp)
	for i, z := range zs {
		want := interpolateLimbDarkening(z, g.Means, ldp)
		if math.IsNaN(want) {
			assert.True(t, math.IsNaN(got[i]), "z=%v", z)
			continue
		}
		assert.Equal(t, want, got[i], "z=%v", z)
	}
}

func TestLerpBounds(t *testing.T) {
	ldw := []float64{1.0, 0.8, 0.6, 0.4}
	// The grazing grid ends at 1-1e-7, so dg is slightly below 1/(n-1).
	dg := gridEnd / 3.0

	assert.Equal(t, 1.0, lerp(0.0, dg, ldw))
	assert.InDelta(t, 0.9, lerp(0.5*dg, dg, ldw), 1e-12)
	assert.Equal(t, 0.0, lerp(1.0, dg, ldw), "g>=1 means no blocked intensity")
	assert.Equal(t, ldw[3], lerp(1.0-1e-8, dg, ldw), "sliver between the last sample and 1 clamps to the last row")
}

func TestBlockedIntensityUniformProfile(t *testing.T) {
	// With a uniform profile every normalised row dots to 1, so the
	// blocked intensity is 1 for any in-disk grazing parameter.
	g := NewZGrid(0.7, 100, 50)
	wt := NewWeightTable(0.1, g.Edges, 50)
	ldp := make([]float64, len(g.Means))
	for i := range ldp {
		ldp[i] = 1.0
	}
	for _, gz := range []float64{0.0, 0.25, 0.5, 0.99} {
		assert.InDelta(t, 1.0, blockedIntensity(gz, wt.Dg, wt.Weights, ldp), 1e-9, "g=%v", gz)
	}
}

func TestBlockedIntensity3DMatchesPreBlend(t *testing.T) {
	g := NewZGrid(0.7, 100, 50)
	tab := NewWeightTable3D(64, 0.05, 0.5, g.Edges, 50)
	ldp := QuadraticProfile(0.4, 0.2, g.Means)

	k := 0.137
	ik, ak, err := tab.bracket(k)
	assert.NoError(t, err)

	for _, gz := range []float64{0.1, 0.42, 0.9} {
		// Blend the two bracketing tables first, then interpolate in g.
		w0 := dotRows(tab.Weights[ik], ldp)
		w1 := dotRows(tab.Weights[ik+1], ldp)
		ldw := make([]float64, len(w0))
		for i := range ldw {
			ldw[i] = (1.0-ak)*w0[i] + ak*w1[i]
		}
		want := lerp(gz, tab.Dg, ldw)

		got := blockedIntensity3D(k, gz, tab.Dk, tab.Dg, tab.Weights, ldp, tab.K0)
		assert.InDelta(t, want, got, 1e-12, "g=%v", gz)
	}
}

func TestBlockedIntensity3DTopCell(t *testing.T) {
	// Radius ratios in the table's top cell land on the last row pair;
	// the k index clamps there instead of running past the table.
	g := NewZGrid(0.7, 100, 50)
	tab := NewWeightTable3D(64, 0.05, 0.5, g.Edges, 50)
	ldp := QuadraticProfile(0.4, 0.2, g.Means)

	k := 0.495
	nk := (k - tab.K0) / tab.Dk
	ik := len(tab.Weights) - 2
	ak := nk - float64(ik)

	for _, gz := range []float64{0.1, 0.42, 0.9} {
		want := (1.0-ak)*lerp(gz, tab.Dg, dotRows(tab.Weights[ik], ldp)) +
			ak*lerp(gz, tab.Dg, dotRows(tab.Weights[ik+1], ldp))
		got := blockedIntensity3D(k, gz, tab.Dk, tab.Dg, tab.Weights, ldp, tab.K0)
		assert.InDelta(t, want, got, 1e-12, "g=%v", gz)
		assert.False(t, math.IsNaN(got))
	}
}

func TestBlockedIntensityVMatchesScalar(t *testing.T) {
	g := NewZGrid(0.7, 100, 50)
	wt := NewWeightTable(0.2, g.Edges, 50)
	ldp := QuadraticProfile(0.3, 0.1, g.Means)
	gs := []float64{0.0, 0.3, 0.77, 0.999, 1.0, 1.5}
	got := blockedIntensityV(gs, wt.Dg, wt.Weights, ldp)
	for i, gz := range gs {
		assert.InDelta(t, blockedIntensity(gz, wt.Dg, wt.Weights, ldp), got[i], 1e-12, "g=%v", gz)
	}
}
