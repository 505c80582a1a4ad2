package transit

import (
	"fmt"
	"math"

	"github.com/stellar-data/transit.report/internal/orbits"
)

// EvaluateSimple computes the flux series for a homogeneous time series
// observed in a single passband without supersampling. It avoids the
// per-point driver overhead and does not require SetData; the fastest
// option for series of up to a few thousand points.
//
// ldp is the limb-darkening profile sampled at the model's z-grid means and
// istar the disk-integrated stellar intensity for the same profile.
func (m *SwiftModel) EvaluateSimple(times []float64, k, t0, p, a, i, e, w float64, ldp []float64, istar float64) ([]float64, error) {
	if len(ldp) != len(m.grid.Means) {
		return nil, fmt.Errorf("%w: profile has %d samples, grid has %d", ErrProfileShape, len(ldp), len(m.grid.Means))
	}

	z := orbits.ZV(times, t0, p, a, i, e, w)

	var iplanet []float64
	if k > m.cfg.SmallPlanetLimit {
		wt := NewWeightTable(k, m.grid.Edges, m.cfg.NG)
		gs := make([]float64, len(z))
		for j := range z {
			gs[j] = z[j] / (1.0 + k)
		}
		iplanet = blockedIntensityV(gs, wt.Dg, wt.Weights, ldp)
	} else {
		iplanet = interpolateLimbDarkeningV(z, m.grid.Means, ldp)
	}

	flux := make([]float64, len(z))
	for j := range z {
		if z[j] > 1.0+k {
			flux[j] = 1.0
			continue
		}
		aplanet := CircleCircleIntersectionArea(1.0, k, z[j])
		flux[j] = (istar - iplanet[j]*aplanet) / istar
	}
	return flux, nil
}

// Evaluate computes the flux series for a single parameter vector over the
// data context set via SetData, building the grazing weight table for k[0]
// on the fly. k carries either one shared radius ratio or one per passband;
// ldp and istar carry one profile and intensity per passband.
func (m *SwiftModel) Evaluate(k []float64, t0, p, a, i, e, w float64, ldp [][]float64, istar []float64) ([]float64, error) {
	if err := m.checkScalarArgs(k, ldp, istar); err != nil {
		return nil, err
	}

	wt := NewWeightTable(k[0], m.grid.Edges, m.cfg.NG)
	ldw := make([][]float64, m.npb)
	for ipb := 0; ipb < m.npb; ipb++ {
		ldw[ipb] = dotRows(wt.Weights, ldp[ipb])
	}
	return m.evalScalar(k, t0, p, a, i, e, w, istar, wt.Dg, ldp, ldw), nil
}

// EvaluateInterpolated is Evaluate using the precomputed radius-ratio
// weight table instead of on-the-fly construction, amortising table cost
// across repeated evaluations with nearby radius ratios.
func (m *SwiftModel) EvaluateInterpolated(k []float64, t0, p, a, i, e, w float64, ldp [][]float64, istar []float64) ([]float64, error) {
	if err := m.checkScalarArgs(k, ldp, istar); err != nil {
		return nil, err
	}
	if m.table == nil {
		return nil, ErrNoTable
	}
	ik, ak, err := m.table.bracket(k[0])
	if err != nil {
		return nil, err
	}

	ldw := make([][]float64, m.npb)
	for ipb := 0; ipb < m.npb; ipb++ {
		w0 := dotRows(m.table.Weights[ik], ldp[ipb])
		w1 := dotRows(m.table.Weights[ik+1], ldp[ipb])
		row := make([]float64, len(w0))
		for j := range row {
			row[j] = (1.0-ak)*w0[j] + ak*w1[j]
		}
		ldw[ipb] = row
	}
	return m.evalScalar(k, t0, p, a, i, e, w, istar, m.table.Dg, ldp, ldw), nil
}

// bracket locates the table rows bracketing radius ratio k and the
// fractional offset between them.
func (t *WeightTable3D) bracket(k float64) (int, float64, error) {
	nk := (k - t.K0) / t.Dk
	ik := int(math.Floor(nk))
	if math.IsNaN(k) || ik < 0 || ik+1 >= len(t.Weights) {
		return 0, 0, fmt.Errorf("%w: k=%v not in [%v,%v)", ErrRadiusRange, k, t.K0, t.K1)
	}
	return ik, nk - float64(ik), nil
}

func (m *SwiftModel) checkScalarArgs(k []float64, ldp [][]float64, istar []float64) error {
	if len(m.times) == 0 {
		return ErrNoData
	}
	if len(k) != 1 && len(k) != m.npb {
		return fmt.Errorf("%w: %d radius ratios for %d passbands", ErrProfileShape, len(k), m.npb)
	}
	if len(ldp) != m.npb || len(istar) != m.npb {
		return fmt.Errorf("%w: %d profiles and %d intensities for %d passbands",
			ErrProfileShape, len(ldp), len(istar), m.npb)
	}
	for ipb, row := range ldp {
		if len(row) != len(m.grid.Means) {
			return fmt.Errorf("%w: profile %d has %d samples, grid has %d",
				ErrProfileShape, ipb, len(row), len(m.grid.Means))
		}
	}
	return nil
}

// evalScalar is the shared single-parameter-vector kernel: per point it
// averages the supersampled flux over the exposure window, short-circuits
// to 1 outside the stellar disk, and selects the geometric or small-planet
// branch per radius-ratio value. The serial and parallel drivers produce
// identical results; each point is written by exactly one task.
func (m *SwiftModel) evalScalar(k []float64, t0, p, a, i, e, w float64, istar []float64, dg float64, ldp, ldw [][]float64) []float64 {
	flux := make([]float64, len(m.times))
	workers := 1
	if m.cfg.Parallel {
		workers = m.workers()
	}
	parallelFor(len(m.times), workers, func(j int) {
		flux[j] = m.evalPoint(j, k, t0, p, a, i, e, w, istar, dg, ldp, ldw)
	})
	return flux
}

// evalPoint computes the supersampled flux at point j.
func (m *SwiftModel) evalPoint(j int, k []float64, t0, p, a, i, e, w float64, istar []float64, dg float64, ldp, ldw [][]float64) float64 {
	ilc := m.lcids[j]
	ipb := m.pbids[ilc]
	kk := k[0]
	if len(k) > 1 {
		kk = k[ipb]
	}

	ns := m.nsamples[ilc]
	sum := 0.0
	for isample := 1; isample <= ns; isample++ {
		toff := m.exptimes[ilc] * ((float64(isample)-0.5)/float64(ns) - 0.5)
		z := orbits.Z(m.times[j]+toff, t0, p, a, i, e, w)
		if z > 1.0+kk {
			sum += 1.0
			continue
		}
		var iplanet float64
		if kk > m.cfg.SmallPlanetLimit {
			iplanet = lerp(z/(1.0+kk), dg, ldw[ipb])
		} else {
			iplanet = interpolateLimbDarkening(z, m.grid.Means, ldp[ipb])
		}
		aplanet := CircleCircleIntersectionArea(1.0, kk, z)
		sum += (istar[ipb] - iplanet*aplanet) / istar[ipb]
	}
	return sum / float64(ns)
}
