package transit

import (
	"fmt"
	"math"
)

// EvaluatePop computes the flux matrix (population x points) for a
// population of parameter vectors, building a grazing weight table per
// member on the fly. ks carries one row per member with either one shared
// radius ratio or one per passband; t0, p, a and i carry one value per
// member; ldp and istar carry one profile and intensity per member and
// passband.
//
// A member whose radius ratio, semi-major axis or inclination is NaN gets
// +Inf flux at every point, so a downstream Gaussian likelihood rejects the
// member without aborting the population evaluation.
func (m *SwiftModel) EvaluatePop(ks [][]float64, t0, p, a, i, e, w []float64, ldp [][][]float64, istar [][]float64) ([][]float64, error) {
	if err := m.checkPopArgs(ks, t0, p, a, i, e, w, ldp, istar); err != nil {
		return nil, err
	}

	npv := len(ks)
	flux := make([][]float64, npv)
	workers := 1
	if m.cfg.Parallel {
		workers = m.workers()
	}
	parallelFor(npv, workers, func(ipv int) {
		if invalidMember(ks[ipv], a[ipv], i[ipv]) {
			flux[ipv] = infRow(len(m.times))
			return
		}
		wt := NewWeightTable(ks[ipv][0], m.grid.Edges, m.cfg.NG)
		ldw := make([][]float64, m.npb)
		for ipb := 0; ipb < m.npb; ipb++ {
			ldw[ipb] = dotRows(wt.Weights, ldp[ipv][ipb])
		}
		flux[ipv] = m.evalMember(ks[ipv], t0[ipv], p[ipv], a[ipv], i[ipv], e[ipv], w[ipv],
			istar[ipv], wt.Dg, ldp[ipv], ldw)
	})
	return flux, nil
}

// EvaluatePopInterpolated is EvaluatePop using the precomputed radius-ratio
// weight table. Members whose radius ratio falls outside the table range
// are flagged +Inf like NaN members rather than failing the whole
// population.
func (m *SwiftModel) EvaluatePopInterpolated(ks [][]float64, t0, p, a, i, e, w []float64, ldp [][][]float64, istar [][]float64) ([][]float64, error) {
	if err := m.checkPopArgs(ks, t0, p, a, i, e, w, ldp, istar); err != nil {
		return nil, err
	}
	if m.table == nil {
		return nil, ErrNoTable
	}

	npv := len(ks)
	flux := make([][]float64, npv)
	workers := 1
	if m.cfg.Parallel {
		workers = m.workers()
	}
	parallelFor(npv, workers, func(ipv int) {
		if invalidMember(ks[ipv], a[ipv], i[ipv]) {
			flux[ipv] = infRow(len(m.times))
			return
		}
		ik, ak, err := m.table.bracket(ks[ipv][0])
		if err != nil {
			flux[ipv] = infRow(len(m.times))
			return
		}
		ldw := make([][]float64, m.npb)
		for ipb := 0; ipb < m.npb; ipb++ {
			w0 := dotRows(m.table.Weights[ik], ldp[ipv][ipb])
			w1 := dotRows(m.table.Weights[ik+1], ldp[ipv][ipb])
			row := make([]float64, len(w0))
			for j := range row {
				row[j] = (1.0-ak)*w0[j] + ak*w1[j]
			}
			ldw[ipb] = row
		}
		flux[ipv] = m.evalMember(ks[ipv], t0[ipv], p[ipv], a[ipv], i[ipv], e[ipv], w[ipv],
			istar[ipv], m.table.Dg, ldp[ipv], ldw)
	})
	return flux, nil
}

// evalMember runs the shared per-point kernel serially for one population
// member; the population drivers already parallelise over members.
func (m *SwiftModel) evalMember(k []float64, t0, p, a, i, e, w float64, istar []float64, dg float64, ldp, ldw [][]float64) []float64 {
	flux := make([]float64, len(m.times))
	for j := range m.times {
		flux[j] = m.evalPoint(j, k, t0, p, a, i, e, w, istar, dg, ldp, ldw)
	}
	return flux
}

// invalidMember reports whether any of the member's orbital values or
// per-passband radius ratios is NaN; the per-point kernel selects k by
// passband, so every slot has to be checked.
func invalidMember(k []float64, a, i float64) bool {
	if math.IsNaN(a) || math.IsNaN(i) {
		return true
	}
	for _, kk := range k {
		if math.IsNaN(kk) {
			return true
		}
	}
	return false
}

func infRow(n int) []float64 {
	row := make([]float64, n)
	for j := range row {
		row[j] = math.Inf(1)
	}
	return row
}

func (m *SwiftModel) checkPopArgs(ks [][]float64, t0, p, a, i, e, w []float64, ldp [][][]float64, istar [][]float64) error {
	if len(m.times) == 0 {
		return ErrNoData
	}
	npv := len(ks)
	if len(t0) != npv || len(p) != npv || len(a) != npv || len(i) != npv || len(e) != npv || len(w) != npv {
		return fmt.Errorf("%w: orbital parameter arrays do not all have %d members", ErrProfileShape, npv)
	}
	if len(ldp) != npv || len(istar) != npv {
		return fmt.Errorf("%w: profile array should have shape [npv][npb][nz], got %d members for %d",
			ErrProfileShape, len(ldp), npv)
	}
	for ipv := 0; ipv < npv; ipv++ {
		if len(ks[ipv]) != 1 && len(ks[ipv]) != m.npb {
			return fmt.Errorf("%w: member %d has %d radius ratios for %d passbands",
				ErrProfileShape, ipv, len(ks[ipv]), m.npb)
		}
		if len(ldp[ipv]) != m.npb || len(istar[ipv]) != m.npb {
			return fmt.Errorf("%w: member %d has %d profiles and %d intensities for %d passbands",
				ErrProfileShape, ipv, len(ldp[ipv]), len(istar[ipv]), m.npb)
		}
		for ipb, row := range ldp[ipv] {
			if len(row) != len(m.grid.Means) {
				return fmt.Errorf("%w: member %d profile %d has %d samples, grid has %d",
					ErrProfileShape, ipv, ipb, len(row), len(m.grid.Means))
			}
		}
	}
	return nil
}

// EvaluatePV evaluates a population of mapped parameter vectors with
// triangular limb-darkening coefficients, the entry point used by the
// log-posterior layer. Each pvt row is laid out [k, t0, p, a, i] and each
// ldc row [q1_0, q2_0, q1_1, q2_1, ...] with one (q1,q2) pair per passband.
// The quadratic-law profiles and stellar intensities are derived here, and
// the precomputed weight table is used when available.
func (m *SwiftModel) EvaluatePV(pvt, ldc [][]float64) ([][]float64, error) {
	if len(m.times) == 0 {
		return nil, ErrNoData
	}
	npv := len(pvt)
	if len(ldc) != npv {
		return nil, fmt.Errorf("%w: %d coefficient rows for %d members", ErrProfileShape, len(ldc), npv)
	}

	uv := MapLDC(ldc)
	ks := make([][]float64, npv)
	t0 := make([]float64, npv)
	p := make([]float64, npv)
	a := make([]float64, npv)
	inc := make([]float64, npv)
	e := make([]float64, npv)
	w := make([]float64, npv)
	ldp := make([][][]float64, npv)
	istar := make([][]float64, npv)

	for ipv := 0; ipv < npv; ipv++ {
		if len(pvt[ipv]) != 5 {
			return nil, fmt.Errorf("%w: mapped vector %d has %d elements, want 5", ErrProfileShape, ipv, len(pvt[ipv]))
		}
		if len(uv[ipv]) != 2*m.npb {
			return nil, fmt.Errorf("%w: coefficient row %d has %d values for %d passbands",
				ErrProfileShape, ipv, len(uv[ipv]), m.npb)
		}
		ks[ipv] = pvt[ipv][0:1]
		t0[ipv], p[ipv], a[ipv], inc[ipv] = pvt[ipv][1], pvt[ipv][2], pvt[ipv][3], pvt[ipv][4]

		ldp[ipv] = make([][]float64, m.npb)
		istar[ipv] = make([]float64, m.npb)
		for ipb := 0; ipb < m.npb; ipb++ {
			u, v := uv[ipv][2*ipb], uv[ipv][2*ipb+1]
			ldp[ipv][ipb] = QuadraticProfile(u, v, m.grid.Means)
			istar[ipv][ipb] = QuadraticIStar(u, v)
		}
	}

	if m.table != nil {
		return m.EvaluatePopInterpolated(ks, t0, p, a, inc, e, w, ldp, istar)
	}
	return m.EvaluatePop(ks, t0, p, a, inc, e, w, ldp, istar)
}
