// Package lpf implements the log-posterior layer of the transit analysis:
// it owns the observational data and its derived index maps, composes
// baseline x transit-model + trends into a predicted flux, and scores it
// against the observations with a per-noise-block Gaussian log likelihood
// vectorised over a population of parameter vectors.
package lpf

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stellar-data/transit.report/internal/orbits"
	"github.com/stellar-data/transit.report/internal/param"
	"github.com/stellar-data/transit.report/internal/transit"
)

// ErrNoData indicates an evaluation before observations were attached.
var ErrNoData = errors.New("lpf: no observation data")

// ModelHook computes a per-member, per-point model component. Baseline
// hooks multiply the transit model, trend hooks add to it; nil hooks mean
// identity (1) and zero respectively.
type ModelHook func(pvp [][]float64, npt int) [][]float64

// PriorFunc is a registered extra log-prior: one log density per
// population member.
type PriorFunc func(pvp [][]float64) []float64

// LimbDarkeningService is the optional external profile-fitting
// collaborator. When present its coefficient estimates seed the
// limb-darkening part of new populations; absence is a valid
// configuration handled by an ordering constraint instead.
type LimbDarkeningService interface {
	// Coefficients returns triangular (q1,q2) means and uncertainties per
	// passband, blue to red.
	Coefficients() (means, errs [][2]float64, err error)
}

// BaseLPF is the base log-posterior function for transit light curve
// analyses. It can be used directly for a basic analysis or embedded to
// build a more complex one; Baseline and Trends are the extension hooks.
type BaseLPF struct {
	Name string
	ID   uuid.UUID

	// Passbands are the unique passband names, arranged blue to red.
	Passbands []string

	TM *transit.SwiftModel
	PS *param.Set

	Baseline ModelHook
	Trends   ModelHook

	LDService LimbDarkeningService

	extraPriors []PriorFunc

	npb  int
	data *dataset

	// Parameter-vector layout positions, fixed by initParameters.
	startK2  int
	slLD     [2]int
	startErr int
}

// New creates a BaseLPF owning the given observations. A nil model gets
// the default swift model configuration.
func New(name string, passbands []string, obs Observations, tm *transit.SwiftModel) (*BaseLPF, error) {
	if len(passbands) == 0 {
		return nil, fmt.Errorf("lpf: at least one passband required")
	}
	if tm == nil {
		// The default model's radius-ratio table must span the k2 prior
		// support, otherwise prior-valid members score -Inf through the
		// out-of-range sentinel.
		cfg := transit.DefaultConfig()
		cfg.KLims = [2]float64{0.01, 0.75}
		cfg.NK = 512
		tm = transit.NewSwiftModel(cfg)
	}
	lpf := &BaseLPF{
		Name:      name,
		ID:        uuid.New(),
		Passbands: passbands,
		TM:        tm,
		npb:       len(passbands),
	}
	if err := lpf.initData(obs); err != nil {
		return nil, err
	}
	if err := lpf.initParameters(); err != nil {
		return nil, err
	}
	return lpf, nil
}

// initData rebuilds the dataset and hands the index maps to the transit
// model. Always a whole rebuild: every derived array is reconstructed from
// the Observations value in one pass so the maps cannot desynchronise.
func (lpf *BaseLPF) initData(obs Observations) error {
	d, err := buildDataset(obs, lpf.npb)
	if err != nil {
		return err
	}
	if err := lpf.TM.SetData(d.timea, d.lcids, d.pbids, d.nsamples, d.exptimes, lpf.npb); err != nil {
		return err
	}
	lpf.data = d
	return nil
}

// initParameters builds the parameter set: orbit globals, one shared area
// ratio, two triangular limb-darkening coefficients per passband, and one
// log error per noise block.
func (lpf *BaseLPF) initParameters() error {
	ps := param.NewSet()

	orbit := []param.Parameter{
		{Name: "tc", Description: "zero epoch", Unit: "d",
			Prior: param.NormalPrior(0.0, 0.1), Min: math.Inf(-1), Max: math.Inf(1)},
		{Name: "p", Description: "period", Unit: "d",
			Prior: param.NormalPrior(1.0, 1e-5), Min: 0, Max: math.Inf(1)},
		{Name: "rho", Description: "stellar density", Unit: "g/cm^3",
			Prior: param.UniformPrior(0.1, 25.0), Min: 0, Max: math.Inf(1)},
		{Name: "b", Description: "impact parameter", Unit: "R_s",
			Prior: param.UniformPrior(0.0, 1.0), Min: 0, Max: 1},
	}
	if err := ps.AddGlobalBlock("orbit", orbit); err != nil {
		return err
	}

	k2 := []param.Parameter{
		{Name: "k2", Description: "area ratio", Unit: "A_s",
			Prior: param.GammaPrior(0.1), Min: 0.01 * 0.01, Max: 0.75 * 0.75},
	}
	if err := ps.AddPassbandBlock("k2", 1, 1, k2); err != nil {
		return err
	}
	b, _ := ps.Block("k2")
	lpf.startK2 = b.Start

	var ld []param.Parameter
	for _, pb := range lpf.Passbands {
		ld = append(ld,
			param.Parameter{Name: "q1_" + pb, Description: "q1 coefficient " + pb,
				Prior: param.UniformPrior(0, 1), Min: 0, Max: 1},
			param.Parameter{Name: "q2_" + pb, Description: "q2 coefficient " + pb,
				Prior: param.UniformPrior(0, 1), Min: 0, Max: 1})
	}
	if err := ps.AddPassbandBlock("ldc", 2, lpf.npb, ld); err != nil {
		return err
	}
	b, _ = ps.Block("ldc")
	lpf.slLD = [2]int{b.Start, b.Stop}

	var noise []param.Parameter
	for i := 0; i < lpf.data.nNoiseBlocks; i++ {
		noise = append(noise, param.Parameter{
			Name: fmt.Sprintf("loge_%d", i), Description: fmt.Sprintf("log10 error %d", i),
			Prior: param.UniformPrior(-4, 0), Min: -4, Max: 0})
	}
	if err := ps.AddLightCurveBlock("log_err", 1, lpf.data.nNoiseBlocks, noise); err != nil {
		return err
	}
	b, _ = ps.Block("log_err")
	lpf.startErr = b.Start

	ps.Freeze()
	lpf.PS = ps
	return nil
}

// NLightCurves returns the number of light curves.
func (lpf *BaseLPF) NLightCurves() int { return lpf.data.nlc }

// NPoints returns the total concatenated point count.
func (lpf *BaseLPF) NPoints() int { return len(lpf.data.timea) }

// NNoiseBlocks returns the number of noise blocks.
func (lpf *BaseLPF) NNoiseBlocks() int { return lpf.data.nNoiseBlocks }

// Times returns the concatenated observation times.
func (lpf *BaseLPF) Times() []float64 { return lpf.data.timea }

// ObservedFlux returns the concatenated observed fluxes.
func (lpf *BaseLPF) ObservedFlux() []float64 { return lpf.data.ofluxa }

// LightCurveSlice returns curve i's range in the concatenated arrays.
func (lpf *BaseLPF) LightCurveSlice(i int) Slice { return lpf.data.slices[i] }

// WhiteNoiseEstimates returns the per-curve white noise estimates.
func (lpf *BaseLPF) WhiteNoiseEstimates() []float64 { return lpf.data.wn }

// MapPV maps raw parameter vectors to the transit model layout
// [k, t0, p, a, i]: the radius ratio from the area ratio, the scaled
// semi-major axis from stellar density and period, and the inclination
// from the impact parameter. Recomputed on every call, never stored.
func (lpf *BaseLPF) MapPV(pvp [][]float64) [][]float64 {
	pvt := make([][]float64, len(pvp))
	for i, pv := range pvp {
		a := orbits.AsFromRhoP(pv[2], pv[1])
		pvt[i] = []float64{
			math.Sqrt(pv[lpf.startK2]),
			pv[0],
			pv[1],
			a,
			orbits.IFromBA(pv[3], a),
		}
	}
	return pvt
}

// TransitModel evaluates the bare transit model flux for a population.
func (lpf *BaseLPF) TransitModel(pvp [][]float64) ([][]float64, error) {
	pvt := lpf.MapPV(pvp)
	ldc := make([][]float64, len(pvp))
	for i, pv := range pvp {
		ldc[i] = pv[lpf.slLD[0]:lpf.slLD[1]]
	}
	return lpf.TM.EvaluatePV(pvt, ldc)
}

// FluxModel composes baseline * transit + trends.
func (lpf *BaseLPF) FluxModel(pvp [][]float64) ([][]float64, error) {
	flux, err := lpf.TransitModel(pvp)
	if err != nil {
		return nil, err
	}
	npt := len(lpf.data.timea)
	if lpf.Baseline != nil {
		bl := lpf.Baseline(pvp, npt)
		for i := range flux {
			for j := range flux[i] {
				flux[i][j] *= bl[i][j]
			}
		}
	}
	if lpf.Trends != nil {
		tr := lpf.Trends(pvp, npt)
		for i := range flux {
			for j := range flux[i] {
				flux[i][j] += tr[i][j]
			}
		}
	}
	return flux, nil
}

// Residuals returns observed minus model flux for a single parameter
// vector.
func (lpf *BaseLPF) Residuals(pv []float64) ([]float64, error) {
	flux, err := lpf.FluxModel([][]float64{pv})
	if err != nil {
		return nil, err
	}
	res := make([]float64, len(lpf.data.ofluxa))
	for j := range res {
		res[j] = lpf.data.ofluxa[j] - flux[0][j]
	}
	return res, nil
}

// LnLikelihood returns the Gaussian log likelihood of each population
// member, with the per-point noise scale selected by the point's noise
// block.
func (lpf *BaseLPF) LnLikelihood(pvp [][]float64) ([]float64, error) {
	flux, err := lpf.FluxModel(pvp)
	if err != nil {
		return nil, err
	}
	wn := make([][]float64, len(pvp))
	for i, pv := range pvp {
		row := make([]float64, lpf.data.nNoiseBlocks)
		for k := 0; k < lpf.data.nNoiseBlocks; k++ {
			row[k] = math.Pow(10, pv[lpf.startErr+k])
		}
		wn[i] = row
	}
	workers := 1
	if lpf.TM.Config().Parallel {
		workers = runtime.GOMAXPROCS(0)
	}
	return LnLikeNormalV(lpf.data.ofluxa, flux, wn, lpf.data.noiseIDs, lpf.data.lcids, workers), nil
}

// AddPrior registers an extra log-prior callback.
func (lpf *BaseLPF) AddPrior(f PriorFunc) {
	lpf.extraPriors = append(lpf.extraPriors, f)
}

// ExtraLogPriors sums the registered extra priors per population member.
func (lpf *BaseLPF) ExtraLogPriors(pvp [][]float64) []float64 {
	total := make([]float64, len(pvp))
	for _, f := range lpf.extraPriors {
		for i, v := range f(pvp) {
			total[i] += v
		}
	}
	return total
}

// AddT14Prior registers a normal prior on the transit duration.
func (lpf *BaseLPF) AddT14Prior(mean, std float64) {
	dist := distuv.Normal{Mu: mean, Sigma: std}
	lpf.AddPrior(func(pvp [][]float64) []float64 {
		lp := make([]float64, len(pvp))
		for i, pv := range pvp {
			a := orbits.AsFromRhoP(pv[2], pv[1])
			inc := math.Acos(pv[3] / a)
			t14 := orbits.DFromPKAIEWS(pv[1], math.Sqrt(pv[lpf.startK2]), a, inc, 0, 0)
			lp[i] = dist.LogProb(t14)
		}
		return lp
	})
}

// AddAsPrior registers a normal prior on the scaled semi-major axis.
func (lpf *BaseLPF) AddAsPrior(mean, std float64) {
	dist := distuv.Normal{Mu: mean, Sigma: std}
	lpf.AddPrior(func(pvp [][]float64) []float64 {
		lp := make([]float64, len(pvp))
		for i, pv := range pvp {
			lp[i] = dist.LogProb(orbits.AsFromRhoP(pv[2], pv[1]))
		}
		return lp
	})
}

// SetRadiusRatioPrior replaces the area-ratio prior with a uniform prior
// corresponding to radius ratios in [kmin, kmax].
func (lpf *BaseLPF) SetRadiusRatioPrior(kmin, kmax float64) error {
	lpf.PS.Thaw()
	defer lpf.PS.Freeze()
	b, ok := lpf.PS.Block("k2")
	if !ok {
		return fmt.Errorf("lpf: no k2 block")
	}
	for i := b.Start; i < b.Stop; i++ {
		if err := lpf.PS.SetPrior(i, param.UniformPrior(kmin*kmin, kmax*kmax), kmin*kmin, kmax*kmax); err != nil {
			return err
		}
	}
	return nil
}

// CreatePVPopulation draws an initial population from the priors, with the
// area ratio narrowed to a plausible range, the limb darkening either
// seeded from the profile service or ordered to decrease towards redder
// passbands, and the log-error parameters seeded from the white noise
// estimate of the data.
func (lpf *BaseLPF) CreatePVPopulation(npop int) ([][]float64, error) {
	pvp, err := lpf.PS.SampleFromPrior(npop)
	if err != nil {
		return nil, err
	}

	k2 := param.UniformPrior(0.01*0.01, 0.25*0.25)
	for _, pv := range pvp {
		pv[lpf.startK2] = k2.Rand()
	}

	if lpf.LDService != nil {
		means, errs, err := lpf.LDService.Coefficients()
		if err != nil {
			return nil, fmt.Errorf("lpf: limb darkening service: %w", err)
		}
		for ipb := 0; ipb < lpf.npb && ipb < len(means); ipb++ {
			for c := 0; c < 2; c++ {
				dist := distuv.Normal{Mu: means[ipb][c], Sigma: errs[ipb][c]}
				for _, pv := range pvp {
					pv[lpf.slLD[0]+2*ipb+c] = dist.Rand()
				}
			}
		}
	} else {
		// Without an external profile service, enforce that the total limb
		// darkening decreases towards redder passbands by sorting the
		// (q1,q2) pairs on q1.
		for _, pv := range pvp {
			lpf.orderLimbDarkening(pv)
		}
	}

	wn := diffStd(lpf.data.ofluxa) / math.Sqrt2
	noise := param.UniformPrior(0.5*wn, 2*wn)
	for _, pv := range pvp {
		for k := 0; k < lpf.data.nNoiseBlocks; k++ {
			pv[lpf.startErr+k] = math.Log10(noise.Rand())
		}
	}
	return pvp, nil
}

func (lpf *BaseLPF) orderLimbDarkening(pv []float64) {
	type pair struct{ q1, q2 float64 }
	pairs := make([]pair, lpf.npb)
	for ipb := range pairs {
		pairs[ipb] = pair{pv[lpf.slLD[0]+2*ipb], pv[lpf.slLD[0]+2*ipb+1]}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].q1 > pairs[b].q1 })
	for ipb, pr := range pairs {
		pv[lpf.slLD[0]+2*ipb] = pr.q1
		pv[lpf.slLD[0]+2*ipb+1] = pr.q2
	}
}

// RemoveOutliers sigma-clips per-curve residuals against the flux model at
// refPV and rebuilds the dataset from the surviving points. The parameter
// set is unchanged: no curves or noise blocks disappear.
func (lpf *BaseLPF) RemoveOutliers(sigma float64, refPV []float64) error {
	flux, err := lpf.FluxModel([][]float64{refPV})
	if err != nil {
		return err
	}
	d := lpf.data
	obs := Observations{
		PassbandIDs: d.pbids,
		NoiseIDs:    d.noiseIDs,
		NSamples:    d.nsamples,
		ExpTimes:    d.exptimes,
	}
	for i := range d.times {
		sl := d.slices[i]
		res := make([]float64, sl.Stop-sl.Start)
		for j := range res {
			res[j] = d.fluxes[i][j] - flux[0][sl.Start+j]
		}
		keep := sigmaClipMask(res, sigma)

		obs.Times = append(obs.Times, filter(d.times[i], keep))
		obs.Fluxes = append(obs.Fluxes, filter(d.fluxes[i], keep))
		obs.Errors = append(obs.Errors, filter(d.errors[i], keep))
		if d.covariates != nil {
			obs.Covariates = append(obs.Covariates, filterRows(d.covariates[i], keep))
		}
	}
	if d.covariates == nil {
		obs.Covariates = nil
	}
	return lpf.initData(obs)
}

// RemoveLightCurves drops the given curves and rebuilds both the dataset
// and the parameter set, since the noise-block layout may change.
func (lpf *BaseLPF) RemoveLightCurves(ids []int) error {
	drop := map[int]bool{}
	for _, id := range ids {
		if id < 0 || id >= lpf.data.nlc {
			return fmt.Errorf("%w: light curve id %d outside [0,%d)", ErrDataShape, id, lpf.data.nlc)
		}
		drop[id] = true
	}
	d := lpf.data
	var obs Observations
	var noiseIDs []int
	for i := range d.times {
		if drop[i] {
			continue
		}
		obs.Times = append(obs.Times, d.times[i])
		obs.Fluxes = append(obs.Fluxes, d.fluxes[i])
		obs.Errors = append(obs.Errors, d.errors[i])
		if d.covariates != nil {
			obs.Covariates = append(obs.Covariates, d.covariates[i])
		}
		obs.PassbandIDs = append(obs.PassbandIDs, d.pbids[i])
		noiseIDs = append(noiseIDs, d.noiseIDs[i])
		obs.NSamples = append(obs.NSamples, d.nsamples[i])
		obs.ExpTimes = append(obs.ExpTimes, d.exptimes[i])
	}
	if len(obs.Times) == 0 {
		return fmt.Errorf("%w: cannot remove every light curve", ErrDataShape)
	}
	obs.NoiseIDs = renumberNoiseIDs(noiseIDs)
	if err := lpf.initData(obs); err != nil {
		return err
	}
	return lpf.initParameters()
}

// renumberNoiseIDs compacts surviving noise block ids to a contiguous range
// starting at 0, preserving their order.
func renumberNoiseIDs(ids []int) []int {
	remap := map[int]int{}
	next := 0
	out := make([]int, len(ids))
	for i, id := range ids {
		m, ok := remap[id]
		if !ok {
			m = next
			remap[id] = m
			next++
		}
		out[i] = m
	}
	return out
}

// sigmaClipMask iteratively masks residuals more than sigma standard
// deviations from the mean of the surviving points; keep[j] reports whether
// point j survives.
func sigmaClipMask(res []float64, sigma float64) []bool {
	keep := make([]bool, len(res))
	for j := range keep {
		keep[j] = true
	}
	for iter := 0; iter < 5; iter++ {
		var kept []float64
		for j, r := range res {
			if keep[j] {
				kept = append(kept, r)
			}
		}
		if len(kept) < 3 {
			break
		}
		mean, std := stat.MeanStdDev(kept, nil)
		changed := false
		for j, r := range res {
			if keep[j] && math.Abs(r-mean) > sigma*std {
				keep[j] = false
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return keep
}

func filter(vs []float64, keep []bool) []float64 {
	out := make([]float64, 0, len(vs))
	for j, v := range vs {
		if keep[j] {
			out = append(out, v)
		}
	}
	return out
}

func filterRows(vs [][]float64, keep []bool) [][]float64 {
	out := make([][]float64, 0, len(vs))
	for j, v := range vs {
		if keep[j] {
			out = append(out, v)
		}
	}
	return out
}
