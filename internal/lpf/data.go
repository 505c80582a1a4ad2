package lpf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDataShape indicates observation arrays with inconsistent lengths.
	ErrDataShape = errors.New("lpf: observation array length mismatch")
	// ErrNoiseIDs indicates noise block ids that are not contiguous from 0.
	ErrNoiseIDs = errors.New("lpf: noise block ids must be contiguous from 0")
)

// Observations carries the per-light-curve input arrays. Times, Fluxes and
// Errors hold one slice per light curve; Errors may be nil when
// uncertainties are unknown. PassbandIDs and NoiseIDs map each curve to its
// passband and noise block. NSamples and ExpTimes hold either one value per
// curve or a single value broadcast to all curves; NoiseIDs defaults to a
// single shared block.
type Observations struct {
	Times      [][]float64
	Fluxes     [][]float64
	Errors     [][]float64
	Covariates [][][]float64

	PassbandIDs []int
	NoiseIDs    []int
	NSamples    []int
	ExpTimes    []float64
}

// Slice is a light curve's [Start,Stop) range in the concatenated arrays.
type Slice struct {
	Start int
	Stop  int
}

// dataset is the derived, internally consistent view of the observations:
// concatenated flat arrays plus the index maps the flux evaluator and the
// likelihood need. It is always rebuilt as a whole from an Observations
// value; index maps are never patched in place.
type dataset struct {
	nlc          int
	nNoiseBlocks int

	times      [][]float64
	fluxes     [][]float64
	errors     [][]float64
	covariates [][][]float64

	pbids    []int // passband id per light curve
	noiseIDs []int // noise block id per light curve
	nsamples []int
	exptimes []float64

	wn []float64 // white noise estimate per light curve

	timea  []float64
	ofluxa []float64
	errora []float64
	lcids  []int // light curve id per flat index
	slices []Slice
}

// buildDataset validates obs against the passband count and derives the
// concatenated arrays and index maps.
func buildDataset(obs Observations, npb int) (*dataset, error) {
	nlc := len(obs.Times)
	if nlc == 0 {
		return nil, fmt.Errorf("%w: no light curves", ErrDataShape)
	}
	if len(obs.Fluxes) != nlc {
		return nil, fmt.Errorf("%w: %d time arrays vs %d flux arrays", ErrDataShape, nlc, len(obs.Fluxes))
	}
	if obs.Errors != nil && len(obs.Errors) != nlc {
		return nil, fmt.Errorf("%w: %d time arrays vs %d error arrays", ErrDataShape, nlc, len(obs.Errors))
	}
	if obs.Covariates != nil && len(obs.Covariates) != nlc {
		return nil, fmt.Errorf("%w: %d time arrays vs %d covariate arrays", ErrDataShape, nlc, len(obs.Covariates))
	}
	for i := range obs.Times {
		if len(obs.Fluxes[i]) != len(obs.Times[i]) {
			return nil, fmt.Errorf("%w: curve %d has %d times but %d fluxes",
				ErrDataShape, i, len(obs.Times[i]), len(obs.Fluxes[i]))
		}
		if obs.Errors != nil && len(obs.Errors[i]) != len(obs.Times[i]) {
			return nil, fmt.Errorf("%w: curve %d has %d times but %d errors",
				ErrDataShape, i, len(obs.Times[i]), len(obs.Errors[i]))
		}
	}

	pbids := obs.PassbandIDs
	if pbids == nil {
		pbids = make([]int, nlc)
	}
	if len(pbids) != nlc {
		return nil, fmt.Errorf("%w: %d passband ids for %d curves", ErrDataShape, len(pbids), nlc)
	}
	for i, ipb := range pbids {
		if ipb < 0 || ipb >= npb {
			return nil, fmt.Errorf("%w: curve %d passband id %d outside [0,%d)", ErrDataShape, i, ipb, npb)
		}
	}

	noiseIDs := obs.NoiseIDs
	nNoise := 1
	if noiseIDs == nil {
		noiseIDs = make([]int, nlc)
	} else {
		if len(noiseIDs) != nlc {
			return nil, fmt.Errorf("%w: need one noise block id per light curve, got %d for %d",
				ErrDataShape, len(noiseIDs), nlc)
		}
		seen := map[int]bool{}
		maxID := 0
		for _, id := range noiseIDs {
			if id < 0 {
				return nil, fmt.Errorf("%w: negative id %d", ErrNoiseIDs, id)
			}
			seen[id] = true
			if id > maxID {
				maxID = id
			}
		}
		if maxID != len(seen)-1 {
			return nil, fmt.Errorf("%w: max id %d with %d distinct ids", ErrNoiseIDs, maxID, len(seen))
		}
		nNoise = len(seen)
	}

	nsamples, err := broadcastInts(obs.NSamples, nlc, 1)
	if err != nil {
		return nil, fmt.Errorf("nsamples: %w", err)
	}
	exptimes, err := broadcastFloats(obs.ExpTimes, nlc, 0.0)
	if err != nil {
		return nil, fmt.Errorf("exptimes: %w", err)
	}

	d := &dataset{
		nlc:          nlc,
		nNoiseBlocks: nNoise,
		times:        obs.Times,
		fluxes:       obs.Fluxes,
		errors:       obs.Errors,
		pbids:        pbids,
		noiseIDs:     noiseIDs,
		nsamples:     nsamples,
		exptimes:     exptimes,
	}

	if d.errors == nil {
		d.errors = make([][]float64, nlc)
		for i := range d.errors {
			row := make([]float64, len(obs.Times[i]))
			for j := range row {
				row[j] = math.NaN()
			}
			d.errors[i] = row
		}
	}

	if obs.Covariates != nil {
		d.covariates = make([][][]float64, nlc)
		for i, cv := range obs.Covariates {
			d.covariates[i] = normalizeCovariates(cv)
		}
	}

	// White noise estimate from the point-to-point scatter.
	d.wn = make([]float64, nlc)
	for i, f := range d.fluxes {
		d.wn[i] = diffStd(f) / math.Sqrt2
	}

	// Concatenated arrays, per-point curve ids, and per-curve slices. The
	// maps are derived together from the same pass so they cannot drift.
	start := 0
	for i := range d.times {
		n := len(d.times[i])
		d.timea = append(d.timea, d.times[i]...)
		d.ofluxa = append(d.ofluxa, d.fluxes[i]...)
		d.errora = append(d.errora, d.errors[i]...)
		for j := 0; j < n; j++ {
			d.lcids = append(d.lcids, i)
		}
		d.slices = append(d.slices, Slice{Start: start, Stop: start + n})
		start += n
	}
	return d, nil
}

func broadcastInts(vs []int, n, def int) ([]int, error) {
	out := make([]int, n)
	switch len(vs) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = vs[0]
		}
	case n:
		copy(out, vs)
	default:
		return nil, fmt.Errorf("%w: %d values for %d curves", ErrDataShape, len(vs), n)
	}
	return out, nil
}

func broadcastFloats(vs []float64, n int, def float64) ([]float64, error) {
	out := make([]float64, n)
	switch len(vs) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = vs[0]
		}
	case n:
		copy(out, vs)
	default:
		return nil, fmt.Errorf("%w: %d values for %d curves", ErrDataShape, len(vs), n)
	}
	return out, nil
}

// diffStd returns the standard deviation of the first differences of f,
// ignoring NaN values.
func diffStd(f []float64) float64 {
	diffs := make([]float64, 0, len(f)-1)
	for j := 1; j < len(f); j++ {
		d := f[j] - f[j-1]
		if !math.IsNaN(d) {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) < 2 {
		return 0.0
	}
	return stat.StdDev(diffs, nil)
}

// normalizeCovariates z-scores each covariate column.
func normalizeCovariates(cv [][]float64) [][]float64 {
	if len(cv) == 0 {
		return cv
	}
	ncol := len(cv[0])
	out := make([][]float64, len(cv))
	for r := range out {
		out[r] = make([]float64, ncol)
	}
	col := make([]float64, len(cv))
	for c := 0; c < ncol; c++ {
		for r := range cv {
			col[r] = cv[r][c]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		for r := range cv {
			out[r][c] = (cv[r][c] - mean) / std
		}
	}
	return out
}
