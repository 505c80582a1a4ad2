// Package param implements ordered fixed-layout parameter storage for the
// log-posterior layer: parameters are appended in named blocks (global,
// per-passband or per-light-curve), each carrying a prior and bounds. Once
// frozen the set exposes a stable vector layout that population-based
// optimisers and samplers index directly.
package param

import (
	"errors"
	"fmt"
	"math"
)

var negInf = math.Inf(-1)

var (
	// ErrFrozen indicates a mutation on a frozen parameter set.
	ErrFrozen = errors.New("param: set is frozen")
	// ErrNotFrozen indicates a layout query before Freeze.
	ErrNotFrozen = errors.New("param: set must be frozen first")
	// ErrBlockShape indicates a block whose parameter count does not match
	// its declared per-group size.
	ErrBlockShape = errors.New("param: block parameter count mismatch")
)

// Kind classifies the scope of a parameter block.
type Kind int

const (
	// Global parameters apply to the whole system (e.g. orbit).
	Global Kind = iota
	// Passband parameters repeat once per passband.
	Passband
	// LightCurve parameters repeat once per light curve or noise block.
	LightCurve
)

// Parameter is one entry of the vector layout.
type Parameter struct {
	Name        string
	Description string
	Unit        string
	Prior       Prior
	Min, Max    float64
}

// Block is a contiguous run of parameters sharing a name and scope.
// Start:Stop is its slice of the parameter vector; NPer parameters repeat
// for each of NGroups groups.
type Block struct {
	Name    string
	Kind    Kind
	Start   int
	Stop    int
	NPer    int
	NGroups int
}

// GroupSlice returns the vector range of group ig within the block.
func (b Block) GroupSlice(ig int) (start, stop int) {
	start = b.Start + ig*b.NPer
	return start, start + b.NPer
}

// Set is the ordered collection of parameter blocks.
type Set struct {
	params []Parameter
	blocks []Block
	frozen bool
}

// NewSet returns an empty, thawed parameter set.
func NewSet() *Set { return &Set{} }

// AddGlobalBlock appends a block of global parameters.
func (s *Set) AddGlobalBlock(name string, ps []Parameter) error {
	return s.addBlock(name, Global, len(ps), 1, ps)
}

// AddPassbandBlock appends a block of nper parameters repeated for ngroups
// passbands; ps must hold nper*ngroups parameters in group order.
func (s *Set) AddPassbandBlock(name string, nper, ngroups int, ps []Parameter) error {
	return s.addBlock(name, Passband, nper, ngroups, ps)
}

// AddLightCurveBlock appends a block of nper parameters repeated for
// ngroups light curves or noise blocks.
func (s *Set) AddLightCurveBlock(name string, nper, ngroups int, ps []Parameter) error {
	return s.addBlock(name, LightCurve, nper, ngroups, ps)
}

func (s *Set) addBlock(name string, kind Kind, nper, ngroups int, ps []Parameter) error {
	if s.frozen {
		return fmt.Errorf("%w: cannot add block %q", ErrFrozen, name)
	}
	if len(ps) != nper*ngroups {
		return fmt.Errorf("%w: block %q has %d parameters, want %d x %d", ErrBlockShape, name, len(ps), nper, ngroups)
	}
	start := len(s.params)
	s.params = append(s.params, ps...)
	s.blocks = append(s.blocks, Block{
		Name: name, Kind: kind,
		Start: start, Stop: start + len(ps),
		NPer: nper, NGroups: ngroups,
	})
	return nil
}

// Freeze finalises the layout. Further block additions fail until Thaw.
func (s *Set) Freeze() { s.frozen = true }

// Thaw reopens the set for prior mutation; the layout itself is unchanged.
func (s *Set) Thaw() { s.frozen = false }

// Frozen reports whether the layout is finalised.
func (s *Set) Frozen() bool { return s.frozen }

// Len returns the parameter vector length.
func (s *Set) Len() int { return len(s.params) }

// Names returns the parameter names in vector order.
func (s *Set) Names() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	return names
}

// At returns parameter i.
func (s *Set) At(i int) Parameter { return s.params[i] }

// SetPrior replaces the prior and bounds of parameter i. The set must be
// thawed.
func (s *Set) SetPrior(i int, prior Prior, min, max float64) error {
	if s.frozen {
		return fmt.Errorf("%w: cannot change prior of %q", ErrFrozen, s.params[i].Name)
	}
	s.params[i].Prior = prior
	s.params[i].Min = min
	s.params[i].Max = max
	return nil
}

// Block returns the first block with the given name.
func (s *Set) Block(name string) (Block, bool) {
	for _, b := range s.blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}

// Blocks returns the blocks in layout order.
func (s *Set) Blocks() []Block { return s.blocks }

// SampleFromPrior draws n parameter vectors from the parameter priors.
func (s *Set) SampleFromPrior(n int) ([][]float64, error) {
	if !s.frozen {
		return nil, ErrNotFrozen
	}
	pvp := make([][]float64, n)
	for i := range pvp {
		pv := make([]float64, len(s.params))
		for j, p := range s.params {
			pv[j] = p.Prior.Rand()
		}
		pvp[i] = pv
	}
	return pvp, nil
}

// LogPrior returns the joint log prior density of a parameter vector,
// -Inf outside any parameter's bounds.
func (s *Set) LogPrior(pv []float64) float64 {
	lp := 0.0
	for j, p := range s.params {
		if pv[j] < p.Min || pv[j] > p.Max {
			return negInf
		}
		lp += p.Prior.LogProb(pv[j])
	}
	return lp
}
