package transit

import "errors"

var (
	// ErrNoData indicates a flux evaluation was requested before SetData.
	ErrNoData = errors.New("transit: model data not set")
	// ErrDataShape indicates mismatched data-context array lengths.
	ErrDataShape = errors.New("transit: data array length mismatch")
	// ErrProfileShape indicates a limb-darkening profile array whose shape
	// does not match the population size and passband count.
	ErrProfileShape = errors.New("transit: limb darkening profile shape mismatch")
	// ErrNoTable indicates an interpolated evaluation without a precomputed
	// radius-ratio weight table.
	ErrNoTable = errors.New("transit: precomputed weight table not available")
	// ErrRadiusRange indicates a radius ratio outside the precomputed
	// weight-table range.
	ErrRadiusRange = errors.New("transit: radius ratio outside precomputed table range")
)
