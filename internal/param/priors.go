package param

import "gonum.org/v1/gonum/stat/distuv"

// Prior is the distribution contract a parameter carries: a log density for
// scoring and a sampler for population initialisation. The gonum distuv
// distributions satisfy it directly.
type Prior interface {
	LogProb(x float64) float64
	Rand() float64
}

// UniformPrior returns a uniform prior on [min, max].
func UniformPrior(min, max float64) Prior {
	return distuv.Uniform{Min: min, Max: max}
}

// NormalPrior returns a normal prior with the given mean and standard
// deviation.
func NormalPrior(mu, sigma float64) Prior {
	return distuv.Normal{Mu: mu, Sigma: sigma}
}

// GammaPrior returns a gamma prior with shape alpha and unit rate.
func GammaPrior(alpha float64) Prior {
	return distuv.Gamma{Alpha: alpha, Beta: 1}
}
