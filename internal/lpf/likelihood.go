package lpf

import (
	"math"
	"sync"
)

const log2Pi = 1.8378770664093453

// LnLikeNormal returns the Gaussian log likelihood of observations o against
// model m with per-point uncertainties e.
func LnLikeNormal(o, m, e []float64) float64 {
	lnl := 0.0
	for j := range o {
		lnl += -math.Log(e[j]) - 0.5*log2Pi - 0.5*((o[j]-m[j])/e[j])*((o[j]-m[j])/e[j])
	}
	return lnl
}

// LnLikeNormalS is LnLikeNormal with a single shared uncertainty.
func LnLikeNormalS(o, m []float64, e float64) float64 {
	ssr := 0.0
	for j := range o {
		r := o[j] - m[j]
		ssr += r * r
	}
	n := float64(len(o))
	return -n*math.Log(e) - 0.5*n*log2Pi - 0.5*ssr/(e*e)
}

// LnLikeNormalV returns one Gaussian log likelihood per population member.
// m holds the model flux per member and point, e the noise scale per member
// and noise block, and the per-point block is looked up through
// noiseIDs[lcids[j]]. Non-finite model values (the invalid-member +Inf
// sentinel) propagate to -Inf for that member only.
//
// Members are independent, so the loop is data-parallel over the population
// axis.
func LnLikeNormalV(o []float64, m, e [][]float64, noiseIDs, lcids []int, workers int) []float64 {
	npv := len(m)
	lnl := make([]float64, npv)
	popFor(npv, workers, func(i int) {
		s := 0.0
		for j := range o {
			k := noiseIDs[lcids[j]]
			r := (o[j] - m[i][j]) / e[i][k]
			s += -math.Log(e[i][k]) - 0.5*log2Pi - 0.5*r*r
		}
		lnl[i] = s
	})
	return lnl
}

// popFor runs fn over [0,n) partitioned across workers goroutines; each
// index is visited exactly once.
func popFor(n, workers int, fn func(i int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}
