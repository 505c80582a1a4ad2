// transit-sim simulates a single transit light curve with the swift model
// and prints summary statistics. Useful for eyeballing model tuning changes
// without a full fitting run.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/stellar-data/transit.report/internal/config"
	"github.com/stellar-data/transit.report/internal/orbits"
	"github.com/stellar-data/transit.report/internal/transit"
)

func main() {
	var (
		k        = flag.Float64("k", 0.1, "planet-star radius ratio")
		t0       = flag.Float64("t0", 0.0, "zero epoch (d)")
		period   = flag.Float64("period", 3.0, "orbital period (d)")
		rho      = flag.Float64("rho", 1.4, "stellar density (g/cm^3)")
		b        = flag.Float64("b", 0.3, "impact parameter")
		q1       = flag.Float64("q1", 0.3, "limb darkening q1")
		q2       = flag.Float64("q2", 0.3, "limb darkening q2")
		npt      = flag.Int("npt", 500, "number of points")
		width    = flag.Float64("width", 0.2, "window width around mid-transit (d)")
		cfgPath  = flag.String("config", "", "optional tuning config JSON")
		printAll = flag.Bool("print", false, "print the full flux series")
	)
	flag.Parse()

	cfg := transit.DefaultConfig()
	if *cfgPath != "" {
		tc, err := config.LoadTuningConfig(*cfgPath)
		if err != nil {
			log.Fatalf("load tuning config: %v", err)
		}
		cfg = tc.ModelConfig()
	}
	cfg.NK = 0 // single evaluation; skip the table precompute

	m := transit.NewSwiftModel(cfg)

	a := orbits.AsFromRhoP(*rho, *period)
	inc := orbits.IFromBA(*b, a)
	u := 2.0 * math.Sqrt(*q1) * *q2
	v := math.Sqrt(*q1) * (1.0 - 2.0**q2)

	times := make([]float64, *npt)
	for i := range times {
		times[i] = *t0 - 0.5**width + *width*float64(i)/float64(*npt-1)
	}

	ldp := transit.QuadraticProfile(u, v, m.Grid().Means)
	istar := transit.QuadraticIStar(u, v)

	start := time.Now()
	flux, err := m.EvaluateSimple(times, *k, *t0, *period, a, inc, 0, 0, ldp, istar)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}
	elapsed := time.Since(start)

	minFlux, minT := 1.0, times[0]
	for i, f := range flux {
		if f < minFlux {
			minFlux, minT = f, times[i]
		}
	}
	t14 := orbits.DFromPKAIEWS(*period, *k, a, inc, 0, 0)

	log.Printf("a/R*=%.3f inc=%.4f rad u=%.3f v=%.3f", a, inc, u, v)
	log.Printf("depth=%.6f (geometric k^2=%.6f) at t=%.5f", 1.0-minFlux, *k**k, minT)
	log.Printf("duration t14=%.4f d, evaluated %d points in %s", t14, *npt, elapsed)

	if *printAll {
		for i := range times {
			fmt.Printf("%.6f %.8f\n", times[i], flux[i])
		}
	}
}
