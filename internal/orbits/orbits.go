// Package orbits provides the orbit-geometry relations the transit model
// consumes: planet-star projected separations and the standard mappings
// between stellar density, scaled semi-major axis, impact parameter,
// inclination and transit duration.
//
// All angles are in radians, times and periods in days, stellar density in
// g/cm^3, and distances in units of the stellar radius. Projected
// separations are always >= 0; a separation greater than 1+k means the
// planet disk is fully off the stellar disk.
package orbits

import "math"

const (
	// gravitational constant [m^3 kg^-1 s^-2]
	gravG = 6.674e-11

	secondsPerDay = 86400.0

	twoPi = 2.0 * math.Pi
)

// kepler solver tolerances
const (
	keplerTol     = 1e-12
	keplerMaxIter = 100
)

// ZCircular returns the projected planet-star centre separation for a
// circular orbit at time t. The far side of the orbit maps to the orbital
// radius a so that points around secondary eclipse report full visibility.
func ZCircular(t, t0, p, a, i float64) float64 {
	ph := twoPi * (t - t0) / p
	cosph := math.Cos(ph)
	if cosph < 0.0 {
		return a
	}
	sinph := math.Sin(ph)
	cosi := math.Cos(i)
	return a * math.Sqrt(sinph*sinph+cosph*cosph*cosi*cosi)
}

// ZCircularV evaluates ZCircular over a time slice.
func ZCircularV(ts []float64, t0, p, a, i float64) []float64 {
	zs := make([]float64, len(ts))
	for j, t := range ts {
		zs[j] = ZCircular(t, t0, p, a, i)
	}
	return zs
}

// Z returns the projected separation for a Keplerian orbit with
// eccentricity e and argument of periastron w. Zero eccentricity falls
// through to the circular solution without a Kepler solve.
func Z(t, t0, p, a, i, e, w float64) float64 {
	if e < 1e-5 {
		return ZCircular(t, t0, p, a, i)
	}

	// True anomaly at mid-transit and the matching periastron epoch.
	nu0 := 0.5*math.Pi - w
	ea0 := 2.0 * math.Atan(math.Sqrt((1.0-e)/(1.0+e))*math.Tan(0.5*nu0))
	ma0 := ea0 - e*math.Sin(ea0)
	tp := t0 - p*ma0/twoPi

	ma := math.Mod(twoPi*(t-tp)/p, twoPi)
	ea := solveKepler(ma, e)
	nu := 2.0 * math.Atan(math.Sqrt((1.0+e)/(1.0-e))*math.Tan(0.5*ea))

	r := a * (1.0 - e*e) / (1.0 + e*math.Cos(nu))
	if math.Sin(nu+w) < 0.0 {
		// Far side of the orbit.
		return r
	}
	snw := math.Sin(nu + w)
	sini := math.Sin(i)
	return r * math.Sqrt(1.0-snw*snw*sini*sini)
}

// ZV evaluates Z over a time slice.
func ZV(ts []float64, t0, p, a, i, e, w float64) []float64 {
	zs := make([]float64, len(ts))
	for j, t := range ts {
		zs[j] = Z(t, t0, p, a, i, e, w)
	}
	return zs
}

// solveKepler finds the eccentric anomaly for mean anomaly ma by
// Newton-Raphson iteration.
func solveKepler(ma, e float64) float64 {
	ea := ma
	for iter := 0; iter < keplerMaxIter; iter++ {
		d := (ea - e*math.Sin(ea) - ma) / (1.0 - e*math.Cos(ea))
		ea -= d
		if math.Abs(d) < keplerTol {
			break
		}
	}
	return ea
}

// AsFromRhoP maps mean stellar density [g/cm^3] and orbital period [d] to
// the scaled semi-major axis a/R*.
func AsFromRhoP(rho, period float64) float64 {
	ps := period * secondsPerDay
	return math.Cbrt(gravG * 1e3 * rho * ps * ps / (3.0 * math.Pi))
}

// IFromBA maps an impact parameter and scaled semi-major axis to the
// orbital inclination [rad].
func IFromBA(b, a float64) float64 {
	return math.Acos(b / a)
}

// DFromPKAIEWS returns the total transit duration for the given period,
// radius ratio, scaled semi-major axis, inclination, eccentricity and
// argument of periastron.
func DFromPKAIEWS(p, k, a, i, e, w float64) float64 {
	ae := math.Sqrt(1.0-e*e) / (1.0 + e*math.Sin(w))
	b := a * math.Cos(i) * ae
	s := math.Sqrt((1.0+k)*(1.0+k)-b*b) / (a * math.Sin(i))
	if s > 1.0 {
		s = 1.0
	}
	return p / math.Pi * math.Asin(s) * ae
}

// Epoch returns the transit epoch number nearest to time t.
func Epoch(t, t0, p float64) int {
	return int(math.Round((t - t0) / p))
}

// FoldCenter folds time t around the nearest transit centre, mapping it
// into [-p/2, p/2) with mid-transit at zero.
func FoldCenter(t, t0, p float64) float64 {
	return t - t0 - p*float64(Epoch(t, t0, p))
}
