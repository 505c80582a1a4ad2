package transit

import (
	"math"
	"testing"
)

func TestCircleCircleIntersectionArea_Degenerate(t *testing.T) {
	// Planet centred on the star covers its own full disk area.
	got := CircleCircleIntersectionArea(1.0, 0.1, 0.0)
	want := math.Pi * 0.1 * 0.1
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("b=0: got %v, want %v", got, want)
	}

	// Externally tangent circles share no area.
	if got := CircleCircleIntersectionArea(1.0, 0.1, 1.1); got != 0.0 {
		t.Errorf("b=r1+r2: got %v, want 0", got)
	}

	// Well separated.
	if got := CircleCircleIntersectionArea(1.0, 0.1, 5.0); got != 0.0 {
		t.Errorf("b>>r1+r2: got %v, want 0", got)
	}
}

func TestCircleCircleIntersectionArea_SwappedRadii(t *testing.T) {
	// The degenerate regions pick the smaller disk regardless of which
	// argument is "planet".
	a1 := CircleCircleIntersectionArea(1.0, 0.2, 0.0)
	a2 := CircleCircleIntersectionArea(0.2, 1.0, 0.0)
	want := math.Pi * 0.2 * 0.2
	if math.Abs(a1-want) > 1e-12 || math.Abs(a2-want) > 1e-12 {
		t.Errorf("swapped b=0: got %v and %v, want %v", a1, a2, want)
	}

	// The lens formula itself is symmetric in r1/r2.
	l1 := CircleCircleIntersectionArea(1.0, 0.3, 0.9)
	l2 := CircleCircleIntersectionArea(0.3, 1.0, 0.9)
	if math.Abs(l1-l2) > 1e-12 {
		t.Errorf("lens symmetry: %v vs %v", l1, l2)
	}
}

func TestCircleCircleIntersectionArea_PartialOverlap(t *testing.T) {
	// Equal unit circles at separation 1: lens area has the closed form
	// 2*acos(1/2) - sqrt(3)/2.
	got := CircleCircleIntersectionArea(1.0, 1.0, 1.0)
	want := 2.0*math.Acos(0.5) - 0.5*math.Sqrt(3.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("unit circles at b=1: got %v, want %v", got, want)
	}
}

func TestCircleCircleIntersectionArea_MonotoneInSeparation(t *testing.T) {
	prev := math.Inf(1)
	for b := 0.0; b <= 1.2; b += 0.01 {
		a := CircleCircleIntersectionArea(1.0, 0.15, b)
		if a > prev+1e-12 {
			t.Fatalf("area increased with separation at b=%v: %v > %v", b, a, prev)
		}
		prev = a
	}
}

func TestCircleCircleIntersectionAreaV_MatchesScalar(t *testing.T) {
	bs := []float64{0.0, 0.3, 0.85, 1.0999, 1.1, 2.0}
	got := CircleCircleIntersectionAreaV(1.0, 0.1, bs)
	for i, b := range bs {
		want := CircleCircleIntersectionArea(1.0, 0.1, b)
		if got[i] != want {
			t.Errorf("b=%v: vector %v != scalar %v", b, got[i], want)
		}
	}
}
