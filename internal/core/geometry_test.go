package core

import (
	"math"
	"testing"
)

func almostEqual(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v (tol %v)", label, got, want, tol)
	}
}

func TestMeanTheta(t *testing.T) {
	almostEqual(t, MeanTheta([]float64{0.1, 0.2, 0.3}), 0.2, 1e-5, "simple mean")
	almostEqual(t, MeanTheta([]float64{6.2, 0.1}), 6.2414, 1e-3, "wrap-straddling mean")
}

func TestDifferenceTheta(t *testing.T) {
	almostEqual(t, DifferenceTheta(0.1, 6.18), 0.203, 1e-3, "wrap-safe difference")

	if DifferenceTheta(1.0, 1.0) != 0 {
		t.Errorf("DifferenceTheta(a,a) should be 0")
	}

	if DifferenceTheta(0.5, 1.2) != DifferenceTheta(1.2, 0.5) {
		t.Errorf("DifferenceTheta should be symmetric")
	}

	eps := 1e-6
	d := DifferenceTheta(0, 2*math.Pi-eps)
	if d > 1e-4 {
		t.Errorf("DifferenceTheta(0, 2π-ε) should approach 0, got %v", d)
	}
}

func TestLineNormalize(t *testing.T) {
	l := NewLine(0, -5)
	if l.Rho < 0 {
		t.Errorf("normalized line must have non-negative rho, got %v", l.Rho)
	}
	if l.Theta != math.Pi {
		t.Errorf("expected theta shifted by pi, got %v", l.Theta)
	}
}

func TestIntersectLines(t *testing.T) {
	result := IntersectLines(Line{Theta: 0, Rho: 5}, Line{Theta: math.Pi / 2, Rho: 7})
	if result.Parallel {
		t.Fatalf("lines should not be parallel")
	}
	almostEqual(t, result.Point.X, 5, 1e-9, "intersection x")
	almostEqual(t, result.Point.Y, 7, 1e-9, "intersection y")

	parallel := IntersectLines(Line{Theta: 1.0, Rho: 1}, Line{Theta: 1.0, Rho: 2})
	if !parallel.Parallel {
		t.Errorf("equal-theta lines must report parallel")
	}
}

func TestCandidateSet(t *testing.T) {
	var s CandidateSet
	s.Insert(3)
	s.Insert(5)

	if !s.Contains(3) || !s.Contains(5) {
		t.Fatalf("expected 3 and 5 present")
	}
	if s.Contains(1) {
		t.Fatalf("did not expect 1 present")
	}

	comp := s.Complement()
	if comp.Contains(3) || comp.Contains(5) {
		t.Fatalf("complement should exclude original members")
	}
	if !comp.Contains(1) {
		t.Fatalf("complement should include non-members")
	}

	var seen []byte
	comp.Members(func(d byte) { seen = append(seen, d) })
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("Members should iterate ascending, got %v", seen)
		}
	}
}
