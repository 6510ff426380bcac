package puzzlefinder

import (
	"math"
	"testing"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// syntheticGridLines builds ten near-horizontal and ten near-vertical
// lines with uniform ρ spacing, simulating a detected Sudoku grid in a
// targetW x targetH image, plus a handful of noise lines that should
// never survive clustering.
func syntheticGridLines(spacing, start float64) []core.Line {
	var lines []core.Line
	for i := 0; i < GridLineCount; i++ {
		rho := start + float64(i)*spacing
		lines = append(lines, core.NewLine(0, rho))            // vertical boundaries (θ=0: x=ρ)
		lines = append(lines, core.NewLine(math.Pi/2, rho))    // horizontal boundaries (θ=π/2: y=ρ)
	}
	// Noise: a handful of lines at unrelated angles, too few to form a
	// surviving cluster.
	lines = append(lines, core.NewLine(1.1, 40))
	lines = append(lines, core.NewLine(1.2, 80))
	return lines
}

func TestFindLocatesSquareGrid(t *testing.T) {
	lines := syntheticGridLines(30, 20)
	result := Find(400, 400, lines, AngularTolerance, SpacingTolerance)

	if !result.Found {
		t.Fatalf("expected grid to be found")
	}

	// The square grid spans rho in [20, 20+9*30] = [20, 290] on both axes.
	for _, p := range result.Corners {
		if p.X < -1 || p.X > 400 || p.Y < -1 || p.Y > 400 {
			t.Errorf("corner out of expected bounds: %+v", p)
		}
	}
}

func TestFindReturnsNotFoundWithoutPerpendicularPair(t *testing.T) {
	// Only one orientation present: no grid should be reported.
	var lines []core.Line
	for i := 0; i < GridLineCount; i++ {
		lines = append(lines, core.NewLine(0, 20+float64(i)*30))
	}

	result := Find(400, 400, lines, AngularTolerance, SpacingTolerance)
	if result.Found {
		t.Fatalf("expected not-found without a perpendicular cluster pair")
	}
}

func TestClusterByOrientationGroupsByAngle(t *testing.T) {
	lines := []core.Line{
		core.NewLine(0.01, 10),
		core.NewLine(0.02, 20),
		core.NewLine(1.50, 10),
		core.NewLine(1.51, 20),
	}

	clusters := clusterByOrientation(lines, AngularTolerance)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}

	for _, c := range clusters {
		for _, l := range c.Lines {
			if core.DifferenceTheta(c.Mean, l.Theta) > AngularTolerance {
				t.Errorf("line %v outside cluster mean %v beyond tolerance", l, c.Mean)
			}
		}
	}
}

func TestIsUniformSpacingRejectsNonUniform(t *testing.T) {
	window := make([]core.Line, GridLineCount)
	for i := range window {
		rho := float64(i) * 10
		if i == 5 {
			rho += 100 // inject a large gap
		}
		window[i] = core.NewLine(0, rho)
	}

	if isUniformSpacing(window, SpacingTolerance) {
		t.Fatalf("expected non-uniform spacing to be rejected")
	}
}
