package hough

import (
	"testing"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// verticalLineEdges draws a single-pixel-wide vertical edge at x=col.
func verticalLineEdges(size, col int) *core.Image {
	img := core.NewImage(size, size)
	for y := 0; y < size; y++ {
		img.Set(col, y, 255)
	}
	return img
}

func TestVoteFindsVerticalLine(t *testing.T) {
	// Border trims 2*Border rows from the voting area, so the image must
	// be tall enough for the line to collect at least PeakMinVotes votes.
	size := 300
	col := 150
	edges := verticalLineEdges(size, col)

	acc := NewAccumulator(size, size, 0, 0)
	acc.Vote(edges)

	peaks := FindPeaks(acc)
	if len(peaks) == 0 {
		t.Fatalf("expected at least one peak for a clean vertical edge")
	}

	for _, p := range peaks {
		if p.Rho < 0 {
			t.Errorf("peak rho must be non-negative, got %v", p.Rho)
		}
		if p.Theta < 0 || p.Theta >= 2*3.141592653589793 {
			t.Errorf("peak theta out of [0,2π): %v", p.Theta)
		}
	}
}

func TestAccumulatorSaturatesAtMaxCount(t *testing.T) {
	acc := NewAccumulator(50, 50, 10, 10)
	for i := range acc.Counts {
		acc.Counts[i] = MaxCount
	}
	acc.voteOne(5, 5)
	for _, c := range acc.Counts {
		if c > MaxCount {
			t.Fatalf("counter exceeded saturation ceiling: %v", c)
		}
	}
}
