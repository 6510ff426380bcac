package hough

import (
	"math"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// PeakWindowRadius is R in the (2R+1)x(2R+1) sliding window.
const PeakWindowRadius = 5

// PeakMinVotes is the minimum accumulator value for a cell to qualify as
// a peak.
const PeakMinVotes = 200

// FindPeaks slides a (2R+1)x(2R+1) window over the accumulator. A cell is
// a peak iff its value >= PeakMinVotes and it is strictly greater than
// every other cell in its window.
func FindPeaks(a *Accumulator) []core.Line {
	var peaks []core.Line

	for yc := 0; yc < a.Height; yc++ {
		for xc := 0; xc < a.Width; xc++ {
			v := a.at(xc, yc)
			if v < PeakMinVotes {
				continue
			}
			if !isStrictMaximumInWindow(a, xc, yc, v) {
				continue
			}
			peaks = append(peaks, peakToLine(a, xc, yc))
		}
	}

	return peaks
}

func isStrictMaximumInWindow(a *Accumulator, xc, yc int, v uint16) bool {
	for dy := -PeakWindowRadius; dy <= PeakWindowRadius; dy++ {
		for dx := -PeakWindowRadius; dx <= PeakWindowRadius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x, y := xc+dx, yc+dy
			if x < 0 || x >= a.Width || y < 0 || y >= a.Height {
				continue
			}
			if a.at(x, y) >= v {
				return false
			}
		}
	}
	return true
}

func peakToLine(a *Accumulator, xc, yc int) core.Line {
	theta := float64(xc) / float64(a.Width) * math.Pi
	rho := float64(yc) / float64(a.Height) * a.Diag
	return core.NewLine(theta, rho)
}
