// Package hough transforms an edge mask into (θ, ρ) line hypotheses: a
// dense vote accumulator followed by a sliding-window peak finder. Uses
// a plain []uint16 counter grid rather than packing counts into image
// channels.
package hough

import (
	"math"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// Border is the number of pixels at the image edge excluded from voting.
const Border = 10

// MaxCount is the saturation ceiling for a single accumulator cell.
const MaxCount = 0xFFFF

// Accumulator is a dense 16-bit-counter grid over (θ, ρ).
type Accumulator struct {
	Width, Height int // Width discretises θ ∈ [0,π); Height discretises ρ ∈ [0,diag]
	Diag          float64
	Counts        []uint16

	cosTable []float64
	sinTable []float64
}

// NewAccumulator builds an accumulator sized for an inputW x inputH
// image. Pass width/height <= 0 to use the defaults: 360 angle bins,
// min(inputW, inputH) rho bins.
func NewAccumulator(inputW, inputH, width, height int) *Accumulator {
	if width <= 0 {
		width = 360
	}
	if height <= 0 {
		height = inputW
		if inputH < inputW {
			height = inputH
		}
	}

	a := &Accumulator{
		Width:    width,
		Height:   height,
		Diag:     math.Hypot(float64(inputW), float64(inputH)),
		Counts:   make([]uint16, width*height),
		cosTable: make([]float64, width),
		sinTable: make([]float64, width),
	}

	for z := 0; z < width; z++ {
		theta := float64(z) / float64(width) * math.Pi
		a.cosTable[z] = math.Cos(theta)
		a.sinTable[z] = math.Sin(theta)
	}

	return a
}

// Vote accumulates every edge pixel of edgeMask (channel 0 != 0) into the
// grid, excluding a Border-pixel margin
func (a *Accumulator) Vote(edgeMask *core.Image) {
	for i := range a.Counts {
		a.Counts[i] = 0
	}

	w, h := edgeMask.Width, edgeMask.Height
	for y := Border; y < h-Border; y++ {
		for x := Border; x < w-Border; x++ {
			if edgeMask.At(x, y) == 0 {
				continue
			}
			a.voteOne(float64(x), float64(y))
		}
	}
}

func (a *Accumulator) voteOne(x, y float64) {
	for z := 0; z < a.Width; z++ {
		rho := x*a.cosTable[z] + y*a.sinTable[z]
		yc := int(rho / a.Diag * float64(a.Height))
		if yc < 0 {
			yc = 0
		}
		if yc >= a.Height {
			yc = a.Height - 1
		}
		idx := yc*a.Width + z
		if a.Counts[idx] < MaxCount {
			a.Counts[idx]++
		}
	}
}

func (a *Accumulator) at(x, y int) uint16 {
	return a.Counts[y*a.Width+x]
}
