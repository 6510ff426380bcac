// Package edge implements a Canny-style edge extractor: a four-stage
// pipeline (separable Gaussian blur, auto-levels, Sobel gradient, Otsu
// threshold + non-maximum suppression + hysteresis linking) built from
// first principles over core.Image's manually-walked pixel buffer
// rather than delegated to a vision library.
package edge

import (
	"math"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// DefaultRadius is the Gaussian blur radius used when the caller has no
// stronger opinion.
const DefaultRadius = 2.0

const (
	pixelStrong byte = 255
	pixelWeak   byte = 128 // internal marker only; never escapes Extract
)

// Extractor runs the four-stage Canny pipeline. It owns reusable scratch
// buffers so that repeated calls across video frames avoid reallocating.
type Extractor struct {
	Radius float64

	scratchH *core.Image // after horizontal blur pass
	blurred  *core.Image
	levelled *core.Image
	gradient *core.GradientMap
	labels   []byte // per-pixel STRONG/WEAK/0 classification before hysteresis
}

// NewExtractor builds an Extractor with the given Gaussian radius.
func NewExtractor(radius float64) *Extractor {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Extractor{Radius: radius}
}

// Extract runs Canny edge detection on a greyscale-as-RGB Image (R=G=B).
// The output Image has channel 0 == 255 on retained edge pixels and 0
// elsewhere; never returns an error — an empty or near-uniform input
// yields an all-zero output.
func (e *Extractor) Extract(input *core.Image) *core.Image {
	e.ensureScratch(input)

	e.gaussianBlur(input)
	e.autoLevels()
	e.sobelGradient()
	return e.otsuNMSHysteresis()
}

func (e *Extractor) ensureScratch(input *core.Image) {
	if e.scratchH == nil {
		e.scratchH = core.NewImage(input.Width, input.Height)
		e.blurred = core.NewImage(input.Width, input.Height)
		e.levelled = core.NewImage(input.Width, input.Height)
		e.gradient = core.NewGradientMap(input.Width, input.Height)
		e.labels = make([]byte, input.Width*input.Height)
		return
	}
	e.scratchH.ResizeLike(input)
	e.blurred.ResizeLike(input)
	e.levelled.ResizeLike(input)
	if e.gradient.Width != input.Width || e.gradient.Height != input.Height {
		e.gradient = core.NewGradientMap(input.Width, input.Height)
	}
	if len(e.labels) != input.Width*input.Height {
		e.labels = make([]byte, input.Width*input.Height)
	}
}

// gaussianBlur is Stage A.
func (e *Extractor) gaussianBlur(input *core.Image) {
	half := int(math.Floor(e.Radius)) + 1
	kernel := buildGaussianKernel(e.Radius, half)

	w, h := input.Width, input.Height

	// Horizontal pass into scratchH, channel-0 only (R=G=B held by caller).
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < half || x >= w-half || y < half || y >= h-half {
				e.scratchH.Set(x, y, 0)
				continue
			}
			sum := 0.0
			for k := -half; k <= half; k++ {
				sum += float64(input.At(x+k, y)) * kernel[k+half]
			}
			e.scratchH.Set(x, y, clampU8Round(sum))
		}
	}

	// Vertical pass into blurred.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < half || x >= w-half || y < half || y >= h-half {
				e.blurred.Set(x, y, 0)
				continue
			}
			sum := 0.0
			for k := -half; k <= half; k++ {
				sum += float64(e.scratchH.At(x, y+k)) * kernel[k+half]
			}
			e.blurred.Set(x, y, clampU8Round(sum))
		}
	}
}

// buildGaussianKernel builds the 1-D kernel of Stage A:
// width 2*floor(r)+3, g(x) = exp(-x²/2σ²) - exp(-r²/2σ²), σ = r/3,
// clamped to >= 0 and normalized to sum to 1.
func buildGaussianKernel(r float64, half int) []float64 {
	sigma := r / 3
	kernel := make([]float64, 2*half+1)
	base := math.Exp(-(r * r) / (2 * sigma * sigma))

	sum := 0.0
	for i := -half; i <= half; i++ {
		x := float64(i)
		v := math.Exp(-(x*x)/(2*sigma*sigma)) - base
		if v < 0 {
			v = 0
		}
		kernel[i+half] = v
		sum += v
	}
	if sum > 0 {
		for i := range kernel {
			kernel[i] /= sum
		}
	}
	return kernel
}

// autoLevels is Stage B.
func (e *Extractor) autoLevels() {
	half := int(math.Floor(e.Radius)) + 1
	w, h := e.blurred.Width, e.blurred.Height

	lo, hi := byte(255), byte(0)
	for y := half; y < h-half; y++ {
		for x := half; x < w-half; x++ {
			v := e.blurred.At(x, y)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	delta := float64(hi-lo)/255 - 2*0.1
	if delta <= 0 {
		copy(e.levelled.Pix, e.blurred.Pix)
		return
	}

	for i := 0; i < w*h; i++ {
		v := float64(e.blurred.Pix[i*3]) - float64(lo)
		out := clampU8Round(v / delta)
		e.levelled.Pix[i*3] = out
		e.levelled.Pix[i*3+1] = out
		e.levelled.Pix[i*3+2] = out
	}
}

var sobelX = [3][3]float64{
	{-1, 0, 1},
	{-2, 0, 2},
	{-1, 0, 1},
}

var sobelY = [3][3]float64{
	{-1, -2, -1},
	{0, 0, 0},
	{1, 2, 1},
}

// sobelGradient is Stage C.
func (e *Extractor) sobelGradient() {
	w, h := e.levelled.Width, e.levelled.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || x == w-1 || y == 0 || y == h-1 {
				e.gradient.Set(x, y, 0, 0)
				continue
			}
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := float64(e.levelled.At(x+kx, y+ky))
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			e.gradient.Set(x, y, math.Hypot(gx, gy), math.Atan2(gy, gx))
		}
	}
}

// otsuNMSHysteresis is Stage D.
func (e *Extractor) otsuNMSHysteresis() *core.Image {
	w, h := e.levelled.Width, e.levelled.Height
	hist := histogram256(e.levelled)
	high := otsuThreshold(hist)
	low := high / 2

	for i := range e.labels {
		e.labels[i] = 0
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			mag, angle := e.gradient.At(x, y)
			if mag == 0 || !isLocalMaximum(e.gradient, x, y, mag, angle) {
				continue
			}
			idx := y*w + x
			switch {
			case mag >= high:
				e.labels[idx] = pixelStrong
			case mag >= low:
				e.labels[idx] = pixelWeak
			}
		}
	}

	hysteresisLink(e.labels, w, h)

	out := core.NewImage(w, h)
	for i, v := range e.labels {
		if v == pixelStrong {
			out.Pix[i*3] = 255
			out.Pix[i*3+1] = 255
			out.Pix[i*3+2] = 255
		}
	}
	return out
}

// isLocalMaximum classifies the gradient direction into one of four
// 45°-wide buckets and compares magnitude against the two neighbors along
// the perpendicular-to-edge axis for that bucket.
func isLocalMaximum(g *core.GradientMap, x, y int, mag, angle float64) bool {
	if angle < 0 {
		angle += math.Pi
	}
	bucket := int(math.Round(angle/(math.Pi/4))) % 4

	var dx1, dy1, dx2, dy2 int
	switch bucket {
	case 0:
		dx1, dy1, dx2, dy2 = 1, 0, -1, 0
	case 1:
		dx1, dy1, dx2, dy2 = 1, 1, -1, -1
	case 2:
		dx1, dy1, dx2, dy2 = 0, 1, 0, -1
	default:
		dx1, dy1, dx2, dy2 = 1, -1, -1, 1
	}

	n1, _ := g.At(x+dx1, y+dy1)
	n2, _ := g.At(x+dx2, y+dy2)
	return mag >= n1 && mag >= n2
}

// hysteresisLink promotes WEAK pixels adjacent (8-neighborhood) to a
// STRONG pixel, repeating until no more promotions occur, then demotes
// any remaining WEAK pixel to 0.
func hysteresisLink(labels []byte, w, h int) {
	stack := make([]int, 0, 256)
	for i, v := range labels {
		if v == pixelStrong {
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := idx%w, idx/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				nidx := ny*w + nx
				if labels[nidx] == pixelWeak {
					labels[nidx] = pixelStrong
					stack = append(stack, nidx)
				}
			}
		}
	}

	for i, v := range labels {
		if v == pixelWeak {
			labels[i] = 0
		}
	}
}

func histogram256(img *core.Image) []float64 {
	hist := make([]float64, 256)
	n := img.Width * img.Height
	for i := 0; i < n; i++ {
		hist[img.Pix[i*3]]++
	}
	if n > 0 {
		for i := range hist {
			hist[i] /= float64(n)
		}
	}
	return hist
}

// otsuThreshold applies Otsu's between-class variance maximization over a
// normalized 256-bin histogram. Ties are resolved as the arithmetic mean
// of all tying indices Stage D.
func otsuThreshold(hist []float64) float64 {
	total := 0.0
	for i, p := range hist {
		total += float64(i) * p
	}

	sumB, wB, maxVariance := 0.0, 0.0, -1.0
	var tying []int

	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := 1 - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * hist[t]
		mB := sumB / wB
		mF := (total - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)

		switch {
		case between > maxVariance+1e-12:
			maxVariance = between
			tying = tying[:0]
			tying = append(tying, t)
		case between > maxVariance-1e-12 && between < maxVariance+1e-12:
			tying = append(tying, t)
		}
	}

	if len(tying) == 0 {
		return 0
	}
	sum := 0
	for _, t := range tying {
		sum += t
	}
	return float64(sum) / float64(len(tying))
}

func clampU8Round(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
