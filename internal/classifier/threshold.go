package classifier

import (
	"math"
	"math/rand"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// InferenceThresholdA is the scalar `a` used by the binary thresholder
// at inference time.
const InferenceThresholdA = 2.0

// BinaryThreshold classifies each pixel high/low from a 3x3-neighborhood
// mean/variance against the whole-tile mean. Boundary pixels
// replicate-clamp, expressed as explicit clamped-index lookups since
// core.Image is a plain buffer rather than a gocv.Mat region.
func BinaryThreshold(tile *core.Image, a float64) *core.Image {
	w, h := tile.Width, tile.Height
	out := core.NewImage(w, h)

	globalMean := tileMean(tile)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			localMean, localVar := neighborhoodStats(tile, x, y)
			center := float64(tile.At(x, y))

			high := center > a*math.Sqrt(localVar) && center > 0.95*globalMean
			_ = localMean

			if high {
				out.Set(x, y, 255)
			} else {
				out.Set(x, y, 0)
			}
		}
	}

	return out
}

func tileMean(tile *core.Image) float64 {
	sum := 0.0
	n := tile.Width * tile.Height
	for i := 0; i < n; i++ {
		sum += float64(tile.Pix[i*3])
	}
	return sum / float64(n)
}

func neighborhoodStats(tile *core.Image, x, y int) (mean, variance float64) {
	sum, sumSq := 0.0, 0.0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			v := float64(tile.At(clampIdx(x+dx, tile.Width), clampIdx(y+dy, tile.Height)))
			sum += v
			sumSq += v * v
		}
	}
	mean = sum / 9
	variance = sumSq/9 - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

func clampIdx(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}

// TrainingThresholdA draws the scalar `a` uniformly in [2.0, 4.0] for one
// training-sample generation
func TrainingThresholdA(rng *rand.Rand) float64 {
	return 2.0 + rng.Float64()*2.0
}

// ShuffleEdgePixels regularises against over-fitting to anti-aliased
// edges: for each pixel detected as an edge pixel via a Laplacian
// threshold criterion, with probability 1-V it copies the pixel value to
// a uniformly chosen diagonal neighbour and inverts the original. V is
// chosen per-sample in [0.95, 0.99].
func ShuffleEdgePixels(tile *core.Image, rng *rand.Rand) {
	v := 0.95 + rng.Float64()*0.04
	w, h := tile.Width, tile.Height

	const laplacianThreshold = 200.0
	diagonals := [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

	edges := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := float64(tile.At(x, y))
			lap := 4*center -
				float64(tile.At(x-1, y)) - float64(tile.At(x+1, y)) -
				float64(tile.At(x, y-1)) - float64(tile.At(x, y+1))
			if math.Abs(lap) > laplacianThreshold {
				edges[y*w+x] = true
			}
		}
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if !edges[y*w+x] {
				continue
			}
			if rng.Float64() >= 1-v {
				continue
			}
			d := diagonals[rng.Intn(len(diagonals))]
			nx, ny := clampIdx(x+d[0], w), clampIdx(y+d[1], h)

			original := tile.At(x, y)
			tile.Set(nx, ny, original)
			tile.Set(x, y, 255-original)
		}
	}
}
