package classifier

import (
	"math/rand"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
	"github.com/jbendig/sudoku-solver-ar/internal/collab"
)

// TrainingGridCount is the number of random Sudoku grids rendered per
// training invocation.
const TrainingGridCount = 3000

// TileSize is the edge length of a single binarised digit tile fed to
// the classifier.
const TileSize = 16

// GenerateTrainingSamples renders TrainingGridCount random Sudoku grids
// via renderer, extracts 81 tiles per grid, binarises each with a
// per-sample-random threshold scalar, and returns the
// shuffled tile/label pairs ready for Train.
func GenerateTrainingSamples(renderer collab.Renderer, rng *rand.Rand) []TrainingSample {
	samples := make([]TrainingSample, 0, TrainingGridCount*core.CellCount)

	for g := 0; g < TrainingGridCount; g++ {
		grid := randomFullGrid(rng)
		blankSparsely(&grid, rng)

		for _, digit := range grid {
			seed := rng.Uint64()
			tile := renderer.RenderNoisyTrainingTile(digit, TileSize, seed)

			a := TrainingThresholdA(rng)
			binarised := BinaryThreshold(tile, a)
			ShuffleEdgePixels(binarised, rng)

			samples = append(samples, TrainingSample{
				Input:    tileToInputVector(binarised),
				Expected: digit,
			})
		}
	}

	rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })
	return samples
}

// tileToInputVector flattens a binarised tile's channel-0 plane into a
// [0,1]-normalized float vector, the classifier's input representation.
func tileToInputVector(tile *core.Image) []float64 {
	n := tile.Width * tile.Height
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(tile.Pix[i*3]) / 255.0
	}
	return out
}

// randomFullGrid produces a complete, valid 9x9 Sudoku solution by a
// backtracking fill of an empty board with randomized candidate order, so
// repeated calls with the same rng sequence are reproducible.
func randomFullGrid(rng *rand.Rand) core.DigitVector {
	game := core.NewGame(core.DigitVector{})
	fillRandom(game, rng)
	return game.Digits()
}

func fillRandom(g *core.Game, rng *rand.Rand) bool {
	row, col, ok := g.NextEmpty()
	if !ok {
		return true
	}

	var order []byte
	g.Candidates(row, col).Members(func(d byte) { order = append(order, d) })
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, digit := range order {
		_ = g.Set(row, col, digit)
		if fillRandom(g, rng) {
			return true
		}
		_ = g.Set(row, col, 0)
	}
	return false
}

// blankSparsely zeroes a random fraction of cells in place so the
// synthetic training set includes the "blank" class (digit 0), matching
// the mix of filled and empty cells a real printed puzzle presents.
func blankSparsely(grid *core.DigitVector, rng *rand.Rand) {
	const blankFraction = 0.4
	for i := range grid {
		if rng.Float64() < blankFraction {
			grid[i] = 0
		}
	}
}
