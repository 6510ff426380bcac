package classifier

import (
	"math/rand"
	"testing"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// fakeRenderer is a deterministic collab.Renderer stand-in: tiles are
// rendered as a uniform intensity scaled by the digit plus seed-derived
// jitter, with no dependency on any vision library.
type fakeRenderer struct{}

func (fakeRenderer) ExtractImage(src *core.Image, corners core.Quadrilateral, dstW, dstH int) *core.Image {
	return core.NewImage(dstW, dstH)
}

func (fakeRenderer) RenderPuzzleGlyphs(digits core.DigitVector) *core.Image {
	return core.NewImage(core.BoardSize, core.BoardSize)
}

func (fakeRenderer) RenderNoisyTrainingTile(digit byte, size int, seed uint64) *core.Image {
	tile := core.NewImage(size, size)
	base := byte((uint64(digit)*25 + seed%32) % 256)
	for i := 0; i < size*size; i++ {
		tile.Pix[i*3] = base
		tile.Pix[i*3+1] = base
		tile.Pix[i*3+2] = base
	}
	return tile
}

func TestGenerateTrainingSamplesShapeAndRange(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	samples := GenerateTrainingSamples(fakeRenderer{}, rng)

	wantCount := TrainingGridCount * core.CellCount
	if len(samples) != wantCount {
		t.Fatalf("len(samples) = %d, want %d", len(samples), wantCount)
	}

	for i, s := range samples {
		if len(s.Input) != TileSize*TileSize {
			t.Fatalf("sample %d input length = %d, want %d", i, len(s.Input), TileSize*TileSize)
		}
		if s.Expected > 9 {
			t.Fatalf("sample %d Expected = %d, want a digit 0-9", i, s.Expected)
		}
		for j, v := range s.Input {
			if v < 0 || v > 1 {
				t.Fatalf("sample %d input[%d] = %v, want value in [0,1]", i, j, v)
			}
		}
	}
}

func TestFillRandomProducesSolvableGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	grid := randomFullGrid(rng)

	game := core.NewGame(grid)
	if !core.Solvable(game) {
		t.Fatal("randomFullGrid produced a grid with row/column/block conflicts")
	}
	for _, d := range grid {
		if d == 0 {
			t.Fatal("randomFullGrid left an empty cell in a full grid")
		}
	}
}

func TestBlankSparselyMutatesInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	grid := randomFullGrid(rng)

	before := 0
	for _, d := range grid {
		if d != 0 {
			before++
		}
	}

	blankSparsely(&grid, rng)

	after := 0
	for _, d := range grid {
		if d != 0 {
			after++
		}
	}

	if after >= before {
		t.Fatalf("blankSparsely did not reduce non-zero count: before=%d after=%d", before, after)
	}
}
