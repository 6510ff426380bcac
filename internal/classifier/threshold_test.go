package classifier

import (
	"math/rand"
	"testing"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

func checkerboardTile(size int) *core.Image {
	img := core.NewImage(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, 255)
			} else {
				img.Set(x, y, 10)
			}
		}
	}
	return img
}

func TestBinaryThresholdProducesBinaryOutput(t *testing.T) {
	tile := checkerboardTile(16)
	out := BinaryThreshold(tile, InferenceThresholdA)

	for y := 0; y < tile.Height; y++ {
		for x := 0; x < tile.Width; x++ {
			v := out.At(x, y)
			if v != 0 && v != 255 {
				t.Fatalf("BinaryThreshold output at (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}

func TestBinaryThresholdUniformTileClassifiedHigh(t *testing.T) {
	tile := core.NewImage(16, 16)
	for i := range tile.Pix {
		tile.Pix[i] = 50
	}

	out := BinaryThreshold(tile, InferenceThresholdA)
	for i := 0; i < out.Width*out.Height; i++ {
		if out.Pix[i*3] != 255 {
			t.Fatalf("uniform tile pixel %d classified low; with zero local variance the a*sigma bound is 0 and the pixel equals the tile mean, so it must be high", i)
		}
	}
}

func TestShuffleEdgePixelsPreservesDimensions(t *testing.T) {
	tile := checkerboardTile(16)
	w, h := tile.Width, tile.Height

	rng := rand.New(rand.NewSource(5))
	ShuffleEdgePixels(tile, rng)

	if tile.Width != w || tile.Height != h {
		t.Fatalf("ShuffleEdgePixels changed dimensions: got %dx%d, want %dx%d", tile.Width, tile.Height, w, h)
	}
}

func TestTrainingThresholdAWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 100; i++ {
		a := TrainingThresholdA(rng)
		if a < 2.0 || a > 4.0 {
			t.Fatalf("TrainingThresholdA() = %v, want value in [2.0, 4.0]", a)
		}
	}
}
