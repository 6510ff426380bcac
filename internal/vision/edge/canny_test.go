package edge

import (
	"testing"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// syntheticSquare draws a filled white square on a black background, a
// simple but non-trivial edge source.
func syntheticSquare(size, margin int) *core.Image {
	img := core.NewImage(size, size)
	for y := margin; y < size-margin; y++ {
		for x := margin; x < size-margin; x++ {
			img.Set(x, y, 220)
		}
	}
	return img
}

func countNonZero(img *core.Image) int {
	n := 0
	for i := 0; i < img.Width*img.Height; i++ {
		if img.Pix[i*3] != 0 {
			n++
		}
	}
	return n
}

func TestExtractNeverErrorsOnUniformImage(t *testing.T) {
	img := core.NewImage(64, 64) // all zero: near-uniform
	extractor := NewExtractor(DefaultRadius)
	out := extractor.Extract(img)
	if countNonZero(out) != 0 {
		t.Errorf("expected all-zero output for uniform input, got %d edge pixels", countNonZero(out))
	}
}

func TestExtractIdempotentSubset(t *testing.T) {
	img := syntheticSquare(96, 20)
	extractor := NewExtractor(DefaultRadius)

	first := extractor.Extract(img)

	second := extractor.Extract(first)

	for i := 0; i < first.Width*first.Height; i++ {
		if second.Pix[i*3] != 0 && first.Pix[i*3] == 0 {
			t.Fatalf("second pass introduced an edge pixel absent from the first pass at index %d", i)
		}
	}
}

func TestHigherRadiusWeaklyReducesEdges(t *testing.T) {
	img := syntheticSquare(128, 16)

	small := NewExtractor(1.0).Extract(img)
	large := NewExtractor(4.0).Extract(img)

	if countNonZero(large) > countNonZero(small) {
		t.Errorf("expected higher radius to weakly reduce edge count: radius=1 -> %d, radius=4 -> %d",
			countNonZero(small), countNonZero(large))
	}
}
