// Package collab defines the external collaborator interfaces: camera
// capture and perspective-warp/glyph rendering. The core never holds
// these as ambient state — callers pass a Renderer explicitly into
// whichever operation needs one.
package collab

import "github.com/jbendig/sudoku-solver-ar/internal/core"

// Camera provides raw frame capture. The core consumes the resulting
// Image; device access (V4L2, Media Foundation, ...) is entirely the
// collaborator's concern.
type Camera interface {
	// CaptureFrameRGB fills dst with the latest RGB frame, resizing it if
	// necessary. Returns false on a transient capture failure.
	CaptureFrameRGB(dst *core.Image) bool

	// CaptureFrameGreyscale fills dst with the latest greyscale-as-RGB
	// frame. Returns false on a transient capture failure.
	CaptureFrameGreyscale(dst *core.Image) bool
}

// Renderer provides the perspective-warp sampler and glyph compositor
// the pipeline treats as black boxes.
type Renderer interface {
	// ExtractImage maps the four corners of src to the rectangle
	// [0,dstW) x [0,dstH) via a 3x3 homography and samples src into a
	// new dstW x dstH Image.
	ExtractImage(src *core.Image, corners core.Quadrilateral, dstW, dstH int) *core.Image

	// RenderPuzzleGlyphs produces a 288x288 RGB Image (32px cells over a
	// 9x9 board) of the given digits (0 = blank) for compositing over the
	// detected grid. Not yet wired into the host's composited preview —
	// cmd/sudokuar currently draws corner markers only.
	RenderPuzzleGlyphs(digits core.DigitVector) *core.Image

	// RenderNoisyTrainingTile produces a noisy rendering of a single
	// digit (0 = blank) at the given size, used by the classifier's
	// synthetic training-data generator. seed allows the
	// caller's deterministic PRNG to control the noise.
	RenderNoisyTrainingTile(digit byte, size int, seed uint64) *core.Image
}
