// Package render provides the gocv-backed implementation of
// collab.Renderer: perspective extraction of the puzzle tile from a
// camera frame, glyph overlay for the solved digits, and synthetic
// noisy digit tiles for classifier training.
package render

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// GoCVRenderer implements collab.Renderer using OpenCV's perspective
// warp and text-drawing primitives. It holds no frame state between
// calls — every method receives what it needs as an argument, per the
// collaborator-interface design that keeps core packages free of any
// vision-library import.
type GoCVRenderer struct {
	logger *logrus.Logger
}

// NewGoCVRenderer builds a renderer that logs algorithm steps to logger.
func NewGoCVRenderer(logger *logrus.Logger) *GoCVRenderer {
	return &GoCVRenderer{logger: logger}
}

// ExtractImage warps the quadrilateral region of src bounded by corners
// into a dstW x dstH square image, undoing the camera's perspective
// distortion on the puzzle grid.
func (r *GoCVRenderer) ExtractImage(src *core.Image, corners core.Quadrilateral, dstW, dstH int) *core.Image {
	r.logger.WithFields(logrus.Fields{"dstW": dstW, "dstH": dstH}).Debug("extracting puzzle region")

	srcMat, err := imageToMat(src)
	if err != nil {
		r.logger.WithError(err).Error("ExtractImage: failed to convert source image")
		return core.NewImage(dstW, dstH)
	}
	defer srcMat.Close()

	srcPoints := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: float32(corners[0].X), Y: float32(corners[0].Y)},
		{X: float32(corners[1].X), Y: float32(corners[1].Y)},
		{X: float32(corners[2].X), Y: float32(corners[2].Y)},
		{X: float32(corners[3].X), Y: float32(corners[3].Y)},
	})
	defer srcPoints.Close()

	dstPoints := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: 0, Y: 0},
		{X: float32(dstW), Y: 0},
		{X: float32(dstW), Y: float32(dstH)},
		{X: 0, Y: float32(dstH)},
	})
	defer dstPoints.Close()

	transform := gocv.GetPerspectiveTransform(srcPoints, dstPoints)
	defer transform.Close()

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpPerspective(srcMat, &warped, transform, image.Pt(dstW, dstH))

	out, err := matToImage(warped)
	if err != nil {
		r.logger.WithError(err).Error("ExtractImage: failed to convert warped result")
		return core.NewImage(dstW, dstH)
	}
	return out
}

// RenderPuzzleGlyphs draws the solved digit vector onto a blank
// BoardSize x BoardSize-cell canvas, one character centered per cell,
// for overlay onto the live camera frame.
func (r *GoCVRenderer) RenderPuzzleGlyphs(digits core.DigitVector) *core.Image {
	const cellSize = 32
	const canvasSize = cellSize * core.BoardSize

	canvas := gocv.NewMatWithSize(canvasSize, canvasSize, gocv.MatTypeCV8UC3)
	defer canvas.Close()
	canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))

	for row := 0; row < core.BoardSize; row++ {
		for col := 0; col < core.BoardSize; col++ {
			digit := digits[row*core.BoardSize+col]
			if digit == 0 {
				continue
			}
			origin := image.Pt(col*cellSize+cellSize/4, row*cellSize+cellSize*3/4)
			gocv.PutText(&canvas, digitGlyph(digit), origin, gocv.FontHersheySimplex, 1.0,
				color.RGBA{R: 0, G: 255, B: 0, A: 255}, 2)
		}
	}

	out, err := matToImage(canvas)
	if err != nil {
		r.logger.WithError(err).Error("RenderPuzzleGlyphs: failed to convert canvas")
		return core.NewImage(canvasSize, canvasSize)
	}
	return out
}

// RenderNoisyTrainingTile draws digit centered in a size x size tile
// with seed-derived jitter (offset, font scale, stroke thickness), used
// to synthesize training data that approximates a printed puzzle's
// digit variability.
func (r *GoCVRenderer) RenderNoisyTrainingTile(digit byte, size int, seed uint64) *core.Image {
	rng := rand.New(rand.NewSource(int64(seed)))

	canvas := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)
	defer canvas.Close()
	canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))

	if digit != 0 {
		jitterX := rng.Intn(3) - 1
		jitterY := rng.Intn(3) - 1
		thickness := 1 + rng.Intn(2)
		scale := 0.8 + rng.Float64()*0.4

		origin := image.Pt(size/4+jitterX, size*3/4+jitterY)
		gocv.PutText(&canvas, digitGlyph(digit), origin, gocv.FontHersheySimplex, scale,
			color.RGBA{R: 255, G: 255, B: 255, A: 255}, thickness)
	}

	noisy := gocv.NewMat()
	defer noisy.Close()
	gocv.Randn(&noisy, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(12, 12, 12, 0))
	gocv.Add(canvas, noisy, &canvas)

	out, err := matToImage(canvas)
	if err != nil {
		r.logger.WithError(err).Error("RenderNoisyTrainingTile: failed to convert tile")
		return core.NewImage(size, size)
	}
	return out
}

func digitGlyph(digit byte) string {
	return string(rune('0' + digit))
}

// imageToMat copies a core.Image's interleaved RGB buffer into a gocv
// Mat the caller owns and must Close.
func imageToMat(img *core.Image) (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return gocv.Mat{}, err
	}
	return mat, nil
}

// matToImage copies a gocv Mat's pixel data into a new core.Image,
// converting to 3-channel BGR first if necessary.
func matToImage(mat gocv.Mat) (*core.Image, error) {
	converted := mat
	if mat.Channels() != 3 {
		converted = gocv.NewMat()
		defer converted.Close()
		gocv.CvtColor(mat, &converted, gocv.ColorGrayToBGR)
	}

	out := core.NewImage(converted.Cols(), converted.Rows())
	copy(out.Pix, converted.ToBytes())
	return out, nil
}
