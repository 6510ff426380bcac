// Package io loads and saves camera frames as core.Image values, backed
// by OpenCV's image codecs. It exists for test fixtures and for saving a
// snapshot of the first captured frame (cmd/sudokuar's -snapshot flag);
// the live camera path uses internal/render's VideoCapture wrapper instead.
package io

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// FrameLoader reads and writes core.Image frames from/to disk.
type FrameLoader struct {
	logger *logrus.Logger
}

// NewFrameLoader constructs a FrameLoader.
func NewFrameLoader(logger *logrus.Logger) *FrameLoader {
	return &FrameLoader{logger: logger}
}

// LoadFrame reads an image file and returns it as an RGB core.Image.
func (l *FrameLoader) LoadFrame(filepath string) (*core.Image, error) {
	if !isSupportedImageFormat(filepath) {
		return nil, fmt.Errorf("unsupported image format: %s", filepath)
	}

	mat := gocv.IMRead(filepath, gocv.IMReadColor)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("cannot read image: %s", filepath)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRToRGB)

	img := core.NewImage(rgb.Cols(), rgb.Rows())
	copy(img.Pix, rgb.ToBytes())

	l.logger.WithFields(logrus.Fields{
		"filepath": filepath,
		"width":    img.Width,
		"height":   img.Height,
	}).Debug("loaded frame")

	return img, nil
}

// SaveFrame writes an RGB core.Image to filepath, inferring the codec
// from its extension.
func (l *FrameLoader) SaveFrame(img *core.Image, filepath string) error {
	if !isSupportedImageFormat(filepath) {
		return fmt.Errorf("unsupported image format: %s", filepath)
	}

	rgb, err := gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, img.Pix)
	if err != nil {
		return fmt.Errorf("build mat from frame: %w", err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	if ok := gocv.IMWrite(filepath, bgr); !ok {
		return fmt.Errorf("failed to write image: %s", filepath)
	}

	l.logger.WithField("filepath", filepath).Debug("saved frame")
	return nil
}

func isSupportedImageFormat(filepath string) bool {
	ext := strings.ToLower(fileExtension(filepath))
	for _, format := range supportedExtensions {
		if ext == format {
			return true
		}
	}
	return false
}

func fileExtension(filepath string) string {
	for i := len(filepath) - 1; i >= 0; i-- {
		if filepath[i] == '.' {
			return filepath[i:]
		}
		if filepath[i] == '/' || filepath[i] == '\\' {
			break
		}
	}
	return ""
}
