package render

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// GoCVCamera implements collab.Camera over a local video device using
// gocv's VideoCapture, following the same IMRead/Empty()-guarded Mat
// handling internal/io.FrameLoader uses for still images.
type GoCVCamera struct {
	logger  *logrus.Logger
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// OpenCamera opens device index deviceID (0 is typically the default
// webcam). The caller must Close the returned camera when done.
func OpenCamera(deviceID int, logger *logrus.Logger) (*GoCVCamera, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open video capture device %d: %w", deviceID, err)
	}

	logger.WithField("device", deviceID).Info("camera opened")
	return &GoCVCamera{
		logger:  logger,
		capture: capture,
		frame:   gocv.NewMat(),
	}, nil
}

// Close releases the underlying video device and scratch Mat.
func (c *GoCVCamera) Close() error {
	c.frame.Close()
	return c.capture.Close()
}

// CaptureFrameRGB reads the next frame into dst as an RGB buffer.
// Returns false if the device yielded no frame (disconnected, end of
// stream for a file-backed capture).
func (c *GoCVCamera) CaptureFrameRGB(dst *core.Image) bool {
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		c.logger.Warn("camera read returned no frame")
		return false
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(c.frame, &rgb, gocv.ColorBGRToRGB)

	copyMatInto(dst, rgb)
	return true
}

// CaptureFrameGreyscale reads the next frame into dst converted to
// single-channel-replicated-to-3 greyscale.
func (c *GoCVCamera) CaptureFrameGreyscale(dst *core.Image) bool {
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		c.logger.Warn("camera read returned no frame")
		return false
	}

	grey := gocv.NewMat()
	defer grey.Close()
	gocv.CvtColor(c.frame, &grey, gocv.ColorBGRToGray)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(grey, &rgb, gocv.ColorGrayToBGR)

	copyMatInto(dst, rgb)
	return true
}

func copyMatInto(dst *core.Image, mat gocv.Mat) {
	w, h := mat.Cols(), mat.Rows()
	if dst.Width != w || dst.Height != h {
		*dst = *core.NewImage(w, h)
	}
	copy(dst.Pix, mat.ToBytes())
}
