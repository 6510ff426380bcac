// Command sudokuar is a typical host that embeds the AR Sudoku core: it
// owns the camera, the on-screen window, and the keyboard bindings the
// core itself knows nothing about.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"github.com/sirupsen/logrus"

	"github.com/jbendig/sudoku-solver-ar/internal/classifier"
	"github.com/jbendig/sudoku-solver-ar/internal/core"
	frameio "github.com/jbendig/sudoku-solver-ar/internal/io"
	"github.com/jbendig/sudoku-solver-ar/internal/pipeline"
	"github.com/jbendig/sudoku-solver-ar/internal/render"
)

const (
	appID          = "com.jbendig.sudoku-solver-ar"
	cameraDeviceID = 0
	frameInterval  = 33 * time.Millisecond
)

func main() {
	debugMode := flag.Bool("debug", false, "enable verbose logging")
	snapshotPath := flag.String("snapshot", "", "save the first successfully-captured frame to this path and continue")
	flag.Parse()

	logger := newLogger(*debugMode)

	camera, err := render.OpenCamera(cameraDeviceID, logger)
	if err != nil {
		logger.WithError(err).Error("failed to open camera")
		os.Exit(-1)
	}
	defer camera.Close()

	net, err := loadOrTrainClassifier(logger)
	if err != nil {
		logger.WithError(err).Error("failed to prepare classifier")
		os.Exit(-1)
	}

	renderer := render.NewGoCVRenderer(logger)
	pipe := pipeline.New(pipeline.DefaultConfig(), net, renderer, logger)

	myApp := app.NewWithID(appID)
	window := myApp.NewWindow("Sudoku Solver AR")
	window.Resize(fyne.NewSize(960, 720))

	preview := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	preview.FillMode = canvas.ImageFillContain
	window.SetContent(preview)

	bindKeys(window, pipe)

	stop := make(chan struct{})
	window.SetCloseIntercept(func() {
		close(stop)
		window.Close()
	})

	snapshotter := newSnapshotOnce(*snapshotPath, frameio.NewFrameLoader(logger), logger)
	go runCaptureLoop(camera, pipe, preview, snapshotter, logger, stop)

	window.ShowAndRun()
	os.Exit(0)
}

func newLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// bindKeys wires the informational key bindings: Esc closes, digit keys
// 1-3 toggle the Hough/lines/clusters debug overlays.
func bindKeys(window fyne.Window, pipe *pipeline.Pipeline) {
	overlaysByKey := map[fyne.KeyName]pipeline.OverlayName{
		fyne.Key1: pipeline.OverlayHough,
		fyne.Key2: pipeline.OverlayLines,
		fyne.Key3: pipeline.OverlayClusters,
	}

	window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			window.Close()
			return
		}
		if overlay, ok := overlaysByKey[ev.Name]; ok {
			pipe.Debug().Toggle(overlay)
		}
	})
}

// runCaptureLoop pulls frames from camera at a fixed interval, runs them
// through the pipeline, and refreshes preview with the composited
// result. A transient capture or detection failure never stops the
// loop — it simply redraws the bare frame.
func runCaptureLoop(camera *render.GoCVCamera, pipe *pipeline.Pipeline, preview *canvas.Image, snapshotter *snapshotOnce, logger *logrus.Logger, stop <-chan struct{}) {
	frame := core.NewImage(640, 480)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !camera.CaptureFrameRGB(frame) {
				continue
			}

			result := pipe.ProcessFrame(frame)
			if result.GridFound {
				logger.WithField("solved", result.Solved).Debug("frame processed")
			}

			snapshotter.maybeSave(frame)

			preview.Image = compositeFrame(frame, result)
			preview.Refresh()
		}
	}
}

// compositeFrame renders the raw frame plus, when a solution is ready, a
// marker at each detected grid corner. The solved digits themselves are
// not drawn.
func compositeFrame(frame *core.Image, result pipeline.FrameResult) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			i := (y*frame.Width + x) * 3
			out.Set(x, y, color.RGBA{R: frame.Pix[i], G: frame.Pix[i+1], B: frame.Pix[i+2], A: 255})
		}
	}

	if !result.Solved {
		return out
	}
	for i, corner := range result.Corners {
		drawMarker(out, int(corner.X), int(corner.Y), i)
	}
	return out
}

func drawMarker(img *image.RGBA, x, y, variant int) {
	const radius = 4
	markerColor := color.RGBA{R: 0, G: 255, B: 0, A: 255}
	if variant%2 == 1 {
		markerColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			px, py := x+dx, y+dy
			if px < 0 || py < 0 || px >= img.Bounds().Dx() || py >= img.Bounds().Dy() {
				continue
			}
			img.Set(px, py, markerColor)
		}
	}
}

// loadOrTrainClassifier loads a previously persisted classifier
// artifact, or trains a fresh one from synthetic data when none exists
// or the file is unreadable.
func loadOrTrainClassifier(logger *logrus.Logger) (*classifier.Network, error) {
	if net, err := tryLoadArtifact(logger); err == nil {
		return net, nil
	}

	logger.Info("no usable training artifact found, training a fresh classifier")
	return trainFreshClassifier(logger)
}

func tryLoadArtifact(logger *logrus.Logger) (*classifier.Network, error) {
	f, err := os.Open(classifier.ArtifactFilename)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	loaded, err := classifier.LoadArtifact(f)
	if err != nil {
		logger.WithError(err).Warn("training artifact is malformed, discarding")
		return nil, err
	}

	logger.WithField("samples", len(loaded.Samples)).Info("loaded classifier from artifact")
	return loaded.Net, nil
}

// snapshotOnce writes the first frame it sees to disk via a FrameLoader,
// then goes quiet — useful for capturing a fixture frame without
// leaving the camera loop running a file write every tick.
type snapshotOnce struct {
	path   string
	loader *frameio.FrameLoader
	logger *logrus.Logger
	done   bool
}

func newSnapshotOnce(path string, loader *frameio.FrameLoader, logger *logrus.Logger) *snapshotOnce {
	return &snapshotOnce{path: path, loader: loader, logger: logger}
}

func (s *snapshotOnce) maybeSave(frame *core.Image) {
	if s.path == "" || s.done {
		return
	}
	s.done = true
	if err := s.loader.SaveFrame(frame, s.path); err != nil {
		s.logger.WithError(err).Warn("failed to save snapshot frame")
		return
	}
	s.logger.WithField("path", s.path).Info("saved snapshot frame")
}

func trainFreshClassifier(logger *logrus.Logger) (*classifier.Network, error) {
	rng := classifier.NewSeededRNG(time.Now().UnixNano())
	renderer := render.NewGoCVRenderer(logger)

	samples := classifier.GenerateTrainingSamples(renderer, rng)
	net := classifier.NewNetwork(classifier.TileSize*classifier.TileSize, rng, true)

	checkpoint := func(n *classifier.Network, epoch int) error {
		f, err := os.Create(classifier.ArtifactFilename)
		if err != nil {
			return fmt.Errorf("create artifact: %w", err)
		}
		defer f.Close()

		choices := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		if err := classifier.SaveArtifact(f, samples, n, choices); err != nil {
			return fmt.Errorf("save artifact at epoch %d: %w", epoch, err)
		}
		logger.WithField("epoch", epoch).Debug("checkpointed classifier")
		return nil
	}

	if err := classifier.Train(net, samples, checkpoint, nil); err != nil {
		return nil, fmt.Errorf("train classifier: %w", err)
	}
	return net, nil
}
