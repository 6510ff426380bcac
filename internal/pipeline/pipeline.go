package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/jbendig/sudoku-solver-ar/internal/classifier"
	"github.com/jbendig/sudoku-solver-ar/internal/collab"
	"github.com/jbendig/sudoku-solver-ar/internal/core"
	"github.com/jbendig/sudoku-solver-ar/internal/solver"
	"github.com/jbendig/sudoku-solver-ar/internal/vision/edge"
	"github.com/jbendig/sudoku-solver-ar/internal/vision/hough"
	"github.com/jbendig/sudoku-solver-ar/internal/vision/puzzlefinder"
)

// ExtractedTileSize is the side length, in pixels, of the square region
// the renderer warps the located grid into before per-cell
// classification.
const ExtractedTileSize = core.BoardSize * classifier.TileSize

// Pipeline threads one camera frame through edge detection, Hough
// voting, puzzle-finding, perspective extraction, per-cell
// classification, and cached solving. It owns no frame state between
// calls beyond its reusable scratch buffers (the edge extractor's) and
// the cache's own solved-puzzle memory.
type Pipeline struct {
	cfg Config

	extractor *edge.Extractor
	net       *classifier.Network
	renderer  collab.Renderer
	cache     *solver.CachedPuzzleSolver

	debug     *DebugState
	evaluator *Evaluator
	logger    *logrus.Logger
}

// New builds a Pipeline. net must already be trained (or loaded via
// classifier.LoadArtifact); renderer supplies the perspective-warp
// collaborator.
func New(cfg Config, net *classifier.Network, renderer collab.Renderer, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		extractor: edge.NewExtractor(cfg.EdgeRadius),
		net:       net,
		renderer:  renderer,
		cache:     solver.NewCachedPuzzleSolver(logger),
		debug:     NewDebugState(),
		evaluator: NewEvaluator(logger),
		logger:    logger,
	}
}

// Debug returns the pipeline's toggle-able overlay state.
func (p *Pipeline) Debug() *DebugState { return p.debug }

// Metrics returns the pipeline's health-metrics evaluator.
func (p *Pipeline) Metrics() *Evaluator { return p.evaluator }

// FrameResult is what one call to ProcessFrame produced.
type FrameResult struct {
	GridFound bool
	Corners   core.Quadrilateral
	Digits    core.DigitVector // OCR read, zero where a cell is blank/unread
	Solution  core.DigitVector
	Solved    bool
}

// ProcessFrame runs the full pipeline over one RGB frame. Every stage
// failure (no edges, no grid, too few clues) is swallowed:
// the caller gets FrameResult{} with GridFound/Solved false rather than
// an error — "no overlay this frame" is always a valid outcome.
func (p *Pipeline) ProcessFrame(frame *core.Image) FrameResult {
	grey := frame.ToGreyscale()
	edges := p.extractor.Extract(grey)

	acc := hough.NewAccumulator(frame.Width, frame.Height, p.cfg.HoughAngleBins, p.cfg.HoughRhoBins)
	acc.Vote(edges)
	peaks := hough.FindPeaks(acc)

	found := puzzlefinder.Find(frame.Width, frame.Height, peaks, p.cfg.ClusterAngularTol, p.cfg.ClusterSpacingTol)

	p.debug.recordFrame(peaks, found.AllClusters, found.ChosenA, found.ChosenB, found.Found)

	metrics := FrameMetrics{
		EdgePixelRatio: edgePixelRatio(edges),
		HoughPeakCount: len(peaks),
		GridFound:      found.Found,
	}

	if !found.Found {
		p.evaluator.Record(metrics)
		return FrameResult{}
	}

	tile := p.renderer.ExtractImage(frame, found.Corners, ExtractedTileSize, ExtractedTileSize)

	digits, minMargin := p.classifyGrid(tile)
	metrics.ClassifierMinMargin = minMargin

	solution, solved := p.cache.Solve(digits)
	metrics.SolverCacheHit = solved
	if solved {
		metrics.SolverSearchDepth = p.cache.LastSearchDepth(digits)
	}

	p.evaluator.Record(metrics)

	return FrameResult{
		GridFound: true,
		Corners:   found.Corners,
		Digits:    digits,
		Solution:  solution,
		Solved:    solved,
	}
}

// classifyGrid slices tile into the BoardSize x BoardSize cell grid,
// binarises and classifies each, and returns the resulting digit vector
// together with the smallest per-cell confidence margin observed.
func (p *Pipeline) classifyGrid(tile *core.Image) (core.DigitVector, float64) {
	var digits core.DigitVector
	minMargin := 1.0

	for row := 0; row < core.BoardSize; row++ {
		for col := 0; col < core.BoardSize; col++ {
			cell := cropCell(tile, row, col, classifier.TileSize)
			binarised := classifier.BinaryThreshold(cell, p.cfg.ClassifierThreshold)
			input := tileToInput(binarised)

			label, margin := p.net.RunWithMargin(input)
			digits[row*core.BoardSize+col] = label
			if margin < minMargin {
				minMargin = margin
			}
		}
	}

	return digits, minMargin
}

func cropCell(tile *core.Image, row, col, size int) *core.Image {
	out := core.NewImage(size, size)
	originX, originY := col*size, row*size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			out.Set(x, y, tile.At(originX+x, originY+y))
		}
	}
	return out
}

func tileToInput(tile *core.Image) []float64 {
	n := tile.Width * tile.Height
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(tile.Pix[i*3]) / 255.0
	}
	return out
}

func edgePixelRatio(edges *core.Image) float64 {
	total := edges.Width * edges.Height
	if total == 0 {
		return 0
	}
	lit := 0
	for i := 0; i < total; i++ {
		if edges.At(i%edges.Width, i/edges.Width) != 0 {
			lit++
		}
	}
	return float64(lit) / float64(total)
}
