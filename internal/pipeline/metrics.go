package pipeline

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// FrameMetrics captures one frame's pipeline-health figures: detection
// and solving signals rather than image-quality scores.
type FrameMetrics struct {
	EdgePixelRatio      float64 // fraction of pixels the edge extractor marked as edges
	HoughPeakCount      int     // number of lines the peak finder returned
	GridFound           bool    // whether the puzzle finder located a quadrilateral
	ClassifierMinMargin float64 // smallest (top1-top2) confidence margin across the 81 cells
	SolverSearchDepth   int     // recursion depth the backtracking solver reached
	SolverCacheHit      bool
}

// Evaluator accumulates and logs FrameMetrics, one per processed frame.
type Evaluator struct {
	mu     sync.Mutex
	logger *logrus.Logger
	latest FrameMetrics
	frames int
}

// NewEvaluator builds an Evaluator that logs to logger.
func NewEvaluator(logger *logrus.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Record stores m as the latest frame's metrics and logs it at Info level.
func (e *Evaluator) Record(m FrameMetrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest = m
	e.frames++

	e.logger.WithFields(logrus.Fields{
		"frame":               e.frames,
		"edge_pixel_ratio":    m.EdgePixelRatio,
		"hough_peak_count":    m.HoughPeakCount,
		"grid_found":          m.GridFound,
		"classifier_margin":   m.ClassifierMinMargin,
		"solver_search_depth": m.SolverSearchDepth,
		"solver_cache_hit":    m.SolverCacheHit,
	}).Info("frame processed")
}

// Latest returns the most recently recorded FrameMetrics.
func (e *Evaluator) Latest() FrameMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}
