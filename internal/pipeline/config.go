// Package pipeline orchestrates one frame through edge detection, Hough
// voting, puzzle-finding, classification, and solving, exposing debug
// overlays and health metrics alongside the composited result.
package pipeline

import (
	"fmt"

	"github.com/jbendig/sudoku-solver-ar/internal/vision/edge"
	"github.com/jbendig/sudoku-solver-ar/internal/vision/puzzlefinder"
)

// Config bundles the pipeline's tunable parameters. The pipeline has a
// fixed processing order, so a typed struct with a Validate method is
// enough; there is no pluggable algorithm registry to back.
type Config struct {
	EdgeRadius          float64
	HoughAngleBins      int
	HoughRhoBins        int
	ClusterAngularTol   float64
	ClusterSpacingTol   float64
	ClassifierThreshold float64
}

// DefaultConfig returns the pipeline's default parameter set.
func DefaultConfig() Config {
	return Config{
		EdgeRadius:          edge.DefaultRadius,
		HoughAngleBins:      0, // 0 selects hough.Accumulator's own default (360)
		HoughRhoBins:        0,
		ClusterAngularTol:   puzzlefinder.AngularTolerance,
		ClusterSpacingTol:   puzzlefinder.SpacingTolerance,
		ClassifierThreshold: 2.0,
	}
}

// Validate rejects parameter combinations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.EdgeRadius <= 0 {
		return fmt.Errorf("edge radius must be positive, got %v", c.EdgeRadius)
	}
	if c.ClusterAngularTol <= 0 || c.ClusterSpacingTol <= 0 {
		return fmt.Errorf("cluster tolerances must be positive, got angular=%v spacing=%v",
			c.ClusterAngularTol, c.ClusterSpacingTol)
	}
	if c.HoughAngleBins < 0 || c.HoughRhoBins < 0 {
		return fmt.Errorf("hough bin counts must not be negative, got angle=%d rho=%d",
			c.HoughAngleBins, c.HoughRhoBins)
	}
	return nil
}
