package pipeline

import (
	"sync"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
	"github.com/jbendig/sudoku-solver-ar/internal/vision/puzzlefinder"
)

// OverlayName identifies one debug overlay a host can toggle on its
// preview.
type OverlayName string

const (
	OverlayHough    OverlayName = "hough"
	OverlayLines    OverlayName = "lines"
	OverlayClusters OverlayName = "clusters"
)

// DebugState is a toggle-able set of named inspection views over the
// most recent frame's intermediate detection results.
type DebugState struct {
	mu      sync.RWMutex
	enabled map[OverlayName]bool

	peaks     []core.Line
	clusters  []puzzlefinder.Cluster
	chosenA   puzzlefinder.Cluster
	chosenB   puzzlefinder.Cluster
	hasChosen bool
}

// NewDebugState returns a DebugState with every overlay disabled.
func NewDebugState() *DebugState {
	return &DebugState{enabled: make(map[OverlayName]bool)}
}

// Toggle flips the enabled state of name, returning the new state.
func (d *DebugState) Toggle(name OverlayName) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled[name] = !d.enabled[name]
	return d.enabled[name]
}

// Enabled reports whether name is currently toggled on.
func (d *DebugState) Enabled(name OverlayName) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled[name]
}

// recordFrame stores the per-frame intermediate results the overlays
// read, regardless of which overlays are currently enabled — toggling
// only changes what the host draws, not what the pipeline computes.
func (d *DebugState) recordFrame(peaks []core.Line, clusters []puzzlefinder.Cluster, chosenA, chosenB puzzlefinder.Cluster, hasChosen bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peaks = peaks
	d.clusters = clusters
	d.chosenA = chosenA
	d.chosenB = chosenB
	d.hasChosen = hasChosen
}

// Peaks returns the Hough peaks found in the most recent frame.
func (d *DebugState) Peaks() []core.Line {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.peaks
}

// Clusters returns the orientation clusters found in the most recent
// frame.
func (d *DebugState) Clusters() []puzzlefinder.Cluster {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.clusters
}

// ChosenClusters returns the perpendicular cluster pair the puzzle
// finder selected in the most recent frame, if any.
func (d *DebugState) ChosenClusters() (a, b puzzlefinder.Cluster, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.chosenA, d.chosenB, d.hasChosen
}
