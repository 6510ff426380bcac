// Package puzzlefinder locates a Sudoku grid's four corners from Hough
// line hypotheses: cluster candidate lines by orientation,
// retain clusters that look like ten evenly-spaced grid lines, pick two
// perpendicular survivors, and intersect their outer boundary lines into
// the four corners of a Sudoku grid.
package puzzlefinder

import (
	"math"
	"sort"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// Tolerances, exposed as named constants Open Question (i).
const (
	// AngularTolerance (τ_θ) bounds how far a line's θ may sit from a
	// cluster's running mean before it is rejected from that cluster.
	AngularTolerance = 0.08
	// PerpendicularTolerance (τ_⊥) bounds how far two cluster means may
	// deviate from an exact π/2 separation.
	PerpendicularTolerance = 0.08
	// SpacingTolerance is the allowed deviation of consecutive-ρ
	// differences from their median, as a fraction of that median.
	SpacingTolerance = 0.20
	// GridLineCount is the number of evenly-spaced lines a genuine grid
	// boundary cluster must contain (9 cells -> 10 boundary lines).
	GridLineCount = 10
)

// Cluster is an ordered, θ-consistent group of lines sharing roughly the
// same orientation.
type Cluster struct {
	Lines []core.Line
	Mean  float64
}

// Result carries the corners (if found) plus every intermediate stage,
// exposed for visualization and testing.
type Result struct {
	Found         bool
	Corners       core.Quadrilateral
	AllLines      []core.Line
	AllClusters   []Cluster
	Surviving     []Cluster
	ChosenA       Cluster
	ChosenB       Cluster
	ChosenSubA    []core.Line // the ten-line boundary subsequence of ChosenA
	ChosenSubB    []core.Line
}

// Find runs the five-step pipeline of over candidate lines
// detected in a targetW x targetH image. angularTol and spacingTol
// override the package's AngularTolerance/SpacingTolerance defaults —
// pass those constants directly to keep the stock behavior.
func Find(targetW, targetH int, lines []core.Line, angularTol, spacingTol float64) Result {
	result := Result{AllLines: lines}

	clusters := clusterByOrientation(lines, angularTol)
	result.AllClusters = clusters

	var surviving []Cluster
	subsequences := make(map[int][]core.Line) // index into surviving -> chosen 10-line run
	for _, c := range clusters {
		if sub, ok := tenLineUniformSubsequence(c.Lines, spacingTol); ok {
			subsequences[len(surviving)] = sub
			surviving = append(surviving, c)
		}
	}
	result.Surviving = surviving

	bestA, bestB, bestSubA, bestSubB, found := choosePerpendicularPair(surviving, subsequences)
	if !found {
		return result
	}

	result.ChosenA = bestA
	result.ChosenB = bestB
	result.ChosenSubA = bestSubA
	result.ChosenSubB = bestSubB

	corners, ok := extractCorners(bestSubA, bestSubB)
	if !ok {
		return result
	}

	result.Found = true
	result.Corners = corners
	return result
}

// clusterByOrientation greedily assigns each line to the first cluster
// whose wrap-safe mean lies within tolerance, else starts a new cluster.
// Re-derives each cluster's mean via core.MeanTheta after every
// assignment so the result is stable under reordering up to cluster
// identity Step 2.
func clusterByOrientation(lines []core.Line, tolerance float64) []Cluster {
	var clusters []Cluster

	for _, l := range lines {
		bestIdx := -1
		bestDiff := math.Inf(1)
		for i, c := range clusters {
			diff := core.DifferenceTheta(c.Mean, l.Theta)
			if diff < tolerance && diff < bestDiff {
				bestIdx = i
				bestDiff = diff
			}
		}

		if bestIdx == -1 {
			clusters = append(clusters, Cluster{Lines: []core.Line{l}, Mean: l.Theta})
			continue
		}

		clusters[bestIdx].Lines = append(clusters[bestIdx].Lines, l)
		thetas := make([]float64, len(clusters[bestIdx].Lines))
		for i, cl := range clusters[bestIdx].Lines {
			thetas[i] = cl.Theta
		}
		clusters[bestIdx].Mean = core.MeanTheta(thetas)
	}

	return clusters
}

// tenLineUniformSubsequence looks for a contiguous run of exactly
// GridLineCount lines, sorted by ρ, whose consecutive-ρ differences all
// fall within SpacingTolerance of their median — Step 3.
func tenLineUniformSubsequence(lines []core.Line, tolerance float64) ([]core.Line, bool) {
	if len(lines) < GridLineCount {
		return nil, false
	}

	sorted := make([]core.Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rho < sorted[j].Rho })

	for start := 0; start+GridLineCount <= len(sorted); start++ {
		window := sorted[start : start+GridLineCount]
		if isUniformSpacing(window, tolerance) {
			return window, true
		}
	}
	return nil, false
}

func isUniformSpacing(window []core.Line, tolerance float64) bool {
	diffs := make([]float64, len(window)-1)
	for i := 1; i < len(window); i++ {
		diffs[i-1] = window[i].Rho - window[i-1].Rho
	}

	median := medianOf(diffs)
	if median <= 0 {
		return false
	}

	band := median * tolerance
	for _, d := range diffs {
		if math.Abs(d-median) > band {
			return false
		}
	}
	return true
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// choosePerpendicularPair finds two surviving clusters whose mean θ
// differ by π/2 within PerpendicularTolerance. When multiple pairs
// qualify, prefer the pair whose ten-line subsequences have the closest
// spacing ratio Step 4.
func choosePerpendicularPair(surviving []Cluster, subsequences map[int][]core.Line) (a, b Cluster, subA, subB []core.Line, found bool) {
	bestScore := math.Inf(1)

	for i := 0; i < len(surviving); i++ {
		for j := i + 1; j < len(surviving); j++ {
			diff := core.DifferenceTheta(surviving[i].Mean, surviving[j].Mean)
			if math.Abs(diff-math.Pi/2) > PerpendicularTolerance {
				continue
			}

			si, sj := subsequences[i], subsequences[j]
			ratio := spacingRatio(si, sj)
			if ratio < bestScore {
				bestScore = ratio
				a, b = surviving[i], surviving[j]
				subA, subB = si, sj
				found = true
			}
		}
	}

	return a, b, subA, subB, found
}

func spacingRatio(a, b []core.Line) float64 {
	spacingA := averageSpacing(a)
	spacingB := averageSpacing(b)
	if spacingA == 0 || spacingB == 0 {
		return math.Inf(1)
	}
	ratio := spacingA / spacingB
	if ratio < 1 {
		ratio = 1 / ratio
	}
	return ratio
}

func averageSpacing(lines []core.Line) float64 {
	if len(lines) < 2 {
		return 0
	}
	total := lines[len(lines)-1].Rho - lines[0].Rho
	return total / float64(len(lines)-1)
}

// extractCorners intersects the first/last lines of each ten-line
// subsequence (the outer grid boundaries) Step 5.
func extractCorners(subA, subB []core.Line) (core.Quadrilateral, bool) {
	boundaryA := []core.Line{subA[0], subA[len(subA)-1]}
	boundaryB := []core.Line{subB[0], subB[len(subB)-1]}

	var raw [4]core.Point
	n := 0
	for _, la := range boundaryA {
		for _, lb := range boundaryB {
			res := core.IntersectLines(la, lb)
			if res.Parallel {
				return core.Quadrilateral{}, false
			}
			raw[n] = res.Point
			n++
		}
	}

	return core.SortQuadrilateral(raw), true
}
