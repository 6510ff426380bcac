// Package solver implements the pure backtracking Sudoku solver and the
// background-cached wrapper used to keep the AR overlay responsive.
package solver

import "github.com/jbendig/sudoku-solver-ar/internal/core"

// Solve runs a recursive depth-first search over the board in g,
// mutating it in place. It returns false (and restores g to its input
// state) if no solution exists. The pure solver never raises an error —
// failure is reported only through the boolean return.
func Solve(g *core.Game) bool {
	row, col, ok := g.NextEmpty()
	if !ok {
		return true
	}

	candidates := g.Candidates(row, col)
	solved := false
	candidates.Members(func(digit byte) {
		if solved {
			return
		}
		_ = g.Set(row, col, digit)
		if Solve(g) {
			solved = true
			return
		}
		_ = g.Set(row, col, 0)
	})
	return solved
}

// SolveWithDepth behaves like Solve but also reports the maximum
// recursion depth reached, exposed to callers as a pipeline health
// metric (search depth tends to spike on near-ambiguous puzzles).
func SolveWithDepth(g *core.Game) (bool, int) {
	solved, depth := solveDepth(g, 0)
	return solved, depth
}

func solveDepth(g *core.Game, depth int) (bool, int) {
	row, col, ok := g.NextEmpty()
	if !ok {
		return true, depth
	}

	candidates := g.Candidates(row, col)
	solved := false
	maxDepth := depth
	candidates.Members(func(digit byte) {
		if solved {
			return
		}
		_ = g.Set(row, col, digit)
		childSolved, childDepth := solveDepth(g, depth+1)
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
		if childSolved {
			solved = true
			return
		}
		_ = g.Set(row, col, 0)
	})
	return solved, maxDepth
}
