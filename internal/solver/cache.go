package solver

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jbendig/sudoku-solver-ar/internal/core"
)

// MinClues is the minimum number of non-zero digits a puzzle must carry
// before the cached solver will attempt it — puzzles with fewer clues
// explode the search.
const MinClues = 21

// NearMatchTolerance: a query that differs from the most-recently-used
// key in fewer than this many digits gets that entry's solution instead
// of "not ready" — masks transient OCR misreads (step 6).
const NearMatchTolerance = 4

// RecentlyUsedBound is the maximum length of the recently-used deque.
const RecentlyUsedBound = 10

type cacheEntry struct {
	solution         core.DigitVector
	recentlyUsedHits int
	searchDepth      int
}

// inFlightTask tracks a background solve in progress.
type inFlightTask struct {
	digits core.DigitVector
	done   chan bool // buffered(1): true if the solve succeeded
	game   *core.Game
	depth  int // filled in once done fires
}

// CachedPuzzleSolver maintains a cache from input digit vector to
// solution, a bounded recently-used history, and at most one in-flight
// background solve. It never blocks the caller.
type CachedPuzzleSolver struct {
	mu        sync.Mutex
	entries   map[core.DigitVector]*cacheEntry
	recentKey []core.DigitVector // FIFO of up to RecentlyUsedBound keys

	inFlight *inFlightTask

	logger *logrus.Logger
}

// NewCachedPuzzleSolver constructs an empty cache.
func NewCachedPuzzleSolver(logger *logrus.Logger) *CachedPuzzleSolver {
	return &CachedPuzzleSolver{
		entries: make(map[core.DigitVector]*cacheEntry),
		logger:  logger,
	}
}

// Solve checks for a cached solution, then a near-match against the
// most recently used entry, then launches a background solve if
// neither applies. It never blocks.
func (c *CachedPuzzleSolver) Solve(digits core.DigitVector) (core.DigitVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pollInFlightLocked()

	nonZero := 0
	for _, d := range digits {
		if d > 9 {
			return core.DigitVector{}, false
		}
		if d != 0 {
			nonZero++
		}
	}

	game := core.NewGame(digits)
	if !core.Solvable(game) {
		return core.DigitVector{}, false
	}

	if nonZero < MinClues {
		return core.DigitVector{}, false
	}

	if entry, ok := c.entries[digits]; ok {
		c.recordHitLocked(digits, entry)
		return entry.solution, true
	}

	if mostLikely, key, ok := c.mostRecentlyUsedLocked(); ok {
		if differingDigits(key, digits) < NearMatchTolerance {
			return mostLikely.solution, true
		}
	}

	if c.inFlight == nil {
		c.launchInFlightLocked(digits, game)
	}

	return core.DigitVector{}, false
}

// GetMostLikelySolution returns the solution with the highest
// recently-used counter, or ok=false if the cache is empty.
func (c *CachedPuzzleSolver) GetMostLikelySolution() (core.DigitVector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, _, ok := c.mostRecentlyUsedLocked()
	if !ok {
		return core.DigitVector{}, false
	}
	return entry.solution, true
}

// LastSearchDepth returns the backtracking search depth recorded for a
// given solved puzzle's cache entry, or 0 if digits has no entry.
// Exposed for pipeline health metrics.
func (c *CachedPuzzleSolver) LastSearchDepth(digits core.DigitVector) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[digits]
	if !ok {
		return 0
	}
	return entry.searchDepth
}

func (c *CachedPuzzleSolver) pollInFlightLocked() {
	if c.inFlight == nil {
		return
	}

	select {
	case succeeded := <-c.inFlight.done:
		if succeeded {
			solved := c.inFlight.game.Digits()
			c.insertLocked(c.inFlight.digits, solved, c.inFlight.depth)
			c.logger.WithField("clues", nonZeroCount(c.inFlight.digits)).Debug("background solve completed")
		} else {
			c.logger.Debug("background solve failed to find a solution")
		}
		c.inFlight = nil
	default:
		// Not ready yet; leave the task running.
	}
}

func (c *CachedPuzzleSolver) launchInFlightLocked(digits core.DigitVector, game *core.Game) {
	snapshot := game.Clone()
	task := &inFlightTask{
		digits: digits,
		done:   make(chan bool, 1),
		game:   snapshot,
	}
	c.inFlight = task

	go func() {
		solved, depth := SolveWithDepth(snapshot)
		task.depth = depth
		task.done <- solved
	}()
}

func (c *CachedPuzzleSolver) insertLocked(digits, solution core.DigitVector, depth int) {
	entry := &cacheEntry{solution: solution, searchDepth: depth}
	c.entries[digits] = entry
	c.pushRecentLocked(digits)
}

func (c *CachedPuzzleSolver) recordHitLocked(digits core.DigitVector, entry *cacheEntry) {
	entry.recentlyUsedHits++
	c.pushRecentLocked(digits)
}

func (c *CachedPuzzleSolver) pushRecentLocked(digits core.DigitVector) {
	c.recentKey = append(c.recentKey, digits)
	if len(c.recentKey) > RecentlyUsedBound {
		c.recentKey = c.recentKey[len(c.recentKey)-RecentlyUsedBound:]
	}
}

func (c *CachedPuzzleSolver) mostRecentlyUsedLocked() (*cacheEntry, core.DigitVector, bool) {
	var bestKey core.DigitVector
	var best *cacheEntry
	for _, key := range c.recentKey {
		entry, ok := c.entries[key]
		if !ok {
			continue
		}
		if best == nil || entry.recentlyUsedHits > best.recentlyUsedHits {
			best = entry
			bestKey = key
		}
	}
	if best == nil {
		return nil, core.DigitVector{}, false
	}
	return best, bestKey, true
}

func differingDigits(a, b core.DigitVector) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}

func nonZeroCount(d core.DigitVector) int {
	n := 0
	for _, v := range d {
		if v != 0 {
			n++
		}
	}
	return n
}
