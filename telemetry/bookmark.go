package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkStuck      BookmarkType = "stuck"
	BookmarkJumpDenied BookmarkType = "jump_denied"
	BookmarkFall       BookmarkType = "fall"
	BookmarkSpeedSpike BookmarkType = "speed_spike"
	BookmarkSteadyWalk BookmarkType = "steady_walk"
)

// Detector thresholds.
const (
	stuckInputRatio   = 0.8  // input held for at least this share of active ticks
	stuckMaxDistance  = 0.25 // ...while covering less than this (world units)
	jumpDeniedProbes  = 10   // probed ticks without a single jump
	fallDrop          = 5.0  // min height dropped this far below the recent floor
	speedSpikeFactor  = 2.0  // p90 speed vs rolling mean speed
	speedSpikeMin     = 1.0  // ignore spikes below this speed
	steadyWindows     = 5    // consecutive low-variance walking windows
	steadyMaxVariance = 0.01 // squared coefficient of variation of mean speed
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int64        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable controller behavior across stats windows.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentFloor        float64 // lowest min height seen in recent history
	hasFloor           bool
	steadyWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if stats.ActiveTicks > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkStuck,
			bd.checkJumpDenied,
			bd.checkFall,
			bd.checkSpeedSpike,
			bd.checkSteadyWalk,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)

	if stats.ActiveTicks > 0 && (!bd.hasFloor || stats.MinHeight < bd.recentFloor) {
		bd.recentFloor = stats.MinHeight
		bd.hasFloor = true
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkStuck fires when input is held most of the window but the actor
// barely moves, typically walking into a wall.
func (bd *BookmarkDetector) checkStuck(stats WindowStats) *Bookmark {
	ratio := float64(stats.InputTicks) / float64(stats.ActiveTicks)
	if ratio < stuckInputRatio || stats.Distance >= stuckMaxDistance {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStuck,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Input held %.0f%% of the window but moved %.2f", ratio*100, stats.Distance),
	}
}

// checkJumpDenied fires when jump was held for many ticks without the
// probe ever finding ground.
func (bd *BookmarkDetector) checkJumpDenied(stats WindowStats) *Bookmark {
	if stats.JumpProbes < jumpDeniedProbes || stats.Jumps > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkJumpDenied,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Jump held for %d ticks without ground contact", stats.JumpProbes),
	}
}

// checkFall fires when the actor drops well below the lowest height seen
// so far, typically falling off the map.
func (bd *BookmarkDetector) checkFall(stats WindowStats) *Bookmark {
	if !bd.hasFloor {
		return nil
	}
	drop := bd.recentFloor - stats.MinHeight
	if drop < fallDrop {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFall,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Dropped %.1f below the previous floor %.2f", drop, bd.recentFloor),
	}
}

// checkSpeedSpike fires when the p90 speed far exceeds the rolling mean,
// for example after a shove or a moving platform launch.
func (bd *BookmarkDetector) checkSpeedSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var sum float64
	var n int
	for _, h := range history {
		if h.ActiveTicks > 0 {
			sum += h.SpeedMean
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	if avg == 0 || stats.SpeedP90 < speedSpikeMin || stats.SpeedP90 <= avg*speedSpikeFactor {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSpeedSpike,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Speed p90 %.2f is %.1fx average (%.2f)", stats.SpeedP90, stats.SpeedP90/avg, avg),
	}
}

// checkSteadyWalk fires once after several consecutive windows of
// continuous input at a near-constant mean speed.
func (bd *BookmarkDetector) checkSteadyWalk(stats WindowStats) *Bookmark {
	if stats.InputTicks < stats.ActiveTicks || stats.SpeedMean == 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < steadyWindows-1 {
		return nil
	}

	recent := append([]float64{stats.SpeedMean}, bd.lastSpeeds(steadyWindows-1)...)
	var mean float64
	for _, v := range recent {
		mean += v
	}
	mean /= float64(len(recent))

	var variance float64
	for _, v := range recent {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(recent))

	if mean > 0 && variance/(mean*mean) < steadyMaxVariance {
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == steadyWindows { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkSteadyWalk,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady walk at %.2f over %d windows", mean, steadyWindows),
		}
	}
	return nil
}

// lastSpeeds returns the mean speeds of the n most recently added windows.
func (bd *BookmarkDetector) lastSpeeds(n int) []float64 {
	out := make([]float64, 0, n)
	idx := bd.historyIdx
	count := len(bd.getHistory())
	for i := 0; i < n && i < count; i++ {
		idx = (idx - 1 + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx].SpeedMean)
	}
	return out
}
