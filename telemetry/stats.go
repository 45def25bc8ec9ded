package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated controller statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Ticks in the window where the actor was registered
	ActiveTicks int `csv:"active_ticks"`
	// Ticks with a non-zero movement direction
	InputTicks int `csv:"input_ticks"`

	// Jumping
	JumpProbes    int     `csv:"jump_probes"`
	Jumps         int     `csv:"jumps"`
	GroundedRatio float64 `csv:"grounded_ratio"` // Jumps / JumpProbes

	// Horizontal speed distribution over active ticks
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Vertical extent of the body center
	MinHeight float64 `csv:"min_height"`
	MaxHeight float64 `csv:"max_height"`

	// Horizontal distance covered in the window
	Distance float64 `csv:"distance"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active_ticks", s.ActiveTicks),
		slog.Int("input_ticks", s.InputTicks),
		slog.Int("jump_probes", s.JumpProbes),
		slog.Int("jumps", s.Jumps),
		slog.Float64("grounded_ratio", s.GroundedRatio),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("min_height", s.MinHeight),
		slog.Float64("max_height", s.MaxHeight),
		slog.Float64("distance", s.Distance),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
