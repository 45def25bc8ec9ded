package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/controller"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if math.Abs(p10-0.19) > 0.001 || math.Abs(p50-0.55) > 0.001 || math.Abs(p90-0.91) > 0.001 {
		t.Errorf("percentiles = (%v, %v, %v), want (0.19, 0.55, 0.91)", p10, p50, p90)
	}
	if values[0] != 1.0 {
		t.Error("input slice should not be sorted in place")
	}
}

func TestCollectorWindow(t *testing.T) {
	dt := 0.1
	c := NewCollector(1, dt)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("window ticks = %d, want 10", c.WindowDurationTicks())
	}

	for tick := int64(1); tick <= 10; tick++ {
		r := controller.Report{Active: true, Direction: r3.Vec{X: 1}, Velocity: r3.Vec{X: 3, Z: 4}}
		if tick == 5 {
			r.Probed, r.Grounded, r.Impulse = true, true, 6
		}
		if tick == 6 {
			r.Probed = true
		}
		pos := r3.Vec{X: float64(tick), Y: 1}
		if tick == 6 {
			pos.Y = 1.5
		}
		c.Record(NewTickRecord(tick, dt, r, pos, r.Velocity))
	}
	c.Record(NewTickRecord(11, dt, controller.Report{}, r3.Vec{}, r3.Vec{}))

	if !c.ShouldFlush(10) {
		t.Fatal("expected window to be complete at tick 10")
	}
	s := c.Flush(10)

	if s.ActiveTicks != 10 || s.InputTicks != 10 {
		t.Errorf("active/input ticks = %d/%d, want 10/10", s.ActiveTicks, s.InputTicks)
	}
	if s.JumpProbes != 2 || s.Jumps != 1 || s.GroundedRatio != 0.5 {
		t.Errorf("jumps = %d/%d ratio %v, want 1/2 ratio 0.5", s.Jumps, s.JumpProbes, s.GroundedRatio)
	}
	if math.Abs(s.SpeedMean-5) > 1e-9 {
		t.Errorf("speed mean = %v, want 5", s.SpeedMean)
	}
	if s.MinHeight != 1 || s.MaxHeight != 1.5 {
		t.Errorf("height range = [%v, %v], want [1, 1.5]", s.MinHeight, s.MaxHeight)
	}
	if math.Abs(s.Distance-9) > 1e-9 {
		t.Errorf("distance = %v, want 9", s.Distance)
	}
	if math.Abs(s.SimTimeSec-1) > 1e-9 {
		t.Errorf("sim time = %v, want 1", s.SimTimeSec)
	}

	next := c.Flush(20)
	if next.ActiveTicks != 0 || next.WindowStartTick != 10 {
		t.Errorf("expected reset window starting at 10, got %+v", next)
	}
}
