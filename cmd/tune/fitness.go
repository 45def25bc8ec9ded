package main

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/movement"
)

// Response thresholds as fractions of full speed.
const (
	riseFraction = 0.9
	fallFraction = 0.1
)

// Response is how quickly a model reaches and leaves full speed.
type Response struct {
	Rise float64 // seconds from rest until speed reaches riseFraction of target
	Fall float64 // seconds from full speed until speed drops to fallFraction
}

// MeasureResponse steps m at dt from rest with input held, then from full
// speed with no input. Crossing times are interpolated between ticks so the
// result varies smoothly with the model's rates. A threshold not crossed
// within maxTicks reports maxTicks*dt.
func MeasureResponse(m movement.Model, speed, dt float64, maxTicks int) Response {
	forward := r3.Vec{X: 1}
	return Response{
		Rise: crossing(m, r3.Vec{}, forward, speed, dt, maxTicks, riseFraction*speed, true),
		Fall: crossing(m, r3.Vec{X: speed}, r3.Vec{}, speed, dt, maxTicks, fallFraction*speed, false),
	}
}

func crossing(m movement.Model, v, dir r3.Vec, speed, dt float64, maxTicks int, threshold float64, rising bool) float64 {
	prev := v.X
	for i := 1; i <= maxTicks; i++ {
		v = m.Apply(v, dir, speed, dt)
		cur := v.X
		crossed := (rising && cur >= threshold) || (!rising && cur <= threshold)
		if crossed {
			frac := 1.0
			if cur != prev {
				frac = (threshold - prev) / (cur - prev)
			}
			return (float64(i-1) + frac) * dt
		}
		prev = cur
	}
	return float64(maxTicks) * dt
}

// Evaluator scores parameter vectors against target response times.
type Evaluator struct {
	params   *ParamVector
	speed    float64
	dt       float64
	maxTicks int
	target   Response

	last Response
}

// NewEvaluator creates an evaluator for a character of the given speed.
func NewEvaluator(params *ParamVector, target Response, speed, dt float64, maxTicks int) *Evaluator {
	return &Evaluator{params: params, speed: speed, dt: dt, maxTicks: maxTicks, target: target}
}

// Evaluate returns the loss for raw (denormalized) parameter values: the
// sum of squared relative errors of rise and fall time.
func (e *Evaluator) Evaluate(raw []float64) float64 {
	x := e.params.Clamp(raw)
	m := movement.Inertial{Acceleration: x[0], Deceleration: x[1]}
	r := MeasureResponse(m, e.speed, e.dt, e.maxTicks)
	e.last = r

	loss := relErr(r.Rise, e.target.Rise) + relErr(r.Fall, e.target.Fall)
	// Out-of-bounds points are penalized so the simplex walks back inside.
	for i, v := range raw {
		if d := v - x[i]; d != 0 {
			loss += d * d
		}
	}
	return loss
}

// Last returns the response measured by the most recent Evaluate call.
func (e *Evaluator) Last() Response {
	return e.last
}

func relErr(got, want float64) float64 {
	if want == 0 {
		return got * got
	}
	d := (got - want) / want
	return d * d
}
