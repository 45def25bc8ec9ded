// Package camera provides the follow camera rig for a registered actor.
//
// The rig runs at render rate. It reads the actor's body transform and
// never writes simulation state; the only state it owns is the view
// facing and the smoothed eye height.
package camera

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/actor"
	"github.com/officeshinyujun/libet/config"
	"github.com/officeshinyujun/libet/input"
)

// Lookup resolves an actor id to its registry record.
type Lookup interface {
	Lookup(id string) (actor.Record, bool)
}

// Levels reports held controls. Only Crouch is read.
type Levels interface {
	Level() input.Level
}

// Options configures a Rig.
type Options struct {
	View             string  // config.ViewFirstPerson or config.ViewThirdPerson
	Crouch           bool    // crouch lowers the eye when asserted
	CrouchDepth      float64 // crouched eye offset as a fraction of standing
	EyeRatio         float64 // standing eye offset as a fraction of half height
	EyeSmoothing     float64 // eye offset blend rate (1/s)
	FollowRate       float64 // camera position blend rate (1/s)
	Distance         float64 // third-person orbit distance in actor heights
	Focus            float64 // third-person focus as a fraction of eye offset
	MouseSensitivity float64 // radians per pixel
	MaxPitch         float64 // radians
}

// DefaultOptions returns first-person defaults.
func DefaultOptions() Options {
	return Options{
		View:             config.ViewFirstPerson,
		Crouch:           true,
		CrouchDepth:      0.5,
		EyeRatio:         0.9,
		EyeSmoothing:     10,
		FollowRate:       30,
		Distance:         3,
		Focus:            0.8,
		MouseSensitivity: 0.003,
		MaxPitch:         1.55,
	}
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		View:             cfg.Controller.View,
		Crouch:           cfg.Controller.Crouch,
		CrouchDepth:      cfg.Controller.CrouchDepth,
		EyeRatio:         cfg.Camera.EyeRatio,
		EyeSmoothing:     cfg.Camera.EyeSmoothing,
		FollowRate:       cfg.Camera.FollowRate,
		Distance:         cfg.Camera.ThirdPersonDistance,
		Focus:            cfg.Camera.ThirdPersonFocus,
		MouseSensitivity: cfg.Controller.MouseSensitivity,
		MaxPitch:         cfg.Controller.MaxPitch,
	}
}

// Pose is where the camera sits and what it looks at.
type Pose struct {
	Position r3.Vec
	Target   r3.Vec
}

// Rig follows one actor.
type Rig struct {
	mu     sync.Mutex
	actors Lookup
	levels Levels
	id     string
	opts   Options

	yaw, pitch float64

	eyeOffset float64
	eyeValid  bool
	pose      Pose
	poseValid bool
}

// New creates a rig following id. levels may be nil, in which case the
// actor never crouches. Panics if actors is nil.
func New(actors Lookup, levels Levels, id string, opts Options) *Rig {
	if actors == nil {
		panic("camera: New called with nil actor lookup")
	}
	return &Rig{actors: actors, levels: levels, id: id, opts: opts}
}

// SetView switches between first- and third-person.
func (r *Rig) SetView(view string) {
	r.mu.Lock()
	r.opts.View = view
	r.poseValid = false
	r.mu.Unlock()
}

// View returns the current view mode.
func (r *Rig) View() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.View
}

// Look turns the view by a mouse delta in pixels. Pitch is clamped.
func (r *Rig) Look(dx, dy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.yaw -= dx * r.opts.MouseSensitivity
	r.yaw = math.Remainder(r.yaw, 2*math.Pi)
	r.pitch -= dy * r.opts.MouseSensitivity
	r.pitch = math.Max(-r.opts.MaxPitch, math.Min(r.opts.MaxPitch, r.pitch))
}

// SetSensitivity changes the mouse look rate in radians per pixel.
func (r *Rig) SetSensitivity(radPerPixel float64) {
	r.mu.Lock()
	r.opts.MouseSensitivity = radPerPixel
	r.mu.Unlock()
}

// SetFacing sets yaw and pitch in radians. Yaw 0 looks down -Z.
func (r *Rig) SetFacing(yaw, pitch float64) {
	r.mu.Lock()
	r.yaw = yaw
	r.pitch = math.Max(-r.opts.MaxPitch, math.Min(r.opts.MaxPitch, pitch))
	r.mu.Unlock()
}

// Forward returns the unit look direction.
func (r *Rig) Forward() r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forward()
}

func (r *Rig) forward() r3.Vec {
	cp := math.Cos(r.pitch)
	return r3.Vec{
		X: -math.Sin(r.yaw) * cp,
		Y: math.Sin(r.pitch),
		Z: -math.Cos(r.yaw) * cp,
	}
}

// EyeOffset returns the smoothed eye height above the body center.
func (r *Rig) EyeOffset() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eyeOffset
}

// Reset forgets smoothed state. The next Update snaps to its targets.
func (r *Rig) Reset() {
	r.mu.Lock()
	r.eyeValid = false
	r.eyeOffset = 0
	r.poseValid = false
	r.mu.Unlock()
}

// Update advances smoothing by frameDT seconds and returns the camera pose.
// When the actor is not registered it returns the last pose and false.
func (r *Rig) Update(frameDT float64) (Pose, bool) {
	rec, ok := r.actors.Lookup(r.id)
	if !ok {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.pose, false
	}

	crouching := false
	if r.levels != nil {
		crouching = r.levels.Level().Crouch
	}
	pos := rec.Body.Translation()
	height := rec.Props.Height()

	r.mu.Lock()
	defer r.mu.Unlock()

	target := height / 2 * r.opts.EyeRatio
	if r.opts.Crouch && crouching {
		target *= r.opts.CrouchDepth
	}
	if !r.eyeValid {
		r.eyeOffset = target
		r.eyeValid = true
	}
	r.eyeOffset = lerp(r.eyeOffset, target, blend(r.opts.EyeSmoothing, frameDT))

	look := r.forward()
	var desired, aim r3.Vec
	if r.opts.View == config.ViewThirdPerson {
		aim = r3.Add(pos, r3.Vec{Y: r.opts.Focus * r.eyeOffset})
		desired = r3.Add(aim, r3.Scale(height*r.opts.Distance, r3.Scale(-1, look)))
	} else {
		desired = r3.Add(pos, r3.Vec{Y: r.eyeOffset})
	}

	if r.poseValid {
		r.pose.Position = r3.Add(r.pose.Position, r3.Scale(blend(r.opts.FollowRate, frameDT), r3.Sub(desired, r.pose.Position)))
	} else {
		r.pose.Position = desired
		r.poseValid = true
	}
	if r.opts.View == config.ViewThirdPerson {
		r.pose.Target = aim
	} else {
		r.pose.Target = r3.Add(r.pose.Position, look)
	}
	return r.pose, true
}

// blend returns the per-frame interpolation factor for rate over dt,
// clamped so smoothing never overshoots.
func blend(rate, dt float64) float64 {
	return math.Max(0, math.Min(1, rate*dt))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
