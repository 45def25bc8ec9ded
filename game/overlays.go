package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/controller"
	"github.com/officeshinyujun/libet/physics"
	"github.com/officeshinyujun/libet/ui"
)

// velocityScale is the length in world units drawn per m/s of velocity.
const velocityScale = 0.25

// drawOverlays draws the enabled 3D debug overlays. Must be called inside
// BeginMode3D.
func (g *Game) drawOverlays() {
	if g.overlays.Has(ui.OverlayGrid) {
		rl.DrawGrid(60, 1)
	}

	if g.overlays.Has(ui.OverlayColliders) {
		g.world.Each(func(s physics.BodyState) {
			rl.DrawCubeWiresV(toRL(s.Position), toRL(r3.Scale(2, s.HalfExtents)), rl.Green)
		})
	}

	rec, ok := g.registry.Lookup(g.ctrl.ID())
	if !ok {
		return
	}
	pos := rec.Body.Translation()

	if g.overlays.Has(ui.OverlayProbe) {
		margin := g.cfg.Probe.Margin
		end := r3.Sub(pos, r3.Vec{Y: rec.Props.Height()/2 + margin})
		c := rl.Red
		if controller.Grounded(rec.Body, g.world, rec.Props.Height(), margin, g.cfg.Probe.MaxVerticalSpeed) {
			c = rl.Lime
		}
		rl.DrawLine3D(toRL(pos), toRL(end), c)
		rl.DrawSphere(toRL(end), 0.05, c)
	}

	if g.overlays.Has(ui.OverlayVelocity) {
		v := rec.Body.LinearVelocity()
		rl.DrawLine3D(toRL(pos), toRL(r3.Add(pos, r3.Scale(velocityScale, v))), rl.Orange)
	}

	if g.overlays.Has(ui.OverlayFacing) {
		look := g.rig.Forward()
		forward := r3.Vec{X: look.X, Z: look.Z}
		if r3.Norm(forward) > 0 {
			forward = r3.Unit(forward)
			right := r3.Cross(forward, physics.Up)
			base := r3.Sub(pos, r3.Vec{Y: rec.Props.Height() / 2})
			rl.DrawLine3D(toRL(base), toRL(r3.Add(base, forward)), rl.SkyBlue)
			rl.DrawLine3D(toRL(base), toRL(r3.Add(base, right)), rl.Pink)
		}
	}
}
