package physics

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Identity is the rotation that leaves vectors unchanged.
var Identity = r3.Rotation{Real: 1}

// normalizeRotation maps the zero value to Identity so freshly built
// components behave like an unrotated body.
func normalizeRotation(q r3.Rotation) r3.Rotation {
	if q == (r3.Rotation{}) {
		return Identity
	}
	return q
}

// RotationFromEuler builds a rotation from XYZ Euler angles in radians,
// the order scene files use.
func RotationFromEuler(x, y, z float64) r3.Rotation {
	qx := quat.Number(r3.NewRotation(x, r3.Vec{X: 1}))
	qy := quat.Number(r3.NewRotation(y, r3.Vec{Y: 1}))
	qz := quat.Number(r3.NewRotation(z, r3.Vec{Z: 1}))
	return r3.Rotation(quat.Mul(quat.Mul(qx, qy), qz))
}

// YawRotation returns the rotation about the up axis that turns the body's
// local forward (-Z) to face dir. Only dir's horizontal part is used.
func YawRotation(dir r3.Vec) r3.Rotation {
	if dir.X == 0 && dir.Z == 0 {
		return Identity
	}
	return r3.NewRotation(math.Atan2(-dir.X, -dir.Z), Up)
}

// Forward returns the body's local -Z axis in world space.
func Forward(q r3.Rotation) r3.Vec {
	return normalizeRotation(q).Rotate(r3.Vec{Z: -1})
}
