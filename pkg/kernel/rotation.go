package kernel

import "github.com/go-gl/mathgl/mgl64"

// EulerQuat composes rotations about X, Y and Z in radians, applied in that
// order. Every kernel and the shard placements share this convention.
func EulerQuat(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(x, mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(y, mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(z, mgl64.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx)
}
