package glbulb

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// Basis is a camera position and its view frame. Forward, Right and Up are
// orthonormal except at the vertical poles where Right and Up are zero.
type Basis struct {
	Position ms3.Vec
	Forward  ms3.Vec
	Right    ms3.Vec
	Up       ms3.Vec
}

// OrbitBasis returns the basis of a camera orbiting [Target] at distance
// with yaw rotating about the vertical axis and pitch tilting toward it.
// Arguments are expected to be clamped already.
//
// Right is forward×worldUp which makes the basis right-handed with Forward
// pointing into the screen.
func OrbitBasis(distance, yaw, pitch float32) Basis {
	sp, cp := math32.Sincos(pitch)
	sy, cy := math32.Sincos(yaw)
	pos := ms3.Vec{
		X: distance * cp * cy,
		Y: distance * sp,
		Z: distance * cp * sy,
	}
	forward := Normalize(Sub(Target, pos))
	right := Normalize(Cross(forward, WorldUp))
	up := Cross(right, forward)
	return Basis{
		Position: pos,
		Forward:  forward,
		Right:    right,
		Up:       up,
	}
}

// Basis returns the orbital camera basis for the current camera settings.
// It does not clamp.
func (s *Settings) Basis() Basis {
	return OrbitBasis(s.CamDistance, s.CamYaw, s.CamPitch)
}
