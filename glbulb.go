// Package glbulb holds the render settings, orbital camera and per-frame
// uniform snapshot of an interactive Mandelbulb raymarcher.
package glbulb

import (
	"github.com/soypat/geometry/ms3"
)

const (
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization.
	epstol = 6e-7

	// Pitch and distance limits enforced at synchronization time.
	MinPitch    = -1.5
	MaxPitch    = 1.5
	MinDistance = 0.5
)

var (
	// WorldUp is the fixed up direction of the orbital camera.
	WorldUp = ms3.Vec{Y: 1}
	// Target is the fixed look-at point of the orbital camera.
	Target = ms3.Vec{}
)

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
