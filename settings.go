package glbulb

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

// Settings is the full set of user adjustable render parameters. It is
// created once with [DefaultSettings], mutated in place between frames and
// read by [Synchronize] once per frame.
//
// Settings performs no validation on write. Pitch and distance are clamped
// lazily by [Settings.Clamp] right before the camera basis is built, other
// out of range values are absorbed by the bounded loops of the raymarcher.
type Settings struct {
	// Camera.
	CamDistance   float32
	CamYaw        float32 // Radians around the vertical axis, wraps freely.
	CamPitch      float32 // Radians, clamped to [MinPitch, MaxPitch].
	FOV           float32
	AutoRotate    bool
	RotationSpeed float32 // Radians per second.

	// Fractal.
	Power         float32
	MaxIterations int
	Bailout       float32

	// Raymarch.
	MaxSteps int
	MaxDist  float32
	Epsilon  float32

	// Shading.
	EnableAO      bool
	EnableShadows bool
	// ColorA and ColorB are the linear RGB endpoints of the surface gradient.
	ColorA ms3.Vec
	ColorB ms3.Vec
}

// CameraSettings is the camera subgroup restored by [Settings.ResetCamera].
type CameraSettings struct {
	CamDistance float32
	CamYaw      float32
	CamPitch    float32
	FOV         float32
}

// DefaultSettings returns the settings that reproduce the initial frame.
func DefaultSettings() Settings {
	return Settings{
		CamDistance:   4,
		CamYaw:        0,
		CamPitch:      0.4,
		FOV:           1,
		AutoRotate:    true,
		RotationSpeed: 0.2,

		Power:         8,
		MaxIterations: 18,
		Bailout:       2,

		MaxSteps: 200,
		MaxDist:  25,
		Epsilon:  0.001,

		EnableAO:      true,
		EnableShadows: true,
		ColorA:        ms3.Vec{X: 0.2, Y: 0.3, Z: 0.6},
		ColorB:        ms3.Vec{X: 0.8, Y: 0.9, Z: 1.0},
	}
}

// DefaultCamera returns the camera subgroup of [DefaultSettings].
func DefaultCamera() CameraSettings {
	return DefaultSettings().Camera()
}

// Reset restores every field to its default in a single assignment.
func (s *Settings) Reset() {
	*s = DefaultSettings()
}

// Camera returns the camera subgroup of s.
func (s Settings) Camera() CameraSettings {
	return CameraSettings{
		CamDistance: s.CamDistance,
		CamYaw:      s.CamYaw,
		CamPitch:    s.CamPitch,
		FOV:         s.FOV,
	}
}

// SetCamera overwrites the camera subgroup of s.
func (s *Settings) SetCamera(c CameraSettings) {
	s.CamDistance, s.CamYaw, s.CamPitch, s.FOV = c.CamDistance, c.CamYaw, c.CamPitch, c.FOV
}

// ResetCamera restores distance, yaw, pitch and field of view. Auto rotation
// and rotation speed are left as they are.
func (s *Settings) ResetCamera() {
	s.SetCamera(DefaultCamera())
}

// Clamp limits pitch to [MinPitch, MaxPitch] and distance to at least
// MinDistance. Clamp is idempotent.
func (s *Settings) Clamp() {
	s.CamPitch = ms1.Clamp(s.CamPitch, MinPitch, MaxPitch)
	s.CamDistance = math32.Max(s.CamDistance, MinDistance)
}

// Range is the interactive range of a setting. Values outside of a Range are
// still accepted by [Settings].
type Range struct {
	Min, Max float32
	// Log is set for ranges meant to be traversed logarithmically.
	Log bool
}

// Clamp limits v to r.
func (r Range) Clamp(v float32) float32 {
	return ms1.Clamp(v, r.Min, r.Max)
}

// Ranges are the slider ranges presented by the interactive controls.
var Ranges = struct {
	CamDistance, CamYaw, CamPitch, FOV, RotationSpeed Range
	Power, MaxIterations, Bailout                     Range
	MaxSteps, MaxDist, Epsilon                        Range
}{
	CamDistance:   Range{Min: 2, Max: 12},
	CamYaw:        Range{Min: -math32.Pi, Max: math32.Pi},
	CamPitch:      Range{Min: MinPitch, Max: MaxPitch},
	FOV:           Range{Min: 0.3, Max: 2},
	RotationSpeed: Range{Min: 0, Max: 1},
	Power:         Range{Min: 2, Max: 16},
	MaxIterations: Range{Min: 4, Max: 64},
	Bailout:       Range{Min: 1, Max: 6},
	MaxSteps:      Range{Min: 50, Max: 512},
	MaxDist:       Range{Min: 4, Max: 60},
	Epsilon:       Range{Min: 1e-4, Max: 1e-2, Log: true},
}
