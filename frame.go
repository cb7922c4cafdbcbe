package glbulb

import (
	"sync"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Snapshot is the complete set of values transmitted to the raymarching
// program for one frame. The uniform tag names the program uniform each
// field is uploaded to.
type Snapshot struct {
	Time       float32 `uniform:"u_time"`
	Resolution ms2.Vec `uniform:"u_resolution"`

	CamPos     ms3.Vec `uniform:"u_camPos"`
	CamForward ms3.Vec `uniform:"u_camForward"`
	CamRight   ms3.Vec `uniform:"u_camRight"`
	CamUp      ms3.Vec `uniform:"u_camUp"`
	FOV        float32 `uniform:"u_fov"`

	Power   float32 `uniform:"u_power"`
	MaxIter int32   `uniform:"u_maxIter"`
	Bailout float32 `uniform:"u_bailout"`

	MaxSteps int32   `uniform:"u_maxSteps"`
	MaxDist  float32 `uniform:"u_maxDist"`
	Epsilon  float32 `uniform:"u_epsilon"`

	ColorA        ms3.Vec `uniform:"u_colorA"`
	ColorB        ms3.Vec `uniform:"u_colorB"`
	EnableAO      int32   `uniform:"u_enableAO"`
	EnableShadows int32   `uniform:"u_enableShadows"`
}

// Basis returns the camera basis carried by the snapshot.
func (snap *Snapshot) Basis() Basis {
	return Basis{
		Position: snap.CamPos,
		Forward:  snap.CamForward,
		Right:    snap.CamRight,
		Up:       snap.CamUp,
	}
}

// UniformSink receives a frame's snapshot, usually by uploading it to a GPU program.
type UniformSink interface {
	Upload(snap Snapshot) error
}

// Synchronize advances auto rotation, clamps the camera and returns the
// snapshot for a frame rendered at elapsed seconds since start with a
// framebuffer of width×height pixels.
//
// Auto rotation sets the yaw as elapsed*RotationSpeed, not by accumulation,
// so the yaw depends only on elapsed time. The rotated yaw and clamped values
// are written back to s.
func Synchronize(s *Settings, elapsed float32, width, height int) Snapshot {
	if s.AutoRotate {
		s.CamYaw = elapsed * s.RotationSpeed
	}
	s.Clamp()
	// Build the snapshot from a single copy so every field
	// reflects the same settings state.
	cfg := *s
	basis := cfg.Basis()
	return Snapshot{
		Time:       elapsed,
		Resolution: ms2.Vec{X: float32(width), Y: float32(height)},

		CamPos:     basis.Position,
		CamForward: basis.Forward,
		CamRight:   basis.Right,
		CamUp:      basis.Up,
		FOV:        cfg.FOV,

		Power:   cfg.Power,
		MaxIter: int32(cfg.MaxIterations),
		Bailout: cfg.Bailout,

		MaxSteps: int32(cfg.MaxSteps),
		MaxDist:  cfg.MaxDist,
		Epsilon:  cfg.Epsilon,

		ColorA:        cfg.ColorA,
		ColorB:        cfg.ColorB,
		EnableAO:      b2i(cfg.EnableAO),
		EnableShadows: b2i(cfg.EnableShadows),
	}
}

// Frame synchronizes s and uploads the resulting snapshot to sink.
func Frame(sink UniformSink, s *Settings, elapsed float32, width, height int) (Snapshot, error) {
	snap := Synchronize(s, elapsed, width, height)
	return snap, sink.Upload(snap)
}

// SharedSettings guards a [Settings] for use when settings are mutated from a
// different goroutine than the one synchronizing frames. The zero value is not
// ready for use, see [NewSharedSettings].
type SharedSettings struct {
	mu sync.Mutex
	s  Settings
}

// NewSharedSettings returns a SharedSettings initialized with s.
func NewSharedSettings(s Settings) *SharedSettings {
	return &SharedSettings{s: s}
}

// Load returns a copy of the current settings.
func (ss *SharedSettings) Load() Settings {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s
}

// Store replaces the current settings.
func (ss *SharedSettings) Store(s Settings) {
	ss.mu.Lock()
	ss.s = s
	ss.mu.Unlock()
}

// Update calls fn with exclusive access to the settings.
func (ss *SharedSettings) Update(fn func(s *Settings)) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	fn(&ss.s)
}

// Reset restores all settings to their defaults.
func (ss *SharedSettings) Reset() {
	ss.Update((*Settings).Reset)
}

// ResetCamera restores the camera subgroup defaults.
func (ss *SharedSettings) ResetCamera() {
	ss.Update((*Settings).ResetCamera)
}

// Synchronize runs [Synchronize] inside a single critical section so the
// snapshot never mixes values from before and after a concurrent mutation.
func (ss *SharedSettings) Synchronize(elapsed float32, width, height int) Snapshot {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return Synchronize(&ss.s, elapsed, width, height)
}
