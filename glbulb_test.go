package glbulb_test

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
)

const tol = 1e-5

func TestOrbitBasisOrthonormal(t *testing.T) {
	for _, dist := range []float32{glbulb.MinDistance, 4, 12} {
		for yaw := float32(-math32.Pi); yaw <= math32.Pi; yaw += 0.3 {
			for pitch := float32(glbulb.MinPitch); pitch <= glbulb.MaxPitch; pitch += 0.25 {
				b := glbulb.OrbitBasis(dist, yaw, pitch)
				checkOrthonormal(t, b)
				if got := ms3.Norm(b.Position); math32.Abs(got-dist) > tol*dist {
					t.Errorf("dist=%g yaw=%g pitch=%g: camera at distance %g", dist, yaw, pitch, got)
				}
				// Forward points toward the target.
				toTarget := glbulb.Normalize(glbulb.Sub(glbulb.Target, b.Position))
				if d := ms3.Dot(toTarget, b.Forward); math32.Abs(d-1) > tol {
					t.Errorf("forward not aimed at target: dot=%g", d)
				}
				// Right handed: right × up == -forward with forward into the screen.
				if d := ms3.Dot(glbulb.Cross(b.Right, b.Up), b.Forward); math32.Abs(d+1) > tol {
					t.Errorf("basis handedness mismatch: (right×up)·forward=%g", d)
				}
			}
		}
	}
}

func vecNear(a, b ms3.Vec, tol float32) bool {
	return math32.Abs(a.X-b.X) <= tol && math32.Abs(a.Y-b.Y) <= tol && math32.Abs(a.Z-b.Z) <= tol
}

func checkOrthonormal(t *testing.T, b glbulb.Basis) {
	t.Helper()
	vecs := [3]ms3.Vec{b.Forward, b.Right, b.Up}
	for i, v := range vecs {
		if n := ms3.Norm(v); math32.Abs(n-1) > tol {
			t.Errorf("basis vector %d not unit length: %v (norm %g)", i, v, n)
		}
		for j := i + 1; j < len(vecs); j++ {
			if d := ms3.Dot(v, vecs[j]); math32.Abs(d) > tol {
				t.Errorf("basis vectors %d and %d not perpendicular: dot=%g", i, j, d)
			}
		}
	}
}

func TestOrbitBasisPoles(t *testing.T) {
	for _, pitch := range []float32{math32.Pi / 2, -math32.Pi / 2} {
		b := glbulb.OrbitBasis(4, 0.3, pitch)
		for _, v := range []ms3.Vec{b.Position, b.Forward, b.Right, b.Up} {
			if math32.IsNaN(v.X) || math32.IsNaN(v.Y) || math32.IsNaN(v.Z) {
				t.Fatalf("pitch=%g: NaN in degenerate basis %+v", pitch, b)
			}
		}
		if b.Right != (ms3.Vec{}) || b.Up != (ms3.Vec{}) {
			t.Errorf("pitch=%g: want zero right and up at pole, got %v %v", pitch, b.Right, b.Up)
		}
		if n := ms3.Norm(b.Forward); math32.Abs(n-1) > tol {
			t.Errorf("pitch=%g: forward should still be unit length, got %g", pitch, n)
		}
	}
}

func TestOrbitBasisScenario(t *testing.T) {
	b := glbulb.OrbitBasis(4, 0, 0)
	want := glbulb.Basis{
		Position: ms3.Vec{X: 4},
		Forward:  ms3.Vec{X: -1},
		Right:    ms3.Vec{Z: -1},
		Up:       ms3.Vec{Y: 1},
	}
	if !vecNear(b.Position, want.Position, tol) ||
		!vecNear(b.Forward, want.Forward, tol) ||
		!vecNear(b.Right, want.Right, tol) ||
		!vecNear(b.Up, want.Up, tol) {
		t.Errorf("got basis %+v, want %+v", b, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		v    ms3.Vec
		want ms3.Vec
	}{
		{v: ms3.Vec{}, want: ms3.Vec{}},
		{v: ms3.Vec{X: 1e-9, Y: -1e-9}, want: ms3.Vec{}},
		{v: ms3.Vec{X: 3, Y: 4}, want: ms3.Vec{X: 0.6, Y: 0.8}},
		{v: ms3.Vec{Z: -2}, want: ms3.Vec{Z: -1}},
	}
	for _, test := range tests {
		got := glbulb.Normalize(test.v)
		if !vecNear(got, test.want, tol) {
			t.Errorf("Normalize(%v)=%v, want %v", test.v, got, test.want)
		}
	}
}

func TestCross(t *testing.T) {
	x, y, z := ms3.Vec{X: 1}, ms3.Vec{Y: 1}, ms3.Vec{Z: 1}
	if got := glbulb.Cross(x, y); got != z {
		t.Errorf("x×y=%v, want %v", got, z)
	}
	if got := glbulb.Cross(y, x); got != ms3.Scale(-1, z) {
		t.Errorf("y×x=%v, want -z", got)
	}
	a, b := ms3.Vec{X: 1, Y: -2, Z: 3}, ms3.Vec{X: 0.5, Y: 4, Z: -1}
	if got := glbulb.Cross(a, b); got != (ms3.Vec{X: -10, Y: 2.5, Z: 5}) {
		t.Errorf("a×b=%v", got)
	}
}

func mutated() glbulb.Settings {
	return glbulb.Settings{
		CamDistance:   0.1,
		CamYaw:        7,
		CamPitch:      -3,
		FOV:           1.7,
		AutoRotate:    false,
		RotationSpeed: 0.9,
		Power:         3,
		MaxIterations: 60,
		Bailout:       5,
		MaxSteps:      51,
		MaxDist:       5,
		Epsilon:       0.01,
		EnableAO:      false,
		EnableShadows: false,
		ColorA:        ms3.Vec{X: 1},
		ColorB:        ms3.Vec{Y: 1},
	}
}

func TestReset(t *testing.T) {
	s := mutated()
	s.Reset()
	if s != glbulb.DefaultSettings() {
		t.Errorf("reset settings differ from defaults:\n%+v\n%+v", s, glbulb.DefaultSettings())
	}
}

func TestResetCamera(t *testing.T) {
	s := mutated()
	s.ResetCamera()
	want := mutated()
	want.SetCamera(glbulb.DefaultCamera())
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}
	def := glbulb.DefaultSettings()
	if s.CamDistance != def.CamDistance || s.CamYaw != def.CamYaw || s.CamPitch != def.CamPitch || s.FOV != def.FOV {
		t.Error("camera group not restored")
	}
	if s.Power != 3 || s.AutoRotate {
		t.Error("reset camera modified fields outside of camera group")
	}
}

func TestDefaultCamera(t *testing.T) {
	want := glbulb.CameraSettings{CamDistance: 4, CamYaw: 0, CamPitch: 0.4, FOV: 1}
	if got := glbulb.DefaultCamera(); got != want {
		t.Errorf("DefaultCamera()=%+v, want %+v", got, want)
	}
	if got := mutated().Camera(); got.CamDistance != 0.1 || got.CamYaw != 7 || got.CamPitch != -3 || got.FOV != 1.7 {
		t.Errorf("Camera() of non addressable settings=%+v", got)
	}
}

func TestAutoRotateIsFunctionOfTime(t *testing.T) {
	const end = 3.0
	stepped := glbulb.DefaultSettings()
	for _, elapsed := range []float32{0, 0.016, 0.5, 0.75, 1.25, 2.9, end} {
		glbulb.Synchronize(&stepped, elapsed, 64, 64)
	}
	single := glbulb.DefaultSettings()
	glbulb.Synchronize(&single, end, 64, 64)
	want := float32(end) * single.RotationSpeed
	if stepped.CamYaw != want || single.CamYaw != want {
		t.Errorf("yaw after stepping=%g, single frame=%g, want %g", stepped.CamYaw, single.CamYaw, want)
	}

	// Pausing does not accumulate drift on resume.
	paused := glbulb.DefaultSettings()
	glbulb.Synchronize(&paused, 1, 64, 64)
	paused.AutoRotate = false
	glbulb.Synchronize(&paused, 2, 64, 64)
	if paused.CamYaw != 1*paused.RotationSpeed {
		t.Errorf("paused yaw changed: %g", paused.CamYaw)
	}
	paused.AutoRotate = true
	glbulb.Synchronize(&paused, end, 64, 64)
	if paused.CamYaw != want {
		t.Errorf("resumed yaw=%g, want %g", paused.CamYaw, want)
	}
}

func TestClampIdempotent(t *testing.T) {
	for _, s := range []glbulb.Settings{mutated(), glbulb.DefaultSettings(), {CamPitch: 100, CamDistance: -4}} {
		once := s
		once.Clamp()
		twice := once
		twice.Clamp()
		if once != twice {
			t.Errorf("clamp not idempotent: %+v != %+v", once, twice)
		}
		if once.CamPitch < glbulb.MinPitch || once.CamPitch > glbulb.MaxPitch || once.CamDistance < glbulb.MinDistance {
			t.Errorf("clamp left out of range camera: pitch=%g dist=%g", once.CamPitch, once.CamDistance)
		}
	}
}

func TestSynchronizeSnapshot(t *testing.T) {
	s := mutated()
	snap := glbulb.Synchronize(&s, 2.5, 1280, 720)
	if s.CamPitch != glbulb.MinPitch || s.CamDistance != glbulb.MinDistance {
		t.Errorf("clamped values not written back: pitch=%g dist=%g", s.CamPitch, s.CamDistance)
	}
	if s.CamYaw != 7 {
		t.Errorf("yaw changed without auto rotation: %g", s.CamYaw)
	}
	basis := glbulb.OrbitBasis(s.CamDistance, s.CamYaw, s.CamPitch)
	if snap.Basis() != basis {
		t.Errorf("snapshot basis %+v, want %+v", snap.Basis(), basis)
	}
	if snap.Time != 2.5 || snap.Resolution.X != 1280 || snap.Resolution.Y != 720 {
		t.Errorf("bad time or resolution: %g %v", snap.Time, snap.Resolution)
	}
	if snap.MaxIter != 60 || snap.MaxSteps != 51 || snap.Power != 3 || snap.Bailout != 5 ||
		snap.MaxDist != 5 || snap.Epsilon != 0.01 || snap.FOV != 1.7 {
		t.Errorf("scalar parameters not transmitted: %+v", snap)
	}
	if snap.EnableAO != 0 || snap.EnableShadows != 0 {
		t.Error("disabled toggles should transmit 0")
	}
	if snap.ColorA != s.ColorA || snap.ColorB != s.ColorB {
		t.Error("colors not transmitted")
	}
	def := glbulb.DefaultSettings()
	snap = glbulb.Synchronize(&def, 0, 1, 1)
	if snap.EnableAO != 1 || snap.EnableShadows != 1 {
		t.Error("enabled toggles should transmit 1")
	}
}

type recordSink struct {
	got []glbulb.Snapshot
}

func (r *recordSink) Upload(snap glbulb.Snapshot) error {
	r.got = append(r.got, snap)
	return nil
}

func TestFrame(t *testing.T) {
	var sink recordSink
	s := glbulb.DefaultSettings()
	snap, err := glbulb.Frame(&sink, &s, 1, 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(sink.got) != 1 || sink.got[0] != snap {
		t.Fatalf("sink did not receive the synchronized snapshot: %+v", sink.got)
	}
}

func TestSharedSettingsConsistentSnapshot(t *testing.T) {
	start := glbulb.DefaultSettings()
	start.Power, start.MaxIterations, start.MaxSteps = 4, 4, 4
	shared := glbulb.NewSharedSettings(start)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 4; i < 2000; i++ {
			shared.Update(func(s *glbulb.Settings) {
				// Fields mutated together must never be observed apart.
				s.MaxIterations = i
				s.Power = float32(i)
				s.MaxSteps = i
			})
			if i%97 == 0 {
				shared.ResetCamera()
			}
		}
	}()
	for i := 0; i < 2000; i++ {
		snap := shared.Synchronize(float32(i)/60, 32, 32)
		if snap.Power != float32(snap.MaxIter) || snap.MaxSteps != snap.MaxIter {
			wg.Wait()
			t.Fatalf("inconsistent snapshot: power=%g maxIter=%d maxSteps=%d", snap.Power, snap.MaxIter, snap.MaxSteps)
		}
	}
	wg.Wait()
	shared.Reset()
	if shared.Load() != glbulb.DefaultSettings() {
		t.Error("shared reset did not restore defaults")
	}
}
