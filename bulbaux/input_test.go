package bulbaux_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
	"github.com/soypat/glbulb/bulbaux"
)

func TestApplyActionToggles(t *testing.T) {
	s := glbulb.DefaultSettings()
	for _, a := range []bulbaux.Action{bulbaux.ActionToggleAutoRotate, bulbaux.ActionToggleAO, bulbaux.ActionToggleShadows} {
		if !bulbaux.ApplyAction(&s, a) {
			t.Errorf("%s did not modify settings", a)
		}
	}
	if s.AutoRotate || s.EnableAO || s.EnableShadows {
		t.Errorf("toggles not applied: %+v", s)
	}
	if bulbaux.ApplyAction(&s, bulbaux.ActionScreenshot) || bulbaux.ApplyAction(&s, bulbaux.ActionNone) {
		t.Error("window actions must not modify settings")
	}
}

func TestApplyActionStaysInRange(t *testing.T) {
	ups := []bulbaux.Action{
		bulbaux.ActionPowerUp, bulbaux.ActionIterationsUp, bulbaux.ActionBailoutUp,
		bulbaux.ActionFOVUp, bulbaux.ActionStepsUp, bulbaux.ActionEpsilonUp,
	}
	downs := []bulbaux.Action{
		bulbaux.ActionPowerDown, bulbaux.ActionIterationsDown, bulbaux.ActionBailoutDown,
		bulbaux.ActionFOVDown, bulbaux.ActionStepsDown, bulbaux.ActionEpsilonDown,
	}
	rg := glbulb.Ranges
	for _, actions := range [][]bulbaux.Action{ups, downs} {
		s := glbulb.DefaultSettings()
		for i := 0; i < 1000; i++ {
			for _, a := range actions {
				bulbaux.ApplyAction(&s, a)
			}
		}
		checkIn(t, "power", s.Power, rg.Power)
		checkIn(t, "iterations", float32(s.MaxIterations), rg.MaxIterations)
		checkIn(t, "bailout", s.Bailout, rg.Bailout)
		checkIn(t, "fov", s.FOV, rg.FOV)
		checkIn(t, "steps", float32(s.MaxSteps), rg.MaxSteps)
		checkIn(t, "epsilon", s.Epsilon, rg.Epsilon)
	}
	s := glbulb.DefaultSettings()
	bulbaux.ApplyAction(&s, bulbaux.ActionPowerUp)
	if s.Power != 8+bulbaux.PowerStep {
		t.Errorf("power step not applied: %g", s.Power)
	}
	bulbaux.ApplyAction(&s, bulbaux.ActionIterationsDown)
	if s.MaxIterations != 17 {
		t.Errorf("iterations step not applied: %d", s.MaxIterations)
	}
}

func checkIn(t *testing.T, name string, v float32, r glbulb.Range) {
	t.Helper()
	if v < r.Min || v > r.Max {
		t.Errorf("%s=%g outside of [%g,%g]", name, v, r.Min, r.Max)
	}
}

func TestApplyActionResets(t *testing.T) {
	s := glbulb.DefaultSettings()
	bulbaux.Drag(&s, 100, -40)
	bulbaux.Scroll(&s, 3)
	bulbaux.ApplyAction(&s, bulbaux.ActionPowerUp)
	if !bulbaux.ApplyAction(&s, bulbaux.ActionResetCamera) {
		t.Fatal("reset camera did not modify settings")
	}
	if s.Camera() != glbulb.DefaultCamera() {
		t.Errorf("camera not reset: %+v", s.Camera())
	}
	if s.Power == glbulb.DefaultSettings().Power {
		t.Error("reset camera modified power")
	}
	bulbaux.ApplyAction(&s, bulbaux.ActionReset)
	if s != glbulb.DefaultSettings() {
		t.Errorf("reset did not restore defaults: %+v", s)
	}
}

func TestCycleColors(t *testing.T) {
	s := glbulb.DefaultSettings()
	start := s
	for i := 0; i < 6; i++ {
		if !bulbaux.ApplyAction(&s, bulbaux.ActionCycleColors) {
			t.Fatal("cycle colors did not modify settings")
		}
	}
	// Six sixth turns of hue return to the starting colors.
	const tol = 1e-4
	for _, pair := range [][2]ms3.Vec{{s.ColorA, start.ColorA}, {s.ColorB, start.ColorB}} {
		d := ms3.Sub(pair[0], pair[1])
		if ms3.Norm(d) > tol {
			t.Errorf("color after full hue cycle %v, want %v", pair[0], pair[1])
		}
	}
}

func TestDragAndScroll(t *testing.T) {
	s := glbulb.DefaultSettings()
	bulbaux.Drag(&s, 10, 0)
	if s.AutoRotate {
		t.Error("drag must disable auto rotation")
	}
	if want := 10 * float32(bulbaux.DragSensitivity); math32.Abs(s.CamYaw-want) > 1e-6 {
		t.Errorf("yaw=%g, want %g", s.CamYaw, want)
	}
	for i := 0; i < 10000; i++ {
		bulbaux.Drag(&s, 37, 11)
	}
	if s.CamYaw < -math32.Pi || s.CamYaw >= math32.Pi {
		t.Errorf("yaw not wrapped: %g", s.CamYaw)
	}
	if s.CamPitch != glbulb.MaxPitch {
		t.Errorf("pitch not clamped to max: %g", s.CamPitch)
	}
	for i := 0; i < 100; i++ {
		bulbaux.Scroll(&s, 1)
	}
	if s.CamDistance != glbulb.Ranges.CamDistance.Min {
		t.Errorf("distance=%g, want min %g", s.CamDistance, glbulb.Ranges.CamDistance.Min)
	}
	for i := 0; i < 100; i++ {
		bulbaux.Scroll(&s, -1)
	}
	if s.CamDistance != glbulb.Ranges.CamDistance.Max {
		t.Errorf("distance=%g, want max %g", s.CamDistance, glbulb.Ranges.CamDistance.Max)
	}
}

func TestActionForRune(t *testing.T) {
	if bulbaux.ActionForRune('R') != bulbaux.ActionReset || bulbaux.ActionForRune('r') != bulbaux.ActionResetCamera {
		t.Error("reset bindings changed")
	}
	if bulbaux.ActionForRune('Z') != bulbaux.ActionNone {
		t.Error("unbound rune should map to no action")
	}
	if bulbaux.ActionReset.String() != "reset" || bulbaux.Action(200).String() != "unknown action" {
		t.Error("bad action names")
	}
}
