package bulbaux

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glbulb"
)

// Action is a discrete user command applied to the render settings between frames.
type Action uint8

const (
	ActionNone Action = iota
	ActionToggleAutoRotate
	ActionToggleAO
	ActionToggleShadows
	ActionPowerUp
	ActionPowerDown
	ActionIterationsUp
	ActionIterationsDown
	ActionBailoutUp
	ActionBailoutDown
	ActionFOVUp
	ActionFOVDown
	ActionStepsUp
	ActionStepsDown
	ActionEpsilonUp
	ActionEpsilonDown
	ActionCycleColors
	ActionResetCamera
	ActionReset
	// Actions below do not modify settings and are handled by the window.
	ActionToggleOverlay
	ActionScreenshot
	actionCount
)

var actionNames = [actionCount]string{
	ActionNone:             "none",
	ActionToggleAutoRotate: "toggle auto rotate",
	ActionToggleAO:         "toggle ambient occlusion",
	ActionToggleShadows:    "toggle soft shadows",
	ActionPowerUp:          "power up",
	ActionPowerDown:        "power down",
	ActionIterationsUp:     "iterations up",
	ActionIterationsDown:   "iterations down",
	ActionBailoutUp:        "bailout up",
	ActionBailoutDown:      "bailout down",
	ActionFOVUp:            "fov up",
	ActionFOVDown:          "fov down",
	ActionStepsUp:          "steps up",
	ActionStepsDown:        "steps down",
	ActionEpsilonUp:        "epsilon up",
	ActionEpsilonDown:      "epsilon down",
	ActionCycleColors:      "cycle colors",
	ActionResetCamera:      "reset camera",
	ActionReset:            "reset",
	ActionToggleOverlay:    "toggle overlay",
	ActionScreenshot:       "screenshot",
}

func (a Action) String() string {
	if a >= actionCount {
		return "unknown action"
	}
	return actionNames[a]
}

// Step sizes of the increment and decrement actions.
const (
	PowerStep      = 0.5
	IterationsStep = 1
	BailoutStep    = 0.25
	FOVStep        = 0.05
	StepsStep      = 25
	EpsilonFactor  = 2
	HueStep        = 1. / 6

	// Radians per pixel of mouse drag.
	DragSensitivity = 0.005
	// Fraction of distance per scroll unit.
	ScrollSensitivity = 0.1
)

var runeActions = map[rune]Action{
	' ': ActionToggleAutoRotate,
	'a': ActionToggleAO,
	'h': ActionToggleShadows,
	']': ActionPowerUp,
	'[': ActionPowerDown,
	'.': ActionIterationsUp,
	',': ActionIterationsDown,
	'b': ActionBailoutUp,
	'B': ActionBailoutDown,
	'=': ActionFOVUp,
	'-': ActionFOVDown,
	'm': ActionStepsUp,
	'M': ActionStepsDown,
	'e': ActionEpsilonUp,
	'E': ActionEpsilonDown,
	'c': ActionCycleColors,
	'r': ActionResetCamera,
	'R': ActionReset,
	'o': ActionToggleOverlay,
	'p': ActionScreenshot,
}

// WindowOnly reports whether a is handled by the window instead of being
// applied to settings.
func (a Action) WindowOnly() bool {
	return a >= ActionToggleOverlay && a < actionCount
}

// windowState is the window-only state driven by input actions.
type windowState struct {
	showOverlay bool
	screenshot  bool
}

// handle applies a if it is a window-only action and reports whether it was.
func (ws *windowState) handle(a Action) bool {
	switch a {
	case ActionToggleOverlay:
		ws.showOverlay = !ws.showOverlay
	case ActionScreenshot:
		ws.screenshot = true
	default:
		return false
	}
	return true
}

// ActionForRune returns the action bound to a typed character.
func ActionForRune(r rune) Action {
	return runeActions[r]
}

// ApplyAction applies a to s and reports whether s was modified. Values are
// kept within [glbulb.Ranges].
func ApplyAction(s *glbulb.Settings, a Action) bool {
	old := *s
	rg := &glbulb.Ranges
	switch a {
	case ActionToggleAutoRotate:
		s.AutoRotate = !s.AutoRotate
	case ActionToggleAO:
		s.EnableAO = !s.EnableAO
	case ActionToggleShadows:
		s.EnableShadows = !s.EnableShadows
	case ActionPowerUp, ActionPowerDown:
		s.Power = rg.Power.Clamp(s.Power + sign(a == ActionPowerUp)*PowerStep)
	case ActionIterationsUp, ActionIterationsDown:
		s.MaxIterations = stepInt(rg.MaxIterations, s.MaxIterations, IterationsStep, a == ActionIterationsUp)
	case ActionBailoutUp, ActionBailoutDown:
		s.Bailout = rg.Bailout.Clamp(s.Bailout + sign(a == ActionBailoutUp)*BailoutStep)
	case ActionFOVUp, ActionFOVDown:
		s.FOV = rg.FOV.Clamp(s.FOV + sign(a == ActionFOVUp)*FOVStep)
	case ActionStepsUp, ActionStepsDown:
		s.MaxSteps = stepInt(rg.MaxSteps, s.MaxSteps, StepsStep, a == ActionStepsUp)
	case ActionEpsilonUp:
		s.Epsilon = rg.Epsilon.Clamp(s.Epsilon * EpsilonFactor)
	case ActionEpsilonDown:
		s.Epsilon = rg.Epsilon.Clamp(s.Epsilon / EpsilonFactor)
	case ActionCycleColors:
		s.ColorA = ShiftHue(s.ColorA, HueStep)
		s.ColorB = ShiftHue(s.ColorB, HueStep)
	case ActionResetCamera:
		s.ResetCamera()
	case ActionReset:
		s.Reset()
	}
	return *s != old
}

// Drag orbits the camera by a mouse movement of dx, dy pixels. Dragging
// takes manual control of the camera so auto rotation is disabled, else the
// next frame would overwrite the yaw.
func Drag(s *glbulb.Settings, dx, dy float32) {
	s.AutoRotate = false
	s.CamYaw = wrapAngle(s.CamYaw + dx*DragSensitivity)
	s.CamPitch = glbulb.Ranges.CamPitch.Clamp(s.CamPitch + dy*DragSensitivity)
}

// Scroll zooms the camera by yoff scroll units, positive moving closer.
func Scroll(s *glbulb.Settings, yoff float32) {
	s.CamDistance = glbulb.Ranges.CamDistance.Clamp(s.CamDistance * (1 - ScrollSensitivity*yoff))
}

// wrapAngle maps a to [-π, π).
func wrapAngle(a float32) float32 {
	const twoPi = 2 * math32.Pi
	a = math32.Mod(a+math32.Pi, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a - math32.Pi
}

func stepInt(r glbulb.Range, v, step int, up bool) int {
	return int(r.Clamp(float32(v) + sign(up)*float32(step)))
}

func sign(positive bool) float32 {
	if positive {
		return 1
	}
	return -1
}
