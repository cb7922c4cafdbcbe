// Package bulbaux implements the interactive application around the
// raymarcher: the window and frame loop, input actions, the settings
// overlay, the network control plane and logging.
package bulbaux

import (
	"context"
	"errors"

	"github.com/soypat/glbulb"
)

// UIConfig configures the interactive window.
type UIConfig struct {
	Width, Height int
	Title         string
	// VSync synchronizes buffer swaps with the display refresh.
	VSync bool
	// Overlay shows the settings panel on start. It may be toggled at runtime.
	Overlay bool
	// Settings are read every frame and mutated by input. Other goroutines
	// such as a control server may mutate them concurrently.
	Settings *glbulb.SharedSettings
	// ScreenshotDir is the directory screenshots are saved to.
	ScreenshotDir string
	// Context ends the frame loop after the in-flight frame when done.
	Context context.Context
}

// UI opens a window and renders the Mandelbulb until the window is closed,
// Escape is pressed or the context is done. UI must be called from the main
// goroutine. All GPU resources are released before UI returns.
func UI(cfg UIConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("invalid window size")
	}
	if cfg.Settings == nil {
		cfg.Settings = glbulb.NewSharedSettings(glbulb.DefaultSettings())
	}
	if cfg.Title == "" {
		cfg.Title = "glbulb"
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "."
	}
	return ui(cfg)
}
