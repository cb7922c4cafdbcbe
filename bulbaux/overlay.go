package bulbaux

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"

	"github.com/soypat/glbulb"
)

var (
	panelColor = color.RGBA{A: 160}
	textColor  = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	groupColor = color.RGBA{R: 255, G: 200, B: 90, A: 255}
)

// Overlay rasterizes the settings panel shown over the rendered frame.
type Overlay struct {
	face       font.Face
	lineHeight int
	pad        int
}

// NewOverlay returns an Overlay drawing Go Mono text of the given size in points.
func NewOverlay(size float64) (*Overlay, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	metrics := face.Metrics()
	return &Overlay{
		face:       face,
		lineHeight: (metrics.Height + 2<<6).Ceil(),
		pad:        6,
	}, nil
}

// Size returns the size of an image able to hold the full panel.
func (o *Overlay) Size() image.Point {
	lines := overlayLines(glbulb.DefaultSettings(), 0)
	width := 0
	for _, line := range lines {
		adv := font.MeasureString(o.face, line.text).Ceil()
		width = max(width, adv)
	}
	// Values may grow slightly wider than defaults.
	width += 8 * font.MeasureString(o.face, "0").Ceil()
	return image.Point{X: width + 2*o.pad, Y: len(lines)*o.lineHeight + 2*o.pad}
}

// Draw clears img and draws the settings panel for s and the frame rate fps.
func (o *Overlay) Draw(img *image.RGBA, s glbulb.Settings, fps float32) {
	bb := img.Bounds()
	draw.Draw(img, bb, image.NewUniform(panelColor), image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  img,
		Face: o.face,
	}
	ascent := o.face.Metrics().Ascent.Ceil()
	for i, line := range overlayLines(s, fps) {
		d.Src = image.NewUniform(textColor)
		if line.group {
			d.Src = image.NewUniform(groupColor)
		}
		d.Dot = fixed.P(bb.Min.X+o.pad, bb.Min.Y+o.pad+ascent+i*o.lineHeight)
		d.DrawString(line.text)
	}
}

// DrawOverlay draws the settings panel into img with a default Overlay.
func DrawOverlay(img *image.RGBA, s glbulb.Settings, fps float32) error {
	o, err := NewOverlay(13)
	if err != nil {
		return err
	}
	o.Draw(img, s, fps)
	return nil
}

type overlayLine struct {
	text  string
	group bool
}

func overlayLines(s glbulb.Settings, fps float32) []overlayLine {
	lines := []overlayLine{{text: fmt.Sprintf("%.1f FPS", fps), group: true}}
	for _, row := range settingsRows(s) {
		if row[0] != "" {
			lines = append(lines, overlayLine{text: row[0], group: true})
		}
		lines = append(lines, overlayLine{text: fmt.Sprintf("  %-17s %s", row[1], row[2])})
	}
	return lines
}
