package bulbaux_test

import (
	"bytes"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/soypat/glbulb"
	"github.com/soypat/glbulb/bulbaux"
)

func TestWriteSettingsTable(t *testing.T) {
	var buf bytes.Buffer
	bulbaux.WriteSettingsTable(&buf, glbulb.DefaultSettings())
	out := buf.String()
	for _, want := range []string{"Group", "Camera", "Fractal", "Raymarch", "Shading", "Power", "8.000", "200", "0.001", "(0.20, 0.30, 0.60)"} {
		if !strings.Contains(out, want) {
			t.Errorf("settings table missing %q:\n%s", want, out)
		}
	}
}

func TestFrameStats(t *testing.T) {
	var fs bulbaux.FrameStats
	if fs.Mean() != 0 || fs.FPS() != 0 {
		t.Error("empty stats should be zero")
	}
	for _, dt := range []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 20 * time.Millisecond} {
		fs.Record(dt)
	}
	if fs.Frames != 3 || fs.Min != 10*time.Millisecond || fs.Max != 30*time.Millisecond || fs.Mean() != 20*time.Millisecond {
		t.Errorf("bad stats %+v mean=%s", fs, fs.Mean())
	}
	if fps := fs.FPS(); fps < 49.9 || fps > 50.1 {
		t.Errorf("fps=%g, want 50", fps)
	}
	var buf bytes.Buffer
	bulbaux.WriteFrameStatsTable(&buf, fs)
	if !strings.Contains(buf.String(), "20ms") || !strings.Contains(buf.String(), "50.0") {
		t.Errorf("frame stats table:\n%s", buf.String())
	}
}

func TestOverlay(t *testing.T) {
	o, err := bulbaux.NewOverlay(13)
	if err != nil {
		t.Fatal(err)
	}
	sz := o.Size()
	if sz.X <= 0 || sz.Y <= 0 {
		t.Fatalf("bad overlay size %v", sz)
	}
	img := image.NewRGBA(image.Rectangle{Max: sz})
	o.Draw(img, glbulb.DefaultSettings(), 60)
	// The panel background is translucent black, text is opaque.
	var opaque int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			opaque++
		}
	}
	if opaque == 0 {
		t.Error("no text drawn on overlay")
	}
	if c := img.RGBAAt(0, 0); c.A != 160 || c.R != 0 {
		t.Errorf("unexpected panel color %v", c)
	}
	err = bulbaux.DrawOverlay(img, glbulb.DefaultSettings(), 60)
	if err != nil {
		t.Fatal(err)
	}
}
