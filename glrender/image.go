package glrender

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
	"github.com/soypat/glgl/math/ms1"
)

// Renderer renders snapshots on the CPU into images. The zero value is
// ready to use and renders with one worker per CPU.
type Renderer struct {
	// Workers is the number of goroutines rendering rows concurrently.
	Workers int
	// RowsPerChunk is the number of rows a worker renders before checking
	// for cancellation and picking up the next chunk. Defaults to 8.
	RowsPerChunk int
}

// Render shades every pixel of img with s. The image bounds must match the
// snapshot's resolution. Output is identical for any number of workers.
// Render returns ctx's error if cancelled before finishing, img is then
// partially rendered.
func (r *Renderer) Render(ctx context.Context, s *glbulb.Snapshot, img *image.RGBA) error {
	bb := img.Bounds()
	if bb.Empty() {
		return errors.New("empty image")
	} else if float32(bb.Dx()) != s.Resolution.X || float32(bb.Dy()) != s.Resolution.Y {
		return fmt.Errorf("image size %dx%d does not match snapshot resolution %gx%g", bb.Dx(), bb.Dy(), s.Resolution.X, s.Resolution.Y)
	}
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunkSize := r.RowsPerChunk
	if chunkSize <= 0 {
		chunkSize = 8
	}
	chunks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunkMin := range chunks {
				chunkMax := min(chunkMin+chunkSize, bb.Dy())
				for row := chunkMin; row < chunkMax; row++ {
					renderRow(s, img, row)
				}
			}
		}()
	}
	var err error
SEND:
	for chunkMin := 0; chunkMin < bb.Dy(); chunkMin += chunkSize {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break SEND
		case chunks <- chunkMin:
		}
	}
	close(chunks)
	wg.Wait()
	return err
}

// renderRow shades image row y counted from the top. GL fragment rows are
// counted from the bottom.
func renderRow(s *glbulb.Snapshot, img *image.RGBA, y int) {
	bb := img.Bounds()
	fragY := float32(bb.Dy()-1-y) + 0.5
	for x := 0; x < bb.Dx(); x++ {
		col := Shade(s, ms2.Vec{X: float32(x) + 0.5, Y: fragY})
		img.SetRGBA(bb.Min.X+x, bb.Min.Y+y, ToSRGB(col))
	}
}

// ToSRGB encodes a linear RGB color with components in [0,1] with the sRGB
// transfer function, as an sRGB framebuffer does on write.
func ToSRGB(c ms3.Vec) color.RGBA {
	return color.RGBA{
		R: quantize(linearToSRGB(c.X)),
		G: quantize(linearToSRGB(c.Y)),
		B: quantize(linearToSRGB(c.Z)),
		A: 255,
	}
}

func linearToSRGB(v float32) float32 {
	v = ms1.Clamp(v, 0, 1)
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}

func quantize(v float32) uint8 {
	return uint8(ms1.Clamp(v*255+0.5, 0, 255))
}
