package bulbaux

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
	"time"
)

// WritePNG encodes img as a PNG file.
func WritePNG(filename string, img image.Image) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	err = png.Encode(fp, img)
	if err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// screenshotSaver encodes screenshots off the frame loop. Wait must be
// called before exiting so no screenshot is lost.
type screenshotSaver struct {
	wg sync.WaitGroup
	// write defaults to WritePNG.
	write func(filename string, img image.Image) error
}

func (ss *screenshotSaver) Save(filename string, img image.Image) {
	write := ss.write
	if write == nil {
		write = WritePNG
	}
	ss.wg.Add(1)
	go func() {
		defer ss.wg.Done()
		err := write(filename, img)
		if err != nil {
			logger.Errorf("saving screenshot: %s", err)
			return
		}
		logger.Noticef("saved screenshot %s", filename)
	}()
}

// Wait blocks until every screenshot passed to Save is written.
func (ss *screenshotSaver) Wait() {
	ss.wg.Wait()
}

// ScreenshotName returns a timestamped screenshot filename.
func ScreenshotName(t time.Time) string {
	return fmt.Sprintf("glbulb_%s.png", t.Format("20060102_150405.000"))
}

// flipRows flips img vertically in place. GL reads pixels bottom row first.
func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	rowLen := 4 * img.Rect.Dx()
	tmp := make([]byte, rowLen)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		bot := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+rowLen]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}
