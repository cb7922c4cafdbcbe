package bulbaux

import "time"

// FrameStats accumulates frame timing of an interactive session.
type FrameStats struct {
	Frames      int
	Total       time.Duration
	Min         time.Duration
	Max         time.Duration
	Screenshots int
}

// Record adds a frame that took dt to present.
func (fs *FrameStats) Record(dt time.Duration) {
	if fs.Frames == 0 || dt < fs.Min {
		fs.Min = dt
	}
	if dt > fs.Max {
		fs.Max = dt
	}
	fs.Frames++
	fs.Total += dt
}

// Mean returns the mean frame time or zero if no frames were recorded.
func (fs *FrameStats) Mean() time.Duration {
	if fs.Frames == 0 {
		return 0
	}
	return fs.Total / time.Duration(fs.Frames)
}

// FPS returns frames per second computed from the mean frame time.
func (fs *FrameStats) FPS() float32 {
	mean := fs.Mean()
	if mean <= 0 {
		return 0
	}
	return float32(time.Second) / float32(mean)
}
