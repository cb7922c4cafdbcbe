package gleval

import (
	"errors"

	"github.com/soypat/geometry/ms3"
)

// SDF3 implements a 3D signed distance field in vectorized
// form suitable for running on GPU.
type SDF3 interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// dist and pos must be of same length.  Resulting distances are stored
	// in dist.
	//
	// userData facilitates getting data to the evaluators for use in processing.
	Evaluate(pos []ms3.Vec, dist []float32, userData any) error
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() ms3.Box
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
)

// NormalsCentralDiff computes the unnormalized gradient of s at each position
// by central differences, sampling s at offsets of ±h along each axis. All
// samples are evaluated in a single call to s.Evaluate.
func NormalsCentralDiff(s SDF3, pos []ms3.Vec, normals []ms3.Vec, h float32, userData any) error {
	switch {
	case s == nil:
		return errors.New("nil SDF3")
	case h <= 0:
		return errors.New("invalid step")
	case len(pos) != len(normals):
		return errors.New("length of position must match length of normals")
	case len(pos) == 0:
		return errEmptyBuffers
	}
	// Six samples per position ordered +x,-x,+y,-y,+z,-z.
	samples := make([]ms3.Vec, 0, 6*len(pos))
	for _, p := range pos {
		samples = append(samples,
			ms3.Add(p, ms3.Vec{X: h}), ms3.Sub(p, ms3.Vec{X: h}),
			ms3.Add(p, ms3.Vec{Y: h}), ms3.Sub(p, ms3.Vec{Y: h}),
			ms3.Add(p, ms3.Vec{Z: h}), ms3.Sub(p, ms3.Vec{Z: h}),
		)
	}
	dist := make([]float32, len(samples))
	err := s.Evaluate(samples, dist, userData)
	if err != nil {
		return err
	}
	for i := range normals {
		d := dist[6*i : 6*i+6]
		normals[i] = ms3.Vec{X: d[0] - d[1], Y: d[2] - d[3], Z: d[4] - d[5]}
	}
	return nil
}
