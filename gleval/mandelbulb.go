package gleval

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
	"github.com/soypat/glgl/math/ms1"
)

// Estimate returns the distance estimate from p to the power-N Mandelbulb
// surface and the number of iterations applied before z escaped the bailout
// radius. Points that do not escape within maxIter iterations return
// [glbulb.NoEscapeDistance] and maxIter.
//
// Estimate is a pure function and matches the GLSL distance estimator.
func Estimate(p ms3.Vec, power float32, maxIter int, bailout float32) (dist float32, iter int) {
	z := p
	var dr float32 = 1
	var r float32
	for iter = 0; iter < maxIter; iter++ {
		r = ms3.Norm(z)
		if r > bailout {
			return 0.5 * math32.Log(r) * r / dr, iter
		}
		if r == 0 {
			// z^power vanishes, only the constant term remains.
			z = p
			dr = 1
			continue
		}
		theta := math32.Acos(ms1.Clamp(z.Z/r, -1, 1))
		phi := math32.Atan2(z.Y, z.X)
		dr = power*math32.Pow(r, power-1)*dr + 1

		zr := math32.Pow(r, power)
		st, ct := math32.Sincos(theta * power)
		sp, cp := math32.Sincos(phi * power)
		z = ms3.Vec{
			X: zr*st*cp + p.X,
			Y: zr*st*sp + p.Y,
			Z: zr*ct + p.Z,
		}
	}
	return glbulb.NoEscapeDistance, iter
}

// Mandelbulb is the CPU [SDF3] of the power-N Mandelbulb.
type Mandelbulb struct {
	Power         float32
	MaxIterations int
	Bailout       float32
	evals         uint64
}

// MandelbulbFromSnapshot returns the Mandelbulb described by the fractal parameters of snap.
func MandelbulbFromSnapshot(snap *glbulb.Snapshot) Mandelbulb {
	return Mandelbulb{
		Power:         snap.Power,
		MaxIterations: int(snap.MaxIter),
		Bailout:       snap.Bailout,
	}
}

// Evaluate implements the [SDF3] interface.
func (m *Mandelbulb) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	for i, p := range pos {
		dist[i], _ = Estimate(p, m.Power, m.MaxIterations, m.Bailout)
	}
	m.evals += uint64(len(pos))
	return nil
}

// Bounds returns the bailout box. Points outside of it escape on the first iteration.
func (m *Mandelbulb) Bounds() ms3.Box {
	b := m.Bailout
	return ms3.Box{
		Min: ms3.Vec{X: -b, Y: -b, Z: -b},
		Max: ms3.Vec{X: b, Y: b, Z: b},
	}
}

// Evaluations returns total evaluations performed succesfully during the SDF's lifetime.
func (m *Mandelbulb) Evaluations() uint64 {
	return m.evals
}
