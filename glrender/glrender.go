// Package glrender is a CPU reference implementation of the raymarching
// program. Every function mirrors its GLSL counterpart and uses the constants
// of the glbulb package so that CPU frames match what the window displays.
package glrender

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
	"github.com/soypat/glbulb/gleval"
	"github.com/soypat/glgl/math/ms1"
)

// Ray returns the origin and unit direction of the primary ray through
// fragCoord. fragCoord follows GL conventions: pixel centers at half
// integers and the origin at the bottom left.
func Ray(s *glbulb.Snapshot, fragCoord ms2.Vec) (ro, rd ms3.Vec) {
	uv := ms2.Vec{
		X: (2*fragCoord.X - s.Resolution.X) / s.Resolution.Y,
		Y: (2*fragCoord.Y - s.Resolution.Y) / s.Resolution.Y,
	}
	offset := ms3.Add(ms3.Scale(uv.X, s.CamRight), ms3.Scale(uv.Y, s.CamUp))
	rd = glbulb.Normalize(ms3.Add(s.CamForward, ms3.Scale(s.FOV, offset)))
	return s.CamPos, rd
}

// DE evaluates the distance estimator with the fractal parameters of s.
func DE(s *glbulb.Snapshot, p ms3.Vec) float32 {
	d, _ := gleval.Estimate(p, s.Power, int(s.MaxIter), s.Bailout)
	return d
}

// March sphere traces from ro along rd. It reports a hit when the estimate
// falls under the snapshot's epsilon and a miss when the ray travels past
// MaxDist or the step budget runs out. steps is the number of estimates taken.
func March(s *glbulb.Snapshot, ro, rd ms3.Vec) (t float32, steps int, hit bool) {
	for steps = 0; steps < int(s.MaxSteps); steps++ {
		d := DE(s, ms3.Add(ro, ms3.Scale(t, rd)))
		if d < s.Epsilon {
			return t, steps + 1, true
		}
		t += d
		if t > s.MaxDist {
			return t, steps + 1, false
		}
	}
	return t, steps, false
}

// Normal returns the unit surface normal at p by central differences with
// offset [glbulb.NormalStep]. A vanishing gradient yields the zero vector.
func Normal(s *glbulb.Snapshot, p ms3.Vec) ms3.Vec {
	m := gleval.MandelbulbFromSnapshot(s)
	var n [1]ms3.Vec
	err := gleval.NormalsCentralDiff(&m, []ms3.Vec{p}, n[:], glbulb.NormalStep, nil)
	if err != nil {
		panic(err) // Mandelbulb evaluation only fails on malformed buffers.
	}
	return glbulb.Normalize(n[0])
}

// AmbientOcclusion samples the distance field along n. 1 is unoccluded.
func AmbientOcclusion(s *glbulb.Snapshot, p, n ms3.Vec) float32 {
	var occ float32
	var sca float32 = 1
	for i := 0; i < glbulb.AOSamples; i++ {
		h := glbulb.AOStart + glbulb.AOSpacing*float32(i)/float32(glbulb.AOSamples-1)
		d := DE(s, ms3.Add(p, ms3.Scale(h, n)))
		occ += (h - d) * sca
		sca *= glbulb.AODecay
	}
	return ms1.Clamp(1-glbulb.AOStrength*occ, 0, 1)
}

// SoftShadow marches from ro toward the light direction rd and returns the
// penumbra factor in [0,1]. 0 is fully shadowed.
func SoftShadow(s *glbulb.Snapshot, ro, rd ms3.Vec) float32 {
	var res float32 = 1
	var t float32 = glbulb.ShadowMinT
	for i := 0; i < glbulb.ShadowSteps; i++ {
		h := DE(s, ms3.Add(ro, ms3.Scale(t, rd)))
		if h < glbulb.ShadowHitDist {
			return 0
		}
		res = math32.Min(res, glbulb.ShadowHardness*h/t)
		t += ms1.Clamp(h, glbulb.ShadowMinStep, glbulb.ShadowMaxStep)
		if t > glbulb.ShadowMaxT {
			break
		}
	}
	return ms1.Clamp(res, 0, 1)
}

// Shade returns the linear RGB color of the pixel at fragCoord, each
// component in [0,1]. Shade is a pure function of its arguments.
func Shade(s *glbulb.Snapshot, fragCoord ms2.Vec) ms3.Vec {
	ro, rd := Ray(s, fragCoord)
	t, _, hit := March(s, ro, rd)
	if !hit {
		return glbulb.Background
	}
	p := ms3.Add(ro, ms3.Scale(t, rd))
	_, iter := gleval.Estimate(p, s.Power, int(s.MaxIter), s.Bailout)
	n := Normal(s, p)
	maxIter := max(s.MaxIter, 1)
	k := glbulb.IterWeight*float32(iter)/float32(maxIter) + glbulb.HeightWeight*(0.5+0.5*n.Y)
	k = ms1.Clamp(k, 0, 1)
	base := ms3.InterpElem(s.ColorA, s.ColorB, ms3.Vec{X: k, Y: k, Z: k})

	var ao, sha float32 = 1, 1
	if s.EnableAO != 0 {
		ao = AmbientOcclusion(s, p, n)
	}
	if s.EnableShadows != 0 {
		sha = SoftShadow(s, ms3.Add(p, ms3.Scale(2*s.Epsilon, n)), glbulb.LightDir)
	}
	dif := math32.Max(ms3.Dot(n, glbulb.LightDir), 0)
	lit := glbulb.Ambient + glbulb.Diffuse*dif*sha
	col := ms3.Scale(lit*ao, base)
	return ms3.Vec{
		X: ms1.Clamp(col.X, 0, 1),
		Y: ms1.Clamp(col.Y, 0, 1),
		Z: ms1.Clamp(col.Z, 0, 1),
	}
}
