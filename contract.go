package glbulb

import "github.com/soypat/geometry/ms3"

// Constants of the raymarching algorithm shared by the GLSL program and the
// CPU reference renderer. Changing any of these changes the rendered image.
const (
	// NoEscapeDistance is returned by the distance estimator for points that
	// do not escape the bailout radius within the iteration budget.
	NoEscapeDistance = 1e3

	// NormalStep is the central differences step used for surface normals.
	NormalStep = 0.5e-3

	// Ambient occlusion samples along the normal at AOStart + AOSpacing*i/(AOSamples-1).
	AOSamples  = 5
	AOStart    = 0.01
	AOSpacing  = 0.12
	AODecay    = 0.95
	AOStrength = 3

	// Soft shadow march toward the light.
	ShadowSteps    = 32
	ShadowMinT     = 0.02
	ShadowMaxT     = 4
	ShadowHardness = 8
	ShadowHitDist  = 0.001
	ShadowMinStep  = 0.01
	ShadowMaxStep  = 0.2

	// Lighting terms: lit = Ambient + Diffuse*max(n·L,0)*shadow.
	Ambient = 0.2
	Diffuse = 0.8

	// Weights of the gradient parameter: k = IterWeight*iter/maxIter + HeightWeight*(0.5+0.5*n.y).
	IterWeight   = 0.8
	HeightWeight = 0.2
)

var (
	// LightDir is the unit direction toward the light.
	LightDir = Normalize(ms3.Vec{X: 0.6, Y: 0.7, Z: 0.4})
	// Background is the color of rays that miss the fractal.
	Background = ms3.Vec{}
)
