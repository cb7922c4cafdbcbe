//go:build tinygo || !cgo

package gleval

import (
	"errors"
	"io"

	"github.com/soypat/geometry/ms3"
)

var errNoCGO = errors.New("GPU evaluation requires CGo and is not supported on TinyGo")

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
func Init1x1GLFW() (terminate func(), err error) {
	return nil, errNoCGO
}

// NewComputeMandelbulb compiles the distance estimator compute program.
func NewComputeMandelbulb(glglSourceCode io.Reader, m Mandelbulb, invocX int) (*MandelbulbCompute, error) {
	return nil, errNoCGO
}

type MandelbulbCompute struct {
	Mandelbulb
}

func (mc *MandelbulbCompute) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	return errNoCGO
}

func (mc *MandelbulbCompute) EvaluateIterations(pos []ms3.Vec, dist []float32, iters []int32) error {
	return errNoCGO
}

func (mc *MandelbulbCompute) Delete() {}
