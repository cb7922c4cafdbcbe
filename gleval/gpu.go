//go:build !tinygo && cgo

package gleval

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
// It returns a termination function that should be called when user is done running loads on GPU.
func Init1x1GLFW() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "compute",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	return terminate, err
}

// NewComputeMandelbulb compiles the distance estimator compute program
// written by glbuild's WriteComputeDE and returns the GPU version of m.
// invocX must match the local size the program was written with.
func NewComputeMandelbulb(glglSourceCode io.Reader, m Mandelbulb, invocX int) (*MandelbulbCompute, error) {
	if invocX < 1 {
		return nil, errors.New("zero or negative invocation size")
	}
	combinedSource, err := glgl.ParseCombined(glglSourceCode)
	if err != nil {
		return nil, err
	}
	glprog, err := glgl.CompileProgram(combinedSource)
	if err != nil {
		return nil, errors.New(string(combinedSource.Compute) + "\n" + err.Error())
	}
	return &MandelbulbCompute{
		Mandelbulb: m,
		prog:       glprog,
		invocX:     invocX,
	}, nil
}

// MandelbulbCompute is a [SDF3] that evaluates the Mandelbulb distance
// estimator on the GPU. Fractal parameters are read from the embedded
// Mandelbulb on every evaluation.
type MandelbulbCompute struct {
	Mandelbulb
	prog   glgl.Program
	invocX int
}

// Evaluate implements the [SDF3] interface.
func (mc *MandelbulbCompute) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	return mc.EvaluateIterations(pos, dist, nil)
}

// EvaluateIterations evaluates distances and, if iters is not nil, the
// escape iteration count of every position.
func (mc *MandelbulbCompute) EvaluateIterations(pos []ms3.Vec, dist []float32, iters []int32) (err error) {
	if len(pos) != len(dist) || (iters != nil && len(iters) != len(dist)) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	} else if mc.prog.ID() == 0 {
		return errors.New("program id is 0, did you compile MandelbulbCompute?")
	}
	prog := mc.prog
	prog.Bind()
	defer prog.Unbind()
	err = setUniforms(prog, mc.Power, int32(mc.MaxIterations), mc.Bailout)
	if err != nil {
		return err
	}

	var p runtime.Pinner
	var posSSBO, distSSBO, iterSSBO uint32
	p.Pin(&posSSBO)
	p.Pin(&distSSBO)
	p.Pin(&iterSSBO)
	defer p.Unpin()

	posSSBO = loadSSBO(pos, 0, gl.STATIC_DRAW)
	if posSSBO == 0 {
		return glErrOrMessage("zero SSBO id set by GL during compute loading")
	}
	defer gl.DeleteBuffers(1, &posSSBO)
	distSSBO = createSSBO(elemSize[float32]()*len(dist), 1, gl.DYNAMIC_READ)
	if distSSBO == 0 {
		return glErrOrMessage("zero id SSBO creating distance buffer")
	}
	defer gl.DeleteBuffers(1, &distSSBO)
	iterSSBO = createSSBO(elemSize[int32]()*len(dist), 2, gl.DYNAMIC_READ)
	if iterSSBO == 0 {
		return glErrOrMessage("zero id SSBO creating iteration buffer")
	}
	defer gl.DeleteBuffers(1, &iterSSBO)

	nWorkX := (len(dist) + mc.invocX - 1) / mc.invocX
	gl.DispatchCompute(uint32(nWorkX), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	err = copySSBO(dist, distSSBO)
	if err != nil {
		return err
	}
	if iters != nil {
		err = copySSBO(iters, iterSSBO)
		if err != nil {
			return err
		}
	}
	mc.evals += uint64(len(pos))
	return glgl.Err()
}

// Delete releases the GPU program.
func (mc *MandelbulbCompute) Delete() {
	mc.prog.Delete()
}

func setUniforms(prog glgl.Program, power float32, maxIter int32, bailout float32) error {
	powerLoc, err := prog.UniformLocation("u_power\x00")
	if err != nil {
		return err
	}
	iterLoc, err := prog.UniformLocation("u_maxIter\x00")
	if err != nil {
		return err
	}
	bailoutLoc, err := prog.UniformLocation("u_bailout\x00")
	if err != nil {
		return err
	}
	gl.Uniform1f(powerLoc, power)
	gl.Uniform1i(iterLoc, maxIter)
	gl.Uniform1f(bailoutLoc, bailout)
	return glgl.Err()
}

func loadSSBO[T any](slice []T, base, usage uint32) (ssbo uint32) {
	var p runtime.Pinner
	p.Pin(&ssbo)
	gl.GenBuffers(1, &ssbo)
	p.Unpin()
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	size := len(slice) * elemSize[T]()
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, unsafe.Pointer(&slice[0]), usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func createSSBO(size int, base, usage uint32) (ssbo uint32) {
	gl.GenBuffers(1, &ssbo)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func copySSBO[T any](dst []T, ssbo uint32) error {
	bufSize := elemSize[T]() * len(dst)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, bufSize, gl.MAP_READ_BIT)
	if ptr == nil {
		return glErrOrMessage("failed to map SSBO buffer during copy")
	}
	defer gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER)
	gpuBytes := unsafe.Slice((*byte)(ptr), bufSize)
	bufBytes := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), bufSize)
	copy(bufBytes, gpuBytes)
	return nil
}

func elemSize[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
