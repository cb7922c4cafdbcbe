package glbuild

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
)

// VersionStr is the GLSL version directive of the render programs.
const VersionStr = "#version 460\n"

// computeVersionStr is the version of compute programs.
const computeVersionStr = "#version 430\n"

var defaultComputeHeader = []byte("#shader compute\n" + computeVersionStr)

//go:embed mandelbulb.glsl
var mandelbulbSource []byte

//go:embed raymarch.glsl
var raymarchSource []byte

// Programmer writes the GLSL programs of the raymarcher. Uniform declarations
// are generated from the `uniform` struct tags of [glbulb.Snapshot] and
// constants are emitted as #define directives from the glbulb package so the
// GPU programs never drift from the CPU reference.
type Programmer struct {
	computeHeader []byte
	scratch       []byte
	invocX        int
}

// NewDefaultProgrammer returns a Programmer with reasonable default parameters for use with glgl package on the local machine.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		computeHeader: defaultComputeHeader,
		scratch:       make([]byte, 0, 2048),
		invocX:        1,
	}
}

// SetComputeInvocations sets the work group local-sizes. x*y*z must be less than maximum number of invocations.
func (p *Programmer) SetComputeInvocations(x, y, z int) {
	if y != 1 || z != 1 {
		panic("unsupported")
	} else if x < 1 {
		panic("zero or negative X invocation size")
	}
	p.invocX = x
}

// ComputeInvocations returns the worker group invocation size in x y and z.
func (p *Programmer) ComputeInvocations() (int, int, int) {
	return p.invocX, 1, 1
}

// WriteVertex writes the fullscreen quad vertex shader. The quad is drawn
// from the 2D attribute aPos in clip space.
func (p *Programmer) WriteVertex(w io.Writer) (int, error) {
	return io.WriteString(w, VersionStr+`in vec2 aPos;
out vec2 vUV;
void main() {
	vUV = aPos * 0.5 + 0.5;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
`)
}

// WriteFragment writes the raymarching fragment shader. The program reads
// every field of [glbulb.Snapshot] as a uniform and writes linear RGB.
func (p *Programmer) WriteFragment(w io.Writer) (n int, err error) {
	b := append(p.scratch[:0], VersionStr...)
	b = AppendContractDefines(b)
	b, err = AppendUniformDecls(b, glbulb.Snapshot{})
	if err != nil {
		return 0, err
	}
	b = append(b, '\n')
	b = append(b, mandelbulbSource...)
	b = append(b, '\n')
	b = append(b, raymarchSource...)
	p.scratch = b
	return w.Write(b)
}

// WriteComputeDE writes a compute program in glgl's combined format which
// evaluates the distance estimator over a buffer of positions. Positions are
// read from binding 0 as tightly packed floats, distances are written to
// binding 1 and escape iteration counts to binding 2. The fractal parameters
// are the uniforms u_power, u_maxIter and u_bailout.
func (p *Programmer) WriteComputeDE(w io.Writer) (n int, err error) {
	b := append(p.scratch[:0], p.computeHeader...)
	b = AppendContractDefines(b)
	b = append(b, "uniform float u_power;\nuniform int u_maxIter;\nuniform float u_bailout;\n\n"...)
	b = append(b, mandelbulbSource...)
	b = fmt.Appendf(b, `
layout(local_size_x = %d, local_size_y = 1, local_size_z = 1) in;

// Input: 3D positions packed as consecutive floats.
layout(std430, binding = 0) buffer PositionsBuffer {
	float vbo_positions[];
};

// Output: distances and iteration counts. Maps to position buffer.
layout(std430, binding = 1) buffer DistancesBuffer {
	float vbo_distances[];
};
layout(std430, binding = 2) buffer IterationsBuffer {
	int vbo_iterations[];
};

void main() {
	int idx = int( gl_GlobalInvocationID.x );
	if (idx >= vbo_distances.length()) {
		return;
	}
	vec3 p = vec3(vbo_positions[3*idx], vbo_positions[3*idx+1], vbo_positions[3*idx+2]);
	int iter;
	vbo_distances[idx] = mandelbulbDE(p, u_power, u_maxIter, u_bailout, iter);
	vbo_iterations[idx] = iter;
}
`, p.invocX)
	p.scratch = b
	return w.Write(b)
}

// AppendContractDefines appends the raymarcher constants shared with the CPU
// reference renderer as #define directives.
func AppendContractDefines(b []byte) []byte {
	b = appendFloatDefine(b, "NO_ESCAPE_DISTANCE", glbulb.NoEscapeDistance)
	b = appendFloatDefine(b, "NORMAL_STEP", glbulb.NormalStep)
	b = appendIntDefine(b, "AO_SAMPLES", glbulb.AOSamples)
	b = appendFloatDefine(b, "AO_START", glbulb.AOStart)
	b = appendFloatDefine(b, "AO_SPACING", glbulb.AOSpacing)
	b = appendFloatDefine(b, "AO_DECAY", glbulb.AODecay)
	b = appendFloatDefine(b, "AO_STRENGTH", glbulb.AOStrength)
	b = appendIntDefine(b, "SHADOW_STEPS", glbulb.ShadowSteps)
	b = appendFloatDefine(b, "SHADOW_MIN_T", glbulb.ShadowMinT)
	b = appendFloatDefine(b, "SHADOW_MAX_T", glbulb.ShadowMaxT)
	b = appendFloatDefine(b, "SHADOW_HARDNESS", glbulb.ShadowHardness)
	b = appendFloatDefine(b, "SHADOW_HIT_DIST", glbulb.ShadowHitDist)
	b = appendFloatDefine(b, "SHADOW_MIN_STEP", glbulb.ShadowMinStep)
	b = appendFloatDefine(b, "SHADOW_MAX_STEP", glbulb.ShadowMaxStep)
	b = appendFloatDefine(b, "AMBIENT", glbulb.Ambient)
	b = appendFloatDefine(b, "DIFFUSE", glbulb.Diffuse)
	b = appendFloatDefine(b, "ITER_WEIGHT", glbulb.IterWeight)
	b = appendFloatDefine(b, "HEIGHT_WEIGHT", glbulb.HeightWeight)
	b = AppendDefineDecl(b, "LIGHT_DIR", string(AppendVec3(nil, glbulb.LightDir)))
	b = AppendDefineDecl(b, "BACKGROUND", string(AppendVec3(nil, glbulb.Background)))
	return b
}

func appendFloatDefine(b []byte, name string, v float32) []byte {
	return AppendDefineDecl(b, name, string(AppendFloat(nil, '-', '.', v)))
}

func appendIntDefine(b []byte, name string, v int) []byte {
	return AppendDefineDecl(b, name, strconv.Itoa(v))
}

// ForEachUniform calls fn with the uniform name and value of every field of
// the struct v tagged with `uniform:"name"`. Untagged fields are skipped.
func ForEachUniform(v any, fn func(name string, value any) error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errors.New("uniforms must be declared by a struct")
	}
	tp := rv.Type()
	for i := 0; i < tp.NumField(); i++ {
		name := tp.Field(i).Tag.Get("uniform")
		if name == "" {
			continue
		}
		err := fn(name, rv.Field(i).Interface())
		if err != nil {
			return fmt.Errorf("uniform %s: %w", name, err)
		}
	}
	return nil
}

// AppendUniformDecls appends a uniform declaration for every tagged field of struct v.
func AppendUniformDecls(b []byte, v any) ([]byte, error) {
	err := ForEachUniform(v, func(name string, value any) error {
		typename, err := glTypename(reflect.TypeOf(value))
		if err != nil {
			return err
		}
		b = append(b, "uniform "...)
		b = append(b, typename...)
		b = append(b, ' ')
		b = append(b, name...)
		b = append(b, ";\n"...)
		return nil
	})
	return b, err
}

func glTypename(tp reflect.Type) (typename string, err error) {
	switch tp {
	case reflect.TypeOf(float32(0)):
		typename = "float"
	case reflect.TypeOf(ms2.Vec{}):
		typename = "vec2"
	case reflect.TypeOf(ms3.Vec{}):
		typename = "vec3"
	case reflect.TypeOf(uint32(0)):
		typename = "uint"
	case reflect.TypeOf(int32(0)):
		typename = "int"
	case reflect.TypeOf([2]int32{}):
		typename = "ivec2"
	case nil:
		err = errors.New("nil element type")
	default:
		err = fmt.Errorf("equivalent type not implemented for %s", tp.String())
	}
	return typename, err
}

func AppendDefineDecl(b []byte, aliasToDefine, aliasReplace string) []byte {
	b = append(b, "#define "...)
	b = append(b, aliasToDefine...)
	b = append(b, ' ')
	b = append(b, aliasReplace...)
	b = append(b, '\n')
	return b
}

// AppendVec3 appends a vec3 constructor expression of v.
func AppendVec3(b []byte, v ms3.Vec) []byte {
	b = append(b, "vec3("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	return append(b, ')')
}

const decimalDigits = 9

// AppendFloat appends v in GLSL float literal form with trailing zeros trimmed.
// neg and decimal replace the minus sign and decimal point.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
