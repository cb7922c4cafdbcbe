package glbulb

import (
	"github.com/soypat/geometry/ms3"
)

// Sub returns a-b.
func Sub(a, b ms3.Vec) ms3.Vec {
	return ms3.Sub(a, b)
}

// Cross returns the cross product a×b.
func Cross(a, b ms3.Vec) ms3.Vec {
	return ms3.Cross(a, b)
}

// Normalize returns v scaled to unit length. Vectors with a length under
// epstol normalize to the zero vector so callers must tolerate a zero result.
func Normalize(v ms3.Vec) ms3.Vec {
	n := ms3.Norm(v)
	if n <= epstol {
		return ms3.Vec{}
	}
	return ms3.Scale(1/n, v)
}
