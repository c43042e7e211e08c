package env

import "fmt"

// DType names the element type of an observation.
type DType string

const (
	Uint8   DType = "uint8"
	Float32 DType = "float32"
)

// Discrete is an action space of N symbolic actions numbered 0..N-1.
type Discrete struct {
	N int
}

// Contains reports whether a is a valid action index.
func (d Discrete) Contains(a int) bool { return a >= 0 && a < d.N }

func (d Discrete) String() string { return fmt.Sprintf("Discrete(%d)", d.N) }

// Box is a bounded array space.
type Box struct {
	Low   float64
	High  float64
	Shape []int
	DType DType
}

// NewBox copies shape so later mutation by the caller cannot change the space.
func NewBox(low, high float64, shape []int, dtype DType) Box {
	return Box{Low: low, High: high, Shape: append([]int(nil), shape...), DType: dtype}
}

// Size is the number of elements described by Shape.
func (b Box) Size() int {
	if len(b.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range b.Shape {
		n *= d
	}
	return n
}

// Clone returns a deep copy of the space.
func (b Box) Clone() Box { return NewBox(b.Low, b.High, b.Shape, b.DType) }

// Equal reports whether two spaces describe the same bounds, shape and dtype.
func (b Box) Equal(o Box) bool {
	if b.Low != o.Low || b.High != o.High || b.DType != o.DType || len(b.Shape) != len(o.Shape) {
		return false
	}
	for i := range b.Shape {
		if b.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}

func (b Box) String() string {
	return fmt.Sprintf("Box(%g, %g, %v, %s)", b.Low, b.High, b.Shape, b.DType)
}
