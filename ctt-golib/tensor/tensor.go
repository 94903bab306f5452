// Package tensor provides a dense, row-major float32 tensor that is the unit of
// exchange between the encoder, the collator and whatever consumes batches.
package tensor

import (
	"fmt"
	"strings"

	"github.com/kiteco/ctt/ctt-golib/errors"
)

// ErrShapeMismatch is returned when tensors that must agree on shape do not.
var ErrShapeMismatch = errors.New("tensor shape mismatch")

// Tensor is a dense row-major float32 array.
type Tensor struct {
	Shape []int
	Data  []float32
}

// New returns a zero-filled tensor of the given shape.
func New(shape ...int) Tensor {
	return Tensor{
		Shape: append([]int(nil), shape...),
		Data:  make([]float32, numElements(shape)),
	}
}

// FromSlice wraps data with the given shape. It panics if the number of
// elements does not match the shape.
func FromSlice(data []float32, shape ...int) Tensor {
	if n := numElements(shape); n != len(data) {
		panic(fmt.Sprintf("tensor: %d elements cannot have shape %v", len(data), shape))
	}
	return Tensor{Shape: append([]int(nil), shape...), Data: data}
}

// Vector returns a rank 1 tensor holding values.
func Vector(values ...float32) Tensor {
	return FromSlice(append([]float32(nil), values...), len(values))
}

// FromRows builds a (len(rows), width) matrix. All rows must share a width;
// width is only consulted when rows is empty.
func FromRows(rows [][]float32, width int) Tensor {
	if len(rows) > 0 {
		width = len(rows[0])
	}
	t := New(len(rows), width)
	for i, row := range rows {
		if len(row) != width {
			panic(fmt.Sprintf("tensor: row %d has width %d, expected %d", i, len(row), width))
		}
		copy(t.Data[i*width:(i+1)*width], row)
	}
	return t
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("tensor: negative dimension in %v", shape))
		}
		n *= d
	}
	return n
}

// Rank is the number of dimensions.
func (t Tensor) Rank() int {
	return len(t.Shape)
}

// Dim returns the size of dimension i; negative i counts from the end.
func (t Tensor) Dim(i int) int {
	if i < 0 {
		i += len(t.Shape)
	}
	return t.Shape[i]
}

// Size is the total number of elements.
func (t Tensor) Size() int {
	return len(t.Data)
}

func (t Tensor) offset(idx []int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: index %v has wrong rank for shape %v", idx, t.Shape))
	}
	var off int
	for i, v := range idx {
		if v < 0 || v >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.Shape))
		}
		off = off*t.Shape[i] + v
	}
	return off
}

// At returns the element at idx.
func (t Tensor) At(idx ...int) float32 {
	return t.Data[t.offset(idx)]
}

// Set writes v at idx.
func (t Tensor) Set(v float32, idx ...int) {
	t.Data[t.offset(idx)] = v
}

// rowSize is the number of elements under one index of the first dimension.
func (t Tensor) rowSize() int {
	if len(t.Shape) == 0 {
		return 1
	}
	return numElements(t.Shape[1:])
}

// Row returns the elements under index i of the first dimension. The result
// aliases t.
func (t Tensor) Row(i int) []float32 {
	rs := t.rowSize()
	return t.Data[i*rs : (i+1)*rs]
}

// Clone returns a deep copy of t.
func (t Tensor) Clone() Tensor {
	return Tensor{
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float32(nil), t.Data...),
	}
}

// Apply returns a copy of t with f applied to every element.
func (t Tensor) Apply(f func(float32) float32) Tensor {
	out := t.Clone()
	for i, v := range out.Data {
		out.Data[i] = f(v)
	}
	return out
}

// SliceLast returns a copy of t[..., start:end].
func (t Tensor) SliceLast(start, end int) (Tensor, error) {
	if t.Rank() == 0 {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "cannot slice a scalar")
	}
	last := t.Dim(-1)
	if start < 0 || end > last || start > end {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "slice [%d:%d] out of range for shape %v", start, end, t.Shape)
	}
	width := end - start
	shape := append([]int(nil), t.Shape...)
	shape[len(shape)-1] = width

	out := New(shape...)
	var outer int
	if last > 0 {
		outer = t.Size() / last
	}
	for i := 0; i < outer; i++ {
		copy(out.Data[i*width:(i+1)*width], t.Data[i*last+start:i*last+end])
	}
	return out, nil
}

// PadRows right-pads the first dimension of t with zeros up to n rows.
func (t Tensor) PadRows(n int) (Tensor, error) {
	if t.Rank() == 0 {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "cannot pad a scalar")
	}
	if t.Shape[0] > n {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "cannot pad %d rows down to %d", t.Shape[0], n)
	}
	shape := append([]int(nil), t.Shape...)
	shape[0] = n
	out := New(shape...)
	copy(out.Data, t.Data)
	return out, nil
}

// Stack stacks tensors of identical shape along a new leading dimension.
func Stack(ts []Tensor) (Tensor, error) {
	if len(ts) == 0 {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "cannot stack zero tensors")
	}
	shape := ts[0].Shape
	out := New(append([]int{len(ts)}, shape...)...)
	rs := out.rowSize()
	for i, t := range ts {
		if !SameShape(t.Shape, shape) {
			return Tensor{}, errors.Wrapf(ErrShapeMismatch, "element %d has shape %v, expected %v", i, t.Shape, shape)
		}
		copy(out.Data[i*rs:(i+1)*rs], t.Data)
	}
	return out, nil
}

// Concat concatenates tensors along their last dimension. All leading
// dimensions must agree.
func Concat(ts ...Tensor) (Tensor, error) {
	if len(ts) == 0 {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "cannot concatenate zero tensors")
	}
	if ts[0].Rank() == 0 {
		return Tensor{}, errors.Wrapf(ErrShapeMismatch, "cannot concatenate scalars")
	}
	lead := ts[0].Shape[:ts[0].Rank()-1]
	var width int
	for i, t := range ts {
		if t.Rank() == 0 || !SameShape(t.Shape[:t.Rank()-1], lead) {
			return Tensor{}, errors.Wrapf(ErrShapeMismatch, "element %d has shape %v, expected leading %v", i, t.Shape, lead)
		}
		width += t.Dim(-1)
	}
	out := New(append(append([]int(nil), lead...), width)...)
	outer := numElements(lead)
	for row := 0; row < outer; row++ {
		pos := row * width
		for _, t := range ts {
			w := t.Dim(-1)
			copy(out.Data[pos:pos+w], t.Data[row*w:(row+1)*w])
			pos += w
		}
	}
	return out, nil
}

// Sum of all elements.
func (t Tensor) Sum() float64 {
	var s float64
	for _, v := range t.Data {
		s += float64(v)
	}
	return s
}

// Equal reports whether t and o have the same shape and elements.
func (t Tensor) Equal(o Tensor) bool {
	if !SameShape(t.Shape, o.Shape) || len(t.Data) != len(o.Data) {
		return false
	}
	for i := range t.Data {
		if t.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// ShapeString formats the shape like (3, 5, 29).
func (t Tensor) ShapeString() string {
	parts := make([]string, 0, len(t.Shape))
	for _, d := range t.Shape {
		parts = append(parts, fmt.Sprintf("%d", d))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// SameShape compares two shapes.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
