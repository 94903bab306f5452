package tensor

import (
	"testing"

	"github.com/kiteco/ctt/ctt-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRowsAndAt(t *testing.T) {
	m := FromRows([][]float32{{1, 2, 3}, {4, 5, 6}}, 0)
	assert.Equal(t, []int{2, 3}, m.Shape)
	assert.Equal(t, float32(6), m.At(1, 2))
	assert.Equal(t, []float32{4, 5, 6}, m.Row(1))

	empty := FromRows(nil, 4)
	assert.Equal(t, []int{0, 4}, empty.Shape)
	assert.Equal(t, 0, empty.Size())
}

func TestSliceLast(t *testing.T) {
	m := New(2, 3, 4)
	for i := range m.Data {
		m.Data[i] = float32(i)
	}
	s, err := m.SliceLast(3, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, s.Shape)
	assert.Equal(t, []float32{3, 7, 11, 15, 19, 23}, s.Data)

	_, err = m.SliceLast(2, 5)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestPadRows(t *testing.T) {
	m := FromRows([][]float32{{1, 2}, {3, 4}}, 0)
	p, err := m.PadRows(4)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, p.Shape)
	assert.Equal(t, []float32{1, 2, 3, 4, 0, 0, 0, 0}, p.Data)

	_, err = m.PadRows(1)
	assert.Error(t, err)
}

func TestStack(t *testing.T) {
	s, err := Stack([]Tensor{Vector(1, 2), Vector(3, 4), Vector(5, 6)})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, s.Shape)
	assert.Equal(t, float32(5), s.At(2, 0))

	_, err = Stack([]Tensor{Vector(1, 2), Vector(1)})
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = Stack(nil)
	assert.Error(t, err)
}

func TestConcat(t *testing.T) {
	a := FromRows([][]float32{{1, 2}, {3, 4}}, 0)
	b := FromRows([][]float32{{9}, {8}}, 0)
	c, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, c.Shape)
	assert.Equal(t, []float32{1, 2, 9, 3, 4, 8}, c.Data)

	_, err = Concat(a, Vector(1, 2, 3))
	assert.Error(t, err)
}

func TestApplyDoesNotAlias(t *testing.T) {
	v := Vector(1, 2, 3)
	w := v.Apply(func(x float32) float32 { return x - 1 })
	assert.Equal(t, []float32{0, 1, 2}, w.Data)
	assert.Equal(t, []float32{1, 2, 3}, v.Data)
	assert.Equal(t, "(3)", w.ShapeString())
	assert.Equal(t, float64(6), v.Sum())
	assert.True(t, v.Equal(v.Clone()))
}
