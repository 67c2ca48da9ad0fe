/*
	This file holds the in-memory representation of a loaded series: a 3d array
	of scalar samples in (z, y, x) order plus per-slice tag mappings.
*/

package voxstore

import "fmt"

// Tags is the flat string-to-string tag mapping carried by one slice.  Values
// are strings at this boundary; consumers reparse them downstream as needed.
type Tags map[string]string

// Duplicate returns a copy of the tag mapping.
func (t Tags) Duplicate() Tags {
	dup := make(Tags, len(t))
	for k, v := range t {
		dup[k] = v
	}
	return dup
}

// Volume is a 3d array of scalar samples in (z, y, x) order.  Data is kept as
// raw bytes framed in the recorded byte order so a volume can be persisted and
// decoded on any architecture without guessing endianness.
type Volume struct {
	Shape    [3]int // depth, height, width
	ElemType DataType
	Order    ByteOrder
	Data     []byte
}

// NewVolume allocates a zeroed volume of the given shape and element type in
// the architecture's native byte order.
func NewVolume(shape [3]int, elem DataType) *Volume {
	n := int64(shape[0]) * int64(shape[1]) * int64(shape[2]) * int64(DataTypeBytes(elem))
	return &Volume{
		Shape:    shape,
		ElemType: elem,
		Order:    NativeOrder(),
		Data:     make([]byte, n),
	}
}

// Depth returns the number of slices along z.
func (v *Volume) Depth() int {
	return v.Shape[0]
}

// NumVoxels returns the number of samples held by the volume.
func (v *Volume) NumVoxels() int64 {
	return int64(v.Shape[0]) * int64(v.Shape[1]) * int64(v.Shape[2])
}

// SliceBytes returns the byte length of one z slice.
func (v *Volume) SliceBytes() int {
	return v.Shape[1] * v.Shape[2] * DataTypeBytes(v.ElemType)
}

// CheckShape returns an error on degenerate volumes: a nil data buffer, a zero
// dimension, or a data length inconsistent with shape and element type.
func (v *Volume) CheckShape() error {
	if v == nil {
		return fmt.Errorf("nil volume")
	}
	for dim, extent := range v.Shape {
		if extent <= 0 {
			return fmt.Errorf("degenerate volume: dimension %d has extent %d", dim, extent)
		}
	}
	want := v.NumVoxels() * int64(DataTypeBytes(v.ElemType))
	if int64(len(v.Data)) != want {
		return fmt.Errorf("volume data is %d bytes, expected %d for shape %v %s",
			len(v.Data), want, v.Shape, v.ElemType)
	}
	return nil
}

// Plane is a view of one z slice of a volume.  Size is (width, height).
type Plane struct {
	Size     [2]int
	ElemType DataType
	Order    ByteOrder
	Data     []byte
}

// Plane returns the i-th z slice.  The returned data aliases the volume buffer.
func (v *Volume) Plane(i int) (Plane, error) {
	if i < 0 || i >= v.Shape[0] {
		return Plane{}, fmt.Errorf("slice index %d out of range [0, %d)", i, v.Shape[0])
	}
	n := v.SliceBytes()
	return Plane{
		Size:     [2]int{v.Shape[2], v.Shape[1]},
		ElemType: v.ElemType,
		Order:    v.Order,
		Data:     v.Data[i*n : (i+1)*n],
	}, nil
}
