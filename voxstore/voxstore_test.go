package voxstore

import (
	"errors"
	"fmt"
	"testing"
)

func TestDataTypeNames(t *testing.T) {
	for _, elem := range []DataType{T_uint8, T_int8, T_uint16, T_int16, T_uint32, T_int32, T_uint64, T_int64, T_float32, T_float64} {
		got, err := DataTypeByName(elem.String())
		if err != nil {
			t.Errorf("%s: %v", elem, err)
		}
		if got != elem {
			t.Errorf("DataTypeByName(%q) = %s", elem.String(), got)
		}
	}
	if _, err := DataTypeByName("complex128"); err == nil {
		t.Errorf("expected unknown element type to be rejected")
	}
}

func TestByteOrderNames(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		got, err := ByteOrderByName(order.String())
		if err != nil {
			t.Errorf("%s: %v", order, err)
		}
		if got != order {
			t.Errorf("ByteOrderByName(%q) = %s", order.String(), got)
		}
	}
	if _, err := ByteOrderByName("middle"); err == nil {
		t.Errorf("expected unknown byte order to be rejected")
	}

	// NativeOrder must describe how this architecture actually frames ints.
	native := NativeOrder()
	var buf [2]byte
	native.Order().PutUint16(buf[:], 0x0102)
	if buf[0] == 0x01 && native != BigEndian {
		t.Errorf("native order reported %s on a big-endian layout", native)
	}
	if buf[0] == 0x02 && native != LittleEndian {
		t.Errorf("native order reported %s on a little-endian layout", native)
	}
}

func TestVolumeShape(t *testing.T) {
	vol := NewVolume([3]int{3, 4, 5}, T_int16)
	if err := vol.CheckShape(); err != nil {
		t.Errorf("fresh volume fails shape check: %v", err)
	}
	if vol.NumVoxels() != 60 {
		t.Errorf("NumVoxels = %d, expected 60", vol.NumVoxels())
	}
	if vol.SliceBytes() != 4*5*2 {
		t.Errorf("SliceBytes = %d, expected 40", vol.SliceBytes())
	}

	plane, err := vol.Plane(2)
	if err != nil {
		t.Fatalf("plane: %v", err)
	}
	if plane.Size != [2]int{5, 4} {
		t.Errorf("plane size %v, expected [5 4]", plane.Size)
	}
	if _, err := vol.Plane(3); err == nil {
		t.Errorf("expected out-of-range plane to fail")
	}

	bad := &Volume{Shape: [3]int{3, 0, 5}, ElemType: T_uint8}
	if err := bad.CheckShape(); err == nil {
		t.Errorf("expected zero dimension to fail shape check")
	}
	short := &Volume{Shape: [3]int{2, 2, 2}, ElemType: T_uint16, Data: make([]byte, 3)}
	if err := short.CheckShape(); err == nil {
		t.Errorf("expected truncated data to fail shape check")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cause := fmt.Errorf("underlying")

	var derr *DiscoveryError
	if !errors.As(error(&DiscoveryError{Dir: "d", Err: cause}), &derr) {
		t.Errorf("DiscoveryError not matchable with errors.As")
	}
	if !errors.Is(&WriteError{Path: "p", Err: cause}, cause) {
		t.Errorf("WriteError does not unwrap to its cause")
	}
	if !errors.Is(&ReadError{Path: "p", Err: cause}, cause) {
		t.Errorf("ReadError does not unwrap to its cause")
	}
	if !errors.Is(&ParseError{Path: "p", Err: cause}, cause) {
		t.Errorf("ParseError does not unwrap to its cause")
	}
	if !errors.Is(&TagAttachError{Key: "k", Err: cause}, cause) {
		t.Errorf("TagAttachError does not unwrap to its cause")
	}
}
