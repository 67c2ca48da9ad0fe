/*
	This file handles the layout of scalar samples within a volume: the element
	type of each sample and the byte order used to frame multi-byte elements.
*/

package voxstore

import (
	"encoding/binary"
	"fmt"
)

// DataType is a unique ID for each type of scalar sample within a volume.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_uint64
	T_int64
	T_float32
	T_float64
)

var typeBytes = map[DataType]int{
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_uint64:  8,
	T_int64:   8,
	T_float32: 4,
	T_float64: 8,
}

var typeNames = map[DataType]string{
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_uint64:  "uint64",
	T_int64:   "int64",
	T_float32: "float32",
	T_float64: "float64",
}

var pixelStrings = map[DataType]string{
	T_uint8:   "8-bit unsigned integer",
	T_int8:    "8-bit signed integer",
	T_uint16:  "16-bit unsigned integer",
	T_int16:   "16-bit signed integer",
	T_uint32:  "32-bit unsigned integer",
	T_int32:   "32-bit signed integer",
	T_uint64:  "64-bit unsigned integer",
	T_int64:   "64-bit signed integer",
	T_float32: "32-bit float",
	T_float64: "64-bit float",
}

// DataTypeBytes returns the # of bytes for a given element type.
// For example, "uint16" is 2 bytes.
func DataTypeBytes(t DataType) int {
	return typeBytes[t]
}

func (t DataType) String() string {
	name, found := typeNames[t]
	if !found {
		return fmt.Sprintf("unknown data type %d", uint8(t))
	}
	return name
}

// PixelString returns a display string for the element type in the style of
// imaging toolkits, e.g. "16-bit signed integer".
func (t DataType) PixelString() string {
	s, found := pixelStrings[t]
	if !found {
		return "unknown pixel type"
	}
	return s
}

// DataTypeByName returns the element type for a type name like "uint16".
func DataTypeByName(name string) (DataType, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown element type %q", name)
}

// ByteOrder is the endianness used to frame multi-byte elements.  It is always
// recorded explicitly when a volume is persisted, never inferred at read time.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}

// Order returns the matching encoding/binary byte order.
func (o ByteOrder) Order() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ByteOrderByName returns the byte order for "little" or "big".
func ByteOrderByName(name string) (ByteOrder, error) {
	switch name {
	case "little":
		return LittleEndian, nil
	case "big":
		return BigEndian, nil
	}
	return 0, fmt.Errorf("unknown byte order %q", name)
}

// NativeOrder returns the byte order of the running architecture.
func NativeOrder() ByteOrder {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 0x0102)
	if probe[0] == 0x01 {
		return BigEndian
	}
	return LittleEndian
}
