/*
	This file implements the two-stage chunk codec: a byte-framing stage that
	fixes element endianness, and a blosc-style compression stage that applies a
	bit shuffle keyed on element width before a fast block compressor.  Both
	stages are exactly invertible so a stored chunk decodes bit-for-bit.
*/

package store

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/hammb/voxstore/voxstore"
)

// Compression is the block compressor used by the second codec stage.
type Compression uint8

const (
	Zstd Compression = iota
	Snappy
)

func (c Compression) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case Snappy:
		return "snappy"
	default:
		return "unknown compression"
	}
}

// CompressionByName returns the compressor for a descriptor name.
func CompressionByName(name string) (Compression, error) {
	switch name {
	case "zstd":
		return Zstd, nil
	case "snappy":
		return Snappy, nil
	}
	return 0, fmt.Errorf("unknown compressor %q", name)
}

var (
	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
)

func init() {
	// Level is fixed to the fastest setting: chunk writes sit on the critical
	// path of batch conversion and bit shuffling already buys most of the ratio.
	zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDec, _ = zstd.NewReader(nil)
}

// frameBytes re-frames multi-byte elements from one byte order to another.
// The input is unchanged; the result is a fresh buffer unless no swap is needed.
func frameBytes(data []byte, from, to voxstore.ByteOrder, typesize int) []byte {
	if from == to || typesize == 1 {
		return data
	}
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += typesize {
		for j := 0; j < typesize; j++ {
			out[i+j] = data[i+typesize-1-j]
		}
	}
	return out
}

// bitShuffle regroups the bits of equal significance across all elements of a
// chunk so runs of correlated high bits compress well.  Elements are typesize
// bytes wide.  Layout: the chunk is first transposed into typesize byte lanes;
// within each lane, bit k of byte i lands in plane k at bit position i%8.  A
// lane tail shorter than 8 bytes is carried through unshuffled so any chunk
// length round-trips.
func bitShuffle(data []byte, typesize int) []byte {
	if typesize <= 0 || len(data)%typesize != 0 {
		return data
	}
	n := len(data) / typesize // elements per chunk
	out := make([]byte, len(data))

	// Byte transpose into lanes.
	lanes := make([]byte, len(data))
	for i := 0; i < n; i++ {
		for j := 0; j < typesize; j++ {
			lanes[j*n+i] = data[i*typesize+j]
		}
	}

	// Bit transpose within each lane.
	full := n &^ 7 // bytes covered by whole 8-byte groups
	planeLen := full >> 3
	for j := 0; j < typesize; j++ {
		lane := lanes[j*n : (j+1)*n]
		dst := out[j*n : (j+1)*n]
		for i := 0; i < full; i++ {
			v := lane[i]
			byteIdx := i >> 3
			bitPos := uint(i & 7)
			for k := 0; k < 8; k++ {
				if v&(1<<uint(k)) != 0 {
					dst[k*planeLen+byteIdx] |= 1 << bitPos
				}
			}
		}
		copy(dst[full:], lane[full:])
	}
	return out
}

// bitUnshuffle inverts bitShuffle.
func bitUnshuffle(data []byte, typesize int) []byte {
	if typesize <= 0 || len(data)%typesize != 0 {
		return data
	}
	n := len(data) / typesize
	lanes := make([]byte, len(data))

	full := n &^ 7
	planeLen := full >> 3
	for j := 0; j < typesize; j++ {
		src := data[j*n : (j+1)*n]
		lane := lanes[j*n : (j+1)*n]
		for i := 0; i < full; i++ {
			byteIdx := i >> 3
			bitPos := uint(i & 7)
			var v byte
			for k := 0; k < 8; k++ {
				if src[k*planeLen+byteIdx]&(1<<bitPos) != 0 {
					v |= 1 << uint(k)
				}
			}
			lane[i] = v
		}
		copy(lane[full:], src[full:])
	}

	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		for j := 0; j < typesize; j++ {
			out[i*typesize+j] = lanes[j*n+i]
		}
	}
	return out
}

// encodeChunk runs one chunk through the compression stage: bit shuffle, then
// the block compressor.
func encodeChunk(data []byte, compress Compression, typesize int) ([]byte, error) {
	shuffled := bitShuffle(data, typesize)
	switch compress {
	case Zstd:
		return zstdEnc.EncodeAll(shuffled, nil), nil
	case Snappy:
		return snappy.Encode(nil, shuffled), nil
	default:
		return nil, fmt.Errorf("illegal compression (%s) during chunk encode", compress)
	}
}

// decodeChunk inverts encodeChunk.
func decodeChunk(data []byte, compress Compression, typesize int) ([]byte, error) {
	var shuffled []byte
	var err error
	switch compress {
	case Zstd:
		shuffled, err = zstdDec.DecodeAll(data, nil)
	case Snappy:
		shuffled, err = snappy.Decode(nil, data)
	default:
		err = fmt.Errorf("illegal compression (%s) during chunk decode", compress)
	}
	if err != nil {
		return nil, err
	}
	return bitUnshuffle(shuffled, typesize), nil
}
