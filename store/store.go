/*
	Package store persists a volume as a chunked, compressed array store on the
	filesystem.  A store is a directory holding a JSON descriptor plus one
	compressed chunk file per z slice: chunk shape is fixed to (1, H, W) so
	chunk-level random access lines up with per-slice reconstruction.
*/

package store

import (
	"fmt"
	"path/filepath"

	"github.com/blang/semver"

	"github.com/hammb/voxstore/voxstore"
)

const (
	// FormatVersion is the store format written by this package.  Readers
	// reject stores whose major version differs.
	FormatVersion = "1.0.0"

	// Ext is the conventional extension for store directories.
	Ext = ".vxs"

	descriptorFile = "store.json"
	chunkDir       = "chunks"
)

// CodecStage describes one stage of the ordered codec pipeline in the store
// descriptor.  Stage 1 is always byte framing ("bytes"), stage 2 the blosc-class
// compression stage.
type CodecStage struct {
	Name string `json:"name"`

	// bytes stage
	Endian string `json:"endian,omitempty"`

	// blosc stage
	Compressor string `json:"compressor,omitempty"`
	Level      int    `json:"level,omitempty"`
	Shuffle    string `json:"shuffle,omitempty"`
	Typesize   int    `json:"typesize,omitempty"`
}

// Header is the JSON descriptor of a chunked store.
type Header struct {
	FormatVersion string       `json:"format_version"`
	Shape         [3]int       `json:"shape"` // depth, height, width
	ElemType      string       `json:"element_type"`
	ByteOrder     string       `json:"byte_order"`
	ChunkShape    [3]int       `json:"chunk_shape"`
	Codecs        []CodecStage `json:"codecs"`
}

// newHeader assembles the descriptor for a volume stored with the given framing
// order and compressor.
func newHeader(vol *voxstore.Volume, endian voxstore.ByteOrder, compress Compression) Header {
	typesize := voxstore.DataTypeBytes(vol.ElemType)
	return Header{
		FormatVersion: FormatVersion,
		Shape:         vol.Shape,
		ElemType:      vol.ElemType.String(),
		ByteOrder:     endian.String(),
		ChunkShape:    [3]int{1, vol.Shape[1], vol.Shape[2]},
		Codecs: []CodecStage{
			{Name: "bytes", Endian: endian.String()},
			{Name: "blosc", Compressor: compress.String(), Level: 1, Shuffle: "bit", Typesize: typesize},
		},
	}
}

// check validates a descriptor's internal consistency after decoding.
func (h Header) check() error {
	v, err := semver.Make(h.FormatVersion)
	if err != nil {
		return fmt.Errorf("bad format version %q: %v", h.FormatVersion, err)
	}
	cur, _ := semver.Make(FormatVersion)
	if v.Major != cur.Major {
		return fmt.Errorf("store format v%s is incompatible with v%s reader", h.FormatVersion, FormatVersion)
	}
	for dim, extent := range h.Shape {
		if extent <= 0 {
			return fmt.Errorf("degenerate shape: dimension %d has extent %d", dim, extent)
		}
	}
	if h.ChunkShape[0] != 1 {
		return fmt.Errorf("chunk shape %v: leading dimension must be 1", h.ChunkShape)
	}
	if h.ChunkShape[1] != h.Shape[1] || h.ChunkShape[2] != h.Shape[2] {
		return fmt.Errorf("chunk shape %v does not span slice extents of shape %v", h.ChunkShape, h.Shape)
	}
	if len(h.Codecs) != 2 || h.Codecs[0].Name != "bytes" || h.Codecs[1].Name != "blosc" {
		return fmt.Errorf("unsupported codec pipeline %v", h.Codecs)
	}
	if _, err := voxstore.DataTypeByName(h.ElemType); err != nil {
		return err
	}
	if _, err := voxstore.ByteOrderByName(h.ByteOrder); err != nil {
		return err
	}
	if _, err := CompressionByName(h.Codecs[1].Compressor); err != nil {
		return err
	}
	return nil
}

func chunkPath(storePath string, i int) string {
	return filepath.Join(storePath, chunkDir, fmt.Sprintf("%06d", i))
}
