package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hammb/voxstore/voxstore"
)

// WriteConfig adjusts how a store is written.  The zero value frames elements
// in the volume's own byte order and compresses with zstd, which is what the
// conversion pipeline always uses.
type WriteConfig struct {
	Compression Compression

	// Endian overrides the framing byte order.  Nil keeps the volume's order,
	// so the writer's native order is what gets recorded.
	Endian *voxstore.ByteOrder
}

// Write persists a volume as a chunked store at path, one compressed chunk per
// z slice.  Any prior store at path is deleted in full first; there is no merge
// or partial update.  Returns the number of compressed chunk bytes written.
func Write(path string, vol *voxstore.Volume) (int64, error) {
	return WriteWith(path, vol, WriteConfig{})
}

// WriteWith is Write with explicit codec configuration.
func WriteWith(path string, vol *voxstore.Volume, cfg WriteConfig) (int64, error) {
	if err := vol.CheckShape(); err != nil {
		return 0, &voxstore.WriteError{Path: path, Err: err}
	}
	endian := vol.Order
	if cfg.Endian != nil {
		endian = *cfg.Endian
	}
	typesize := voxstore.DataTypeBytes(vol.ElemType)

	// Full replacement: a failure after removal leaves no store at path.
	if err := os.RemoveAll(path); err != nil {
		return 0, &voxstore.WriteError{Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Join(path, chunkDir), 0755); err != nil {
		return 0, &voxstore.WriteError{Path: path, Err: err}
	}

	hdr := newHeader(vol, endian, cfg.Compression)
	hdrBytes, err := json.MarshalIndent(hdr, "", "    ")
	if err != nil {
		return 0, &voxstore.WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(filepath.Join(path, descriptorFile), hdrBytes, 0644); err != nil {
		return 0, &voxstore.WriteError{Path: path, Err: err}
	}

	sliceBytes := vol.SliceBytes()
	var written int64
	for i := 0; i < vol.Shape[0]; i++ {
		raw := vol.Data[i*sliceBytes : (i+1)*sliceBytes]
		framed := frameBytes(raw, vol.Order, endian, typesize)
		chunk, err := encodeChunk(framed, cfg.Compression, typesize)
		if err != nil {
			return written, &voxstore.WriteError{Path: path, Err: fmt.Errorf("chunk %d: %v", i, err)}
		}
		if err := os.WriteFile(chunkPath(path, i), chunk, 0644); err != nil {
			return written, &voxstore.WriteError{Path: path, Err: fmt.Errorf("chunk %d: %v", i, err)}
		}
		written += int64(len(chunk))
	}
	return written, nil
}
