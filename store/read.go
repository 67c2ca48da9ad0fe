package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coocood/freecache"

	"github.com/hammb/voxstore/voxstore"
)

// DefaultCacheBytes is the decoded-chunk cache size used when none is given.
const DefaultCacheBytes = 32 * 1024 * 1024

// Store is an open chunked store ready for slice-level or whole-volume reads.
type Store struct {
	path     string
	hdr      Header
	elem     voxstore.DataType
	order    voxstore.ByteOrder
	compress Compression
	typesize int

	// Decoded chunks are cached so repeated slice reads skip decompression.
	cache *freecache.Cache
}

// Open reads and validates the store descriptor at path.
func Open(path string) (*Store, error) {
	return OpenWith(path, DefaultCacheBytes)
}

// OpenWith is Open with an explicit decoded-chunk cache size in bytes.  A size
// of zero disables caching.
func OpenWith(path string, cacheBytes int) (*Store, error) {
	hdrBytes, err := os.ReadFile(filepath.Join(path, descriptorFile))
	if err != nil {
		return nil, &voxstore.ReadError{Path: path, Err: err}
	}
	var hdr Header
	if err := json.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, &voxstore.ReadError{Path: path, Err: err}
	}
	if err := hdr.check(); err != nil {
		return nil, &voxstore.ReadError{Path: path, Err: err}
	}

	// check() already vetted the names.
	elem, _ := voxstore.DataTypeByName(hdr.ElemType)
	order, _ := voxstore.ByteOrderByName(hdr.ByteOrder)
	compress, _ := CompressionByName(hdr.Codecs[1].Compressor)

	s := &Store{
		path:     path,
		hdr:      hdr,
		elem:     elem,
		order:    order,
		compress: compress,
		typesize: voxstore.DataTypeBytes(elem),
	}
	if cacheBytes > 0 {
		s.cache = freecache.NewCache(cacheBytes)
	}
	return s, nil
}

// Header returns the store descriptor.
func (s *Store) Header() Header {
	return s.hdr
}

// Shape returns (depth, height, width) of the stored volume.
func (s *Store) Shape() [3]int {
	return s.hdr.Shape
}

// ReadSlice returns the decoded bytes of z slice i, framed in the store's
// recorded byte order.
func (s *Store) ReadSlice(i int) ([]byte, error) {
	if i < 0 || i >= s.hdr.Shape[0] {
		return nil, &voxstore.ReadError{Path: s.path, Err: fmt.Errorf("slice %d out of range [0, %d)", i, s.hdr.Shape[0])}
	}
	if s.cache != nil {
		var key [8]byte
		binary.LittleEndian.PutUint64(key[:], uint64(i))
		if data, err := s.cache.Get(key[:]); err == nil {
			return data, nil
		}
	}

	chunk, err := os.ReadFile(chunkPath(s.path, i))
	if err != nil {
		return nil, &voxstore.ReadError{Path: s.path, Err: fmt.Errorf("chunk %d: %v", i, err)}
	}
	data, err := decodeChunk(chunk, s.compress, s.typesize)
	if err != nil {
		return nil, &voxstore.ReadError{Path: s.path, Err: fmt.Errorf("chunk %d: %v", i, err)}
	}
	want := s.hdr.Shape[1] * s.hdr.Shape[2] * s.typesize
	if len(data) != want {
		return nil, &voxstore.ReadError{Path: s.path, Err: fmt.Errorf("chunk %d decoded to %d bytes, expected %d", i, len(data), want)}
	}

	if s.cache != nil {
		var key [8]byte
		binary.LittleEndian.PutUint64(key[:], uint64(i))
		// An oversized entry is simply not cached.
		s.cache.Set(key[:], data, 0)
	}
	return data, nil
}

// ReadAll decodes every chunk in index order and concatenates them along z,
// yielding the full volume with the original shape, element type and values.
func (s *Store) ReadAll() (*voxstore.Volume, error) {
	vol := voxstore.NewVolume(s.hdr.Shape, s.elem)
	vol.Order = s.order
	sliceBytes := vol.SliceBytes()
	for i := 0; i < s.hdr.Shape[0]; i++ {
		data, err := s.ReadSlice(i)
		if err != nil {
			return nil, err
		}
		copy(vol.Data[i*sliceBytes:(i+1)*sliceBytes], data)
	}
	return vol, nil
}
