/*
	Package rawvol is a self-describing single-slice file format implementing
	series.Format.  Each .rvs file carries its own pixel layout and a flat tag
	table, so a series of them round-trips through the conversion pipeline with
	geometry and per-slice tags intact and no external toolkit involved.

	Layout (header fields little-endian, payload in the declared byte order):

		magic "RVS1"
		uint32 width, uint32 height
		uint8 element type, uint8 byte order
		uint32 tag count
		per tag: uint16 key length, key, uint32 value length, value
		payload width*height*typesize bytes
*/

package rawvol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hammb/voxstore/series"
	"github.com/hammb/voxstore/voxstore"
)

const (
	magic = "RVS1"

	// Ext is the slice file extension.
	Ext = ".rvs"

	// Reserved tag keys carrying capture geometry on the first slice.
	TagPosition = "rawvol|position" // "x,y,z" scanner-space origin
	TagSpacing  = "rawvol|spacing"  // "sx,sy,sz" voxel spacing
)

// Format implements series.Format for .rvs slice directories.
type Format struct{}

// New returns the rawvol format capability.
func New() Format {
	return Format{}
}

// DefaultExtension returns ".rvs".
func (f Format) DefaultExtension() string {
	return Ext
}

// Discover returns the series members of dir in lexicographic order.
func (f Format) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// sliceFile is one decoded .rvs file.
type sliceFile struct {
	width, height int
	elem          voxstore.DataType
	order         voxstore.ByteOrder
	tags          voxstore.Tags
	payload       []byte
}

func readSliceFile(path string) (*sliceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(data)

	head := buf.Next(4)
	if string(head) != magic {
		return nil, fmt.Errorf("%s: bad magic %q", path, head)
	}
	var width, height uint32
	if err := binary.Read(buf, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	var elem, order uint8
	if err := binary.Read(buf, binary.LittleEndian, &elem); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &order); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	if voxstore.DataTypeBytes(voxstore.DataType(elem)) == 0 {
		return nil, fmt.Errorf("%s: unknown element type %d", path, elem)
	}
	if order > uint8(voxstore.BigEndian) {
		return nil, fmt.Errorf("%s: unknown byte order %d", path, order)
	}

	var ntags uint32
	if err := binary.Read(buf, binary.LittleEndian, &ntags); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	tags := make(voxstore.Tags, ntags)
	for t := uint32(0); t < ntags; t++ {
		var keyLen uint16
		if err := binary.Read(buf, binary.LittleEndian, &keyLen); err != nil {
			return nil, fmt.Errorf("%s: tag %d: %v", path, t, err)
		}
		key := buf.Next(int(keyLen))
		if len(key) != int(keyLen) {
			return nil, fmt.Errorf("%s: tag %d: truncated key", path, t)
		}
		var valLen uint32
		if err := binary.Read(buf, binary.LittleEndian, &valLen); err != nil {
			return nil, fmt.Errorf("%s: tag %d: %v", path, t, err)
		}
		val := buf.Next(int(valLen))
		if len(val) != int(valLen) {
			return nil, fmt.Errorf("%s: tag %d: truncated value", path, t)
		}
		tags[string(key)] = string(val)
	}

	s := &sliceFile{
		width:  int(width),
		height: int(height),
		elem:   voxstore.DataType(elem),
		order:  voxstore.ByteOrder(order),
		tags:   tags,
	}
	want := s.width * s.height * voxstore.DataTypeBytes(s.elem)
	s.payload = buf.Next(want)
	if len(s.payload) != want {
		return nil, fmt.Errorf("%s: payload is %d bytes, expected %d", path, len(s.payload), want)
	}
	return s, nil
}

func (s *sliceFile) marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)
	binary.Write(&buf, binary.LittleEndian, uint32(s.width))
	binary.Write(&buf, binary.LittleEndian, uint32(s.height))
	binary.Write(&buf, binary.LittleEndian, uint8(s.elem))
	binary.Write(&buf, binary.LittleEndian, uint8(s.order))

	// Tags are written sorted so identical slices marshal identically.
	keys := make([]string, 0, len(s.tags))
	for k := range s.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	binary.Write(&buf, binary.LittleEndian, uint32(len(keys)))
	for _, k := range keys {
		binary.Write(&buf, binary.LittleEndian, uint16(len(k)))
		buf.WriteString(k)
		binary.Write(&buf, binary.LittleEndian, uint32(len(s.tags[k])))
		buf.WriteString(s.tags[k])
	}
	buf.Write(s.payload)
	return buf.Bytes()
}

// parseTriple parses "a,b,c" into 3 floats.
func parseTriple(s string) ([3]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, false
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, false
		}
		out[i] = v
	}
	return out, true
}

// Read assembles the ordered members into a (z, y, x) volume.  All slices must
// agree on extent, element type, and byte order.  Geometry is captured from the
// assembled volume plus the reserved tags of the first slice.
func (f Format) Read(files []string) (*voxstore.Volume, voxstore.Geometry, []voxstore.Tags, error) {
	if len(files) == 0 {
		return nil, voxstore.Geometry{}, nil, fmt.Errorf("no slice files given")
	}
	var vol *voxstore.Volume
	var first *sliceFile
	tags := make([]voxstore.Tags, 0, len(files))

	for i, path := range files {
		s, err := readSliceFile(path)
		if err != nil {
			return nil, voxstore.Geometry{}, nil, err
		}
		if first == nil {
			first = s
			vol = voxstore.NewVolume([3]int{len(files), s.height, s.width}, s.elem)
			vol.Order = s.order
		} else if s.width != first.width || s.height != first.height ||
			s.elem != first.elem || s.order != first.order {
			return nil, voxstore.Geometry{}, nil,
				fmt.Errorf("%s: slice layout %dx%d %s/%s differs from series %dx%d %s/%s",
					path, s.width, s.height, s.elem, s.order,
					first.width, first.height, first.elem, first.order)
		}
		copy(vol.Data[i*vol.SliceBytes():(i+1)*vol.SliceBytes()], s.payload)
		tags = append(tags, s.tags)
	}

	geom := voxstore.DefaultGeometry([3]int{first.width, first.height, len(files)}, first.elem)
	if pos, ok := parseTriple(first.tags[TagPosition]); ok {
		geom.Origin = pos
	}
	if sp, ok := parseTriple(first.tags[TagSpacing]); ok {
		geom.Spacing = sp
	}
	return vol, geom, tags, nil
}

// Slice is one reconstructed slice pending output.
type Slice struct {
	file sliceFile
}

// NewSlice wraps an extracted plane.  The element representation comes from
// the plane itself, not from the geometry's recorded pixel id.
func (f Format) NewSlice(plane voxstore.Plane, geom voxstore.Geometry, index int) (series.Slice, error) {
	if len(plane.Data) != plane.Size[0]*plane.Size[1]*voxstore.DataTypeBytes(plane.ElemType) {
		return nil, fmt.Errorf("plane data length %d inconsistent with %dx%d %s",
			len(plane.Data), plane.Size[0], plane.Size[1], plane.ElemType)
	}
	return &Slice{
		file: sliceFile{
			width:   plane.Size[0],
			height:  plane.Size[1],
			elem:    plane.ElemType,
			order:   plane.Order,
			tags:    make(voxstore.Tags),
			payload: plane.Data,
		},
	}, nil
}

// SetTag attaches one tag.  Keys must be non-empty, free of control bytes, and
// short enough for the on-disk tag table.
func (s *Slice) SetTag(key, value string) error {
	if key == "" {
		return fmt.Errorf("empty tag key")
	}
	if len(key) > 0xffff {
		return fmt.Errorf("tag key exceeds %d bytes", 0xffff)
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x20 || key[i] == 0x7f {
			return fmt.Errorf("tag key contains control byte 0x%02x", key[i])
		}
	}
	s.file.tags[key] = value
	return nil
}

// WriteFile writes the slice to path.
func (s *Slice) WriteFile(path string) error {
	return os.WriteFile(path, s.file.marshal(), 0644)
}
