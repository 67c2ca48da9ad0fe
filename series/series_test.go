package series

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hammb/voxstore/voxstore"
)

// fakeFormat is a minimal in-memory slice format for exercising the loader and
// reconstruction writer.  Slice files are a 1-byte element type followed by the
// raw plane payload; width is fixed at 4.  Failures are injectable: WriteFile
// fails for slice failIndex, SetTag rejects keys prefixed "bad|".
type fakeFormat struct {
	failIndex int

	// slices records every slice handed out by NewSlice, by index, so tests
	// can inspect attached tags after reconstruction.
	slices map[int]*fakeSlice
}

const fakeWidth = 4

func newFakeFormat() *fakeFormat {
	return &fakeFormat{failIndex: -1, slices: make(map[int]*fakeSlice)}
}

func (f *fakeFormat) DefaultExtension() string {
	return ".fake"
}

func (f *fakeFormat) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".fake" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (f *fakeFormat) Read(files []string) (*voxstore.Volume, voxstore.Geometry, []voxstore.Tags, error) {
	var vol *voxstore.Volume
	tags := make([]voxstore.Tags, 0, len(files))
	for i, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, voxstore.Geometry{}, nil, err
		}
		if len(data) < 1 {
			return nil, voxstore.Geometry{}, nil, fmt.Errorf("%s: empty slice file", path)
		}
		elem := voxstore.DataType(data[0])
		payload := data[1:]
		height := len(payload) / (fakeWidth * voxstore.DataTypeBytes(elem))
		if vol == nil {
			vol = voxstore.NewVolume([3]int{len(files), height, fakeWidth}, elem)
		}
		copy(vol.Data[i*vol.SliceBytes():(i+1)*vol.SliceBytes()], payload)
		tags = append(tags, voxstore.Tags{
			"index":  fmt.Sprintf("%d", i),
			"source": filepath.Base(path),
		})
	}
	geom := voxstore.DefaultGeometry([3]int{fakeWidth, vol.Shape[1], len(files)}, vol.ElemType)
	geom.Origin = [3]float64{1, 2, 3}
	return vol, geom, tags, nil
}

func (f *fakeFormat) NewSlice(plane voxstore.Plane, geom voxstore.Geometry, index int) (Slice, error) {
	s := &fakeSlice{format: f, index: index, plane: plane, tags: make(voxstore.Tags)}
	f.slices[index] = s
	return s, nil
}

type fakeSlice struct {
	format *fakeFormat
	index  int
	plane  voxstore.Plane
	tags   voxstore.Tags
}

func (s *fakeSlice) SetTag(key, value string) error {
	if strings.HasPrefix(key, "bad|") {
		return fmt.Errorf("unrepresentable key %q", key)
	}
	s.tags[key] = value
	return nil
}

func (s *fakeSlice) WriteFile(path string) error {
	if s.index == s.format.failIndex {
		return fmt.Errorf("injected write failure for slice %d", s.index)
	}
	data := append([]byte{byte(s.plane.ElemType)}, s.plane.Data...)
	return os.WriteFile(path, data, 0644)
}

// makeFakeSeries writes depth slice files of height rows into dir and returns
// the expected volume payload per slice.
func makeFakeSeries(dir string, depth, height int, elem voxstore.DataType) ([][]byte, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	payloads := make([][]byte, depth)
	n := fakeWidth * height * voxstore.DataTypeBytes(elem)
	for i := 0; i < depth; i++ {
		payload := make([]byte, n)
		for j := range payload {
			payload[j] = byte(i*31 + j)
		}
		payloads[i] = payload
		name := filepath.Join(dir, fmt.Sprintf("slice-%03d.fake", i))
		if err := os.WriteFile(name, append([]byte{byte(elem)}, payload...), 0644); err != nil {
			return nil, err
		}
	}
	return payloads, nil
}
