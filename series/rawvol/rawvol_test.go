package rawvol

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hammb/voxstore/voxstore"
)

func writeTestSeries(t *testing.T, dir string, depth int) [][]byte {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	format := New()
	payloads := make([][]byte, depth)
	for i := 0; i < depth; i++ {
		payload := make([]byte, 6*4*2) // 6x4 uint16
		for j := range payload {
			payload[j] = byte(i ^ j*13)
		}
		payloads[i] = payload
		plane := voxstore.Plane{
			Size:     [2]int{6, 4},
			ElemType: voxstore.T_uint16,
			Order:    voxstore.LittleEndian,
			Data:     payload,
		}
		slice, err := format.NewSlice(plane, voxstore.Geometry{}, i)
		if err != nil {
			t.Fatalf("slice %d: %v", i, err)
		}
		if i == 0 {
			if err := slice.SetTag(TagPosition, "-100.5,-80.25,12.0"); err != nil {
				t.Fatalf("set position: %v", err)
			}
			if err := slice.SetTag(TagSpacing, "0.5,0.5,2.0"); err != nil {
				t.Fatalf("set spacing: %v", err)
			}
		}
		if err := slice.SetTag("0020|0013", fmt.Sprintf("%d", i+1)); err != nil {
			t.Fatalf("set instance number: %v", err)
		}
		if err := slice.WriteFile(filepath.Join(dir, fmt.Sprintf("%04d%s", i, Ext))); err != nil {
			t.Fatalf("write slice %d: %v", i, err)
		}
	}
	return payloads
}

func TestSeriesRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "series")
	payloads := writeTestSeries(t, dir, 3)

	format := New()
	files, err := format.Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("discovered %d files, expected 3", len(files))
	}

	vol, geom, tags, err := format.Read(files)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if vol.Shape != [3]int{3, 4, 6} {
		t.Errorf("shape %v, expected [3 4 6]", vol.Shape)
	}
	if vol.ElemType != voxstore.T_uint16 {
		t.Errorf("element type %s, expected uint16", vol.ElemType)
	}
	for i := range files {
		plane, err := vol.Plane(i)
		if err != nil {
			t.Fatalf("plane %d: %v", i, err)
		}
		if !bytes.Equal(plane.Data, payloads[i]) {
			t.Errorf("slice %d payload altered by round trip", i)
		}
		if tags[i]["0020|0013"] != fmt.Sprintf("%d", i+1) {
			t.Errorf("slice %d tags %v missing instance number", i, tags[i])
		}
	}
	if geom.Origin != [3]float64{-100.5, -80.25, 12.0} {
		t.Errorf("origin %v not captured from reserved tag", geom.Origin)
	}
	if geom.Spacing != [3]float64{0.5, 0.5, 2.0} {
		t.Errorf("spacing %v not captured from reserved tag", geom.Spacing)
	}
	if geom.Size != [3]int{6, 4, 3} {
		t.Errorf("size %v, expected [6 4 3]", geom.Size)
	}
}

func TestDiscoverIgnoresForeignFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "series")
	writeTestSeries(t, dir, 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a slice"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.rvs"), 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	files, err := New().Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("discovered %d members, expected 2: %v", len(files), files)
	}
}

func TestSetTagValidation(t *testing.T) {
	slice, err := New().NewSlice(voxstore.Plane{
		Size:     [2]int{2, 2},
		ElemType: voxstore.T_uint8,
		Order:    voxstore.LittleEndian,
		Data:     make([]byte, 4),
	}, voxstore.Geometry{}, 0)
	if err != nil {
		t.Fatalf("new slice: %v", err)
	}

	if err := slice.SetTag("", "v"); err == nil {
		t.Errorf("empty key accepted")
	}
	if err := slice.SetTag("bad\x01key", "v"); err == nil {
		t.Errorf("control byte in key accepted")
	}
	if err := slice.SetTag("0008|0060", "MR"); err != nil {
		t.Errorf("valid tag rejected: %v", err)
	}
}

func TestReadRejectsMixedLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "series")
	writeTestSeries(t, dir, 2)

	// Append a slice with a different extent.
	format := New()
	odd, err := format.NewSlice(voxstore.Plane{
		Size:     [2]int{5, 5},
		ElemType: voxstore.T_uint16,
		Order:    voxstore.LittleEndian,
		Data:     make([]byte, 5*5*2),
	}, voxstore.Geometry{}, 2)
	if err != nil {
		t.Fatalf("new slice: %v", err)
	}
	if err := odd.WriteFile(filepath.Join(dir, "0002"+Ext)); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := format.Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if _, _, _, err := format.Read(files); err == nil {
		t.Errorf("expected mixed slice layout to be rejected")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0000"+Ext)
	if err := os.WriteFile(path, []byte("XXXXgarbage"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, _, err := New().Read([]string{path}); err == nil {
		t.Errorf("expected bad magic to be rejected")
	}
}
