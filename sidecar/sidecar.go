/*
	Package sidecar serializes the metadata record paired with a chunked store:
	source filename order, capture geometry, and per-slice tag mappings.  The
	sidecar is what makes slice-level reconstruction possible, since the store
	itself carries only the array.

	The sidecar never cross-validates its field lengths against the paired
	store's shape; that responsibility stays with the caller.  A depth mismatch
	surfaces only as truncated reconstruction.
*/

package sidecar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hammb/voxstore/voxstore"
)

// Ext is the sidecar file extension.
const Ext = ".json"

// Record aggregates everything the store cannot carry about a series.  It is
// written once at conversion time and read-only afterwards.
type Record struct {
	Filenames []string  `json:"filenames"`
	Origin    []float64 `json:"origin"`    // 3 floats
	Spacing   []float64 `json:"spacing"`   // 3 floats
	Direction []float64 `json:"direction"` // 9 floats, row-major 3x3
	Size      []int     `json:"size"`      // x, y, z

	PixelID     int    `json:"pixel_id"`
	PixelIDType string `json:"pixel_id_type_as_string"`

	// SlicesMetadata is ordered and aligned with slice index; length equals
	// depth whenever populated from a real load.
	SlicesMetadata []voxstore.Tags `json:"slices_metadata"`
}

const recordSchema = `{
	"type": "object",
	"properties": {
		"filenames": {"type": "array", "items": {"type": "string"}},
		"origin": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
		"spacing": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
		"direction": {"type": "array", "items": {"type": "number"}, "minItems": 9, "maxItems": 9},
		"size": {"type": "array", "items": {"type": "integer"}, "minItems": 3, "maxItems": 3},
		"pixel_id": {"type": "integer"},
		"pixel_id_type_as_string": {"type": "string"},
		"slices_metadata": {
			"type": "array",
			"items": {"type": "object", "additionalProperties": {"type": "string"}}
		}
	}
}`

// compiled once; schema violations on read surface as ParseError.
var compiledSchema = jsonschema.MustCompileString("sidecar.json", recordSchema)

// NewRecord assembles a record from a load's outputs.
func NewRecord(filenames []string, geom voxstore.Geometry, slices []voxstore.Tags) *Record {
	return &Record{
		Filenames:      filenames,
		Origin:         geom.Origin[:],
		Spacing:        geom.Spacing[:],
		Direction:      geom.Direction[:],
		Size:           geom.Size[:],
		PixelID:        geom.PixelID,
		PixelIDType:    geom.PixelIDType,
		SlicesMetadata: slices,
	}
}

// Geometry rebuilds the capture geometry carried by the record.  Fields absent
// from the sidecar keep geometry defaults.
func (r *Record) Geometry() voxstore.Geometry {
	geom := voxstore.Geometry{
		Spacing:     [3]float64{1, 1, 1},
		Direction:   [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		PixelID:     r.PixelID,
		PixelIDType: r.PixelIDType,
	}
	copy(geom.Origin[:], r.Origin)
	if len(r.Spacing) == 3 {
		copy(geom.Spacing[:], r.Spacing)
	}
	if len(r.Direction) == 9 {
		copy(geom.Direction[:], r.Direction)
	}
	copy(geom.Size[:], r.Size)
	return geom
}

// PathFor derives the sidecar path paired with a store path: same base
// identifier, sidecar extension.
func PathFor(storePath string) string {
	return strings.TrimSuffix(storePath, filepath.Ext(storePath)) + Ext
}

// Write serializes the record as indented JSON at path.  Nil slice fields are
// written as empty arrays, not null, so every written record re-reads cleanly.
func Write(path string, r *Record) error {
	out := *r
	if out.Filenames == nil {
		out.Filenames = []string{}
	}
	if out.SlicesMetadata == nil {
		out.SlicesMetadata = []voxstore.Tags{}
	}
	data, err := json.MarshalIndent(&out, "", "    ")
	if err != nil {
		return &voxstore.WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &voxstore.WriteError{Path: path, Err: err}
	}
	return nil
}

// Read deserializes and validates a record.  Missing optional fields default
// to empty; a structurally wrong document is a ParseError.
func Read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &voxstore.ReadError{Path: path, Err: err}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &voxstore.ParseError{Path: path, Err: err}
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, &voxstore.ParseError{Path: path, Err: err}
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &voxstore.ParseError{Path: path, Err: err}
	}
	return &r, nil
}
