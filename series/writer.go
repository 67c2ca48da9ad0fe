/*
	This file reconstructs a slice directory from a decoded volume and its
	metadata record.  Reconstruction is partial-failure tolerant: a failed tag
	attach never aborts its slice, and a failed slice write never aborts the
	remaining slices.  Every per-item outcome is collected and returned so
	callers can report or assert on exactly what happened.
*/

package series

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hammb/voxstore/sidecar"
	"github.com/hammb/voxstore/voxstore"
)

// TagOutcome records one failed tag attach on a slice.
type TagOutcome struct {
	Key string
	Err error
}

// SliceOutcome records the result of reconstructing one slice.
type SliceOutcome struct {
	Index int
	Path  string

	// Err is the slice write failure, nil on success.
	Err error

	// TagFailures lists tags that could not be attached.  These are cosmetic
	// and do not affect Err.
	TagFailures []TagOutcome
}

// Writer reconstructs slice files from a volume and a metadata record.
type Writer struct {
	format Format
}

// NewWriter returns a reconstruction writer using the given slice format.
func NewWriter(format Format) *Writer {
	return &Writer{format: format}
}

// outputName computes the path for slice i.  Recorded filenames are reused by
// basename in original order; past the recorded list a zero-padded sequential
// name is used with the extension of the first recorded filename, or the
// format's default extension when no filenames were recorded.
func (w *Writer) outputName(outDir string, rec *sidecar.Record, i int) string {
	if i < len(rec.Filenames) {
		return filepath.Join(outDir, filepath.Base(rec.Filenames[i]))
	}
	ext := w.format.DefaultExtension()
	if len(rec.Filenames) > 0 {
		ext = filepath.Ext(rec.Filenames[0])
	}
	return filepath.Join(outDir, fmt.Sprintf("%04d%s", i, ext))
}

// Reconstruct writes one slice file per z slice of vol into outDir.  Geometry
// comes from the record; the element representation is the volume's own element
// type, not the record's stored pixel-id.  An existing directory at outDir is
// deleted and recreated empty first, never merged with a prior reconstruction.
func (w *Writer) Reconstruct(vol *voxstore.Volume, rec *sidecar.Record, outDir string) ([]SliceOutcome, error) {
	if err := vol.CheckShape(); err != nil {
		return nil, &voxstore.WriteError{Path: outDir, Err: err}
	}

	if err := os.RemoveAll(outDir); err != nil {
		return nil, &voxstore.WriteError{Path: outDir, Err: err}
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, &voxstore.WriteError{Path: outDir, Err: err}
	}

	geom := rec.Geometry()
	depth := vol.Depth()
	outcomes := make([]SliceOutcome, 0, depth)

	for i := 0; i < depth; i++ {
		outcome := SliceOutcome{Index: i, Path: w.outputName(outDir, rec, i)}

		plane, err := vol.Plane(i)
		if err != nil {
			outcome.Err = &voxstore.WriteError{Path: outcome.Path, Err: err}
			outcomes = append(outcomes, outcome)
			continue
		}
		slice, err := w.format.NewSlice(plane, geom, i)
		if err != nil {
			outcome.Err = &voxstore.WriteError{Path: outcome.Path, Err: err}
			outcomes = append(outcomes, outcome)
			continue
		}

		// Tag restore is best effort: each key is attempted on its own and a
		// failure is recorded without touching the other keys or the slice.
		if i < len(rec.SlicesMetadata) {
			for k, v := range rec.SlicesMetadata[i] {
				if err := slice.SetTag(k, v); err != nil {
					outcome.TagFailures = append(outcome.TagFailures, TagOutcome{
						Key: k,
						Err: &voxstore.TagAttachError{Key: k, Err: err},
					})
				}
			}
		}

		if err := slice.WriteFile(outcome.Path); err != nil {
			voxstore.Errorf("Error writing slice %d to %s: %v\n", i, outcome.Path, err)
			outcome.Err = &voxstore.WriteError{Path: outcome.Path, Err: err}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
