/*
	This file defines the error taxonomy shared across the conversion pipeline.
	Each type wraps an underlying cause so callers can use errors.As to decide
	whether a failure is recoverable (skip the series), fatal to one series, or
	cosmetic (a single tag failed to attach).
*/

package voxstore

import "fmt"

// DiscoveryError means a series directory yielded no readable source files.
// Callers treated this as a skip, not a fatal condition.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no series found in %q: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("no series found in %q", e.Dir)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// WriteError means a store or output write failed.  During conversion it aborts
// the series' write step; during reconstruction it affects only one slice.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError means a store is missing or structurally invalid.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError means a sidecar or store descriptor could not be decoded into the
// expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TagAttachError means one tag key could not be restored onto a reconstructed
// slice.  It never aborts the slice and is collected for reporting only.
type TagAttachError struct {
	Key string
	Err error
}

func (e *TagAttachError) Error() string {
	return fmt.Sprintf("attach tag %q: %v", e.Key, e.Err)
}

func (e *TagAttachError) Unwrap() error { return e.Err }
