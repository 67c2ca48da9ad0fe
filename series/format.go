/*
	Package series loads a slice-image series into a volume and reconstructs a
	slice directory from a volume plus its metadata record.

	The slice format itself is an injected capability: anything that can order
	the members of a series directory, assemble them into a volume with
	per-slice tag capture, and write a single tagged slice back out satisfies
	Format.  The rawvol subpackage provides a self-describing reference format.
*/

package series

import "github.com/hammb/voxstore/voxstore"

// Format is the injected slice-format capability.
type Format interface {
	// Discover returns the ordered member file paths of the series believed to
	// live in dir.  Ordering is format-specific.  An empty result is not an
	// error at this level; the loader maps it to a DiscoveryError.
	Discover(dir string) ([]string, error)

	// Read assembles the ordered members into one volume in (z, y, x) order,
	// capturing geometry and the full tag mapping of every slice.  The returned
	// tag list is aligned with slice index and has length equal to depth.
	Read(files []string) (*voxstore.Volume, voxstore.Geometry, []voxstore.Tags, error)

	// NewSlice wraps one extracted plane for tag attachment and file output
	// during reconstruction.
	NewSlice(plane voxstore.Plane, geom voxstore.Geometry, index int) (Slice, error)

	// DefaultExtension is the fallback slice-file extension, with leading dot.
	DefaultExtension() string
}

// Slice is a single reconstructed slice being prepared for output.
type Slice interface {
	// SetTag attaches one key/value pair.  Implementations may reject keys
	// they cannot represent; such failures are swallowed per key by the
	// reconstruction loop.
	SetTag(key, value string) error

	// WriteFile writes the slice to path.
	WriteFile(path string) error
}
