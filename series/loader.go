package series

import (
	"github.com/hammb/voxstore/voxstore"
)

// Loader reads an ordered slice series from a directory into an in-memory
// volume with geometry and per-slice tag mappings.
type Loader struct {
	format Format
}

// NewLoader returns a loader using the given slice format.
func NewLoader(format Format) *Loader {
	return &Loader{format: format}
}

// Load reads the series in dir.  A directory yielding zero member files fails
// with a DiscoveryError, which callers treat as a skip rather than a fatal
// condition.  No side effects beyond reads.
func (l *Loader) Load(dir string) (*voxstore.Volume, []string, []voxstore.Tags, voxstore.Geometry, error) {
	files, err := l.format.Discover(dir)
	if err != nil {
		return nil, nil, nil, voxstore.Geometry{}, &voxstore.DiscoveryError{Dir: dir, Err: err}
	}
	if len(files) == 0 {
		return nil, nil, nil, voxstore.Geometry{}, &voxstore.DiscoveryError{Dir: dir}
	}

	vol, geom, tags, err := l.format.Read(files)
	if err != nil {
		return nil, nil, nil, voxstore.Geometry{}, err
	}
	voxstore.Debugf("Loaded %d slices from %s: %s, %s\n", len(files), dir, geom, vol.ElemType)
	return vol, files, tags, geom, nil
}
