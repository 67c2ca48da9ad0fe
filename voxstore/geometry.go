package voxstore

import "fmt"

// Geometry describes the physical placement of a volume in scanner space plus
// the source pixel type.  It is captured once when a series is loaded and is
// immutable afterwards.
//
// Size is ordered (width, height, depth) following imaging-toolkit convention,
// which is the reverse of the (z, y, x) layout used for in-memory volume data.
type Geometry struct {
	Origin    [3]float64
	Spacing   [3]float64
	Direction [9]float64 // row-major 3x3
	Size      [3]int     // x, y, z

	PixelID     int
	PixelIDType string
}

// DefaultGeometry returns unit spacing at the scanner origin with an identity
// direction matrix.
func DefaultGeometry(size [3]int, elem DataType) Geometry {
	return Geometry{
		Spacing:     [3]float64{1, 1, 1},
		Direction:   [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		Size:        size,
		PixelID:     int(elem),
		PixelIDType: elem.PixelString(),
	}
}

// NumVoxels returns the number of samples within the geometry's extent.
func (g Geometry) NumVoxels() int64 {
	return int64(g.Size[0]) * int64(g.Size[1]) * int64(g.Size[2])
}

func (g Geometry) String() string {
	return fmt.Sprintf("%d x %d x %d volume at origin (%g, %g, %g)",
		g.Size[0], g.Size[1], g.Size[2], g.Origin[0], g.Origin[1], g.Origin[2])
}
