// Package vector reads vector datasets (critical load polygons, site points)
// into go-geom geometries with their attribute tables.
package vector

import (
	"github.com/twpayne/go-geom"
)

// SRID is the spatial reference assigned to geometries read from disk.
const SRID = 4326

// Feature is one record of a vector dataset. Attribute names are lower-case.
type Feature struct {
	Geometry   geom.T
	Attributes map[string]string
}

// Attr returns the named attribute and whether it is present and non-empty.
// name must be lower-case.
func (f Feature) Attr(name string) (string, bool) {
	v, ok := f.Attributes[name]
	return v, ok && v != ""
}

// Store reads features from a vector dataset.
type Store interface {
	Read(path string) ([]Feature, error)
}
