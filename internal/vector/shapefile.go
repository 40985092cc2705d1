package vector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ShapefileStore implements Store for ESRI shapefiles.
type ShapefileStore struct{}

// NewShapefileStore returns a shapefile-backed Store.
func NewShapefileStore() *ShapefileStore {
	return &ShapefileStore{}
}

// Read returns every record of the shapefile at path. Records whose shape
// cannot be converted keep their attributes with a nil Geometry. The .dbf
// attribute table must sit next to the .shp and hold one row per shape.
func (s *ShapefileStore) Read(path string) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// go-shp reads attributes lazily and turns a missing table into empty strings.
	if _, err := os.Stat(strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"); err != nil {
		return nil, eris.Wrapf(err, "vector: attribute table for %s", path)
	}

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	var features []Feature
	var noGeom int

	for reader.Next() {
		_, shape := reader.Shape()

		attrs := make(map[string]string, len(names))
		for i, name := range names {
			attrs[name] = strings.TrimSpace(strings.Trim(reader.Attribute(i), "\x00 "))
		}

		g := toGeom(shape)
		if g == nil {
			noGeom++
		}
		features = append(features, Feature{Geometry: g, Attributes: attrs})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "vector: read shapefile %s", path)
	}
	if n := reader.AttributeCount(); n != len(features) {
		return nil, eris.Errorf("vector: %s has %d shapes but %d attribute rows", path, len(features), n)
	}

	zap.L().Debug("vector: read shapefile",
		zap.String("path", path),
		zap.Int("features", len(features)),
		zap.Int("without_geometry", noGeom),
	)

	return features, nil
}

// toGeom converts a go-shp shape to a go-geom geometry with SRID set.
// Returns nil for nil or unsupported shapes.
func toGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(SRID)
	case *shp.PolyLine:
		if mls := toMultiLineString(s.NumParts, s.Parts, s.Points); mls != nil {
			return mls
		}
	case *shp.Polygon:
		if mp := toMultiPolygon(s.NumParts, s.Parts, s.Points); mp != nil {
			return mp
		}
	}
	return nil
}

func toMultiLineString(numParts int32, parts []int32, points []shp.Point) *geom.MultiLineString {
	if numParts == 0 || len(points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY).SetSRID(SRID)
	for i := int32(0); i < numParts; i++ {
		ls := geom.NewLineStringFlat(geom.XY, partCoords(i, numParts, parts, points))
		if err := mls.Push(ls); err != nil {
			zap.L().Debug("vector: skipping malformed linestring part", zap.Int32("part", i), zap.Error(err))
		}
	}

	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

func toMultiPolygon(numParts int32, parts []int32, points []shp.Point) *geom.MultiPolygon {
	if numParts == 0 || len(points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(SRID)
	for i := int32(0); i < numParts; i++ {
		ring := geom.NewLinearRingFlat(geom.XY, partCoords(i, numParts, parts, points))
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("vector: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("vector: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// partCoords returns the flat XY coordinates of part i.
func partCoords(i, numParts int32, parts []int32, points []shp.Point) []float64 {
	start := parts[i]
	end := int32(len(points))
	if i+1 < numParts {
		end = parts[i+1]
	}

	flat := make([]float64, 0, 2*(end-start))
	for _, p := range points[start:end] {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}
