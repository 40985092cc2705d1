package exceed

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

type diagramJSON struct {
	CLF        CLF                 `json:"clf"`
	Extent     float64             `json:"extent"`
	AxisLabels axisLabelsJSON      `json:"axis_labels"`
	Boundary   []*geojson.Geometry `json:"boundary"`
	Rays       []*geojson.Geometry `json:"rays"`
	Partitions []partitionJSON     `json:"partitions"`
	Points     *geojson.Geometry   `json:"points"`
}

type axisLabelsJSON struct {
	N string `json:"n"`
	S string `json:"s"`
}

type partitionJSON struct {
	Orientation Orientation       `json:"orientation"`
	Slope       *float64          `json:"slope,omitempty"`
	Line        *geojson.Geometry `json:"line"`
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// MarshalJSON encodes the diagram with its geometries as GeoJSON.
func (d *Diagram) MarshalJSON() ([]byte, error) {
	out := diagramJSON{
		CLF:        d.CLF,
		Extent:     d.Extent,
		AxisLabels: axisLabelsJSON{N: AxisLabelN, S: AxisLabelS},
	}

	var err error
	if out.Boundary, err = encodeAll(d.Boundary[:]...); err != nil {
		return nil, err
	}
	if out.Rays, err = encodeAll(d.Rays[:]...); err != nil {
		return nil, err
	}
	for _, p := range d.Partitions {
		pj := partitionJSON{Orientation: p.Orientation}
		if p.Orientation == Sloped || p.Orientation == Horizontal {
			slope := p.Slope
			pj.Slope = &slope
		}
		if p.Line != nil {
			if pj.Line, err = geojson.Encode(p.Line); err != nil {
				return nil, eris.Wrap(err, "exceed: encode partition")
			}
		}
		out.Partitions = append(out.Partitions, pj)
	}
	if out.Points, err = geojson.Encode(d.Points); err != nil {
		return nil, eris.Wrap(err, "exceed: encode points")
	}

	return json.Marshal(out)
}

func encodeAll(lines ...*geom.LineString) ([]*geojson.Geometry, error) {
	out := make([]*geojson.Geometry, len(lines))
	for i, l := range lines {
		g, err := geojson.Encode(l)
		if err != nil {
			return nil, eris.Wrap(err, "exceed: encode line")
		}
		out[i] = g
	}
	return out, nil
}
