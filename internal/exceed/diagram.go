package exceed

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Axis labels every renderer of a Diagram uses.
const (
	AxisLabelN = "N_dep"
	AxisLabelS = "S_dep"
)

// extentPadding scales the largest value on either axis to the plot extent.
const extentPadding = 1.2

// Overlay point errors.
var (
	ErrLengthMismatch = eris.New("exceed: ndeps and sdeps must have equal length")
	ErrInvalidPoint   = eris.New("exceed: overlay deposition must be finite and non-negative")
)

// Orientation describes the direction of a region partition line.
type Orientation int

// Orientations.
const (
	Undefined Orientation = iota // CLF edge is a single point
	Sloped
	Horizontal // CLF edge is vertical (ClnMin == ClnMax)
	Vertical   // CLF edge is horizontal (ClsMin == ClsMax)
)

// String implements fmt.Stringer.
func (o Orientation) String() string {
	switch o {
	case Sloped:
		return "sloped"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "undefined"
	}
}

// Partition is a line separating regions 2/3 or 3/4. It starts at one end of
// the CLF edge and runs perpendicular to the edge out to the plot extent.
// Slope is meaningful only for Sloped and Horizontal orientations.
type Partition struct {
	Orientation Orientation
	Slope       float64
	Line        *geom.LineString
}

// Diagram is the geometry needed to draw a CLF with observed deposition
// points: everything a renderer needs, and nothing about how to render it.
type Diagram struct {
	CLF    CLF
	Extent float64

	// Boundary holds the solid CLF polyline segments: the S plateau, the N
	// plateau, and the sloping edge between them.
	Boundary [3]*geom.LineString

	// Rays holds the dashed extensions bounding region 5 (up from
	// (ClnMin, ClsMax)) and region 1 (right from (ClnMax, ClsMin)).
	Rays [2]*geom.LineString

	// Partitions holds the 3/4 line at (ClnMin, ClsMax) followed by the 2/3
	// line at (ClnMax, ClsMin).
	Partitions [2]Partition

	Points *geom.MultiPoint
}

// NewDiagram builds the plot geometry for clf with the overlay points
// (ndeps[i], sdeps[i]).
func NewDiagram(clf CLF, ndeps, sdeps []float64) (*Diagram, error) {
	if len(ndeps) != len(sdeps) {
		return nil, eris.Wrapf(ErrLengthMismatch, "len(ndeps)=%d len(sdeps)=%d", len(ndeps), len(sdeps))
	}
	if !clf.Valid() {
		return nil, eris.Wrapf(ErrInvalidCLF, "%+v", clf)
	}

	ext := math.Max(clf.ClnMax, clf.ClsMax)
	flat := make([]float64, 0, 2*len(ndeps))
	for i := range ndeps {
		if !validDep(ndeps[i]) || !validDep(sdeps[i]) {
			return nil, eris.Wrapf(ErrInvalidPoint, "point %d: n=%g s=%g", i, ndeps[i], sdeps[i])
		}
		ext = math.Max(ext, math.Max(ndeps[i], sdeps[i]))
		flat = append(flat, ndeps[i], sdeps[i])
	}
	ext *= extentPadding

	d := &Diagram{
		CLF:    clf,
		Extent: ext,
		Boundary: [3]*geom.LineString{
			segment(0, clf.ClsMax, clf.ClnMin, clf.ClsMax),
			segment(clf.ClnMax, 0, clf.ClnMax, clf.ClsMin),
			segment(clf.ClnMin, clf.ClsMax, clf.ClnMax, clf.ClsMin),
		},
		Rays: [2]*geom.LineString{
			segment(clf.ClnMin, clf.ClsMax, clf.ClnMin, ext),
			segment(clf.ClnMax, clf.ClsMin, ext, clf.ClsMin),
		},
		Points: geom.NewMultiPointFlat(geom.XY, flat),
	}
	d.Partitions[0] = partition(clf, clf.ClnMin, clf.ClsMax, ext)
	d.Partitions[1] = partition(clf, clf.ClnMax, clf.ClsMin, ext)

	return d, nil
}

// partition returns the line through (x0, y0) perpendicular to the CLF edge.
//
// The edge direction is (ClnMax-ClnMin, ClsMin-ClsMax). When it is vertical
// the perpendicular is horizontal (slope 0); when it is horizontal the
// perpendicular is vertical and has no slope.
func partition(clf CLF, x0, y0, ext float64) Partition {
	run := clf.ClnMax - clf.ClnMin
	rise := clf.ClsMin - clf.ClsMax

	switch {
	case run == 0 && rise == 0:
		return Partition{Orientation: Undefined}
	case run == 0:
		return Partition{Orientation: Horizontal, Line: segment(x0, y0, ext, y0)}
	case rise == 0:
		return Partition{Orientation: Vertical, Line: segment(x0, y0, x0, ext)}
	}

	perp := -1 / (rise / run)
	return Partition{
		Orientation: Sloped,
		Slope:       perp,
		Line:        segment(x0, y0, ext, perp*ext+y0-perp*x0),
	}
}

func validDep(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func segment(x0, y0, x1, y1 float64) *geom.LineString {
	return geom.NewLineStringFlat(geom.XY, []float64{x0, y0, x1, y1})
}
