// Package exceed computes critical load exceedances for combined nitrogen and
// sulphur deposition, following the critical load function (CLF) method of
// the ICP Mapping manual, chapter VII.4.
//
// A CLF is defined by four parameters. In (N, S) deposition space it is the
// polyline (0, ClsMax) -> (ClnMin, ClsMax) -> (ClnMax, ClsMin) -> (ClnMax, 0).
// Deposition inside the polyline does not exceed the critical load. Outside
// it, the exceedance is the shortest step back onto the CLF, split into an
// N and an S component, and the point is tagged with the region of
// Figure VII.3 it falls in.
//
// All quantities must share one unit (typically eq/ha/yr).
package exceed

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// Sentinel errors.
var (
	// ErrNegativeDeposition is a precondition failure: deposition must be >= 0.
	ErrNegativeDeposition = eris.New("exceed: deposition cannot be negative")

	// ErrDegenerateGeometry is returned when the region 3 projection would
	// divide by a zero-length CLF edge.
	ErrDegenerateGeometry = eris.New("exceed: degenerate critical load geometry")

	// ErrInvalidCLF marks a CLF with a negative or NaN parameter. Classify
	// reports this through StatusInvalidCLF rather than as an error.
	ErrInvalidCLF = eris.New("exceed: invalid critical load function")
)

// Region identifies a zone of the CLF diagram (Figure VII.3).
type Region int

// Regions.
const (
	RegionNone   Region = 0 // no exceedance
	Region1      Region = 1 // S below ClsMin, only N exceeds
	Region2      Region = 2 // beyond the (ClnMax, ClsMin) corner
	Region3      Region = 3 // projected onto the sloping CLF edge
	Region4      Region = 4 // beyond the (ClnMin, ClsMax) corner
	Region5      Region = 5 // N below ClnMin, only S exceeds
	RegionZeroCL Region = 9 // critical load is zero, all deposition exceeds
)

// String implements fmt.Stringer.
func (r Region) String() string {
	switch r {
	case RegionNone:
		return "none"
	case Region1, Region2, Region3, Region4, Region5:
		return fmt.Sprintf("region%d", int(r))
	case RegionZeroCL:
		return "zero_cl"
	default:
		return fmt.Sprintf("Region(%d)", int(r))
	}
}

// Status tags a Result as a computed exceedance or an invalid CLF.
type Status int

// Statuses.
const (
	StatusOK Status = iota
	StatusInvalidCLF
)

// CLF holds the four parameters of a critical load function.
type CLF struct {
	ClnMin float64 `json:"cln_min"`
	ClnMax float64 `json:"cln_max"`
	ClsMin float64 `json:"cls_min"`
	ClsMax float64 `json:"cls_max"`
}

// Valid reports whether every parameter is a non-negative number.
func (c CLF) Valid() bool {
	for _, v := range [...]float64{c.ClnMin, c.ClnMax, c.ClsMin, c.ClsMax} {
		if v < 0 || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Zero reports whether the critical load is zero (ClnMax and ClsMax both 0).
func (c CLF) Zero() bool {
	return c.ClsMax == 0 && c.ClnMax == 0
}

// Deposition is total N and non-marine S deposition at one site.
type Deposition struct {
	N float64 `json:"dep_n"`
	S float64 `json:"dep_s"`
}

// Result is the exceedance of one deposition point against one CLF.
type Result struct {
	Status Status  `json:"status"`
	ExN    float64 `json:"ex_n"`
	ExS    float64 `json:"ex_s"`
	Region Region  `json:"region_id"`
}

// Invalid reports whether the CLF could not be evaluated.
func (r Result) Invalid() bool {
	return r.Status == StatusInvalidCLF
}

// Total returns ExN + ExS, the overall exceedance.
func (r Result) Total() float64 {
	return r.ExN + r.ExS
}

// Legacy returns the result as the (ex_n, ex_s, region_id) triple used by
// the legacy exceedance tables, where an invalid CLF is (-1, -1, -1).
func (r Result) Legacy() (exN, exS float64, region int) {
	if r.Invalid() {
		return -1, -1, -1
	}
	return r.ExN, r.ExS, int(r.Region)
}

// Classify computes the N and S exceedance of dep against clf.
//
// Negative (or NaN) deposition returns ErrNegativeDeposition before any
// geometry is evaluated. A CLF with a negative parameter is not an error:
// the result carries StatusInvalidCLF so that bulk callers can flag the row
// and carry on.
func Classify(clf CLF, dep Deposition) (Result, error) {
	if !(dep.N >= 0) || !(dep.S >= 0) {
		return Result{}, eris.Wrapf(ErrNegativeDeposition, "dep_n=%g dep_s=%g", dep.N, dep.S)
	}

	if !clf.Valid() {
		return Result{Status: StatusInvalidCLF}, nil
	}

	if clf.Zero() {
		return Result{ExN: dep.N, ExS: dep.S, Region: RegionZeroCL}, nil
	}

	dn := clf.ClnMin - clf.ClnMax
	ds := clf.ClsMax - clf.ClsMin
	n, s := dep.N, dep.S

	switch {
	case s <= clf.ClsMax && n <= clf.ClnMax && (n-clf.ClnMax)*ds <= (s-clf.ClsMin)*dn:
		return Result{Region: RegionNone}, nil

	case s <= clf.ClsMin:
		return Result{ExN: n - clf.ClnMax, Region: Region1}, nil

	case n <= clf.ClnMin:
		return Result{ExS: s - clf.ClsMax, Region: Region5}, nil

	case -(n-clf.ClnMax)*dn >= (s-clf.ClsMin)*ds:
		return Result{ExN: n - clf.ClnMax, ExS: s - clf.ClsMin, Region: Region2}, nil

	case -(n-clf.ClnMin)*dn <= (s-clf.ClsMax)*ds:
		return Result{ExN: n - clf.ClnMin, ExS: s - clf.ClsMax, Region: Region4}, nil
	}

	xf, yf, err := project(clf, dn, ds, n, s)
	if err != nil {
		return Result{}, err
	}
	return Result{ExN: n - xf, ExS: s - yf, Region: Region3}, nil
}

// project returns the orthogonal projection of (n, s) onto the line through
// the CLF edge (ClnMin, ClsMax)-(ClnMax, ClsMin).
func project(clf CLF, dn, ds, n, s float64) (float64, float64, error) {
	dd := dn*dn + ds*ds
	if dd == 0 {
		return 0, 0, eris.Wrapf(ErrDegenerateGeometry, "zero-length edge at (%g, %g)", clf.ClnMax, clf.ClsMin)
	}

	sp := n*dn + s*ds
	v := clf.ClnMax*ds - clf.ClsMin*dn
	return (dn*sp + ds*v) / dd, (ds*sp - dn*v) / dd, nil
}
