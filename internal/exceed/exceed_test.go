package exceed

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ref is the CLF used throughout: edge from (10, 15) to (20, 5), i.e. x+y=25.
var ref = CLF{ClnMin: 10, ClnMax: 20, ClsMin: 5, ClsMax: 15}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		clf    CLF
		dep    Deposition
		exN    float64
		exS    float64
		region Region
	}{
		{
			name:   "inside envelope",
			clf:    ref,
			dep:    Deposition{N: 5, S: 5},
			region: RegionNone,
		},
		{
			name:   "region 1: S below its floor",
			clf:    ref,
			dep:    Deposition{N: 25, S: 2},
			exN:    5,
			region: Region1,
		},
		{
			name:   "region 5: N below its floor",
			clf:    ref,
			dep:    Deposition{N: 5, S: 20},
			exS:    5,
			region: Region5,
		},
		{
			name:   "region 2: beyond lower corner",
			clf:    ref,
			dep:    Deposition{N: 25, S: 8},
			exN:    5,
			exS:    3,
			region: Region2,
		},
		{
			name:   "region 4: beyond upper corner",
			clf:    ref,
			dep:    Deposition{N: 12, S: 20},
			exN:    2,
			exS:    5,
			region: Region4,
		},
		{
			name:   "region 3: projected onto edge",
			clf:    ref,
			dep:    Deposition{N: 20, S: 15},
			exN:    5,
			exS:    5,
			region: Region3,
		},
		{
			name:   "zero critical load",
			clf:    CLF{},
			dep:    Deposition{N: 3, S: 4},
			exN:    3,
			exS:    4,
			region: RegionZeroCL,
		},
		{
			name:   "zero critical load with non-zero minima",
			clf:    CLF{ClnMin: 2, ClsMin: 1},
			dep:    Deposition{N: 7, S: 0},
			exN:    7,
			region: RegionZeroCL,
		},
		{
			name:   "point CLF falls through to region 2",
			clf:    CLF{ClnMin: 10, ClnMax: 10, ClsMin: 5, ClsMax: 5},
			dep:    Deposition{N: 12, S: 8},
			exN:    2,
			exS:    3,
			region: Region2,
		},
		{
			name:   "vertical CLF edge projects horizontally",
			clf:    CLF{ClnMin: 10, ClnMax: 10, ClsMin: 5, ClsMax: 15},
			dep:    Deposition{N: 14, S: 6},
			exN:    4,
			region: Region3,
		},
		{
			name:   "horizontal CLF edge projects vertically",
			clf:    CLF{ClnMin: 10, ClnMax: 20, ClsMin: 5, ClsMax: 5},
			dep:    Deposition{N: 15, S: 8},
			exS:    3,
			region: Region3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.clf, tt.dep)
			require.NoError(t, err)
			assert.Equal(t, StatusOK, got.Status)
			assert.Equal(t, tt.region, got.Region)
			assert.InDelta(t, tt.exN, got.ExN, 1e-9)
			assert.InDelta(t, tt.exS, got.ExS, 1e-9)
		})
	}
}

func TestClassify_InvalidCLF(t *testing.T) {
	clfs := []CLF{
		{ClnMin: -1, ClnMax: 20, ClsMin: 5, ClsMax: 15},
		{ClnMin: 10, ClnMax: -20, ClsMin: 5, ClsMax: 15},
		{ClnMin: 10, ClnMax: 20, ClsMin: -5, ClsMax: 15},
		{ClnMin: 10, ClnMax: 20, ClsMin: 5, ClsMax: -0.001},
		{ClnMin: math.NaN(), ClnMax: 20, ClsMin: 5, ClsMax: 15},
		{ClnMin: -1, ClnMax: 0, ClsMin: -1, ClsMax: 0},
	}
	deps := []Deposition{{N: 0, S: 0}, {N: 1, S: 1}, {N: 100, S: 3}}

	for _, clf := range clfs {
		for _, dep := range deps {
			got, err := Classify(clf, dep)
			require.NoError(t, err)
			assert.True(t, got.Invalid(), "clf=%+v dep=%+v", clf, dep)

			exN, exS, region := got.Legacy()
			assert.Equal(t, -1.0, exN)
			assert.Equal(t, -1.0, exS)
			assert.Equal(t, -1, region)
		}
	}
}

func TestClassify_NegativeDeposition(t *testing.T) {
	tests := []struct {
		name string
		clf  CLF
		dep  Deposition
	}{
		{name: "negative N", clf: ref, dep: Deposition{N: -1, S: 5}},
		{name: "negative S", clf: ref, dep: Deposition{N: 5, S: -1}},
		{name: "NaN N", clf: ref, dep: Deposition{N: math.NaN(), S: 5}},
		{name: "checked before invalid CLF", clf: CLF{ClnMin: -1}, dep: Deposition{N: -1, S: 0}},
		{name: "checked before zero CL", clf: CLF{}, dep: Deposition{N: 0, S: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.clf, tt.dep)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrNegativeDeposition))
			assert.Equal(t, Result{}, got)
		})
	}
}

func TestClassify_OriginNeverExceeds(t *testing.T) {
	values := []float64{0, 0.5, 3, 10, 250}
	for _, clnMin := range values {
		for _, clnMax := range values {
			for _, clsMin := range values {
				for _, clsMax := range values {
					if clnMin > clnMax || clsMin > clsMax {
						continue
					}
					clf := CLF{ClnMin: clnMin, ClnMax: clnMax, ClsMin: clsMin, ClsMax: clsMax}
					if clf.Zero() {
						continue
					}
					got, err := Classify(clf, Deposition{})
					require.NoError(t, err)
					assert.Equal(t, Result{}, got, "clf=%+v", clf)
				}
			}
		}
	}
}

func TestClassify_ZeroCLReturnsDeposition(t *testing.T) {
	for _, dep := range []Deposition{{}, {N: 3, S: 4}, {N: 0, S: 12.5}, {N: 1e6, S: 0}} {
		got, err := Classify(CLF{}, dep)
		require.NoError(t, err)
		assert.Equal(t, Result{ExN: dep.N, ExS: dep.S, Region: RegionZeroCL}, got)
	}
}

// Points on the equality case of each transition inequality must get the
// same exceedance from the branch taken as from its neighbour's formula.
func TestClassify_BoundaryContinuity(t *testing.T) {
	tests := []struct {
		name     string
		dep      Deposition
		region   Region
		exN, exS float64
	}{
		{name: "inside / region 1 at N=ClnMax", dep: Deposition{N: 20, S: 3}, region: RegionNone},
		{name: "inside / region 3 on the edge", dep: Deposition{N: 15, S: 10}, region: RegionNone},
		{name: "inside / region 5 at S=ClsMax", dep: Deposition{N: 5, S: 15}, region: RegionNone},
		{name: "region 1 / region 2 at S=ClsMin", dep: Deposition{N: 25, S: 5}, region: Region1, exN: 5},
		{name: "region 2 / region 3 partition", dep: Deposition{N: 24, S: 9}, region: Region2, exN: 4, exS: 4},
		{name: "region 3 / region 4 partition", dep: Deposition{N: 13, S: 18}, region: Region4, exN: 3, exS: 3},
		{name: "region 4 / region 5 at N=ClnMin", dep: Deposition{N: 10, S: 20}, region: Region5, exS: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(ref, tt.dep)
			require.NoError(t, err)
			assert.Equal(t, tt.region, got.Region)
			assert.InDelta(t, tt.exN, got.ExN, 1e-9)
			assert.InDelta(t, tt.exS, got.ExS, 1e-9)

			if tt.region == Region2 || tt.region == Region4 {
				dn := ref.ClnMin - ref.ClnMax
				ds := ref.ClsMax - ref.ClsMin
				xf, yf, err := project(ref, dn, ds, tt.dep.N, tt.dep.S)
				require.NoError(t, err)
				assert.InDelta(t, got.ExN, tt.dep.N-xf, 1e-9, "region 3 formula")
				assert.InDelta(t, got.ExS, tt.dep.S-yf, 1e-9, "region 3 formula")
			}
		})
	}
}

func TestClassify_Region3IsOrthogonalToEdge(t *testing.T) {
	for _, dep := range []Deposition{{N: 20, S: 15}, {N: 18, S: 12}, {N: 22.5, S: 11}, {N: 14, S: 17.5}} {
		got, err := Classify(ref, dep)
		require.NoError(t, err)
		require.Equal(t, Region3, got.Region, "dep=%+v", dep)

		// Edge direction is (ClnMax-ClnMin, ClsMin-ClsMax) = (10, -10).
		dot := got.ExN*(ref.ClnMax-ref.ClnMin) + got.ExS*(ref.ClsMin-ref.ClsMax)
		assert.InDelta(t, 0, dot, 1e-9)

		// The foot of the projection lies on x+y=25.
		assert.InDelta(t, 25, (dep.N-got.ExN)+(dep.S-got.ExS), 1e-9)
	}
}

func TestClassify_OutOfOrderParametersDoNotPanic(t *testing.T) {
	clf := CLF{ClnMin: 20, ClnMax: 10, ClsMin: 15, ClsMax: 5}
	for _, dep := range []Deposition{{}, {N: 12, S: 7}, {N: 30, S: 30}, {N: 1, S: 40}} {
		assert.NotPanics(t, func() {
			_, err := Classify(clf, dep)
			assert.NoError(t, err)
		})
	}
}

func TestProject_DegenerateEdge(t *testing.T) {
	clf := CLF{ClnMin: 10, ClnMax: 10, ClsMin: 5, ClsMax: 5}
	_, _, err := project(clf, 0, 0, 12, 8)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDegenerateGeometry))
}

func TestResult_Legacy(t *testing.T) {
	exN, exS, region := Result{ExN: 1.5, ExS: 2, Region: Region2}.Legacy()
	assert.Equal(t, 1.5, exN)
	assert.Equal(t, 2.0, exS)
	assert.Equal(t, 2, region)

	assert.InDelta(t, 3.5, Result{ExN: 1.5, ExS: 2}.Total(), 1e-12)
}

func TestRegion_String(t *testing.T) {
	assert.Equal(t, "none", RegionNone.String())
	assert.Equal(t, "region3", Region3.String())
	assert.Equal(t, "zero_cl", RegionZeroCL.String())
	assert.Equal(t, "Region(7)", Region(7).String())
}
