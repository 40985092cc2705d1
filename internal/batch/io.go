package batch

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/sells-group/critload/internal/db"
	"github.com/sells-group/critload/internal/exceed"
	"github.com/sells-group/critload/internal/store"
	"github.com/sells-group/critload/internal/vector"
)

// Deposition parameter IDs in the long-form deposition tables.
const (
	ParamNOx = 1 // oxidised N
	ParamNHx = 2 // reduced N
	ParamS   = 4 // non-marine S
)

// ResultColumns is the column order written by WriteResults.
var ResultColumns = []string{"series_id", "cell_id", "ex_n", "ex_s", "region_id"}

// Fields names the shapefile attributes holding a CLF.
type Fields struct {
	ID     string
	ClnMin string
	ClnMax string
	ClsMin string
	ClsMax string
}

// LoadCLFs reads cell_id, cln_min, cln_max, cls_min and cls_max from table.
func LoadCLFs(ctx context.Context, rel store.Relational, table string) (map[int64]exceed.CLF, error) {
	sql := fmt.Sprintf(`SELECT cell_id::bigint, cln_min::double precision, cln_max::double precision,
		cls_min::double precision, cls_max::double precision FROM %s`, db.SanitizeTable(table))

	ds, err := rel.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: load clfs from %s", table)
	}

	cols, err := columns(ds, "cell_id", "cln_min", "cln_max", "cls_min", "cls_max")
	if err != nil {
		return nil, eris.Wrapf(err, "batch: load clfs from %s", table)
	}

	out := make(map[int64]exceed.CLF, ds.Len())
	for i, row := range ds.Rows {
		id, err := toID(row[cols[0]])
		if err != nil {
			return nil, eris.Wrapf(err, "batch: %s row %d: cell_id", table, i)
		}
		vals, err := floats(row, cols[1:])
		if err != nil {
			return nil, eris.Wrapf(err, "batch: %s cell %d", table, id)
		}
		if _, dup := out[id]; dup {
			return nil, eris.Errorf("batch: %s has duplicate cell %d", table, id)
		}
		out[id] = exceed.CLF{ClnMin: vals[0], ClnMax: vals[1], ClsMin: vals[2], ClsMax: vals[3]}
	}

	zap.L().Info("batch: loaded critical load functions", zap.String("table", table), zap.Int("cells", len(out)))
	return out, nil
}

// LoadDeposition reads the long-form deposition values of one series and
// pivots them to N (NOx + NHx) and S per cell. Other parameters are ignored.
func LoadDeposition(ctx context.Context, rel store.Relational, table string, seriesID int) (map[int64]exceed.Deposition, error) {
	sql := fmt.Sprintf(`SELECT cell_id::bigint, param_id::integer, value::double precision FROM %s
		WHERE series_id = $1 AND param_id IN (%d, %d, %d)`, db.SanitizeTable(table), ParamNOx, ParamNHx, ParamS)

	ds, err := rel.Query(ctx, sql, seriesID)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: load deposition series %d", seriesID)
	}

	cols, err := columns(ds, "cell_id", "param_id", "value")
	if err != nil {
		return nil, eris.Wrapf(err, "batch: load deposition series %d", seriesID)
	}

	out := make(map[int64]exceed.Deposition)
	for i, row := range ds.Rows {
		id, err := toID(row[cols[0]])
		if err != nil {
			return nil, eris.Wrapf(err, "batch: deposition row %d: cell_id", i)
		}
		param, err := cast.ToIntE(row[cols[1]])
		if err != nil {
			return nil, eris.Wrapf(err, "batch: deposition cell %d: param_id", id)
		}
		v, err := cast.ToFloat64E(row[cols[2]])
		if err != nil {
			return nil, eris.Wrapf(err, "batch: deposition cell %d param %d: value", id, param)
		}

		dep := out[id]
		switch param {
		case ParamNOx, ParamNHx:
			dep.N += v
		case ParamS:
			dep.S += v
		default:
			continue
		}
		out[id] = dep
	}

	zap.L().Info("batch: loaded deposition",
		zap.String("table", table),
		zap.Int("series_id", seriesID),
		zap.Int("cells", len(out)),
	)
	return out, nil
}

// CLFsFromFeatures builds a CLF per feature from its attributes.
func CLFsFromFeatures(features []vector.Feature, f Fields) (map[int64]exceed.CLF, error) {
	names := []string{f.ClnMin, f.ClnMax, f.ClsMin, f.ClsMax}
	for i := range names {
		names[i] = strings.ToLower(names[i])
	}
	idField := strings.ToLower(f.ID)

	out := make(map[int64]exceed.CLF, len(features))
	for i, feat := range features {
		raw, ok := feat.Attr(idField)
		if !ok {
			return nil, eris.Errorf("batch: feature %d: missing %s", i, idField)
		}
		id, err := toID(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "batch: feature %d: %s", i, idField)
		}

		var vals [4]float64
		for j, name := range names {
			s, ok := feat.Attr(name)
			if !ok {
				return nil, eris.Errorf("batch: feature %d: missing %s", id, name)
			}
			if vals[j], err = cast.ToFloat64E(s); err != nil {
				return nil, eris.Wrapf(err, "batch: feature %d: %s", id, name)
			}
		}

		if _, dup := out[id]; dup {
			return nil, eris.Errorf("batch: duplicate feature id %d", id)
		}
		out[id] = exceed.CLF{ClnMin: vals[0], ClnMax: vals[1], ClsMin: vals[2], ClsMax: vals[3]}
	}
	return out, nil
}

// WriteResults appends the valid outputs of a series to schema.table and
// returns the number of rows written.
func WriteResults(ctx context.Context, rel store.Relational, schema, table string, seriesID int, outputs []Output) (int64, error) {
	ds := store.Dataset{Columns: ResultColumns}
	for _, o := range outputs {
		if o.Result.Invalid() {
			continue
		}
		ds.Rows = append(ds.Rows, []any{seriesID, o.ID, o.Result.ExN, o.Result.ExS, int(o.Result.Region)})
	}

	n, err := rel.Append(ctx, schema, table, ds)
	if err != nil {
		return n, eris.Wrapf(err, "batch: write results for series %d", seriesID)
	}
	return n, nil
}

// toID coerces an integral ID. Strings are read as decimal floats, so
// zero-padded IDs and numeric dbf values like "58001050.000" are accepted.
func toID(v any) (int64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, eris.Errorf("batch: %v is not an integral id", v)
	}
	return int64(f), nil
}

// columns returns the index of each named column in ds.
func columns(ds store.Dataset, names ...string) ([]int, error) {
	idx := ds.Index()
	out := make([]int, len(names))
	for i, n := range names {
		j, ok := idx[n]
		if !ok {
			return nil, eris.Errorf("batch: missing column %q", n)
		}
		out[i] = j
	}
	return out, nil
}

func floats(row []any, cols []int) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, err := cast.ToFloat64E(row[c])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
