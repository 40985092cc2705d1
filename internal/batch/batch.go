// Package batch classifies many grid cells or sites against their critical
// load functions in parallel and moves inputs and results through the
// relational store.
package batch

import (
	"context"
	"maps"
	"runtime"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/critload/internal/exceed"
)

const defaultChunkSize = 10000

// Input is one cell or site to classify.
type Input struct {
	ID  int64
	CLF exceed.CLF
	Dep exceed.Deposition
}

// Output is the classification of the Input with the same ID.
type Output struct {
	ID     int64
	Result exceed.Result
}

// Summary counts a run's outcomes. Invalid rows are not in Regions and add
// nothing to Exceedance.
type Summary struct {
	Total      int
	Invalid    int
	Regions    map[exceed.Region]int
	Exceedance float64 // sum of ExN + ExS over valid rows
}

// Options configures Run.
type Options struct {
	Concurrency int // Parallel chunks (default runtime.NumCPU)
	ChunkSize   int // Inputs per chunk (default 10,000)
}

// Join pairs CLFs and deposition by ID and returns the inputs sorted by ID.
// IDs that have a CLF but no deposition are returned as missing; deposition
// without a CLF is ignored.
func Join(clfs map[int64]exceed.CLF, deps map[int64]exceed.Deposition) (inputs []Input, missing []int64) {
	for _, id := range slices.Sorted(maps.Keys(clfs)) {
		dep, ok := deps[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		inputs = append(inputs, Input{ID: id, CLF: clfs[id], Dep: dep})
	}
	return inputs, missing
}

// Run classifies every input. Outputs are in input order. Negative
// deposition on any row aborts the run with that row's ID in the error;
// invalid CLFs are counted in the Summary.
func Run(ctx context.Context, inputs []Input, opts Options) ([]Output, Summary, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}

	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	log := zap.L().With(zap.String("component", "batch.run"))

	outputs := make([]Output, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for start := 0; start < len(inputs); start += opts.ChunkSize {
		end := min(start+opts.ChunkSize, len(inputs))
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				in := inputs[i]
				res, err := exceed.Classify(in.CLF, in.Dep)
				if err != nil {
					return eris.Wrapf(err, "batch: classify id %d", in.ID)
				}
				outputs[i] = Output{ID: in.ID, Result: res}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	sum := Summarize(outputs)
	if sum.Invalid > 0 {
		log.Warn("invalid critical load functions", zap.Int("count", sum.Invalid))
	}
	log.Info("classification complete",
		zap.Int("total", sum.Total),
		zap.Int("chunks", (len(inputs)+opts.ChunkSize-1)/opts.ChunkSize),
	)

	return outputs, sum, nil
}

// Summarize counts outputs by region.
func Summarize(outputs []Output) Summary {
	sum := Summary{Total: len(outputs), Regions: make(map[exceed.Region]int)}
	for _, o := range outputs {
		if o.Result.Invalid() {
			sum.Invalid++
			continue
		}
		sum.Regions[o.Result.Region]++
		sum.Exceedance += o.Result.Total()
	}
	return sum
}
