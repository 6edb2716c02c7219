package nestgo_test

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/nestgo"
	"github.com/hupe1980/nestgo/config"
	"github.com/hupe1980/nestgo/model"
	"github.com/hupe1980/nestgo/rng"
	"github.com/hupe1980/nestgo/sampler"
)

func Example() {
	m := model.NewFunc(2, func(u []float64) float64 {
		dx, dy := u[0]-0.5, u[1]-0.5
		return -(dx*dx + dy*dy) / 0.02
	})

	cfg := config.Default()
	cfg.Slice.NumSlices = 5
	cfg.Slice.NumPhantomSave = 2

	eng, err := nestgo.NewFromConfig(m, cfg, nestgo.WithLogger(nestgo.NoopLogger()))
	if err != nil {
		panic(err)
	}

	var live model.SampleCollection
	for _, u := range [][]float64{{0.5, 0.5}, {0.4, 0.55}, {0.6, 0.45}, {0.45, 0.4}} {
		live = append(live, model.Sample{U: u, LogL: m.Forward(u), LogLConstraint: math.Inf(-1)})
	}

	round, err := eng.Prepare(context.Background(), rng.NewKey(1), sampler.State{Collection: live})
	if err != nil {
		panic(err)
	}

	res, err := round.Replace(context.Background(), rng.NewKey(2), []float64{-1, -0.5})
	if err != nil {
		panic(err)
	}

	for i, smp := range res.Samples {
		fmt.Printf("slot %d: above threshold=%v phantoms=%d\n", i, smp.LogL > smp.LogLConstraint, len(res.Phantoms[i]))
	}
	// Output:
	// slot 0: above threshold=true phantoms=2
	// slot 1: above threshold=true phantoms=2
}
