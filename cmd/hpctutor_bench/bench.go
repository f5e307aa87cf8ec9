// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/gomlx/hpctutor/pkg/parallel"
	"github.com/gomlx/hpctutor/pkg/support/sets"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// verifyTolerance is the largest absolute difference with the reference accepted by -verify.
const verifyTolerance = 1e-6

type benchConfig struct {
	sizes    []int
	ops      []string
	block    linalg.BlockSizes
	luBlock  int
	parallel parallel.Config
	seed     uint64
	repeat   int
	verify   bool
	progress io.Writer // nil disables the progress bar.
}

func newBenchConfigFromFlags() (*benchConfig, error) {
	block, err := parallel.ParseBlockSizes(*flagBlock)
	if err != nil {
		return nil, errors.WithMessage(err, "-block")
	}
	c := &benchConfig{
		sizes:   sets.Unique(*flagSizes),
		ops:     sets.Unique(*flagOps),
		block:   block,
		luBlock: *flagLUBlock,
		parallel: parallel.Config{
			Workers:    *flagWorkers,
			MinChunk:   *flagChunk,
			BlockSizes: block,
		},
		seed:   *flagSeed,
		repeat: *flagRepeat,
		verify: *flagVerify,
	}
	if *flagProgress {
		c.progress = os.Stderr
	}
	return c, c.validate()
}

func (c *benchConfig) validate() error {
	if len(c.sizes) == 0 || len(c.ops) == 0 {
		return errors.New("nothing to benchmark: -sizes and -ops must not be empty")
	}
	for _, n := range c.sizes {
		if n < 1 {
			return errors.Errorf("invalid size %d, sizes must be >= 1", n)
		}
	}
	for _, op := range c.ops {
		if _, err := parseOp(op); err != nil {
			return err
		}
	}
	if c.luBlock < 1 {
		return errors.Wrapf(linalg.ErrInvalidBlockSize, "-lu_block=%d", c.luBlock)
	}
	if c.repeat < 1 {
		return errors.Errorf("invalid -repeat=%d, it must be >= 1", c.repeat)
	}
	if err := c.block.Validate(); err != nil {
		return err
	}
	return c.parallel.Validate()
}

// result of one op for one size.
type result struct {
	op       string
	n        int
	duration time.Duration // Mean time per run.
	flops    float64       // Per run, 0 if not applicable.
	diff     float64       // Largest difference with the reference, NaN if not verified.
}

// GFlopsPerSec returns the measured throughput, or 0 if the op doesn't count flops.
func (r result) GFlopsPerSec() float64 {
	if r.flops == 0 || r.duration <= 0 {
		return 0
	}
	return r.flops / r.duration.Seconds() / 1e9
}

// Failed returns whether the verification failed.
func (r result) Failed() bool {
	return !math.IsNaN(r.diff) && !(r.diff <= verifyTolerance)
}

func countFailures(results []result) (count int) {
	for _, r := range results {
		if r.Failed() {
			count++
		}
	}
	return
}

// runAll benchmarks every op of the configuration for every size.
func runAll(c *benchConfig) ([]result, error) {
	executor, err := parallel.New(c.parallel)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("Benchmarking ops %v, sizes %v, parallel config %s", c.ops, c.sizes, c.parallel)

	writer := c.progress
	if writer == nil {
		writer = io.Discard
	}
	bar := progressbar.NewOptions(len(c.sizes)*len(c.ops),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	results := make([]result, 0, len(c.sizes)*len(c.ops))
	for _, n := range c.sizes {
		for _, op := range c.ops {
			bar.Describe(fmt.Sprintf("%-20s n=%-6d", op, n))
			r, err := runOne(c, executor, op, n)
			if err != nil {
				return nil, err
			}
			results = append(results, r)
			_ = bar.Add(1)
		}
	}
	return results, nil
}

// runOne runs one warm-up and c.repeat timed runs of op with size n.
func runOne(c *benchConfig, executor *parallel.Executor, op string, n int) (result, error) {
	factory, found := opsRegistry[op]
	if !found {
		return result{}, errors.Errorf("unknown op %q", op)
	}
	// Each (op, size) pair gets the same inputs regardless of which other ops run.
	rng := rand.New(rand.NewPCG(c.seed, uint64(n)))
	b := factory(benchInput{n: n, rng: rng, config: c, executor: executor})

	r := result{op: op, n: n, flops: b.flops, diff: math.NaN()}
	var total time.Duration
	for ii := range c.repeat + 1 {
		b.reset()
		start := time.Now()
		if err := b.run(); err != nil {
			return r, errors.WithMessagef(err, "%s(n=%d)", op, n)
		}
		if ii > 0 {
			total += time.Since(start)
		}
	}
	r.duration = total / time.Duration(c.repeat)

	if c.verify && b.verify != nil {
		diff, err := b.verify()
		if err != nil {
			return r, errors.WithMessagef(err, "verifying %s(n=%d)", op, n)
		}
		r.diff = diff
	}
	klog.V(1).Infof("%s(n=%d): %s per run, max diff %g", op, n, r.duration, r.diff)
	return r, nil
}
