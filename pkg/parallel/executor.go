// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package parallel implements thread-parallel versions of the linalg kernels: Find, MergeSort,
// MatrixEval and Gemm.
//
// Each kernel splits its problem into independent partitions (index ranges, or output tiles for
// Gemm) that run on the bounded worker pool of an Executor, and joins them all before returning.
// Partitions write to disjoint regions of the output, so no locking is needed.
//
// Results are the same as those of the sequential kernels in package linalg: the same index for
// Find and the same permutation for MergeSort. MatrixEval and Gemm don't reassociate any sum,
// so their results are also equal, element by element.
//
// Every kernel takes the *Executor as the first argument; nil means Default().
package parallel

import (
	"github.com/gomlx/hpctutor/internal/workerspool"
	"github.com/pkg/errors"
)

// Executor runs the partitions of the parallel kernels on a bounded pool of workers.
//
// An Executor holds no state across calls, and it can be used concurrently.
type Executor struct {
	config Config
	pool   *workerspool.Pool
}

// New creates an Executor with its own pool of workers.
func New(config Config) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Executor{
		config: config,
		pool:   workerspool.NewWithParallelism(config.Workers),
	}, nil
}

func mustNew(config Config) *Executor {
	e, err := New(config)
	if err != nil {
		panic(errors.WithStack(err))
	}
	return e
}

// Config returns the configuration the executor was created with.
func (e *Executor) Config() Config {
	return e.config
}

// NumWorkers returns the maximum number of partitions the executor creates for one call, at least 1.
func (e *Executor) NumWorkers() int {
	return e.pool.AdjustedMaxParallelism()
}

// numPartitions returns in how many partitions to split a problem with the given amount of work.
func (e *Executor) numPartitions(work int) int {
	if !e.pool.IsEnabled() || work <= e.config.MinChunk {
		return 1
	}
	return max(1, min(e.NumWorkers(), work/e.config.MinChunk))
}

// run executes fn for every partition in [0, numPartitions) and waits for all of them.
func (e *Executor) run(numPartitions int, fn func(partition int)) {
	e.pool.Run(numPartitions, fn)
}

// saturate runs task in as many workers as available, and waits for all of them.
// task is expected to consume work from a closed channel.
func (e *Executor) saturate(task func()) {
	e.pool.Saturate(task)
}

func resolve(e *Executor) *Executor {
	if e == nil {
		return Default()
	}
	return e
}

// chunk returns the range [start, end) of the partition-th of numPartitions contiguous, balanced
// partitions of [0, n).
func chunk(n, numPartitions, partition int) (start, end int) {
	return partition * n / numPartitions, (partition + 1) * n / numPartitions
}
