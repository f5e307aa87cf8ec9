// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/gomlx/hpctutor/pkg/parallel"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// benchInput is what an op needs to build its inputs for one size.
type benchInput struct {
	n        int
	rng      *rand.Rand
	config   *benchConfig
	executor *parallel.Executor
}

// bench is one op prepared for one size.
type bench struct {
	// flops per run, 0 if the op is not measured in floating point operations.
	flops float64

	// reset restores the inputs that run modifies. It is not timed.
	reset func()

	run func() error

	// verify returns the largest absolute difference between the output of the last run and a
	// reference. nil if the op has no reference.
	verify func() (float64, error)
}

type opFactory func(in benchInput) *bench

// opsOrder lists the ops in the order they are run and reported.
var opsOrder = []string{
	"scalarmul", "inner", "vectorsum", "accumulate",
	"matrixeval", "matrixeval_parallel",
	"gemm", "gemm_block", "gemm_parallel",
	"transpose",
	"lufact", "lufact_block",
	"mergesort", "mergesort_parallel",
}

var opsRegistry = map[string]opFactory{
	"scalarmul":           newScalarMul,
	"inner":               newInner,
	"vectorsum":           newVectorSum,
	"accumulate":          newAccumulate,
	"matrixeval":          newMatrixEval,
	"matrixeval_parallel": newMatrixEvalParallel,
	"gemm":                newGemm,
	"gemm_block":          newGemmBlock,
	"gemm_parallel":       newGemmParallel,
	"transpose":           newTranspose,
	"lufact":              newLuFact,
	"lufact_block":        newLuFactBlock,
	"mergesort":           newMergeSort,
	"mergesort_parallel":  newMergeSortParallel,
}

// parseOp validates an op name given in the -ops flag.
func parseOp(name string) (string, error) {
	if _, found := opsRegistry[name]; !found {
		return "", errors.Errorf("unknown op %q, valid ops are %v", name, opsOrder)
	}
	return name, nil
}

func noop() {}

func vectorDiff(a, b []float64) float64 {
	return matrix.MaxAbsDiff(matrix.NewView(a, 1, len(a), len(a)), matrix.NewView(b, 1, len(b), len(b)))
}

// Vector ops work on n*n elements, so their cost grows like the matrix ops'.

func newScalarMul(in benchInput) *bench {
	size := in.n * in.n
	src := matrix.RandomVector(in.rng, size, -1.0, 1.0)
	data := make([]float64, size)
	return &bench{
		flops: float64(size),
		reset: func() { copy(data, src) },
		run: func() error {
			linalg.ScalarMul(data, 1.5)
			return nil
		},
		verify: func() (float64, error) {
			want := slices.Clone(src)
			for ii := range want {
				want[ii] *= 1.5
			}
			return vectorDiff(want, data), nil
		},
	}
}

func newInner(in benchInput) *bench {
	size := in.n * in.n
	lhs := matrix.RandomVector(in.rng, size, -1.0, 1.0)
	rhs := matrix.RandomVector(in.rng, size, -1.0, 1.0)
	var got float64
	return &bench{
		flops: 2 * float64(size),
		reset: noop,
		run: func() (err error) {
			got, err = linalg.Inner(lhs, rhs)
			return
		},
		verify: func() (float64, error) {
			want := mat.Dot(mat.NewVecDense(size, lhs), mat.NewVecDense(size, rhs))
			return math.Abs(want - got), nil
		},
	}
}

func newVectorSum(in benchInput) *bench {
	size := in.n * in.n
	lhs := matrix.RandomVector(in.rng, size, -1.0, 1.0)
	rhs := matrix.RandomVector(in.rng, size, -1.0, 1.0)
	ret := make([]float64, size)
	return &bench{
		flops: float64(size),
		reset: noop,
		run:   func() error { return linalg.VectorSum(ret, lhs, rhs) },
	}
}

func newAccumulate(in benchInput) *bench {
	size := in.n * in.n
	data := matrix.RandomVector(in.rng, size, -1.0, 1.0)
	var got float64
	return &bench{
		flops: float64(size),
		reset: noop,
		run: func() error {
			got = linalg.Accumulate(data)
			return nil
		},
		verify: func() (float64, error) {
			want := mat.Sum(mat.NewVecDense(size, data))
			return math.Abs(want - got), nil
		},
	}
}

func newMatrixEval(in benchInput) *bench {
	m := matrix.Random(in.rng, in.n, in.n, -1.0, 1.0)
	v := matrix.RandomVector(in.rng, in.n, -1.0, 1.0)
	ret := make([]float64, in.n)
	return &bench{
		flops: 2 * float64(in.n) * float64(in.n),
		reset: noop,
		run:   func() error { return linalg.MatrixEval(ret, m.View(), v) },
	}
}

func newMatrixEvalParallel(in benchInput) *bench {
	m := matrix.Random(in.rng, in.n, in.n, -1.0, 1.0)
	v := matrix.RandomVector(in.rng, in.n, -1.0, 1.0)
	ret := make([]float64, in.n)
	return &bench{
		flops: 2 * float64(in.n) * float64(in.n),
		reset: noop,
		run:   func() error { return parallel.MatrixEval(in.executor, ret, m.View(), v) },
		verify: func() (float64, error) {
			want := make([]float64, in.n)
			if err := linalg.MatrixEval(want, m.View(), v); err != nil {
				return 0, err
			}
			return vectorDiff(want, ret), nil
		},
	}
}

func gemmFlops(n int) float64 {
	return 2 * float64(n) * float64(n) * float64(n)
}

// newGemmBench builds a GEMM bench of n x n matrices running the given kernel, verified against
// the naive linalg.Gemm.
func newGemmBench(in benchInput, kernel func(ret, lhs, rhs matrix.View[float64]) error) *bench {
	lhs := matrix.Random(in.rng, in.n, in.n, -1.0, 1.0)
	rhs := matrix.Random(in.rng, in.n, in.n, -1.0, 1.0)
	ret := matrix.New[float64](in.n, in.n)
	return &bench{
		flops: gemmFlops(in.n),
		reset: func() { clear(ret.Data()) },
		run:   func() error { return kernel(ret.View(), lhs.View(), rhs.View()) },
		verify: func() (float64, error) {
			want := matrix.New[float64](in.n, in.n)
			if err := linalg.Gemm(want.View(), lhs.View(), rhs.View()); err != nil {
				return 0, err
			}
			return matrix.MaxAbsDiff(want.View(), ret.View()), nil
		},
	}
}

// newGemm is verified against gonum, an independent implementation.
func newGemm(in benchInput) *bench {
	lhs := matrix.Random(in.rng, in.n, in.n, -1.0, 1.0)
	rhs := matrix.Random(in.rng, in.n, in.n, -1.0, 1.0)
	ret := matrix.New[float64](in.n, in.n)
	return &bench{
		flops: gemmFlops(in.n),
		reset: func() { clear(ret.Data()) },
		run:   func() error { return linalg.Gemm(ret.View(), lhs.View(), rhs.View()) },
		verify: func() (float64, error) {
			var want mat.Dense
			want.Mul(mat.NewDense(in.n, in.n, lhs.Data()), mat.NewDense(in.n, in.n, rhs.Data()))
			return matrix.MaxAbsDiff(matrix.NewView(want.RawMatrix().Data, in.n, in.n, in.n), ret.View()), nil
		},
	}
}

func newGemmBlock(in benchInput) *bench {
	bs := in.config.block
	return newGemmBench(in, func(ret, lhs, rhs matrix.View[float64]) error {
		return linalg.GemmBlock(ret, lhs, rhs, bs)
	})
}

func newGemmParallel(in benchInput) *bench {
	return newGemmBench(in, func(ret, lhs, rhs matrix.View[float64]) error {
		return parallel.Gemm(in.executor, ret, lhs, rhs)
	})
}

func newTranspose(in benchInput) *bench {
	src := matrix.Random(in.rng, in.n, in.n, -1.0, 1.0)
	m := src.Clone()
	return &bench{
		reset: func() { copy(m.Data(), src.Data()) },
		run:   func() error { return linalg.Transpose(m.View()) },
		verify: func() (float64, error) {
			var maxDiff float64
			for ii := range in.n {
				for jj := range in.n {
					maxDiff = max(maxDiff, math.Abs(src.At(ii, jj)-m.At(jj, ii)))
				}
			}
			return maxDiff, nil
		},
	}
}

// randomFactorable returns a diagonally dominant matrix, which LU factors without pivoting.
func randomFactorable(rng *rand.Rand, n int) *matrix.Matrix[float64] {
	m := matrix.Random(rng, n, n, 0.0, 1.0)
	for ii := range n {
		m.Set(ii, ii, m.At(ii, ii)+float64(n))
	}
	return m
}

func luFlops(n int) float64 {
	return 2.0 / 3.0 * float64(n) * float64(n) * float64(n)
}

// newLuFact is verified by multiplying the factors back.
func newLuFact(in benchInput) *bench {
	src := randomFactorable(in.rng, in.n)
	lu := src.Clone()
	return &bench{
		flops: luFlops(in.n),
		reset: func() { copy(lu.Data(), src.Data()) },
		run:   func() error { return linalg.LuFact(lu.View()) },
		verify: func() (float64, error) {
			product := matrix.New[float64](in.n, in.n)
			if err := linalg.MultiplyLU(product.View(), lu.View(), lu.View()); err != nil {
				return 0, err
			}
			return matrix.MaxAbsDiff(src.View(), product.View()), nil
		},
	}
}

func newLuFactBlock(in benchInput) *bench {
	src := randomFactorable(in.rng, in.n)
	lu := src.Clone()
	bs := in.config.luBlock
	return &bench{
		flops: luFlops(in.n),
		reset: func() { copy(lu.Data(), src.Data()) },
		run:   func() error { return linalg.LuFactBlock(lu.View(), bs) },
		verify: func() (float64, error) {
			want := src.Clone()
			if err := linalg.LuFact(want.View()); err != nil {
				return 0, err
			}
			return matrix.MaxAbsDiff(want.View(), lu.View()), nil
		},
	}
}

func newSortBench(in benchInput, sortFn func(v []float64)) *bench {
	size := in.n * in.n
	src := matrix.RandomVector(in.rng, size, -1.0, 1.0)
	data := make([]float64, size)
	return &bench{
		reset: func() { copy(data, src) },
		run: func() error {
			sortFn(data)
			return nil
		},
		verify: func() (float64, error) {
			return vectorDiff(slices.Sorted(slices.Values(src)), data), nil
		},
	}
}

func newMergeSort(in benchInput) *bench {
	return newSortBench(in, linalg.MergeSort[float64])
}

func newMergeSortParallel(in benchInput) *bench {
	return newSortBench(in, func(v []float64) { parallel.MergeSort(in.executor, v) })
}
