// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"testing"

	"github.com/gomlx/hpctutor/internal/testutil"
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGemmByIdentity(t *testing.T) {
	const n, m = 10, 50
	rng := testutil.NewRand(t)
	id := matrix.Eye[float64](n)
	a := matrix.Random(rng, n, m, 0.0, 1.0)
	b := matrix.New[float64](n, m)
	require.NoError(t, Gemm(b.View(), id.View(), a.View()))
	testutil.RequireMatrixClose(t, a.View(), b.View())
}

func TestGemm(t *testing.T) {
	lhs := matrix.FromRows([][]float64{{6, 1, -2}, {-3, 5, 7}})
	rhs := matrix.FromRows([][]float64{{6, 6}, {1, -1}, {6, 1}})
	want := matrix.FromRows([][]float64{{25, 33}, {29, -16}})
	ret := matrix.New[float64](2, 2)
	require.NoError(t, Gemm(ret.View(), lhs.View(), rhs.View()))
	testutil.RequireMatrixClose(t, want.View(), ret.View())

	// Gemm accumulates into ret.
	require.NoError(t, Gemm(ret.View(), lhs.View(), rhs.View()))
	require.True(t, ret.Equal(matrix.FromRows([][]float64{{50, 66}, {58, -32}})))
}

func TestGemmShapeMismatch(t *testing.T) {
	lhs := matrix.NewFilled(2, 3, 1)
	rhs := matrix.NewFilled(4, 2, 1)
	ret := matrix.NewFilled(2, 2, 7)
	err := Gemm(ret.View(), lhs.View(), rhs.View())
	require.ErrorIs(t, err, ErrDimensionMismatch)
	require.ErrorContains(t, err, "lhs(2, 3)")
	// Nothing was written.
	require.True(t, ret.Equal(matrix.NewFilled(2, 2, 7)))

	require.ErrorIs(t, Gemm(matrix.New[int](3, 2).View(), lhs.View(), matrix.New[int](3, 2).View()), ErrDimensionMismatch)
	require.ErrorIs(t, Gemm(matrix.New[int](2, 3).View(), lhs.View(), matrix.New[int](3, 2).View()), ErrDimensionMismatch)
}

func TestGemmIntegers(t *testing.T) {
	rng := testutil.NewRand(t)
	lhs := matrix.Random(rng, 10, 200, -3, 3)
	rhs := matrix.Random(rng, 200, 15, -3, 3)
	got := matrix.New[int](10, 15)
	require.NoError(t, Gemm(got.View(), lhs.View(), rhs.View()))
	for ii := range 10 {
		for jj := range 15 {
			var want int
			for kk := range 200 {
				want += lhs.At(ii, kk) * rhs.At(kk, jj)
			}
			require.Equalf(t, want, got.At(ii, jj), "element (%d, %d)", ii, jj)
		}
	}
}

func TestGemmSubViews(t *testing.T) {
	rng := testutil.NewRand(t)
	big := matrix.Random(rng, 20, 20, -5, 5)
	lhs := big.SubView(1, 2, 4, 6)
	rhs := big.SubView(10, 3, 6, 5)
	out := matrix.New[int](10, 10)
	ret := out.SubView(3, 4, 4, 5)
	require.NoError(t, Gemm(ret, lhs, rhs))

	want := matrix.New[int](4, 5)
	require.NoError(t, Gemm(want.View(), lhs.Clone().View(), rhs.Clone().View()))
	require.True(t, ret.Equal(want.View()))
	// Outside the sub-view nothing changed.
	require.Zero(t, out.At(2, 4))
	require.Zero(t, out.At(3, 9))
}

func TestGemmAgainstGonum(t *testing.T) {
	rng := testutil.NewRand(t)
	lhs := matrix.Random(rng, 7, 9, -1.0, 1.0)
	rhs := matrix.Random(rng, 9, 5, -1.0, 1.0)
	ret := matrix.New[float64](7, 5)
	require.NoError(t, Gemm(ret.View(), lhs.View(), rhs.View()))

	var want mat.Dense
	want.Mul(toDense(lhs.View()), toDense(rhs.View()))
	testutil.RequireMatrixClose(t, fromDense(&want).View(), ret.View())
}

func TestMatrixEval(t *testing.T) {
	rng := testutil.NewRand(t)
	m := matrix.Random(rng, 10, 13, -1.0, 1.0)
	v := matrix.RandomVector(rng, 13, -1.0, 1.0)
	ret := matrix.RandomVector(rng, 10, 5.0, 6.0) // Garbage must be overwritten.
	require.NoError(t, MatrixEval(ret, m.View(), v))

	var want mat.VecDense
	want.MulVec(toDense(m.View()), mat.NewVecDense(len(v), v))
	testutil.RequireSliceClose(t, want.RawVector().Data, ret)

	require.ErrorIs(t, MatrixEval(ret[:9], m.View(), v), ErrDimensionMismatch)
	require.ErrorIs(t, MatrixEval(ret, m.View(), v[:12]), ErrDimensionMismatch)
}

func TestMatrixEvalIntegers(t *testing.T) {
	m := matrix.FromRows([][]int{{1, 2, 3}, {4, 5, 6}})
	ret := make([]int, 2)
	require.NoError(t, MatrixEval(ret, m.View(), []int{1, 0, -1}))
	require.Equal(t, []int{-2, -2}, ret)
}

func TestTranspose(t *testing.T) {
	m := matrix.FromRows([][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, Transpose(m.View()))
	require.True(t, m.Equal(matrix.FromRows([][]int{{1, 4, 7}, {2, 5, 8}, {3, 6, 9}})))

	// Transposing a sub-view only touches the sub-view.
	big := matrix.FromRows([][]int{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	})
	require.NoError(t, Transpose(big.SubView(1, 2, 2, 2)))
	require.True(t, big.Equal(matrix.FromRows([][]int{
		{1, 2, 3, 4},
		{5, 6, 7, 11},
		{9, 10, 8, 12},
	})))

	require.ErrorIs(t, Transpose(big.View()), ErrNotSquare)
	require.NoError(t, Transpose(matrix.New[int](0, 0).View()))
}
