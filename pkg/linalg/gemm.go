// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/pkg/errors"
)

// MatrixEval computes the matrix-vector product ret = m * v.
//
// ret must have at least m.Rows() elements and v at least m.Cols(). Each ret[i] is reset to zero
// and then accumulated from left to right.
func MatrixEval[T matrix.Number](ret []T, m matrix.View[T], v []T) error {
	if err := checkLen("MatrixEval", "ret", ret, m.Rows()); err != nil {
		return err
	}
	if err := checkLen("MatrixEval", "v", v, m.Cols()); err != nil {
		return err
	}
	matrixEval(ret, m, v)
	return nil
}

func matrixEval[T matrix.Number](ret []T, m matrix.View[T], v []T) {
	for ii, row := range m.All() {
		var sum T
		for jj, value := range row {
			sum += value * v[jj]
		}
		ret[ii] = sum
	}
}

// Gemm adds the product lhs * rhs to ret: ret[i][j] += Σ_k lhs[i][k] * rhs[k][j].
//
// The shapes of ret, lhs and rhs must be (n, m), (n, l) and (l, m). Gemm accumulates, so ret
// must be zeroed by the caller if a fresh product is wanted.
//
// The loops use Gustavson's ordering (i, k, j): the innermost loop walks a row of rhs and a row
// of ret sequentially.
func Gemm[T matrix.Number](ret, lhs, rhs matrix.View[T]) error {
	if err := CheckGemmShapes("Gemm", ret, lhs, rhs); err != nil {
		return err
	}
	gemmKernel(ret, lhs, rhs, false)
	return nil
}

// CheckGemmShapes returns an error wrapping ErrDimensionMismatch if ret, lhs and rhs are not
// shaped (n, m), (n, l) and (l, m). op names the caller in the error message.
func CheckGemmShapes[T matrix.Number](op string, ret, lhs, rhs matrix.View[T]) error {
	if ret.Rows() != lhs.Rows() || ret.Cols() != rhs.Cols() || lhs.Cols() != rhs.Rows() {
		return errors.Wrapf(ErrDimensionMismatch, "%s: ret%s, lhs%s, rhs%s are not conformable",
			op, ret.ShapeString(), lhs.ShapeString(), rhs.ShapeString())
	}
	return nil
}

// gemmKernel is the unchecked i-k-j product shared by all the GEMM variants.
// If subtract is true it computes ret -= lhs * rhs instead.
//
// For every element of ret the products are applied in ascending order of k.
func gemmKernel[T matrix.Number](ret, lhs, rhs matrix.View[T], subtract bool) {
	for ii, retRow := range ret.All() {
		for kk, a := range lhs.Row(ii) {
			rhsRow := rhs.Row(kk)
			if subtract {
				for jj := range retRow {
					retRow[jj] -= a * rhsRow[jj]
				}
			} else {
				for jj := range retRow {
					retRow[jj] += a * rhsRow[jj]
				}
			}
		}
	}
}

// Transpose transposes the square matrix m in place.
//
// Elements are swapped by logical index, so m can be a sub-view of a larger matrix.
func Transpose[T matrix.Number](m matrix.View[T]) error {
	if err := checkSquare("Transpose", m); err != nil {
		return err
	}
	n := m.Rows()
	for ii := range n {
		row := m.Row(ii)
		for jj := ii + 1; jj < n; jj++ {
			other := m.At(jj, ii)
			m.Set(jj, ii, row[jj])
			row[jj] = other
		}
	}
	return nil
}
