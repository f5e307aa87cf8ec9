// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/support/xslices"
	"github.com/pkg/errors"
)

// LuFact computes in place the LU factorization, without pivoting, of the square matrix m.
//
// After the call the diagonal and the upper triangle of m hold U, and the strictly lower
// triangle holds L, whose unit diagonal is implicit and not stored.
//
// m must be factorable without pivoting (all leading principal minors non-singular). A zero
// pivot is not detected: for floating point types the result is filled with Inf/NaN, and for
// integer types the division panics. Use LuFactPivot for a factorization that reports
// singular matrices.
func LuFact[T matrix.Number](m matrix.View[T]) error {
	if err := checkSquare("LuFact", m); err != nil {
		return err
	}
	luFact(m)
	return nil
}

// luFact is the unchecked right-looking factorization.
func luFact[T matrix.Number](m matrix.View[T]) {
	n := m.Rows()
	for kk := range n {
		pivotRow := m.Row(kk)
		pivot := pivotRow[kk]
		for ii := kk + 1; ii < n; ii++ {
			row := m.Row(ii)
			row[kk] /= pivot
			factor := row[kk]
			for jj := kk + 1; jj < n; jj++ {
				row[jj] -= factor * pivotRow[jj]
			}
		}
	}
}

// SolveLowerIdentity solves L·x = b by forward substitution, where L is the lower triangle of l
// with an implicit unit diagonal. Only the strictly lower entries of l are read.
//
// x and b must have l.Rows() elements. x may be the same slice as b.
func SolveLowerIdentity[T matrix.Number](x []T, l matrix.View[T], b []T) error {
	if err := checkSolveShapes("SolveLowerIdentity", x, l, b); err != nil {
		return err
	}
	solveLowerIdentity(x, l, b)
	return nil
}

func solveLowerIdentity[T matrix.Number](x []T, l matrix.View[T], b []T) {
	for ii, row := range l.All() {
		sum := b[ii]
		for kk := range ii {
			sum -= row[kk] * x[kk]
		}
		x[ii] = sum
	}
}

// SolveUpper solves U·x = b by backward substitution, where U is the upper triangle of u,
// diagonal included. Entries below the diagonal are not read.
//
// x and b must have u.Rows() elements. x may be the same slice as b.
func SolveUpper[T matrix.Number](x []T, u matrix.View[T], b []T) error {
	if err := checkSolveShapes("SolveUpper", x, u, b); err != nil {
		return err
	}
	solveUpper(x, u, b)
	return nil
}

func solveUpper[T matrix.Number](x []T, u matrix.View[T], b []T) {
	n := u.Rows()
	for ii := n - 1; ii >= 0; ii-- {
		row := u.Row(ii)
		sum := b[ii]
		for kk := ii + 1; kk < n; kk++ {
			sum -= row[kk] * x[kk]
		}
		x[ii] = sum / row[ii]
	}
}

func checkSolveShapes[T matrix.Number](op string, x []T, m matrix.View[T], b []T) error {
	if err := checkSquare(op, m); err != nil {
		return err
	}
	if len(x) != m.Rows() || len(b) != m.Rows() {
		return errors.Wrapf(ErrDimensionMismatch, "%s: matrix %s with len(x)=%d and len(b)=%d",
			op, m.ShapeString(), len(x), len(b))
	}
	return nil
}

// MultiplyLU stores in ret the product L·U, where L is the unit lower triangle of l and U the
// upper triangle (diagonal included) of u. It overwrites ret.
//
// Passing the same packed matrix, as produced by LuFact, for l and u reconstructs the matrix
// that was factored.
func MultiplyLU[T matrix.Number](ret, l, u matrix.View[T]) error {
	for _, m := range []matrix.View[T]{ret, l, u} {
		if err := checkSquare("MultiplyLU", m); err != nil {
			return err
		}
	}
	if ret.Rows() != l.Rows() || ret.Rows() != u.Rows() {
		return errors.Wrapf(ErrDimensionMismatch, "MultiplyLU: ret%s, l%s, u%s",
			ret.ShapeString(), l.ShapeString(), u.ShapeString())
	}
	for ii, retRow := range ret.All() {
		clear(retRow)
		lRow := l.Row(ii)
		for kk := 0; kk <= ii; kk++ {
			factor := T(1)
			if kk < ii {
				factor = lRow[kk]
			}
			uRow := u.Row(kk)
			for jj := kk; jj < len(retRow); jj++ {
				retRow[jj] += factor * uRow[jj]
			}
		}
	}
	return nil
}

// LuFactPivot computes in place the LU factorization of m with partial pivoting: P·A = L·U.
//
// The packing of L and U in m is the same as for LuFact. The returned perm maps rows of the
// factorization to rows of the original matrix: row ii of P·A is row perm[ii] of A.
//
// It returns an error wrapping ErrSingular if a column has no non-zero pivot candidate. In that
// case m is left unchanged: the factorization runs on a copy, written back to m only on success.
func LuFactPivot[T matrix.Number](m matrix.View[T]) (perm []int, err error) {
	if err = checkSquare("LuFactPivot", m); err != nil {
		return nil, err
	}
	work := m.Clone()
	perm, err = luFactPivot(work.View())
	if err != nil {
		return nil, err
	}
	m.CopyFrom(work.View())
	return perm, nil
}

func luFactPivot[T matrix.Number](m matrix.View[T]) ([]int, error) {
	n := m.Rows()
	perm := xslices.Iota(0, n)
	for kk := range n {
		pivotIdx, pivotAbs := kk, abs(m.At(kk, kk))
		for ii := kk + 1; ii < n; ii++ {
			if v := abs(m.At(ii, kk)); v > pivotAbs {
				pivotIdx, pivotAbs = ii, v
			}
		}
		if pivotAbs == 0 {
			return nil, errors.Wrapf(ErrSingular, "LuFactPivot: no pivot for column %d of %s", kk, m.ShapeString())
		}
		if pivotIdx != kk {
			swapRows(m, kk, pivotIdx)
			perm[kk], perm[pivotIdx] = perm[pivotIdx], perm[kk]
		}
		pivotRow := m.Row(kk)
		for ii := kk + 1; ii < n; ii++ {
			row := m.Row(ii)
			row[kk] /= pivotRow[kk]
			factor := row[kk]
			for jj := kk + 1; jj < n; jj++ {
				row[jj] -= factor * pivotRow[jj]
			}
		}
	}
	return perm, nil
}

// SolveLU solves A·x = b given the factorization lu and the permutation perm returned by
// LuFactPivot. x must not overlap b.
func SolveLU[T matrix.Number](x []T, lu matrix.View[T], perm []int, b []T) error {
	if err := checkSolveShapes("SolveLU", x, lu, b); err != nil {
		return err
	}
	if len(perm) != lu.Rows() {
		return errors.Wrapf(ErrDimensionMismatch, "SolveLU: permutation has %d entries for matrix %s",
			len(perm), lu.ShapeString())
	}
	for ii, src := range perm {
		x[ii] = b[src]
	}
	solveLowerIdentity(x, lu, x)
	solveUpper(x, lu, x)
	return nil
}

func swapRows[T matrix.Number](m matrix.View[T], i, j int) {
	rowI, rowJ := m.Row(i), m.Row(j)
	for kk := range rowI {
		rowI[kk], rowJ[kk] = rowJ[kk], rowI[kk]
	}
}

func abs[T matrix.Number](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
