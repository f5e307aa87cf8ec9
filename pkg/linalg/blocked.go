// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"fmt"

	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/pkg/errors"
)

// BlockSizes holds the tile sizes used by GemmBlock.
//
// N tiles the rows of ret and lhs, M the columns of ret and rhs, and L the shared reduction
// dimension (columns of lhs, rows of rhs).
type BlockSizes struct {
	N, M, L int
}

// DefaultBlockSizes keeps a tile of lhs (N x L) and a tile of rhs (L x M) of float64 within
// a typical 256KB L2 cache.
var DefaultBlockSizes = BlockSizes{N: 64, M: 128, L: 128}

// DefaultLUBlockSize is the panel width used when no block size is given to LuFactBlock.
const DefaultLUBlockSize = 64

// Validate returns an error wrapping ErrInvalidBlockSize if any of the sizes is not positive.
func (bs BlockSizes) Validate() error {
	if bs.N <= 0 || bs.M <= 0 || bs.L <= 0 {
		return errors.Wrapf(ErrInvalidBlockSize, "block sizes %s must be positive", bs)
	}
	return nil
}

// String implements fmt.Stringer.
func (bs BlockSizes) String() string {
	return fmt.Sprintf("(%d, %d, %d)", bs.N, bs.M, bs.L)
}

// GemmBlock adds lhs * rhs to ret like Gemm, but works on tiles of bs.N x bs.M of ret at a time,
// sweeping the reduction dimension in tiles of bs.L.
//
// The tiles along each axis have the given size, except for the last which may be smaller.
// The reduction tiles are visited in ascending order, so the result equals the one of Gemm
// exactly.
func GemmBlock[T matrix.Number](ret, lhs, rhs matrix.View[T], bs BlockSizes) error {
	if err := bs.Validate(); err != nil {
		return errors.WithMessage(err, "GemmBlock")
	}
	if err := CheckGemmShapes("GemmBlock", ret, lhs, rhs); err != nil {
		return err
	}
	gemmBlocked(ret, lhs, rhs, bs, false)
	return nil
}

// gemmBlocked is the unchecked tiled version of gemmKernel.
func gemmBlocked[T matrix.Number](ret, lhs, rhs matrix.View[T], bs BlockSizes, subtract bool) {
	n, m, l := ret.Rows(), ret.Cols(), lhs.Cols()
	for i0 := 0; i0 < n; i0 += bs.N {
		ni := min(bs.N, n-i0)
		for j0 := 0; j0 < m; j0 += bs.M {
			mj := min(bs.M, m-j0)
			retTile := ret.Sub(i0, j0, ni, mj)
			for k0 := 0; k0 < l; k0 += bs.L {
				lk := min(bs.L, l-k0)
				gemmKernel(retTile, lhs.Sub(i0, k0, ni, lk), rhs.Sub(k0, j0, lk, mj), subtract)
			}
		}
	}
}

// LuFactBlock computes the same in-place LU factorization as LuFact, panel by panel.
//
// For each diagonal panel of width bs (the last one may be narrower) it:
//
//  1. factors the bs x bs diagonal block with the unblocked algorithm;
//  2. solves for the strip of U to the right of the block (forward substitution with the unit lower factor);
//  3. solves for the strip of L below the block (backward substitution with the upper factor);
//  4. subtracts the product of both strips from the trailing sub-matrix, using the blocked GEMM kernel.
//
// Then it continues with the trailing sub-matrix. The result equals the one of LuFact exactly.
func LuFactBlock[T matrix.Number](m matrix.View[T], bs int) error {
	if bs <= 0 {
		return errors.Wrapf(ErrInvalidBlockSize, "LuFactBlock: block size %d must be positive", bs)
	}
	if err := checkSquare("LuFactBlock", m); err != nil {
		return err
	}
	n := m.Rows()
	updateSizes := BlockSizes{N: DefaultBlockSizes.N, M: DefaultBlockSizes.M, L: bs}
	for k0 := 0; k0 < n; k0 += bs {
		b := min(bs, n-k0)
		rest := n - k0 - b
		diag := m.Sub(k0, k0, b, b)
		luFact(diag)
		if rest == 0 {
			break
		}
		upper := m.Sub(k0, k0+b, b, rest)
		lower := m.Sub(k0+b, k0, rest, b)
		solveUnitLowerStrip(diag, upper)
		solveUpperStrip(diag, lower)
		gemmBlocked(m.Sub(k0+b, k0+b, rest, rest), lower, upper, updateSizes, true)
	}
	return nil
}

// solveUnitLowerStrip overwrites a with L⁻¹·a, where L is the unit lower triangle packed in lu.
// It applies the row operations of the unblocked factorization to the columns of a.
func solveUnitLowerStrip[T matrix.Number](lu, a matrix.View[T]) {
	for kk := range lu.Rows() {
		pivotRow := a.Row(kk)
		for ii := kk + 1; ii < lu.Rows(); ii++ {
			factor := lu.At(ii, kk)
			row := a.Row(ii)
			for jj := range row {
				row[jj] -= factor * pivotRow[jj]
			}
		}
	}
}

// solveUpperStrip overwrites a with a·U⁻¹, where U is the upper triangle (with diagonal) packed in lu.
// Each row of a becomes a row of multipliers of L.
func solveUpperStrip[T matrix.Number](lu, a matrix.View[T]) {
	b := lu.Rows()
	for _, row := range a.All() {
		for kk := range b {
			row[kk] /= lu.At(kk, kk)
			factor := row[kk]
			uRow := lu.Row(kk)
			for jj := kk + 1; jj < b; jj++ {
				row[jj] -= factor * uRow[jj]
			}
		}
	}
}
