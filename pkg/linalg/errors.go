// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/pkg/errors"
)

// Errors returned by the kernels. They are wrapped with the name of the operation and the shapes
// involved, so test for them with errors.Is.
var (
	// ErrDimensionMismatch is returned when the operands of a kernel are not conformable.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNotSquare is returned by kernels that only operate on square matrices.
	ErrNotSquare = errors.New("matrix is not square")

	// ErrInvalidBlockSize is returned when a block size is not positive.
	ErrInvalidBlockSize = errors.New("invalid block size")

	// ErrSingular is returned by LuFactPivot when no non-zero pivot can be found.
	ErrSingular = errors.New("matrix is singular")
)

func checkSquare[T matrix.Number](op string, m matrix.View[T]) error {
	if !m.IsSquare() {
		return errors.Wrapf(ErrNotSquare, "%s: shape %s", op, m.ShapeString())
	}
	return nil
}

func checkLen[T any](op, name string, s []T, want int) error {
	if len(s) < want {
		return errors.Wrapf(ErrDimensionMismatch, "%s: %s has %d elements, needs %d", op, name, len(s), want)
	}
	return nil
}
