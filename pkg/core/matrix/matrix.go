// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package matrix implements the dense row-major storage used by the hpctutor kernels.
//
// Matrix owns a contiguous slice of rows*cols elements. View is a non-owning window
// (origin, extent and row stride) over the storage of a Matrix, or over another View,
// and it is what every kernel in package linalg consumes.
//
// A View keeps the backing array alive and never frees it, so in Go it can't outlive
// the storage it points to. Two views over overlapping regions are still aliases of
// each other, and kernels document whether aliasing of their operands is allowed.
package matrix

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/hpctutor/pkg/support/xslices"
	"golang.org/x/exp/constraints"
)

// Number is the set of element types supported by matrices and kernels.
type Number interface {
	constraints.Integer | constraints.Float
}

// Matrix is a rectangular container of elements stored contiguously in row-major order.
//
// Both dimensions may change dynamically (see Assign), and the storage is handled
// automatically. The zero value is an empty 0x0 matrix ready to use.
type Matrix[T Number] struct {
	rows, cols int
	data       []T
}

// New returns a rows x cols matrix with every element set to zero.
// It panics if any dimension is negative.
func New[T Number](rows, cols int) *Matrix[T] {
	checkDims("New", rows, cols)
	return &Matrix[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// NewFilled returns a rows x cols matrix with every element set to value.
func NewFilled[T Number](rows, cols int, value T) *Matrix[T] {
	m := New[T](rows, cols)
	xslices.FillSlice(m.data, value)
	return m
}

// FromRows builds a matrix from a list of rows, in the spirit of a nested literal.
//
// The number of columns is the length of the widest row. Shorter rows are padded with zeros.
func FromRows[T Number](rows [][]T) *Matrix[T] {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	m := New[T](len(rows), cols)
	for ii, row := range rows {
		copy(m.data[ii*cols:], row)
	}
	return m
}

// Eye returns the n x n identity matrix.
func Eye[T Number](n int) *Matrix[T] {
	m := New[T](n, n)
	for ii := range n {
		m.data[ii*n+ii] = 1
	}
	return m
}

// Assign resizes the matrix to rows x cols and sets every element to value.
//
// The new storage is fully built before it replaces the old one, so the dimensions and
// the data always change together.
func (m *Matrix[T]) Assign(rows, cols int, value T) {
	checkDims("Assign", rows, cols)
	data := xslices.SliceWithValue(rows*cols, value)
	m.rows, m.cols, m.data = rows, cols, data
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int { return m.cols }

// Size returns the total number of elements, rows*cols.
func (m *Matrix[T]) Size() int { return m.rows * m.cols }

// Empty returns whether the matrix holds no elements.
func (m *Matrix[T]) Empty() bool { return m.Size() == 0 }

// Data returns the underlying row-major storage. Changes to it are reflected in the matrix.
func (m *Matrix[T]) Data() []T { return m.data }

// Row returns the ii-th row as a slice aliasing the storage.
func (m *Matrix[T]) Row(ii int) []T {
	start := ii * m.cols
	return m.data[start : start+m.cols : start+m.cols]
}

// At returns the element at row ii, column jj.
func (m *Matrix[T]) At(ii, jj int) T { return m.data[ii*m.cols+jj] }

// Set sets the element at row ii, column jj.
func (m *Matrix[T]) Set(ii, jj int, value T) { m.data[ii*m.cols+jj] = value }

// Clone returns a deep copy of the matrix.
func (m *Matrix[T]) Clone() *Matrix[T] {
	return &Matrix[T]{rows: m.rows, cols: m.cols, data: xslices.Copy(m.data)}
}

// View returns a view of the whole matrix.
func (m *Matrix[T]) View() View[T] {
	return View[T]{data: m.data, rows: m.rows, cols: m.cols, stride: m.cols}
}

// SubView returns a view of the rows x cols sub-matrix whose top-left corner is at (row, col).
// It panics if the region doesn't fit in the matrix.
func (m *Matrix[T]) SubView(row, col, rows, cols int) View[T] {
	return m.View().Sub(row, col, rows, cols)
}

// ViewFrom returns a view from (row, col) to the bottom-right corner of the matrix.
func (m *Matrix[T]) ViewFrom(row, col int) View[T] {
	return m.View().From(row, col)
}

// Equal returns whether both matrices have the same dimensions and elements.
func (m *Matrix[T]) Equal(other *Matrix[T]) bool {
	return m.View().Equal(other.View())
}

// String implements fmt.Stringer.
func (m *Matrix[T]) String() string {
	return m.View().String()
}

func checkDims(method string, rows, cols int) {
	if rows < 0 || cols < 0 {
		exceptions.Panicf("matrix.%s(%d, %d): dimensions must be non-negative", method, rows, cols)
	}
}
