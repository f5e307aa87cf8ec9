// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/gomlx/exceptions"
)

// View is a non-owning rectangular window over row-major storage.
//
// data starts at the origin of the view: element (ii, jj) lives at data[ii*stride+jj].
// The stride is inherited from the storage the view was carved from, and it is usually
// larger than cols for sub-matrices.
//
// Views are small values: pass them by value. Writes through a view are visible in
// the storage and in every other view that overlaps it.
type View[T Number] struct {
	data               []T
	rows, cols, stride int
}

// NewView creates a view over a flat slice holding rows rows of cols elements,
// each row starting stride elements after the previous one.
//
// It panics if stride < cols or if data is too short for the region.
func NewView[T Number](data []T, rows, cols, stride int) View[T] {
	checkDims("NewView", rows, cols)
	if rows == 0 || cols == 0 {
		return View[T]{rows: rows, cols: cols, stride: max(stride, cols)}
	}
	if stride < cols {
		exceptions.Panicf("matrix.NewView: stride %d smaller than the number of columns %d", stride, cols)
	}
	if need := (rows-1)*stride + cols; len(data) < need {
		exceptions.Panicf("matrix.NewView: %dx%d view with stride %d needs %d elements, got %d",
			rows, cols, stride, need, len(data))
	}
	return View[T]{data: data, rows: rows, cols: cols, stride: stride}
}

// Rows returns the number of rows in the view.
func (v View[T]) Rows() int { return v.rows }

// Cols returns the number of columns in the view.
func (v View[T]) Cols() int { return v.cols }

// Stride returns the number of elements between the start of two consecutive rows.
func (v View[T]) Stride() int { return v.stride }

// Size returns the number of elements addressed by the view, rows*cols.
func (v View[T]) Size() int { return v.rows * v.cols }

// Empty returns whether the view addresses no elements.
func (v View[T]) Empty() bool { return v.Size() == 0 }

// IsSquare returns whether the view has the same number of rows and columns.
func (v View[T]) IsSquare() bool { return v.rows == v.cols }

// Row returns the ii-th row of the view as a slice aliasing the storage.
// Its length (and capacity) is Cols().
func (v View[T]) Row(ii int) []T {
	if v.cols == 0 {
		return nil
	}
	start := ii * v.stride
	return v.data[start : start+v.cols : start+v.cols]
}

// At returns the element at row ii, column jj of the view.
func (v View[T]) At(ii, jj int) T { return v.data[ii*v.stride+jj] }

// Set sets the element at row ii, column jj of the view.
func (v View[T]) Set(ii, jj int, value T) { v.data[ii*v.stride+jj] = value }

// Sub returns the rows x cols view whose top-left corner is at (row, col) of v.
// The returned view shares the storage and the stride of v.
//
// It panics if the requested region is not contained in v.
func (v View[T]) Sub(row, col, rows, cols int) View[T] {
	if row < 0 || col < 0 || rows < 0 || cols < 0 || row+rows > v.rows || col+cols > v.cols {
		exceptions.Panicf("matrix.View.Sub(%d, %d, %d, %d) out of range for a %dx%d view",
			row, col, rows, cols, v.rows, v.cols)
	}
	if rows == 0 || cols == 0 {
		return View[T]{rows: rows, cols: cols, stride: v.stride}
	}
	return View[T]{data: v.data[row*v.stride+col:], rows: rows, cols: cols, stride: v.stride}
}

// From returns the view from (row, col) to the bottom-right corner of v.
func (v View[T]) From(row, col int) View[T] {
	return v.Sub(row, col, v.rows-row, v.cols-col)
}

// All iterates over the rows of the view, yielding the row index and the row slice.
func (v View[T]) All() iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		for ii := range v.rows {
			if !yield(ii, v.Row(ii)) {
				return
			}
		}
	}
}

// Clone copies the elements of the view into a new, independent Matrix.
func (v View[T]) Clone() *Matrix[T] {
	m := New[T](v.rows, v.cols)
	for ii, row := range v.All() {
		copy(m.Row(ii), row)
	}
	return m
}

// CopyFrom copies the elements of src into v. It panics if the dimensions differ.
// src and v must not partially overlap.
func (v View[T]) CopyFrom(src View[T]) {
	if v.rows != src.rows || v.cols != src.cols {
		exceptions.Panicf("matrix.View.CopyFrom: destination is %s, source is %s", v.ShapeString(), src.ShapeString())
	}
	for ii, row := range src.All() {
		copy(v.Row(ii), row)
	}
}

// Equal returns whether both views have the same dimensions and elements.
// Strides are not compared.
func (v View[T]) Equal(other View[T]) bool {
	if v.rows != other.rows || v.cols != other.cols {
		return false
	}
	for ii, row := range v.All() {
		otherRow := other.Row(ii)
		for jj, value := range row {
			if value != otherRow[jj] {
				return false
			}
		}
	}
	return true
}

// ShapeString returns the dimensions formatted as "(rows, cols)", for error messages.
func (v View[T]) ShapeString() string {
	return fmt.Sprintf("(%d, %d)", v.rows, v.cols)
}

// String implements fmt.Stringer, printing one row per line.
func (v View[T]) String() string {
	var sb strings.Builder
	for _, row := range v.All() {
		sb.WriteString("[")
		for jj, value := range row {
			if jj > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%v", value)
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// MaxAbsDiff returns the largest absolute difference between corresponding elements of a and b.
// It panics if the shapes differ.
func MaxAbsDiff[T Number](a, b View[T]) float64 {
	if a.rows != b.rows || a.cols != b.cols {
		exceptions.Panicf("matrix.MaxAbsDiff: shapes %s and %s differ", a.ShapeString(), b.ShapeString())
	}
	var maxDiff float64
	for ii, row := range a.All() {
		bRow := b.Row(ii)
		for jj, value := range row {
			maxDiff = max(maxDiff, math.Abs(float64(value)-float64(bRow[jj])))
		}
	}
	return maxDiff
}
