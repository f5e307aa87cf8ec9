// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/pkg/errors"
)

// ScalarMul multiplies every element of data by value, in place.
func ScalarMul[T matrix.Number](data []T, value T) {
	for ii := range data {
		data[ii] *= value
	}
}

// Accumulate returns the sum of the elements of data, added from left to right.
func Accumulate[T matrix.Number](data []T) T {
	var sum T
	for _, v := range data {
		sum += v
	}
	return sum
}

// Inner returns the inner (dot) product of lhs and rhs, accumulated from left to right.
func Inner[T matrix.Number](lhs, rhs []T) (T, error) {
	if len(lhs) != len(rhs) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "Inner: lengths %d and %d", len(lhs), len(rhs))
	}
	var sum T
	for ii, v := range lhs {
		sum += v * rhs[ii]
	}
	return sum, nil
}

// VectorSum stores lhs + rhs, element-wise, in ret.
//
// ret may be the same slice as lhs or rhs, but it must not partially overlap them.
func VectorSum[T matrix.Number](ret, lhs, rhs []T) error {
	if len(lhs) != len(rhs) || len(ret) != len(lhs) {
		return errors.Wrapf(ErrDimensionMismatch, "VectorSum: lengths ret=%d, lhs=%d, rhs=%d",
			len(ret), len(lhs), len(rhs))
	}
	for ii := range ret {
		ret[ii] = lhs[ii] + rhs[ii]
	}
	return nil
}

// Find returns the index of the first element of v equal to value, or len(v) if there is none.
func Find[T matrix.Number](v []T, value T) int {
	for ii, e := range v {
		if e == value {
			return ii
		}
	}
	return len(v)
}

// Merge merges the sorted slices v and w into ret, which must have len(v)+len(w) elements
// and must not overlap v or w.
//
// The merge is stable: on ties the element from v comes first.
func Merge[T matrix.Number](ret, v, w []T) error {
	if len(ret) != len(v)+len(w) {
		return errors.Wrapf(ErrDimensionMismatch, "Merge: ret has %d elements, inputs have %d+%d",
			len(ret), len(v), len(w))
	}
	merge(ret, v, w)
	return nil
}

func merge[T matrix.Number](ret, v, w []T) {
	ii, jj, kk := 0, 0, 0
	for ii < len(v) && jj < len(w) {
		if w[jj] < v[ii] {
			ret[kk] = w[jj]
			jj++
		} else {
			ret[kk] = v[ii]
			ii++
		}
		kk++
	}
	kk += copy(ret[kk:], v[ii:])
	copy(ret[kk:], w[jj:])
}

// MergeSort sorts v in ascending order, in place.
//
// The slice is split at the midpoint (the lower half gets len(v)/2 elements), each half is
// sorted recursively and the halves are merged with Merge. One auxiliary buffer of len(v)
// elements is allocated for the whole sort.
func MergeSort[T matrix.Number](v []T) {
	if len(v) < 2 {
		return
	}
	mergeSort(v, make([]T, len(v)))
}

// MergeSortWithBuffer is like MergeSort but uses aux as the auxiliary buffer.
// aux must have at least len(v) elements and must not overlap v.
func MergeSortWithBuffer[T matrix.Number](v, aux []T) error {
	if err := checkLen("MergeSortWithBuffer", "aux", aux, len(v)); err != nil {
		return err
	}
	mergeSort(v, aux[:len(v)])
	return nil
}

func mergeSort[T matrix.Number](v, aux []T) {
	n := len(v)
	if n < 2 {
		return
	}
	mid := n / 2
	mergeSort(v[:mid], aux[:mid])
	mergeSort(v[mid:], aux[mid:])
	MergeHalves(v, aux, mid)
}

// MergeHalves merges the sorted v[:mid] and v[mid:] back into v, using aux (with len(v) elements)
// as scratch space. It is the combine step of MergeSort.
func MergeHalves[T matrix.Number](v, aux []T, mid int) {
	if mid == 0 || mid == len(v) || v[mid-1] <= v[mid] {
		// Already in order.
		return
	}
	merge(aux, v[:mid], v[mid:])
	copy(v, aux)
}
