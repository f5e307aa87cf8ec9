// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"math"

	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"gonum.org/v1/gonum/mat"
)

func negativeZero() float64 { return math.Copysign(0, -1) }

func isNegativeZero(v float64) bool { return v == 0 && math.Signbit(v) }

// toDense copies a view into a gonum matrix, used as an independent reference implementation.
func toDense(v matrix.View[float64]) *mat.Dense {
	d := mat.NewDense(v.Rows(), v.Cols(), nil)
	for ii, row := range v.All() {
		d.SetRow(ii, row)
	}
	return d
}

func fromDense(d mat.Matrix) *matrix.Matrix[float64] {
	rows, cols := d.Dims()
	m := matrix.New[float64](rows, cols)
	for ii := range rows {
		for jj := range cols {
			m.Set(ii, jj, d.At(ii, jj))
		}
	}
	return m
}
