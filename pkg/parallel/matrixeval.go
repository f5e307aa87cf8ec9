// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// MatrixEval computes the matrix-vector product ret = m * v, like linalg.MatrixEval, splitting
// the rows of m into contiguous ranges.
func MatrixEval[T matrix.Number](e *Executor, ret []T, m matrix.View[T], v []T) error {
	e = resolve(e)
	rows, cols := m.Rows(), m.Cols()
	if len(ret) < rows || len(v) < cols {
		return errors.Wrapf(linalg.ErrDimensionMismatch,
			"parallel.MatrixEval: matrix %s with len(ret)=%d and len(v)=%d", m.ShapeString(), len(ret), len(v))
	}
	numPartitions := min(rows, e.numPartitions(rows*cols))
	if numPartitions <= 1 {
		return linalg.MatrixEval(ret, m, v)
	}
	klog.V(2).Infof("parallel.MatrixEval: %s in %d row ranges", m.ShapeString(), numPartitions)
	e.run(numPartitions, func(partition int) {
		start, end := chunk(rows, numPartitions, partition)
		// Shapes were checked above.
		_ = linalg.MatrixEval(ret[start:end], m.Sub(start, 0, end-start, cols), v)
	})
	return nil
}
