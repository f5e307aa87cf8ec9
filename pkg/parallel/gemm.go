// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"k8s.io/klog/v2"
)

// gemmTile is a rectangular region of the output of Gemm, assigned to one partition.
type gemmTile struct {
	rowStart, rowEnd int
	colStart, colEnd int
}

// gemmTiles splits a rows x cols output into at most numWorkers disjoint tiles.
//
// Rows are split first. Only when there are fewer rows than workers are the row stripes split
// in columns as well.
func gemmTiles(rows, cols, numWorkers int) []gemmTile {
	if rows == 0 || cols == 0 {
		return nil
	}
	rowSplits := max(1, min(numWorkers, rows))
	colSplits := max(1, min(numWorkers/rowSplits, cols))
	tiles := make([]gemmTile, 0, rowSplits*colSplits)
	for r := range rowSplits {
		rowStart, rowEnd := chunk(rows, rowSplits, r)
		for c := range colSplits {
			colStart, colEnd := chunk(cols, colSplits, c)
			tiles = append(tiles, gemmTile{rowStart, rowEnd, colStart, colEnd})
		}
	}
	return tiles
}

// Gemm adds lhs * rhs to ret, like linalg.Gemm.
//
// The output is split in disjoint tiles, each computed by linalg.Gemm, or by linalg.GemmBlock
// if the executor was configured with block sizes. The tiles are queued in a channel consumed
// by as many workers as the pool has available. No element of ret is written by two workers.
// The reduction order of every element is the same as the sequential kernel's.
func Gemm[T matrix.Number](e *Executor, ret, lhs, rhs matrix.View[T]) error {
	e = resolve(e)
	if err := linalg.CheckGemmShapes("parallel.Gemm", ret, lhs, rhs); err != nil {
		return err
	}
	rows, cols, inner := ret.Rows(), ret.Cols(), lhs.Cols()
	bs := e.config.BlockSizes
	blocked := bs != (linalg.BlockSizes{})
	tileGemm := func(ret, lhs, rhs matrix.View[T]) {
		// Shapes and block sizes were validated already.
		if blocked {
			_ = linalg.GemmBlock(ret, lhs, rhs, bs)
		} else {
			_ = linalg.Gemm(ret, lhs, rhs)
		}
	}

	tiles := gemmTiles(rows, cols, e.numPartitions(rows*cols*inner))
	if len(tiles) <= 1 {
		tileGemm(ret, lhs, rhs)
		return nil
	}
	klog.V(2).Infof("parallel.Gemm: ret%s, inner dimension %d, %d tiles, blocked=%v",
		ret.ShapeString(), inner, len(tiles), blocked)
	work := feedGemmTiles(tiles)
	e.saturate(func() {
		for t := range work {
			tileRows, tileCols := t.rowEnd-t.rowStart, t.colEnd-t.colStart
			tileGemm(
				ret.Sub(t.rowStart, t.colStart, tileRows, tileCols),
				lhs.Sub(t.rowStart, 0, tileRows, inner),
				rhs.Sub(0, t.colStart, inner, tileCols))
		}
	})
	return nil
}

// feedGemmTiles returns a closed channel holding all the tiles, to be consumed by the workers.
func feedGemmTiles(tiles []gemmTile) <-chan gemmTile {
	work := make(chan gemmTile, len(tiles))
	for _, t := range tiles {
		work <- t
	}
	close(work)
	return work
}
