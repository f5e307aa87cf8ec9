// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"math/bits"

	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"k8s.io/klog/v2"
)

// span is a half-open range [start, end) of a slice.
type span struct {
	start, end int
}

// mid returns the split point used by linalg.MergeSort: the lower half gets (end-start)/2 elements.
func (s span) mid() int {
	return s.start + (s.end-s.start)/2
}

// sortTreeLevel returns, in order, the ranges the recursion of linalg.MergeSort handles at the given depth.
func sortTreeLevel(n, depth int) []span {
	level := []span{{0, n}}
	for range depth {
		next := make([]span, 0, 2*len(level))
		for _, s := range level {
			next = append(next, span{s.start, s.mid()}, span{s.mid(), s.end})
		}
		level = next
	}
	return level
}

// MergeSort sorts v in ascending order, in place, with the same result as linalg.MergeSort.
//
// It follows the recursion of linalg.MergeSort: the ranges at depth ceil(log2(P)), for P
// partitions, are sorted concurrently. Then the levels above are merged bottom-up, the merges
// of one level running concurrently on disjoint ranges. The split points and the tie-break rule
// (the left range wins ties) are the ones of the sequential sort.
//
// One auxiliary buffer of len(v) elements is shared by all partitions.
func MergeSort[T matrix.Number](e *Executor, v []T) {
	e = resolve(e)
	n := len(v)
	numPartitions := e.numPartitions(n)
	if numPartitions == 1 {
		linalg.MergeSort(v)
		return
	}
	depth := bits.Len(uint(numPartitions - 1))
	klog.V(2).Infof("parallel.MergeSort: %d elements, %d partitions, %d merge levels", n, numPartitions, depth)

	aux := make([]T, n)
	leaves := sortTreeLevel(n, depth)
	e.run(len(leaves), func(ii int) {
		s := leaves[ii]
		// aux is exactly as long as v, so the sub-ranges always match.
		_ = linalg.MergeSortWithBuffer(v[s.start:s.end], aux[s.start:s.end])
	})
	for level := depth - 1; level >= 0; level-- {
		nodes := sortTreeLevel(n, level)
		e.run(len(nodes), func(ii int) {
			s := nodes[ii]
			linalg.MergeHalves(v[s.start:s.end], aux[s.start:s.end], s.mid()-s.start)
		})
	}
}
