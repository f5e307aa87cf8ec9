// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"sync/atomic"

	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"golang.org/x/sys/cpu"
	"k8s.io/klog/v2"
)

// findStride is the number of elements a Find worker scans between checks of the global result.
const findStride = 1024

// findSlot holds the result of one Find partition, padded so that slots don't share a cache line.
type findSlot struct {
	_     cpu.CacheLinePad
	index int
	_     cpu.CacheLinePad
}

// Find returns the index of the first element of v equal to value, or len(v) if there is none.
// The result is the same as linalg.Find.
//
// v is split in contiguous ranges, and each partition records its leftmost match. A partition
// stops scanning once a match was found at a lower index than the one it is about to scan. The
// result is the minimum over the partitions.
func Find[T matrix.Number](e *Executor, v []T, value T) int {
	e = resolve(e)
	n := len(v)
	numPartitions := e.numPartitions(n)
	if numPartitions == 1 {
		return linalg.Find(v, value)
	}
	klog.V(2).Infof("parallel.Find: %d elements in %d partitions", n, numPartitions)

	slots := make([]findSlot, numPartitions)
	var best atomic.Int64
	best.Store(int64(n))
	e.run(numPartitions, func(partition int) {
		slot := &slots[partition]
		slot.index = n
		start, end := chunk(n, numPartitions, partition)
		for blockStart := start; blockStart < end; blockStart += findStride {
			if best.Load() < int64(blockStart) {
				return
			}
			block := v[blockStart:min(blockStart+findStride, end)]
			if idx := linalg.Find(block, value); idx < len(block) {
				slot.index = blockStart + idx
				storeMin(&best, int64(slot.index))
				return
			}
		}
	})

	result := n
	for ii := range slots {
		result = min(result, slots[ii].index)
	}
	return result
}

// storeMin atomically lowers *target to value, if value is smaller.
func storeMin(target *atomic.Int64, value int64) {
	for {
		current := target.Load()
		if value >= current || target.CompareAndSwap(current, value) {
			return
		}
	}
}
