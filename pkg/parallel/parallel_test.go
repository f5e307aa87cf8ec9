// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"fmt"
	"testing"

	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

// testExecutors returns executors covering sequential, limited and unlimited pools.
// MinChunk is 1 so that even small inputs get partitioned.
func testExecutors(t *testing.T) map[string]*Executor {
	t.Helper()
	executors := make(map[string]*Executor)
	for _, workers := range []int{0, 1, 3, 8, -1} {
		e, err := New(Config{Workers: workers, MinChunk: 1})
		require.NoError(t, err)
		executors[fmt.Sprintf("workers=%d", workers)] = e
	}
	e, err := New(Config{Workers: 4, MinChunk: 1, BlockSizes: linalg.BlockSizes{N: 3, M: 5, L: 7}})
	require.NoError(t, err)
	executors["workers=4,blocked"] = e
	return executors
}

func TestChunk(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		for _, parts := range []int{1, 2, 3, 8} {
			next := 0
			for p := range parts {
				start, end := chunk(n, parts, p)
				require.Equal(t, next, start)
				require.LessOrEqual(t, start, end)
				require.LessOrEqual(t, end-start, n/parts+1)
				next = end
			}
			require.Equal(t, n, next)
		}
	}
}

func TestNumPartitions(t *testing.T) {
	e, err := New(Config{Workers: 4, MinChunk: 100})
	require.NoError(t, err)
	require.Equal(t, 1, e.numPartitions(0))
	require.Equal(t, 1, e.numPartitions(100))
	require.Equal(t, 2, e.numPartitions(250))
	require.Equal(t, 4, e.numPartitions(1_000_000))

	sequential, err := New(Config{Workers: 0, MinChunk: 1})
	require.NoError(t, err)
	require.Equal(t, 1, sequential.numPartitions(1_000_000))
}
