// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/gomlx/hpctutor/internal/testutil"
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	rng := testutil.NewRand(t)
	const n = 100
	v := matrix.RandomVector(rng, n, 0, 50)
	for name, e := range testExecutors(t) {
		t.Run(name, func(t *testing.T) {
			for value := -1; value <= 51; value++ {
				require.Equalf(t, linalg.Find(v, value), Find(e, v, value), "value %d", value)
			}
		})
	}
}

func TestFindLeftmost(t *testing.T) {
	// Long enough for several scan blocks per partition, with matches in every partition.
	const n = 20 * findStride
	v := make([]int32, n)
	for _, idx := range []int{n - 1, n / 2, 3*findStride + 5, 2*findStride + 7} {
		v[idx] = 1
	}
	for name, e := range testExecutors(t) {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, 2*findStride+7, Find(e, v, 1))
			require.Equal(t, 0, Find(e, v, 0))
			require.Equal(t, n, Find(e, v, 2))
		})
	}
	require.Equal(t, 0, Find(nil, []float64{}, 1.0))
}

func TestStoreMin(t *testing.T) {
	e, err := New(Config{Workers: 8, MinChunk: 1})
	require.NoError(t, err)
	var best atomic.Int64
	best.Store(1000)
	e.run(100, func(ii int) {
		storeMin(&best, int64(1000-ii))
	})
	require.Equal(t, int64(901), best.Load())
}
