// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"math"
	"slices"
	"testing"

	"github.com/gomlx/hpctutor/internal/testutil"
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/gomlx/hpctutor/pkg/linalg"
	"github.com/gomlx/hpctutor/pkg/support/xslices"
	"github.com/stretchr/testify/require"
)

func TestSortTreeLevel(t *testing.T) {
	require.Equal(t, []span{{0, 10}}, sortTreeLevel(10, 0))
	require.Equal(t, []span{{0, 5}, {5, 10}}, sortTreeLevel(10, 1))
	require.Equal(t, []span{{0, 2}, {2, 5}, {5, 7}, {7, 10}}, sortTreeLevel(10, 2))
	require.Equal(t, []span{{0, 0}, {0, 1}, {1, 2}, {2, 3}}, sortTreeLevel(3, 2))
}

func TestMergeSort(t *testing.T) {
	rng := testutil.NewRand(t)
	for name, e := range testExecutors(t) {
		t.Run(name, func(t *testing.T) {
			perm := xslices.Iota(0, 10)
			rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
			MergeSort(e, perm)
			require.Equal(t, xslices.Iota(0, 10), perm)

			for _, n := range []int{0, 1, 2, 3, 5, 100, 1000} {
				v := matrix.RandomVector(rng, n, -100, 100)
				want := slices.Clone(v)
				linalg.MergeSort(want)
				MergeSort(e, v)
				require.Equal(t, want, v)
			}
		})
	}
}

func TestMergeSortTieBreak(t *testing.T) {
	// -0.0 and +0.0 compare equal but are distinguishable: the parallel sort must place them
	// exactly where the sequential one does.
	negZero := math.Copysign(0, -1)
	v := make([]float64, 64)
	for ii := range v {
		switch ii % 3 {
		case 0:
			v[ii] = negZero
		case 1:
			v[ii] = 0
		default:
			v[ii] = float64(ii % 5)
		}
	}
	want := slices.Clone(v)
	linalg.MergeSort(want)
	for name, e := range testExecutors(t) {
		t.Run(name, func(t *testing.T) {
			got := slices.Clone(v)
			MergeSort(e, got)
			for ii := range want {
				require.Equalf(t, math.Signbit(want[ii]), math.Signbit(got[ii]), "sign of element %d", ii)
				require.Equal(t, want[ii], got[ii])
			}
		})
	}
}
