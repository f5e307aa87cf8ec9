// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package linalg

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/hpctutor/internal/testutil"
	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/stretchr/testify/require"
)

func TestGemmBlock(t *testing.T) {
	const n, m, l = 10, 50, 20
	rng := testutil.NewRand(t)
	lhs := matrix.Random(rng, n, l, 0.0, 1.0)
	rhs := matrix.Random(rng, l, m, 0.0, 1.0)
	want := matrix.New[float64](n, m)
	require.NoError(t, Gemm(want.View(), lhs.View(), rhs.View()))

	for _, nbs := range []int{1, 2, 3, 4, 5, 64} {
		for _, mbs := range []int{1, 2, 3, 4, 5, 13} {
			for _, lbs := range []int{1, 2, 3, 4, 5, 13, 21} {
				bs := BlockSizes{N: nbs, M: mbs, L: lbs}
				got := matrix.New[float64](n, m)
				require.NoError(t, GemmBlock(got.View(), lhs.View(), rhs.View(), bs))
				// Same per-element sequence of operations: equal bit for bit.
				require.Truef(t, got.Equal(want), "block sizes %s", bs)
			}
		}
	}
}

func TestGemmBlockAccumulates(t *testing.T) {
	rng := testutil.NewRand(t)
	lhs := matrix.Random(rng, 9, 11, -3, 3)
	rhs := matrix.Random(rng, 11, 7, -3, 3)
	start := matrix.Random(rng, 9, 7, -10, 10)

	want := start.Clone()
	require.NoError(t, Gemm(want.View(), lhs.View(), rhs.View()))
	got := start.Clone()
	require.NoError(t, GemmBlock(got.View(), lhs.View(), rhs.View(), BlockSizes{N: 4, M: 3, L: 5}))
	require.True(t, got.Equal(want))
}

func TestGemmBlockErrors(t *testing.T) {
	a := matrix.New[float32](3, 3)
	for _, bs := range []BlockSizes{{0, 1, 1}, {1, -1, 1}, {1, 1, 0}} {
		require.ErrorIs(t, GemmBlock(a.View(), a.View(), a.View(), bs), ErrInvalidBlockSize)
	}
	require.ErrorIs(t, GemmBlock(a.View(), a.View(), matrix.New[float32](2, 3).View(), DefaultBlockSizes),
		ErrDimensionMismatch)
	require.NoError(t, DefaultBlockSizes.Validate())
}

// randomFactorable returns a random diagonally dominant matrix, which can be factored without
// pivoting and stays well conditioned.
func randomFactorable(rng *rand.Rand, n int) *matrix.Matrix[float64] {
	m := matrix.Random(rng, n, n, 0.0, 1.0)
	for ii := range n {
		m.Set(ii, ii, m.At(ii, ii)+float64(n))
	}
	return m
}

func TestLuFactBlock(t *testing.T) {
	const n = 31
	rng := testutil.NewRand(t)
	m := randomFactorable(rng, n)
	want := m.Clone()
	require.NoError(t, LuFact(want.View()))

	for _, bs := range []int{1, 3, 4, 16, 17, 22, 31, 40} {
		t.Run(fmt.Sprintf("bs=%d", bs), func(t *testing.T) {
			got := m.Clone()
			require.NoError(t, LuFactBlock(got.View(), bs))
			require.Truef(t, got.Equal(want), "block size %d:\n%s", bs, got)
		})
	}
}

func TestLuFactBlockAllSizes(t *testing.T) {
	rng := testutil.NewRand(t)
	for _, n := range []int{1, 2, 5, 20, 33} {
		m := randomFactorable(rng, n)
		want := m.Clone()
		require.NoError(t, LuFact(want.View()))
		for bs := 1; bs <= n+3; bs++ {
			got := m.Clone()
			require.NoError(t, LuFactBlock(got.View(), bs))
			require.Truef(t, got.Equal(want), "n=%d, block size %d", n, bs)
		}
	}
}

func TestLuFactBlockSubView(t *testing.T) {
	rng := testutil.NewRand(t)
	m := randomFactorable(rng, 12)
	big := matrix.NewFilled(15, 15, -1.0)
	view := big.SubView(2, 1, 12, 12)
	view.CopyFrom(m.View())

	require.NoError(t, LuFactBlock(view, 5))
	require.NoError(t, LuFact(m.View()))
	require.True(t, view.Equal(m.View()))
	require.Equal(t, -1.0, big.At(0, 0))
	require.Equal(t, -1.0, big.At(14, 14))
}

func TestLuFactBlockErrors(t *testing.T) {
	m := matrix.New[float64](4, 4)
	require.ErrorIs(t, LuFactBlock(m.View(), 0), ErrInvalidBlockSize)
	require.ErrorIs(t, LuFactBlock(matrix.New[float64](3, 4).View(), 2), ErrNotSquare)
}
