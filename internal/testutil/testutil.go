// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by the tests of the kernel packages.
package testutil

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"testing"

	"github.com/gomlx/hpctutor/pkg/core/matrix"
	"github.com/stretchr/testify/require"
)

// SeedEnv is the environment variable that overrides the seed returned by NewRand.
const SeedEnv = "HPCTUTOR_TEST_SEED"

// Tolerance is both the relative and absolute tolerance used by Close.
const Tolerance = 1e-6

// NewRand returns a deterministic generator for the test.
//
// The seed is derived from the test name, so each test gets its own stream and sub-tests
// don't depend on execution order. Set HPCTUTOR_TEST_SEED to mix in another base seed.
func NewRand(t testing.TB) *rand.Rand {
	t.Helper()
	var base uint64 = 1
	if s := os.Getenv(SeedEnv); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		require.NoErrorf(t, err, "invalid %s=%q", SeedEnv, s)
		base = v
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Name()))
	seed := h.Sum64()
	t.Logf("%s: random seed (%d, %d)", t.Name(), base, seed)
	return rand.New(rand.NewPCG(base, seed))
}

// Close reports whether got is within Tolerance of want, either relative or absolute.
func Close[T matrix.Number](want, got T) bool {
	w, g := float64(want), float64(got)
	diff := math.Abs(w - g)
	return diff <= Tolerance || diff <= Tolerance*math.Max(math.Abs(w), math.Abs(g))
}

// RequireSliceClose fails the test if the slices differ in length or any element is not Close.
func RequireSliceClose[T matrix.Number](t testing.TB, want, got []T) {
	t.Helper()
	require.Len(t, got, len(want))
	for ii := range want {
		require.Truef(t, Close(want[ii], got[ii]), "element %d: want %v, got %v", ii, want[ii], got[ii])
	}
}

// RequireMatrixClose fails the test if the views differ in shape or any element is not Close.
func RequireMatrixClose[T matrix.Number](t testing.TB, want, got matrix.View[T]) {
	t.Helper()
	require.Equalf(t, want.ShapeString(), got.ShapeString(), "shapes differ")
	for ii, row := range want.All() {
		gotRow := got.Row(ii)
		for jj := range row {
			require.Truef(t, Close(row[jj], gotRow[jj]), "element (%d, %d): want %v, got %v",
				ii, jj, row[jj], gotRow[jj])
		}
	}
}
