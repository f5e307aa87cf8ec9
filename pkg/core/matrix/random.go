// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"math"
	"math/rand/v2"

	"github.com/gomlx/exceptions"
)

// Random returns a rows x cols matrix filled with values drawn uniformly from rng.
//
// For integer types values are in the closed interval [low, high]; for floating point
// types in the half-open interval [low, high). Any integer range is accepted, up to the full
// range of T. It panics if high < low.
//
// The generator is always passed explicitly, so tests seeded with the same value are
// reproducible and can run in parallel.
func Random[T Number](rng *rand.Rand, rows, cols int, low, high T) *Matrix[T] {
	m := New[T](rows, cols)
	fillRandom(rng, m.data, low, high)
	return m
}

// RandomVector returns a slice of n values drawn from rng, with the same ranges as Random.
func RandomVector[T Number](rng *rand.Rand, n int, low, high T) []T {
	v := make([]T, n)
	fillRandom(rng, v, low, high)
	return v
}

func fillRandom[T Number](rng *rand.Rand, data []T, low, high T) {
	if high < low {
		exceptions.Panicf("matrix.Random: empty range [%v, %v]", low, high)
	}
	if isFloat[T]() {
		span := float64(high) - float64(low)
		for ii := range data {
			data[ii] = low + T(rng.Float64()*span)
		}
		return
	}
	// high-low computed modulo 2^64 is exact for every integer type, signed or not.
	// Adding the offset back to low wraps around within [low, high].
	span := uint64(high) - uint64(low)
	for ii := range data {
		var offset uint64
		if span == math.MaxUint64 {
			offset = rng.Uint64()
		} else {
			offset = rng.Uint64N(span + 1)
		}
		data[ii] = low + T(offset)
	}
}

// isFloat reports whether T is a floating point type.
func isFloat[T Number]() bool {
	var one T = 1
	return one/2 != 0
}
