// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package linalg implements the sequential dense kernels: vector primitives, matrix-vector
// evaluation, GEMM, transposition, cache-blocked GEMM and LU factorization, and the triangular
// solvers that consume a packed LU factorization.
//
// Kernels operate on slices and on matrix.View values, and are generic over matrix.Number.
// Shapes are validated before any output is written: on a non-conformable call a kernel returns
// an error wrapping one of ErrDimensionMismatch, ErrNotSquare or ErrInvalidBlockSize, and leaves
// every output untouched.
//
// Unless stated otherwise the outputs must not overlap the inputs.
//
// The blocked kernels (GemmBlock, LuFactBlock) apply, for every output element, exactly the same
// sequence of floating point operations as their unblocked counterparts (Gemm, LuFact), so their
// results are equal for any block sizes.
package linalg
