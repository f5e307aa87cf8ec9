// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sets implement a set type as a `map[T]struct{}` but with better ergonomics.
package sets

// Set implements a Set for the key type T.
type Set[T comparable] map[T]struct{}

// Make returns an empty Set of the given type. Size is optional, and if given
// will reserve the expected size.
func Make[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// Has returns true if Set s has the given key.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert keys into set.
func (s Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		s[key] = struct{}{}
	}
}

// Unique returns the elements of list without repetitions, keeping the order of their
// first occurrence.
func Unique[T comparable](list []T) []T {
	seen := Make[T](len(list))
	unique := make([]T, 0, len(list))
	for _, e := range list {
		if !seen.Has(e) {
			seen.Insert(e)
			unique = append(unique, e)
		}
	}
	return unique
}
