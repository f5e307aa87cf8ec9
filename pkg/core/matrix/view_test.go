// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matrix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func iotaMatrix(rows, cols int) *Matrix[int] {
	m := New[int](rows, cols)
	for ii := range m.Data() {
		m.Data()[ii] = ii
	}
	return m
}

func TestSubView(t *testing.T) {
	m := iotaMatrix(4, 5)
	v := m.SubView(1, 2, 2, 3)
	require.Equal(t, 2, v.Rows())
	require.Equal(t, 3, v.Cols())
	require.Equal(t, 5, v.Stride())
	require.Equal(t, 6, v.Size())
	require.Equal(t, []int{7, 8, 9}, v.Row(0))
	require.Equal(t, []int{12, 13, 14}, v.Row(1))
	require.Equal(t, 13, v.At(1, 1))

	// Writes go through to the storage.
	v.Set(0, 0, -7)
	require.Equal(t, -7, m.At(1, 2))

	// Sub of a Sub keeps the original stride.
	vv := v.Sub(1, 1, 1, 2)
	require.Equal(t, 5, vv.Stride())
	require.Equal(t, []int{13, 14}, vv.Row(0))

	from := m.ViewFrom(3, 3)
	require.Equal(t, 1, from.Rows())
	require.Equal(t, 2, from.Cols())
	require.Equal(t, []int{18, 19}, from.Row(0))
}

func TestSubViewOutOfRange(t *testing.T) {
	m := iotaMatrix(3, 3)
	require.Panics(t, func() { m.SubView(2, 0, 2, 1) })
	require.Panics(t, func() { m.SubView(0, 1, 1, 3) })
	require.Panics(t, func() { m.SubView(-1, 0, 1, 1) })
	require.Panics(t, func() { m.View().Sub(0, 0, -1, 1) })

	// Empty views at the border are fine.
	e := m.ViewFrom(3, 3)
	require.True(t, e.Empty())
	require.Equal(t, 0, e.Rows())
	require.True(t, m.SubView(1, 1, 0, 2).Empty())
}

func TestRowLengthIsCols(t *testing.T) {
	m := iotaMatrix(3, 4)
	v := m.SubView(0, 1, 3, 2)
	row := v.Row(0)
	require.Len(t, row, 2)
	require.Equal(t, 2, cap(row))
}

func TestViewCloneAndCopy(t *testing.T) {
	m := iotaMatrix(3, 3)
	c := m.SubView(1, 1, 2, 2).Clone()
	require.True(t, c.Equal(FromRows([][]int{{4, 5}, {7, 8}})))
	require.Equal(t, 2, c.View().Stride())

	dst := New[int](3, 3)
	dst.SubView(0, 0, 2, 2).CopyFrom(c.View())
	require.True(t, dst.Equal(FromRows([][]int{{4, 5, 0}, {7, 8, 0}, {0, 0, 0}})))
	require.Panics(t, func() { dst.View().CopyFrom(c.View()) })
}

func TestViewEqual(t *testing.T) {
	m := iotaMatrix(4, 4)
	a := m.SubView(0, 0, 2, 2)
	b := FromRows([][]int{{0, 1}, {4, 5}}).View()
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	require.False(t, a.Equal(m.SubView(0, 0, 2, 3)))
	require.False(t, a.Equal(m.SubView(1, 0, 2, 2)))
}

func TestNewView(t *testing.T) {
	data := []int{0, 1, 2, 3, 4, 5, 6, 7}
	v := NewView(data, 2, 3, 4)
	require.Equal(t, []int{4, 5, 6}, v.Row(1))
	require.Panics(t, func() { NewView(data, 3, 3, 4) })
	require.Panics(t, func() { NewView(data, 2, 3, 2) })
	require.True(t, NewView[int](nil, 0, 3, 3).Empty())
}

func TestViewAllBreak(t *testing.T) {
	m := iotaMatrix(5, 2)
	count := 0
	for ii := range m.View().All() {
		if ii == 2 {
			break
		}
		count++
	}
	require.Equal(t, 2, count)
}

func TestMaxAbsDiff(t *testing.T) {
	a := FromRows([][]float64{{1, 2}, {3, 4}})
	b := FromRows([][]float64{{1, 2.5}, {2, 4}})
	require.Equal(t, 1.0, MaxAbsDiff(a.View(), b.View()))
	require.Zero(t, MaxAbsDiff(a.View(), a.View()))
	require.Panics(t, func() { MaxAbsDiff(a.View(), a.SubView(0, 0, 1, 2)) })
}
