// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xsync

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDynamicWaitGroup(t *testing.T) {
	wg := NewDynamicWaitGroup()
	wg.Wait() // Zero count returns immediately.

	var done atomic.Int32
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Grows the count while the main goroutine may already be waiting.
		wg.Add(2)
		for range 2 {
			go func() {
				done.Add(1)
				wg.Done()
			}()
		}
		done.Add(1)
	}()
	wg.Wait()
	assert.Equal(t, int32(3), done.Load())
	assert.Panics(t, func() { wg.Done() })
}
