// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements the bounded pool of goroutines shared by the parallel kernels.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gomlx/hpctutor/pkg/support/xsync"
)

// Pool runs tasks in goroutines, up to a soft limit of parallelism.
type Pool struct {
	// maxParallelism is a soft target on the limit of parallel work to do.
	// The actual number of goroutines is higher than that -- because of waits and such.
	maxParallelism int
	mu             sync.Mutex
	numRunning     int

	// extraParallelism is temporarily increased when a worker goes to sleep.
	extraParallelism atomic.Int32
}

// NewWithParallelism returns a new Pool of workers with the given maxParallelism.
// A maxParallelism of 0 disables parallelism (every task runs inline) and a negative one makes it unlimited.
func NewWithParallelism(maxParallelism int) *Pool {
	return &Pool{maxParallelism: maxParallelism}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism is != 0)
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0)
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// AdjustedMaxParallelism returns the number of partitions worth creating for one parallel call, always >= 1.
//
// For unlimited parallelism it returns runtime.GOMAXPROCS(0), for disabled parallelism 1.
func (w *Pool) AdjustedMaxParallelism() int {
	if w.maxParallelism < 0 {
		return runtime.GOMAXPROCS(0)
	}
	return max(w.maxParallelism, 1)
}

const goroutineToParallelismRatio = 2

// lockedIsFull returns whether all available workers are in use.
//
// It must be called with workerPool.mu acquired.
func (w *Pool) lockedIsFull() bool {
	if w.maxParallelism == 0 {
		return true
	} else if w.maxParallelism < 0 {
		return false
	}
	return w.numRunning >= goroutineToParallelismRatio*w.maxParallelism+int(w.extraParallelism.Load())
}

// lockedRunTaskInGoroutine and keep tabs on w.numRunning.
//
// It must be called with workerPool.mu acquired.
func (w *Pool) lockedRunTaskInGoroutine(task func()) {
	w.numRunning++
	go func() {
		task()
		w.mu.Lock()
		w.numRunning--
		w.mu.Unlock()
	}()
}

// StartIfAvailable runs the task in a separate goroutine, if there are enough workers left.
// It returns true if it found workers to run the function, false otherwise.
//
// It's up to the client to synchronize the end of the function execution.
func (w *Pool) StartIfAvailable(task func()) bool {
	if w.IsUnlimited() {
		go task()
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lockedIsFull() {
		return false
	}
	w.lockedRunTaskInGoroutine(task)
	return true
}

// Saturate fans out as many workers as available, up to AdjustedMaxParallelism, each running
// the given task, and runs the task once more in the caller's goroutine.
//
// The task is expected to consume work from a shared source (typically a closed channel) and
// return when there is no more work. Saturate never waits for a busy pool: if no worker is
// available the caller alone consumes all the work. So, like Run, it is safe to call from
// within a task running in the same pool.
//
// Saturate returns when all started tasks have finished.
func (w *Pool) Saturate(task func()) {
	if !w.IsEnabled() {
		task()
		return
	}
	wg := xsync.NewDynamicWaitGroup()
	runTask := func() {
		defer wg.Done()
		task()
	}
	for range w.AdjustedMaxParallelism() - 1 {
		wg.Add(1)
		if !w.StartIfAvailable(runTask) {
			wg.Done()
			break
		}
	}
	task()
	w.WorkerIsAsleep()
	wg.Wait()
	w.WorkerRestarted()
}

// Run executes fn(task) for every task in [0, numTasks) and returns only when all of them are finished.
//
// Tasks are started in the pool's goroutines while workers are available, and otherwise run inline
// in the caller's goroutine, as is always the last task. So Run never blocks waiting for a free
// worker, and it is safe to call from within a task running in the same pool.
func (w *Pool) Run(numTasks int, fn func(task int)) {
	if numTasks <= 0 {
		return
	}
	if numTasks == 1 || !w.IsEnabled() {
		for task := range numTasks {
			fn(task)
		}
		return
	}
	wg := xsync.NewDynamicWaitGroup()
	for task := range numTasks {
		wg.Add(1)
		runTask := func() {
			defer wg.Done()
			fn(task)
		}
		if task == numTasks-1 || !w.StartIfAvailable(runTask) {
			runTask()
		}
	}
	w.WorkerIsAsleep()
	wg.Wait()
	w.WorkerRestarted()
}

// WorkerIsAsleep indicates the worker (the one that called the method) is going to sleep waiting
// for other workers, and temporarily increases the available number of workers.
//
// Call WorkerRestarted when the worker is ready to run again.
func (w *Pool) WorkerIsAsleep() {
	w.extraParallelism.Add(1)
}

// WorkerRestarted indicates the worker (the one that called the method) is ready to run again.
// It should only be called after WorkerIsAsleep.
func (w *Pool) WorkerRestarted() {
	w.extraParallelism.Add(-1)
}
