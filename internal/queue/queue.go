// Copyright (c) 2026 The Dumdum Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package queue implements the lock-free job queue through which goroutines
// outside the event loop (timers, shutdown requests) hand work to the loop.
//
// The algorithm is the non-blocking concurrent queue of Maged M. Michael and
// Michael L. Scott (PODC 1996): https://dl.acm.org/doi/10.1145/248052.248106
package queue

import (
	"sync"

	"go.uber.org/atomic"
)

// Func is a unit of work executed on the event loop.
type Func func() error

// Job wraps a Func so that it can be pooled.
type Job struct {
	Run Func
}

var jobPool = sync.Pool{New: func() any { return new(Job) }}

// GetJob gets a cached Job from the pool.
func GetJob(fn Func) *Job {
	j := jobPool.Get().(*Job)
	j.Run = fn
	return j
}

// PutJob puts a finished Job back into the pool.
func PutJob(j *Job) {
	j.Run = nil
	jobPool.Put(j)
}

type node struct {
	job  *Job
	next atomic.Pointer[node]
}

// Queue is a multi-producer multi-consumer FIFO of jobs. The zero value is not usable,
// call New.
type Queue struct {
	head   atomic.Pointer[node]
	tail   atomic.Pointer[node]
	length atomic.Int32
}

// New returns an empty Queue.
func New() *Queue {
	q := new(Queue)
	sentinel := new(node)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Enqueue appends j to the tail of the queue.
func (q *Queue) Enqueue(j *Job) {
	n := &node{job: j}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next != nil {
			// Tail is lagging behind, help it along.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			q.length.Inc()
			return
		}
	}
}

// Dequeue removes and returns the job at the head of the queue, or nil if the queue is empty.
func (q *Queue) Dequeue() *Job {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				return nil
			}
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		// Read the job before the CAS, a concurrent Dequeue may recycle next afterwards.
		j := next.job
		if q.head.CompareAndSwap(head, next) {
			q.length.Dec()
			return j
		}
	}
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	return int(q.length.Load())
}

// IsEmpty tells whether the queue has no jobs.
func (q *Queue) IsEmpty() bool {
	return q.length.Load() == 0
}
