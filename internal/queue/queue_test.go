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

package queue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/panjf2000/dumdum/internal/queue"
)

func TestQueueFIFO(t *testing.T) {
	q := queue.New()
	require.True(t, q.IsEmpty())
	assert.Nil(t, q.Dequeue())

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		q.Enqueue(queue.GetJob(func() error {
			order = append(order, i)
			return nil
		}))
	}
	assert.Equal(t, 3, q.Len())
	for j := q.Dequeue(); j != nil; j = q.Dequeue() {
		require.NoError(t, j.Run())
		queue.PutJob(j)
	}
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.True(t, q.IsEmpty())
}

func TestQueueConcurrent(t *testing.T) {
	const jobNum = 10000
	q := queue.New()
	var (
		wg      sync.WaitGroup
		counter atomic.Int32
	)
	produce := func() {
		defer wg.Done()
		for i := 0; i < jobNum; i++ {
			q.Enqueue(queue.GetJob(func() error { return nil }))
		}
	}
	consume := func() {
		defer wg.Done()
		for counter.Load() < 2*jobNum {
			if j := q.Dequeue(); j != nil {
				counter.Inc()
			}
		}
	}
	wg.Add(4)
	go produce()
	go produce()
	go consume()
	go consume()
	wg.Wait()

	assert.EqualValues(t, 2*jobNum, counter.Load())
	assert.True(t, q.IsEmpty())
}
