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

package stats

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAndReset(t *testing.T) {
	s := New()
	s.Inc(Accept)
	s.Inc(Accept)
	s.Inc(AcceptDropped)
	s.Inc(Connections)
	s.AddBytes(1000)
	s.AddBytes(24)
	s.AddBytes(0)

	snap := s.SnapshotAndReset()
	assert.Equal(t, Snapshot{Accept: 2, AcceptDropped: 1, Connections: 1, Packets: 2, Bytes: 1024}, snap)
	assert.True(t, s.SnapshotAndReset().IsZero(), "counters must be zero after a reset")
}

func TestSnapshotAndResetConcurrent(t *testing.T) {
	const (
		writers = 8
		rounds  = 20000
	)
	s := New()

	var (
		wg    sync.WaitGroup
		total Snapshot
		done  = make(chan struct{})
		fin   = make(chan struct{})
	)
	go func() {
		defer close(fin)
		for {
			select {
			case <-done:
				total = total.Add(s.SnapshotAndReset())
				return
			default:
				total = total.Add(s.SnapshotAndReset())
			}
		}
	}()

	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				s.Inc(Accept)
				s.Inc(Connections)
				s.AddBytes(3)
			}
		}()
	}
	wg.Wait()
	close(done)
	<-fin

	want := uint64(writers * rounds)
	assert.Equal(t, Snapshot{Accept: want, Connections: want, Packets: want, Bytes: 3 * want}, total)
}

func TestReportLine(t *testing.T) {
	snap := Snapshot{Accept: 12, AcceptDropped: 3, Connections: 9, Packets: 1500, Bytes: 6291456}
	assert.Equal(t, "accept(drop): 12 ( 3 ) conns: 9 pkts: 1500 bytes 6291456", snap.String())

	var out bytes.Buffer
	n, err := snap.WriteTo(&out)
	require.NoError(t, err)
	assert.EqualValues(t, out.Len(), n)
	assert.Equal(t, snap.String()+"\n", out.String())

	out.Reset()
	_, err = Snapshot{}.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, "accept(drop): 0 ( 0 ) conns: 0 pkts: 0 bytes 0\n", out.String())
}

func TestCounterString(t *testing.T) {
	assert.Equal(t, "accept-dropped", AcceptDropped.String())
	assert.Equal(t, "bytes", Bytes.String())
	assert.Equal(t, "counter(42)", Counter(42).String())
}
