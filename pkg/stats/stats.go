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

// Package stats aggregates the throughput counters of the sink.
//
// A Stats is shared by every accept and read handler of an engine and by the
// reporting timer. Counters are atomic so that handlers and the reporter may run
// on different goroutines; SnapshotAndReset swaps every counter with zero, so an
// increment racing with a snapshot lands in exactly one interval.
package stats

import (
	"io"
	"strconv"

	"go.uber.org/atomic"

	"github.com/panjf2000/dumdum/pkg/pool/bytebuffer"
)

// Counter identifies one of the monotonic counters.
type Counter int

const (
	// Accept counts accept attempts that returned a descriptor or failed,
	// "no pending connection" excluded.
	Accept Counter = iota
	// AcceptDropped counts accept attempts that failed or whose connection was abandoned.
	AcceptDropped
	// Connections counts connections that entered the active state.
	Connections
	// Packets counts successful reads.
	Packets
	// Bytes counts the payload bytes read.
	Bytes

	numCounters
)

var counterNames = [numCounters]string{"accept", "accept-dropped", "connections", "packets", "bytes"}

// String implements fmt.Stringer.
func (c Counter) String() string {
	if c < 0 || c >= numCounters {
		return "counter(" + strconv.Itoa(int(c)) + ")"
	}
	return counterNames[c]
}

// Stats holds the live counters. The zero value is ready to use.
type Stats struct {
	counters [numCounters]atomic.Uint64
}

// New returns zeroed Stats.
func New() *Stats {
	return new(Stats)
}

// Inc increments the given counter by one.
func (s *Stats) Inc(c Counter) {
	s.counters[c].Inc()
}

// AddBytes records a successful read of n bytes: one packet and n bytes.
func (s *Stats) AddBytes(n int) {
	if n <= 0 {
		return
	}
	s.counters[Packets].Inc()
	s.counters[Bytes].Add(uint64(n))
}

// Load returns the current value of a counter without resetting it.
func (s *Stats) Load(c Counter) uint64 {
	return s.counters[c].Load()
}

// SnapshotAndReset copies every counter out and resets it to zero.
func (s *Stats) SnapshotAndReset() Snapshot {
	return Snapshot{
		Accept:        s.counters[Accept].Swap(0),
		AcceptDropped: s.counters[AcceptDropped].Swap(0),
		Connections:   s.counters[Connections].Swap(0),
		Packets:       s.counters[Packets].Swap(0),
		Bytes:         s.counters[Bytes].Swap(0),
	}
}

// Snapshot is the value of the counters over one reporting interval.
type Snapshot struct {
	Accept        uint64
	AcceptDropped uint64
	Connections   uint64
	Packets       uint64
	Bytes         uint64
}

// Add returns the sum of two snapshots.
func (s Snapshot) Add(o Snapshot) Snapshot {
	return Snapshot{
		Accept:        s.Accept + o.Accept,
		AcceptDropped: s.AcceptDropped + o.AcceptDropped,
		Connections:   s.Connections + o.Connections,
		Packets:       s.Packets + o.Packets,
		Bytes:         s.Bytes + o.Bytes,
	}
}

// IsZero tells whether nothing happened during the interval.
func (s Snapshot) IsZero() bool {
	return s == Snapshot{}
}

// AppendReport appends the report line of s, newline included, to b:
//
//	accept(drop): <accept> ( <accept-dropped> ) conns: <connections> pkts: <packets> bytes <bytes>
func (s Snapshot) AppendReport(b []byte) []byte {
	b = append(b, "accept(drop): "...)
	b = strconv.AppendUint(b, s.Accept, 10)
	b = append(b, " ( "...)
	b = strconv.AppendUint(b, s.AcceptDropped, 10)
	b = append(b, " ) conns: "...)
	b = strconv.AppendUint(b, s.Connections, 10)
	b = append(b, " pkts: "...)
	b = strconv.AppendUint(b, s.Packets, 10)
	b = append(b, " bytes "...)
	b = strconv.AppendUint(b, s.Bytes, 10)
	return append(b, '\n')
}

// String returns the report line of s without the trailing newline.
func (s Snapshot) String() string {
	b := s.AppendReport(nil)
	return string(b[:len(b)-1])
}

// WriteTo writes the report line of s to w in a single Write call.
func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	buf := bytebuffer.Get()
	defer bytebuffer.Put(buf)
	buf.B = s.AppendReport(buf.B)
	n, err := w.Write(buf.B)
	return int64(n), err
}
