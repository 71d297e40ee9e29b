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

package dumdum

import (
	"io"
	"os"
	"time"

	"github.com/panjf2000/dumdum/internal/math"
	"github.com/panjf2000/dumdum/pkg/logging"
	"github.com/panjf2000/dumdum/pkg/metrics"
	"github.com/panjf2000/dumdum/pkg/stats"
)

const (
	// DefaultReadBufferCap is the size of the receive buffer shared by all sockets.
	DefaultReadBufferCap = 4 << 20

	// DefaultStatsInterval is the interval between two reports.
	DefaultStatsInterval = time.Second
)

// Option is a function that will set up option.
type Option func(opts *Options)

func loadOptions(options ...Option) *Options {
	opts := &Options{Linger: -1}
	for _, option := range options {
		option(opts)
	}
	if opts.ReadBufferCap <= 0 {
		opts.ReadBufferCap = DefaultReadBufferCap
	} else {
		opts.ReadBufferCap = math.CeilToPowerOfTwo(opts.ReadBufferCap)
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = DefaultStatsInterval
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetDefaultLogger()
	}
	return opts
}

// Options are configurations for the engine.
type Options struct {
	// Backend is the name of the event backend, see package backend.
	// An empty name selects the default one.
	Backend string

	// UDP and TCP select the protocols Run listens on, when neither is set
	// both of them are enabled.
	UDP, TCP bool

	// ReuseAddr indicates whether to set up the SO_REUSEADDR socket option.
	ReuseAddr bool

	// ReusePort indicates whether to set up the SO_REUSEPORT socket option.
	ReusePort bool

	// Linger is the SO_LINGER timeout in seconds set on every listener,
	// a negative value turns lingering off.
	Linger int

	// ReadBufferCap is the maximum number of bytes taken from a socket by a single read,
	// it is rounded up to a power of two.
	ReadBufferCap int

	// StatsInterval is the interval between two reports.
	StatsInterval time.Duration

	// Output receives the listen lines and the reports.
	Output io.Writer

	// Logger is the customized logger for logging info, if it is not set,
	// then dumdum will use the default logger powered by go.uber.org/zap.
	Logger logging.Logger

	// Metrics is fed with every report when set.
	Metrics *metrics.Metrics

	// OnReport is called on the event loop with every snapshot.
	OnReport func(stats.Snapshot)
}

func (opts *Options) protocolEnabled(t Target) bool {
	if !opts.UDP && !opts.TCP {
		return true
	}
	return (t.IsStream() && opts.TCP) || (t.IsDatagram() && opts.UDP)
}

// WithOptions sets up all options.
func WithOptions(options Options) Option {
	return func(opts *Options) {
		*opts = options
	}
}

// WithBackend selects the event backend by name.
func WithBackend(name string) Option {
	return func(opts *Options) {
		opts.Backend = name
	}
}

// WithProtocols restricts the protocols Run listens on.
func WithProtocols(udp, tcp bool) Option {
	return func(opts *Options) {
		opts.UDP = udp
		opts.TCP = tcp
	}
}

// WithReuseAddr sets up SO_REUSEADDR socket option.
func WithReuseAddr(reuseAddr bool) Option {
	return func(opts *Options) {
		opts.ReuseAddr = reuseAddr
	}
}

// WithReusePort sets up SO_REUSEPORT socket option.
func WithReusePort(reusePort bool) Option {
	return func(opts *Options) {
		opts.ReusePort = reusePort
	}
}

// WithLinger sets up SO_LINGER socket option.
func WithLinger(sec int) Option {
	return func(opts *Options) {
		opts.Linger = sec
	}
}

// WithReadBufferCap sets up ReadBufferCap for reading bytes.
func WithReadBufferCap(readBufferCap int) Option {
	return func(opts *Options) {
		opts.ReadBufferCap = readBufferCap
	}
}

// WithStatsInterval sets up the interval between two reports.
func WithStatsInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.StatsInterval = interval
	}
}

// WithOutput sets up the writer of the listen lines and the reports.
func WithOutput(w io.Writer) Option {
	return func(opts *Options) {
		opts.Output = w
	}
}

// WithLogger sets up a customized logger.
func WithLogger(logger logging.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics sets up the Prometheus exporter fed with every report.
func WithMetrics(m *metrics.Metrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithOnReport sets up a hook called with every snapshot.
func WithOnReport(fn func(stats.Snapshot)) Option {
	return func(opts *Options) {
		opts.OnReport = fn
	}
}
