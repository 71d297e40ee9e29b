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

// Package metrics exports the counters of the sink to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/panjf2000/dumdum/pkg/stats"
)

// DefaultPath is where metrics are served when no path is given.
const DefaultPath = "/metrics"

// Metrics holds cumulative counters fed from the periodic snapshots of the engine,
// plus the gauges describing the sockets it currently owns.
type Metrics struct {
	AcceptTotal        prometheus.Counter
	AcceptDroppedTotal prometheus.Counter
	ConnectionsTotal   prometheus.Counter
	PacketsTotal       prometheus.Counter
	BytesTotal         prometheus.Counter
	OpenConnections    prometheus.Gauge
	Listeners          prometheus.Gauge
}

// NewWithRegistry creates the collectors and registers them with reg,
// prometheus.DefaultRegisterer when reg is nil.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AcceptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dumdum_accept_total",
			Help: "Total number of accept attempts, failed ones included",
		}),
		AcceptDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dumdum_accept_dropped_total",
			Help: "Total number of failed accept attempts",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dumdum_connections_total",
			Help: "Total number of established stream connections",
		}),
		PacketsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dumdum_packets_total",
			Help: "Total number of successful reads",
		}),
		BytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dumdum_bytes_total",
			Help: "Total number of bytes received and discarded",
		}),
		OpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dumdum_open_connections",
			Help: "Number of stream connections not closed yet",
		}),
		Listeners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dumdum_listeners",
			Help: "Number of listening sockets",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.AcceptTotal,
		m.AcceptDroppedTotal,
		m.ConnectionsTotal,
		m.PacketsTotal,
		m.BytesTotal,
		m.OpenConnections,
		m.Listeners,
	)
	return m
}

// Observe accumulates the deltas of one reporting interval.
func (m *Metrics) Observe(s stats.Snapshot) {
	m.AcceptTotal.Add(float64(s.Accept))
	m.AcceptDroppedTotal.Add(float64(s.AcceptDropped))
	m.ConnectionsTotal.Add(float64(s.Connections))
	m.PacketsTotal.Add(float64(s.Packets))
	m.BytesTotal.Add(float64(s.Bytes))
}

// SetOpenConnections records the number of stream connections not closed yet.
func (m *Metrics) SetOpenConnections(n int) {
	m.OpenConnections.Set(float64(n))
}

// SetListeners records the number of listening sockets.
func (m *Metrics) SetListeners(n int) {
	m.Listeners.Set(float64(n))
}

// Handler returns a mux serving the metrics gathered by g at path.
func Handler(path string, g prometheus.Gatherer) http.Handler {
	if path == "" {
		path = DefaultPath
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

// ServeListener exposes the metrics gathered by g on ln until ctx is done.
// The listener is closed on return.
func ServeListener(ctx context.Context, ln net.Listener, path string, g prometheus.Gatherer) error {
	srv := &http.Server{Handler: Handler(path, g)}

	stop := context.AfterFunc(ctx, func() {
		_ = srv.Close()
	})
	defer stop()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
