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

package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjf2000/dumdum/pkg/stats"
)

func TestObserveAccumulates(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.Observe(stats.Snapshot{Accept: 2, AcceptDropped: 1, Connections: 1, Packets: 3, Bytes: 60})
	m.Observe(stats.Snapshot{Packets: 5, Bytes: 500})
	m.Observe(stats.Snapshot{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AcceptTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AcceptDroppedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionsTotal))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.PacketsTotal))
	assert.Equal(t, 560.0, testutil.ToFloat64(m.BytesTotal))

	m.SetOpenConnections(4)
	m.SetListeners(2)
	m.SetOpenConnections(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OpenConnections))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Listeners))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	m.Observe(stats.Snapshot{Bytes: 1000, Packets: 1})

	srv := httptest.NewServer(Handler("", reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + DefaultPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "dumdum_bytes_total 1000"))
	assert.True(t, strings.Contains(string(body), "dumdum_listeners 0"))
}

func TestServeListenerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- ServeListener(ctx, ln, DefaultPath, prometheus.NewRegistry()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + DefaultPath)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}
