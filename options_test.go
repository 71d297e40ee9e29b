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
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadOptionsDefaults(t *testing.T) {
	opts := loadOptions()
	assert.Equal(t, DefaultReadBufferCap, opts.ReadBufferCap)
	assert.Equal(t, DefaultStatsInterval, opts.StatsInterval)
	assert.Equal(t, -1, opts.Linger)
	assert.Equal(t, os.Stdout, opts.Output)
	assert.NotNil(t, opts.Logger)
	assert.Empty(t, opts.Backend)

	opts = loadOptions(
		WithReadBufferCap(3000),
		WithStatsInterval(time.Minute),
		WithLinger(5),
		WithOutput(io.Discard),
		WithBackend("ev"),
		WithReuseAddr(true),
		WithReusePort(true),
	)
	assert.Equal(t, 4096, opts.ReadBufferCap)
	assert.Equal(t, time.Minute, opts.StatsInterval)
	assert.Equal(t, 5, opts.Linger)
	assert.Equal(t, io.Discard, opts.Output)
	assert.Equal(t, "ev", opts.Backend)
	assert.True(t, opts.ReuseAddr)
	assert.True(t, opts.ReusePort)
}

func TestProtocolEnabled(t *testing.T) {
	tcp := Target{SockType: syscall.SOCK_STREAM, Protocol: syscall.IPPROTO_TCP}
	udp := Target{SockType: syscall.SOCK_DGRAM, Protocol: syscall.IPPROTO_UDP}

	tests := []struct {
		name     string
		udp, tcp bool
		wantUDP  bool
		wantTCP  bool
	}{
		{"neither means both", false, false, true, true},
		{"udp only", true, false, true, false},
		{"tcp only", false, true, false, true},
		{"both", true, true, true, true},
	}
	for _, tt := range tests {
		opts := loadOptions(WithProtocols(tt.udp, tt.tcp))
		assert.Equal(t, tt.wantUDP, opts.protocolEnabled(udp), tt.name)
		assert.Equal(t, tt.wantTCP, opts.protocolEnabled(tcp), tt.name)
	}
}
