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

//go:build darwin || dragonfly || freebsd || linux

package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	errorx "github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/logging"
)

func socketPair(t *testing.T) (int, int) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(fds[0], true))
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func openBackend(t *testing.T, name string) Backend {
	b, err := Open(name, logging.GetDefaultLogger())
	require.NoError(t, err)
	require.Equal(t, name, b.Name())
	return b
}

// start runs b in the background and returns a function which stops it.
func start(t *testing.T, b Backend) func() {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("backend did not stop after cancellation")
		}
		assert.NoError(t, b.Close())
	}
}

func TestOpen(t *testing.T) {
	b, err := Open("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default, b.Name())
	assert.NoError(t, b.Close())

	_, err = Open("libev", nil)
	assert.ErrorIs(t, err, errorx.ErrUnknownBackend)

	assert.ElementsMatch(t, []string{Poll, Runtime}, Names())
}

func TestBackends(t *testing.T) {
	for _, name := range Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Run("readable", func(t *testing.T) { testReadable(t, name) })
			t.Run("level-triggered", func(t *testing.T) { testLevelTriggered(t, name) })
			t.Run("unregister-in-handler", func(t *testing.T) { testUnregisterInHandler(t, name) })
			t.Run("unregister-other", func(t *testing.T) { testUnregisterOther(t, name) })
			t.Run("timer", func(t *testing.T) { testTimer(t, name) })
			t.Run("idle-stop", func(t *testing.T) { testIdleStop(t, name) })
		})
	}
}

func testReadable(t *testing.T, name string) {
	b := openBackend(t, name)
	rfd, wfd := socketPair(t)

	got := make(chan string, 1)
	h := func(fd int) {
		buf := make([]byte, 64)
		n, err := unix.Read(fd, buf)
		if err == nil && n > 0 {
			got <- string(buf[:n])
		}
	}
	require.NoError(t, b.RegisterReadable(rfd, h))
	assert.ErrorIs(t, b.RegisterReadable(rfd, h), errorx.ErrAlreadyRegistered)
	assert.ErrorIs(t, b.UnregisterReadable(wfd), errorx.ErrNotRegistered)

	stop := start(t, b)
	defer stop()

	_, err := unix.Write(wfd, []byte("ping"))
	require.NoError(t, err)
	select {
	case s := <-got:
		assert.Equal(t, "ping", s)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the handler")
	}
}

func testLevelTriggered(t *testing.T, name string) {
	b := openBackend(t, name)
	rfd, wfd := socketPair(t)

	var total atomic.Int32
	require.NoError(t, b.RegisterReadable(rfd, func(fd int) {
		buf := make([]byte, 1)
		if n, err := unix.Read(fd, buf); err == nil {
			total.Add(int32(n))
		}
	}))
	stop := start(t, b)
	defer stop()

	_, err := unix.Write(wfd, []byte("12345"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return total.Load() == 5 }, 5*time.Second, 10*time.Millisecond)
}

func testUnregisterInHandler(t *testing.T, name string) {
	b := openBackend(t, name)
	rfd, wfd := socketPair(t)

	var calls atomic.Int32
	require.NoError(t, b.RegisterReadable(rfd, func(fd int) {
		calls.Inc()
		assert.NoError(t, b.UnregisterReadable(fd))
	}))
	stop := start(t, b)
	defer stop()

	_, err := unix.Write(wfd, []byte("data left unread"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return calls.Load() > 1 }, 200*time.Millisecond, 10*time.Millisecond)
}

func testUnregisterOther(t *testing.T, name string) {
	b := openBackend(t, name)
	ctlR, ctlW := socketPair(t)
	rfd, wfd := socketPair(t)

	var calls atomic.Int32
	require.NoError(t, b.RegisterReadable(rfd, func(int) { calls.Inc() }))
	require.NoError(t, b.RegisterReadable(ctlR, func(fd int) {
		buf := make([]byte, 8)
		_, _ = unix.Read(fd, buf)
		_ = b.UnregisterReadable(rfd)
	}))
	stop := start(t, b)
	defer stop()

	_, err := unix.Write(ctlW, []byte{1})
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	_, err = unix.Write(wfd, []byte("ignored"))
	require.NoError(t, err)
	assert.Never(t, func() bool { return calls.Load() > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}

func testTimer(t *testing.T, name string) {
	b := openBackend(t, name)
	assert.ErrorIs(t, b.RegisterTimer(0, func() {}), errorx.ErrInvalidInterval)

	var ticks atomic.Int32
	require.NoError(t, b.RegisterTimer(10*time.Millisecond, func() { ticks.Inc() }))
	stop := start(t, b)
	defer stop()

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, 5*time.Second, 10*time.Millisecond)
}

func testIdleStop(t *testing.T, name string) {
	b := openBackend(t, name)
	rfd, _ := socketPair(t)
	require.NoError(t, b.RegisterReadable(rfd, func(int) {}))
	stop := start(t, b)
	time.Sleep(20 * time.Millisecond)
	stop()
}
