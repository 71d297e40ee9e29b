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
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/panjf2000/dumdum/internal/netpoll"
	errorx "github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/logging"
	"github.com/panjf2000/dumdum/pkg/pool/goroutine"
)

// aLongTimeAgo is a non-zero time, far in the past, used to wake up blocked readers.
var aLongTimeAgo = time.Unix(1, 0)

type registration struct {
	fd     int
	h      ReadHandler
	file   *os.File
	rc     syscall.RawConn
	closed atomic.Bool
}

// runtimeBackend rides on the netpoller of the Go runtime. Every registration owns a
// duplicate of its descriptor, watched by a worker from an ants pool, and handlers
// and ticks are serialized by mu so they never run concurrently.
//
// The registration table is guarded by mu as well: RegisterReadable and
// UnregisterReadable may only be called from handlers and ticks, or before Run
// from the goroutine that is going to call it.
type runtimeBackend struct {
	mu      sync.Mutex
	regs    map[int]*registration
	timers  []timer
	running bool
	stopped bool
	closed  bool

	started chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	pool    *goroutine.Pool
	logger  logging.Logger
}

func openRuntime(logger logging.Logger) *runtimeBackend {
	return &runtimeBackend{
		regs:    make(map[int]*registration),
		started: make(chan struct{}),
		done:    make(chan struct{}),
		pool:    goroutine.Default(),
		logger:  logger,
	}
}

func (b *runtimeBackend) Name() string {
	return Runtime
}

func (b *runtimeBackend) RegisterReadable(fd int, h ReadHandler) error {
	if b.closed || b.stopped {
		return errorx.ErrBackendClosed
	}
	if _, ok := b.regs[fd]; ok {
		return errorx.ErrAlreadyRegistered
	}

	dupFD, call, err := netpoll.Dup(fd)
	if err != nil {
		return os.NewSyscallError(call, err)
	}
	file := os.NewFile(uintptr(dupFD), "fd-"+strconv.Itoa(fd))
	rc, err := file.SyscallConn()
	if err != nil {
		_ = file.Close()
		return err
	}
	r := &registration{fd: fd, h: h, file: file, rc: rc}

	b.wg.Add(1)
	if err = b.pool.Submit(func() { b.watch(r) }); err != nil {
		b.wg.Done()
		_ = file.Close()
		return err
	}
	b.regs[fd] = r
	return nil
}

func (b *runtimeBackend) UnregisterReadable(fd int) error {
	r, ok := b.regs[fd]
	if !ok {
		return errorx.ErrNotRegistered
	}
	delete(b.regs, fd)
	b.release(r)
	return nil
}

// release stops the watcher of r. The duplicate descriptor is closed by the watcher
// itself once its read returns, closing it from within the read callback would block.
func (b *runtimeBackend) release(r *registration) {
	r.closed.Store(true)
	if err := r.file.SetReadDeadline(aLongTimeAgo); err != nil {
		b.logger.Debugf("failed to wake up the watcher of fd=%d: %v", r.fd, err)
	}
}

func (b *runtimeBackend) watch(r *registration) {
	defer b.wg.Done()
	defer r.file.Close() //nolint:errcheck

	select {
	case <-b.started:
	case <-b.done:
		return
	}

	err := r.rc.Read(func(fd uintptr) bool {
		// The runtime reports edges, keep calling the handler as long as the
		// descriptor stays readable to get level-triggered semantics.
		for {
			b.mu.Lock()
			if r.closed.Load() || b.stopped {
				b.mu.Unlock()
				return true
			}
			if !readable(int(fd)) {
				b.mu.Unlock()
				return false
			}
			r.h(r.fd)
			b.mu.Unlock()
		}
	})
	if err != nil && !r.closed.Load() {
		b.logger.Warnf("watcher of fd=%d exits with error: %v", r.fd, err)
	}
}

// readable reports whether a read on fd would not block, errors and hang-ups included.
func readable(fd int) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}
		return err == nil && n > 0 && fds[0].Revents != 0
	}
}

func (b *runtimeBackend) RegisterTimer(interval time.Duration, tick func()) error {
	if interval <= 0 {
		return errorx.ErrInvalidInterval
	}
	b.timers = append(b.timers, timer{interval, tick})
	return nil
}

func (b *runtimeBackend) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errorx.ErrBackendClosed
	}
	if b.running {
		b.mu.Unlock()
		return errorx.ErrEngineInServe
	}
	b.running = true
	for _, t := range b.timers {
		b.wg.Add(1)
		go b.ticker(ctx, t)
	}
	close(b.started)
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	b.stopped = true
	for fd, r := range b.regs {
		delete(b.regs, fd)
		b.release(r)
	}
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *runtimeBackend) ticker(ctx context.Context, t timer) {
	defer b.wg.Done()
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			b.logger.Debugf("stopping ticker of %s backend, error: %v", Runtime, ctx.Err())
			return
		case <-tk.C:
			b.mu.Lock()
			if !b.stopped {
				t.tick()
			}
			b.mu.Unlock()
		}
	}
}

func (b *runtimeBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	for fd, r := range b.regs {
		delete(b.regs, fd)
		b.release(r)
	}
	b.mu.Unlock()

	b.wg.Wait()
	b.pool.Release()
	return nil
}
