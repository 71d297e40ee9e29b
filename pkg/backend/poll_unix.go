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
	"errors"
	"sync"
	"time"

	"github.com/panjf2000/dumdum/internal/netpoll"
	errorx "github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/logging"
)

type timer struct {
	interval time.Duration
	tick     func()
}

// pollBackend dispatches from a dedicated epoll/kqueue poller. Handlers and ticks run
// on the goroutine blocked in Run; descriptors are registered level-triggered.
//
// The handler table is owned by the polling goroutine: RegisterReadable and
// UnregisterReadable may only be called from handlers and ticks, or before Run
// from the goroutine that is going to call it.
type pollBackend struct {
	poller   *netpoll.Poller
	handlers map[int]ReadHandler
	timers   []timer
	logger   logging.Logger
}

func openPoll(logger logging.Logger) (*pollBackend, error) {
	p, err := netpoll.OpenPoller()
	if err != nil {
		return nil, err
	}
	return &pollBackend{
		poller:   p,
		handlers: make(map[int]ReadHandler),
		logger:   logger,
	}, nil
}

func (b *pollBackend) Name() string {
	return Poll
}

func (b *pollBackend) RegisterReadable(fd int, h ReadHandler) error {
	if _, ok := b.handlers[fd]; ok {
		return errorx.ErrAlreadyRegistered
	}
	if err := b.poller.AddRead(fd); err != nil {
		return err
	}
	b.handlers[fd] = h
	return nil
}

func (b *pollBackend) UnregisterReadable(fd int) error {
	if _, ok := b.handlers[fd]; !ok {
		return errorx.ErrNotRegistered
	}
	delete(b.handlers, fd)
	return b.poller.Delete(fd)
}

func (b *pollBackend) RegisterTimer(interval time.Duration, tick func()) error {
	if interval <= 0 {
		return errorx.ErrInvalidInterval
	}
	b.timers = append(b.timers, timer{interval, tick})
	return nil
}

func (b *pollBackend) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, t := range b.timers {
		wg.Add(1)
		go func(t timer) {
			defer wg.Done()
			b.ticker(ctx, t)
		}(t)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := b.poller.Trigger(func() error { return errorx.ErrEngineShutdown }); err != nil {
			b.logger.Errorf("failed to enqueue shutdown signal for the poller: %v", err)
		}
	}()

	err := b.poller.Polling(b.dispatch)
	cancel()
	wg.Wait()
	if errors.Is(err, errorx.ErrEngineShutdown) {
		return nil
	}
	return err
}

func (b *pollBackend) dispatch(fd int, ev netpoll.IOEvent) error {
	h, ok := b.handlers[fd]
	if !ok {
		return nil
	}
	// Error events are delivered to the handler as well, its next read reports them.
	if netpoll.IsErrorEvent(ev) {
		b.logger.Debugf("error event 0x%x on fd=%d", ev, fd)
	}
	h(fd)
	return nil
}

// ticker hands a tick over to the polling goroutine every interval.
func (b *pollBackend) ticker(ctx context.Context, t timer) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			b.logger.Debugf("stopping ticker of %s backend, error: %v", Poll, ctx.Err())
			return
		case <-tk.C:
			if err := b.poller.Trigger(func() error {
				t.tick()
				return nil
			}); err != nil {
				b.logger.Warnf("failed to enqueue tick: %v", err)
			}
		}
	}
}

func (b *pollBackend) Close() error {
	b.handlers = nil
	return b.poller.Close()
}
