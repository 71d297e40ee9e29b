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

//go:build darwin || dragonfly || freebsd

package netpoll

import (
	"errors"
	"os"
	"runtime"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/panjf2000/dumdum/internal/queue"
	errorx "github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/logging"
)

// Poller represents a poller which is in charge of monitoring file-descriptors.
type Poller struct {
	fd         int
	wakeupCall atomic.Bool
	jobs       *queue.Queue
}

// OpenPoller instantiates a poller.
func OpenPoller() (poller *Poller, err error) {
	poller = new(Poller)
	if poller.fd, err = unix.Kqueue(); err != nil {
		poller = nil
		err = os.NewSyscallError("kqueue", err)
		return
	}
	unix.CloseOnExec(poller.fd)
	if _, err = unix.Kevent(poller.fd, []unix.Kevent_t{{
		Ident:  0,
		Filter: unix.EVFILT_USER,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
	}}, nil, nil); err != nil {
		_ = poller.Close()
		poller = nil
		err = os.NewSyscallError("kevent add|clear", err)
		return
	}
	poller.jobs = queue.New()
	return
}

// Close closes the poller.
func (p *Poller) Close() error {
	return os.NewSyscallError("close", unix.Close(p.fd))
}

var note = []unix.Kevent_t{{
	Ident:  0,
	Filter: unix.EVFILT_USER,
	Fflags: unix.NOTE_TRIGGER,
}}

// Trigger enqueues fn and wakes up the poller, fn will then run on the goroutine
// that is blocked in Polling. Returning errors.ErrEngineShutdown from fn stops Polling.
func (p *Poller) Trigger(fn queue.Func) (err error) {
	p.jobs.Enqueue(queue.GetJob(fn))
	if p.wakeupCall.CompareAndSwap(false, true) {
		err = p.wakeup()
	}
	return
}

func (p *Poller) wakeup() error {
	_, err := unix.Kevent(p.fd, note, nil, nil)
	if err == unix.EAGAIN {
		err = nil
	}
	return os.NewSyscallError("kevent trigger", err)
}

// Polling blocks the current goroutine, waiting for network-events.
// It returns when the callback or a triggered job returns errors.ErrEngineShutdown,
// or when kevent fails.
func (p *Poller) Polling(callback PollEventHandler) error {
	el := newEventList(InitPollEventsCap)

	var (
		ts       unix.Timespec
		tsp      *unix.Timespec
		doChores bool
	)
	for {
		n, err := unix.Kevent(p.fd, nil, el.events, tsp)
		if n == 0 || (n < 0 && err == unix.EINTR) {
			tsp = nil
			runtime.Gosched()
			continue
		} else if err != nil {
			logging.Errorf("error occurs in kqueue: %v", os.NewSyscallError("kevent wait", err))
			return err
		}
		tsp = &ts

		for i := 0; i < n; i++ {
			ev := &el.events[i]
			if ev.Filter == unix.EVFILT_USER { // poller is awakened to run jobs in queue.
				doChores = true
				continue
			}
			filter := ev.Filter
			if ev.Flags&unix.EV_EOF != 0 || ev.Flags&unix.EV_ERROR != 0 {
				filter = EVFilterSock
			}
			if err = callback(int(ev.Ident), filter); errors.Is(err, errorx.ErrEngineShutdown) {
				return err
			}
		}

		if doChores {
			doChores = false
			for i := 0; i < MaxAsyncJobsAtOneTime; i++ {
				job := p.jobs.Dequeue()
				if job == nil {
					break
				}
				err = job.Run()
				queue.PutJob(job)
				if errors.Is(err, errorx.ErrEngineShutdown) {
					return err
				} else if err != nil {
					logging.Warnf("error occurs in triggered job, %v", err)
				}
			}
			p.wakeupCall.Store(false)
			if !p.jobs.IsEmpty() && p.wakeupCall.CompareAndSwap(false, true) {
				if err = p.wakeup(); err != nil {
					doChores = true
				}
			}
		}

		if n == el.size {
			el.expand()
		} else if n < el.size>>1 {
			el.shrink()
		}
	}
}

// AddRead registers the given file-descriptor with readable event to the poller.
func (p *Poller) AddRead(fd int) error {
	var ev [1]unix.Kevent_t
	unix.SetKevent(&ev[0], fd, unix.EVFILT_READ, unix.EV_ADD)
	_, err := unix.Kevent(p.fd, ev[:], nil, nil)
	return os.NewSyscallError("kevent add", err)
}

// Delete removes the given file-descriptor from the poller.
func (p *Poller) Delete(fd int) error {
	var ev [1]unix.Kevent_t
	unix.SetKevent(&ev[0], fd, unix.EVFILT_READ, unix.EV_DELETE)
	_, err := unix.Kevent(p.fd, ev[:], nil, nil)
	return os.NewSyscallError("kevent delete", err)
}
