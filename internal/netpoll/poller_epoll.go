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

//go:build linux

package netpoll

import (
	"errors"
	"os"
	"runtime"
	"unsafe"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/panjf2000/dumdum/internal/queue"
	errorx "github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/logging"
)

// Poller represents a poller which is in charge of monitoring file-descriptors.
type Poller struct {
	fd         int    // epoll fd
	efd        int    // eventfd
	efdBuf     []byte // efd buffer to read an 8-byte integer
	wakeupCall atomic.Bool
	jobs       *queue.Queue
}

// OpenPoller instantiates a poller.
func OpenPoller() (poller *Poller, err error) {
	poller = new(Poller)
	if poller.fd, err = unix.EpollCreate1(unix.EPOLL_CLOEXEC); err != nil {
		poller = nil
		err = os.NewSyscallError("epoll_create1", err)
		return
	}
	if poller.efd, err = unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC); err != nil {
		_ = unix.Close(poller.fd)
		poller = nil
		err = os.NewSyscallError("eventfd", err)
		return
	}
	poller.efdBuf = make([]byte, 8)
	if err = poller.AddRead(poller.efd); err != nil {
		_ = poller.Close()
		poller = nil
		return
	}
	poller.jobs = queue.New()
	return
}

// Close closes the poller.
func (p *Poller) Close() error {
	_ = unix.Close(p.efd)
	return os.NewSyscallError("close", unix.Close(p.fd))
}

// Make the endianness of bytes compatible with more linux OSs under different processor-architectures,
// according to http://man7.org/linux/man-pages/man2/eventfd.2.html.
var (
	u uint64 = 1
	b        = (*(*[8]byte)(unsafe.Pointer(&u)))[:]
)

// Trigger enqueues fn and wakes up the poller, fn will then run on the goroutine
// that is blocked in Polling. Returning errors.ErrEngineShutdown from fn stops Polling.
func (p *Poller) Trigger(fn queue.Func) (err error) {
	p.jobs.Enqueue(queue.GetJob(fn))
	if p.wakeupCall.CompareAndSwap(false, true) {
		err = p.wakeup()
	}
	return
}

func (p *Poller) wakeup() (err error) {
	for {
		_, err = unix.Write(p.efd, b)
		if err == unix.EAGAIN {
			_, _ = unix.Read(p.efd, p.efdBuf)
			continue
		}
		break
	}
	return os.NewSyscallError("write", err)
}

// Polling blocks the current goroutine, waiting for network-events.
// It returns when the callback or a triggered job returns errors.ErrEngineShutdown,
// or when epoll_wait fails.
func (p *Poller) Polling(callback PollEventHandler) error {
	el := newEventList(InitPollEventsCap)
	var doChores bool

	msec := -1
	for {
		n, err := unix.EpollWait(p.fd, el.events, msec)
		if n == 0 || (n < 0 && err == unix.EINTR) {
			msec = -1
			runtime.Gosched()
			continue
		} else if err != nil {
			logging.Errorf("error occurs in epoll: %v", os.NewSyscallError("epoll_wait", err))
			return err
		}
		msec = 0

		for i := 0; i < n; i++ {
			ev := &el.events[i]
			if fd := int(ev.Fd); fd == p.efd { // poller is awakened to run jobs in queue.
				doChores = true
				_, _ = unix.Read(p.efd, p.efdBuf)
			} else if err = callback(fd, ev.Events); errors.Is(err, errorx.ErrEngineShutdown) {
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
					logging.Errorf("failed to notify next round of event-loop for leftover jobs, %v", err)
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
	return os.NewSyscallError("epoll_ctl add",
		unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Fd: int32(fd), Events: ReadEvents}))
}

// Delete removes the given file-descriptor from the poller.
func (p *Poller) Delete(fd int) error {
	return os.NewSyscallError("epoll_ctl del", unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil))
}
