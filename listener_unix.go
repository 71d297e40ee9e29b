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

package dumdum

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/panjf2000/dumdum/internal/socket"
	"github.com/panjf2000/dumdum/pkg/backend"
	"github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/stats"
)

const (
	// backlog is the length of the queue of pending connections of stream listeners.
	backlog = 10

	// exhaustionLogInterval bounds how often resource exhaustion on accept is logged
	// per listener, the backend keeps calling back while connections are pending.
	exhaustionLogInterval = time.Second
)

func sysAccept(fd int) (int, error) {
	nfd, _, err := unix.Accept(fd)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(nfd)
	return nfd, nil
}

func (eng *Engine) listen(t Target) (*listener, error) {
	sockOpts := []socket.Option{{SetSockopt: socket.SetLinger, Opt: eng.opts.Linger}}
	if eng.opts.ReuseAddr {
		sockOpts = append(sockOpts, socket.Option{SetSockopt: socket.SetReuseAddr, Opt: 1})
	}
	if eng.opts.ReusePort {
		sockOpts = append(sockOpts, socket.Option{SetSockopt: socket.SetReuseport, Opt: 1})
	}

	fd, err := socket.Listen(t, backlog, sockOpts...)
	if err != nil {
		return nil, err
	}
	ln := &listener{fd: fd, target: t}
	if ln.host, ln.service, err = socket.LocalAddr(fd); err == nil {
		err = eng.createListener(ln)
	}
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return ln, nil
}

// createListener registers a bound socket with the backend: stream listeners are
// accepted on, datagram listeners are read from.
func (eng *Engine) createListener(ln *listener) error {
	var h backend.ReadHandler
	switch {
	case ln.target.IsStream():
		h = func(int) { eng.acceptLoop(ln) }
	case ln.target.IsDatagram():
		h = func(int) { eng.readDatagram(ln) }
	default:
		return errors.ErrUnsupportedProtocol
	}
	if err := eng.backend.RegisterReadable(ln.fd, h); err != nil {
		return fmt.Errorf("register listener %s: %w", ln, err)
	}
	eng.listeners[ln.fd] = ln
	return nil
}

// acceptLoop accepts until no connection is pending. Failed attempts are counted
// as dropped: resource exhaustion yields to the backend, ECONNABORTED moves on to
// the next pending connection, any other error takes the listener down.
func (eng *Engine) acceptLoop(ln *listener) {
	for {
		nfd, err := eng.sysAccept(ln.fd)
		switch err {
		case nil:
		case unix.EAGAIN:
			return
		case unix.EINTR:
			continue
		default:
			eng.stats.Inc(stats.Accept)
			eng.stats.Inc(stats.AcceptDropped)
			switch err {
			case unix.ECONNABORTED:
				continue
			case unix.EMFILE, unix.ENFILE, unix.ENOBUFS, unix.ENOMEM:
				if now := time.Now(); now.Sub(ln.exhaustedLogAt) >= exhaustionLogInterval {
					ln.exhaustedLogAt = now
					eng.opts.Logger.Warnf("failed to accept on %s: %v", ln, err)
				}
				return
			}
			eng.opts.Logger.Errorf("closing listener %s after accept error: %v", ln, err)
			if err = eng.closeListener(ln); err != nil {
				eng.opts.Logger.Errorf("failed to close listener %s: %v", ln, err)
			}
			return
		}

		eng.stats.Inc(stats.Accept)
		c := &conn{fd: nfd, ln: ln}
		if err = os.NewSyscallError("fcntl nonblock", unix.SetNonblock(nfd, true)); err == nil {
			err = eng.backend.RegisterReadable(nfd, func(int) { eng.read(c) })
		}
		if err != nil {
			eng.opts.Logger.Debugf("dropping connection fd=%d accepted on %s: %v", nfd, ln, err)
			_ = unix.Close(nfd)
			eng.stats.Inc(stats.AcceptDropped)
			continue
		}
		eng.conns[nfd] = c
		eng.stats.Inc(stats.Connections)
		eng.transition(c, StateActive)
	}
}

// readDatagram reads datagrams until the socket would block. A zero-length read or
// an error closes the listener.
func (eng *Engine) readDatagram(ln *listener) {
	for {
		n, err := unix.Read(ln.fd, eng.buffer)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return
		case err != nil || n == 0:
			eng.opts.Logger.Debugf("closing datagram listener %s, read returned %d: %v", ln, n, err)
			if err = eng.closeListener(ln); err != nil {
				eng.opts.Logger.Errorf("failed to close listener %s: %v", ln, err)
			}
			return
		}
		eng.stats.AddBytes(n)
		if n < len(eng.buffer) {
			return
		}
	}
}

func (eng *Engine) closeListener(ln *listener) (err error) {
	if _, ok := eng.listeners[ln.fd]; !ok {
		return nil
	}
	delete(eng.listeners, ln.fd)
	if e := eng.backend.UnregisterReadable(ln.fd); e != nil && e != errors.ErrNotRegistered {
		err = e
	}
	if ln.target.IsStream() {
		// The listener may already be in an error state, shutdown is best effort.
		_ = unix.Shutdown(ln.fd, unix.SHUT_RDWR)
	}
	err = multierr.Append(err, os.NewSyscallError("close", unix.Close(ln.fd)))
	eng.updateGauges()
	return
}
