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
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/panjf2000/dumdum/pkg/errors"
)

func (eng *Engine) read(c *conn) {
	switch c.state {
	case StateActive:
		eng.readActive(c)
	case StateDraining:
		eng.drain(c)
	}
}

// readActive counts every byte until the socket would block or a read comes back
// short. End of stream or an error moves the connection to DRAINING.
func (eng *Engine) readActive(c *conn) {
	for {
		n, err := unix.Read(c.fd, eng.buffer)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return
		case err != nil || n == 0:
			eng.startDraining(c)
			return
		}
		eng.stats.AddBytes(n)
		if n < len(eng.buffer) {
			return
		}
	}
}

// startDraining half-closes the connection and re-registers it so that what the
// peer still has in flight is consumed instead of being answered with a reset.
func (eng *Engine) startDraining(c *conn) {
	if err := eng.backend.UnregisterReadable(c.fd); err != nil {
		eng.opts.Logger.Warnf("failed to unregister connection fd=%d: %v", c.fd, err)
	}
	if err := unix.Shutdown(c.fd, unix.SHUT_WR); err != nil {
		eng.opts.Logger.Debugf("failed to shut down connection fd=%d: %v", c.fd, err)
	}
	eng.transition(c, StateDraining)
	if err := eng.backend.RegisterReadable(c.fd, func(int) { eng.read(c) }); err != nil {
		eng.opts.Logger.Warnf("failed to register draining connection fd=%d: %v", c.fd, err)
		_ = eng.closeConn(c)
	}
}

// drain discards without counting until end of stream or an error, then closes.
func (eng *Engine) drain(c *conn) {
	for {
		n, err := unix.Read(c.fd, eng.buffer)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return
		case err != nil || n == 0:
			if err = eng.closeConn(c); err != nil {
				eng.opts.Logger.Warnf("failed to close connection fd=%d: %v", c.fd, err)
			}
			return
		}
		if n < len(eng.buffer) {
			return
		}
	}
}

// closeConn releases c. It is a no-op for a connection already closed.
func (eng *Engine) closeConn(c *conn) (err error) {
	if c.state == StateClosed {
		return nil
	}
	if e := eng.backend.UnregisterReadable(c.fd); e != nil && e != errors.ErrNotRegistered {
		err = e
	}
	err = multierr.Append(err, os.NewSyscallError("close", unix.Close(c.fd)))
	delete(eng.conns, c.fd)
	eng.transition(c, StateClosed)
	return
}
