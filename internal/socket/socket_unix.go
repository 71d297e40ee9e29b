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

package socket

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/panjf2000/dumdum/pkg/errors"
)

// Listen creates a non-blocking socket for t, applies sockopts, binds it and,
// for stream targets, puts it into the listening state with the given backlog.
// The returned descriptor is owned by the caller.
func Listen(t Target, backlog int, sockopts ...Option) (fd int, err error) {
	if !t.Supported() {
		return -1, errors.ErrUnsupportedProtocol
	}

	sa, err := ipToSockaddr(t.Family, t.IP, t.Port, t.Zone)
	if err != nil {
		return -1, err
	}

	if fd, err = sysSocket(t.Family, t.SockType, t.Protocol); err != nil {
		return -1, os.NewSyscallError("socket", err)
	}
	defer func() {
		if err != nil {
			_ = unix.Close(fd)
			fd = -1
		}
	}()

	// Keep IPv6 sockets off the IPv4 space so that wildcard pairs can coexist.
	if t.Family == unix.AF_INET6 {
		if err = SetIPv6Only(fd, 1); err != nil {
			return
		}
	}

	for _, sockopt := range sockopts {
		if err = sockopt.SetSockopt(fd, sockopt.Opt); err != nil {
			return
		}
	}

	if err = os.NewSyscallError("bind", unix.Bind(fd, sa)); err != nil {
		return
	}

	if t.IsStream() {
		err = os.NewSyscallError("listen", unix.Listen(fd, backlog))
	}
	return
}

// LocalAddr returns the numeric host and port that fd is bound to.
func LocalAddr(fd int) (host, service string, err error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", "", os.NewSyscallError("getsockname", err)
	}
	host, service = SockaddrToHostService(sa)
	return
}
