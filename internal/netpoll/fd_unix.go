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

package netpoll

import (
	"syscall"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// tryDupCloexec indicates whether F_DUPFD_CLOEXEC should be used.
// If the kernel doesn't support it, this is set to false.
var tryDupCloexec = atomic.NewBool(true)

// Dup duplicates fd and marks the new descriptor close-on-exec.
// The string result names the failing system call.
func Dup(fd int) (int, string, error) {
	if tryDupCloexec.Load() {
		r, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
		if err == nil {
			return r, "", nil
		}
		switch err {
		case unix.EINVAL, unix.ENOSYS:
			// Old kernel, fall back to the portable way from now on.
			tryDupCloexec.Store(false)
		default:
			return -1, "fcntl", err
		}
	}
	return dupCloseOnExecOld(fd)
}

// dupCloseOnExecOld is the traditional way to dup an fd and
// set its O_CLOEXEC bit, using two system calls.
func dupCloseOnExecOld(fd int) (int, string, error) {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()
	newFD, err := unix.Dup(fd)
	if err != nil {
		return -1, "dup", err
	}
	unix.CloseOnExec(newFD)
	return newFD, "", nil
}
