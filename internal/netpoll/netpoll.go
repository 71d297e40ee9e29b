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

/*
Package netpoll provides the readiness poller behind the "ev" backend.

The underlying facility of event notification is OS-specific:
  - epoll on Linux - https://man7.org/linux/man-pages/man7/epoll.7.html
  - kqueue on Darwin/FreeBSD/DragonFly - https://man.freebsd.org/cgi/man.cgi?kqueue

Descriptors are registered level-triggered for readable events only: a sink never
writes. Other goroutines hand work to the polling goroutine with Trigger, which
enqueues a job and wakes the poller up through an eventfd (Linux) or an
EVFILT_USER event (kqueue).

	poller, err := netpoll.OpenPoller()
	if err != nil {
		// handle error
	}
	defer poller.Close()

	_ = poller.AddRead(fd)
	_ = poller.Polling(func(fd int, ev netpoll.IOEvent) error {
		// drain fd
		return nil
	})
*/
package netpoll

// PollEventHandler is the callback invoked by Polling for every ready descriptor.
type PollEventHandler func(fd int, ev IOEvent) error
