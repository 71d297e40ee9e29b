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

// Package backend abstracts the asynchronous readiness and timer notification
// mechanism that the engine is built on.
//
// Two interchangeable backends are provided on Unix platforms:
//
//   - "ev": a dedicated epoll/kqueue poller driven by the goroutine calling Run.
//   - "uv": the Go runtime netpoller, one waiting worker per registered descriptor.
//
// Whatever the backend, every ReadHandler and timer tick of a Backend runs
// serialized with respect to all others, so handlers may share state, such as
// a receive buffer, without further synchronization. Readiness is level-triggered
// from the handler's point of view: a handler that returns while data is still
// pending is invoked again.
package backend

import (
	"context"
	"time"

	"github.com/panjf2000/dumdum/pkg/logging"
)

const (
	// Poll names the epoll/kqueue backend.
	Poll = "ev"
	// Runtime names the backend built on the Go runtime netpoller.
	Runtime = "uv"
	// Default is the backend used when none is selected.
	Default = Runtime
)

// ReadHandler is invoked when fd becomes readable. It must not block.
type ReadHandler func(fd int)

// Backend is the capability set the engine needs from an event mechanism.
type Backend interface {
	// Name returns the name the backend was opened with.
	Name() string
	// RegisterReadable arms h for readable events on fd. A descriptor can only be
	// registered once at a time.
	RegisterReadable(fd int, h ReadHandler) error
	// UnregisterReadable disarms fd. When called from a handler, no further
	// event is delivered for the old registration.
	UnregisterReadable(fd int) error
	// RegisterTimer arranges for tick to run every interval once Run is called.
	RegisterTimer(interval time.Duration, tick func()) error
	// Run dispatches events and ticks until ctx is done.
	Run(ctx context.Context) error
	// Close releases the resources of the backend. It does not close registered descriptors.
	Close() error
}

// Names returns the names of the backends compiled in for this platform.
func Names() []string {
	return names()
}

// Open instantiates the backend with the given name, an empty name selects Default.
func Open(name string, logger logging.Logger) (Backend, error) {
	if name == "" {
		name = Default
	}
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	return open(name, logger)
}
