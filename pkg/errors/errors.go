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

// Package errors defines common errors for dumdum.
package errors

import "errors"

var (
	// ErrEngineShutdown occurs when the engine is closing.
	ErrEngineShutdown = errors.New("dumdum: engine is going to be shutdown")
	// ErrEngineInServe occurs when Listen or Serve is called on an engine that is already serving.
	ErrEngineInServe = errors.New("dumdum: engine is already serving")
	// ErrUnsupportedPlatform occurs when running dumdum on an unsupported platform.
	ErrUnsupportedPlatform = errors.New("dumdum: unsupported platform")
	// ErrUnknownBackend occurs when the requested backend name is not one of the compiled-in backends.
	ErrUnknownBackend = errors.New("dumdum: unknown backend")
	// ErrNoBackend occurs when no backend is available on this platform.
	ErrNoBackend = errors.New("dumdum: no backend available")
	// ErrBackendClosed occurs when operating on a backend that has been closed or stopped.
	ErrBackendClosed = errors.New("dumdum: backend is closed")
	// ErrAlreadyRegistered occurs when a file descriptor is registered twice with the same backend.
	ErrAlreadyRegistered = errors.New("dumdum: file descriptor is already registered")
	// ErrNotRegistered occurs when unregistering a file descriptor that is not registered.
	ErrNotRegistered = errors.New("dumdum: file descriptor is not registered")
	// ErrUnsupportedProtocol occurs when a target is neither TCP over a stream socket nor UDP over a datagram socket.
	ErrUnsupportedProtocol = errors.New("dumdum: only tcp and udp are supported")
	// ErrNoListeners occurs when serving without any listener.
	ErrNoListeners = errors.New("dumdum: no listeners")
	// ErrInvalidInterval occurs when a timer is registered with a non-positive interval.
	ErrInvalidInterval = errors.New("dumdum: timer interval must be positive")
)
