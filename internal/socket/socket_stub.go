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

//go:build !(darwin || dragonfly || freebsd || linux)

package socket

import "github.com/panjf2000/dumdum/pkg/errors"

// Option is used for setting an option on socket.
type Option struct {
	SetSockopt func(int, int) error
	Opt        int
}

// Listen is not supported on this platform.
func Listen(Target, int, ...Option) (int, error) {
	return -1, errors.ErrUnsupportedPlatform
}

// LocalAddr is not supported on this platform.
func LocalAddr(int) (string, string, error) {
	return "", "", errors.ErrUnsupportedPlatform
}

// SetReuseport is not supported on this platform.
func SetReuseport(int, int) error { return errors.ErrUnsupportedPlatform }

// SetReuseAddr is not supported on this platform.
func SetReuseAddr(int, int) error { return errors.ErrUnsupportedPlatform }

// SetLinger is not supported on this platform.
func SetLinger(int, int) error { return errors.ErrUnsupportedPlatform }
