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

package dumdum

import "github.com/panjf2000/dumdum/pkg/errors"

func sysAccept(int) (int, error) {
	return -1, errors.ErrUnsupportedPlatform
}

func (eng *Engine) listen(Target) (*listener, error) {
	return nil, errors.ErrUnsupportedPlatform
}

func (eng *Engine) closeListener(*listener) error {
	return errors.ErrUnsupportedPlatform
}

func (eng *Engine) closeConn(*conn) error {
	return errors.ErrUnsupportedPlatform
}
