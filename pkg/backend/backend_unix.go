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

package backend

import (
	"fmt"

	"github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/logging"
)

func names() []string {
	return []string{Poll, Runtime}
}

func open(name string, logger logging.Logger) (Backend, error) {
	switch name {
	case Poll:
		b, err := openPoll(logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case Runtime:
		return openRuntime(logger), nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnknownBackend, name)
}
