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

package dumdum

import (
	"net"
	"time"
)

type listener struct {
	fd      int
	target  Target
	host    string
	service string

	exhaustedLogAt time.Time // last time resource exhaustion on accept was logged
}

func (ln *listener) endpoint() Endpoint {
	return Endpoint{FD: ln.fd, Target: ln.target, Host: ln.host, Service: ln.service}
}

func (ln *listener) String() string {
	return ln.target.Network() + "://" + net.JoinHostPort(ln.host, ln.service)
}
