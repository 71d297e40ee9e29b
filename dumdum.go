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
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/panjf2000/dumdum/internal/socket"
)

// Target is one candidate bind address with its family, socket type and protocol.
type Target = socket.Target

// Resolve expands host and service into bind targets, a stream and a datagram target
// per resolved address. An empty host stands for the wildcard addresses.
func Resolve(ctx context.Context, host, service string) ([]Target, error) {
	return socket.Resolve(ctx, host, service)
}

// Run creates a listener for every target of an enabled protocol and serves them
// until ctx is done. Targets which are neither TCP streams nor UDP datagrams are
// skipped, any failure in setting up a listener aborts the whole run.
func Run(ctx context.Context, targets []Target, opts ...Option) error {
	eng, err := NewEngine(opts...)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if !eng.opts.protocolEnabled(t) {
			continue
		}
		if !t.Supported() {
			eng.opts.Logger.Debugf("skipping unsupported target %s", t)
			continue
		}
		if _, err = eng.Listen(t); err != nil {
			return multierr.Append(fmt.Errorf("listen on %s: %w", t, err), eng.Close())
		}
	}
	return eng.Serve(ctx)
}
