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

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/panjf2000/dumdum/pkg/backend"
	"github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/stats"
)

// Endpoint describes a listener created by Engine.Listen.
type Endpoint struct {
	FD      int
	Target  Target
	Host    string // numeric host the socket is bound to
	Service string // port the socket is bound to
}

// Engine owns a backend, the listeners registered with it and the connections they
// accepted. Listen and Close must not be called while Serve is running, everything
// else happens on the event loop.
type Engine struct {
	opts      *Options
	backend   backend.Backend
	stats     *stats.Stats
	buffer    []byte            // receive buffer shared by every socket of the loop
	listeners map[int]*listener // listeners indexed by descriptor
	conns     map[int]*conn     // stream connections indexed by descriptor
	inServe   atomic.Bool
	closed    bool

	sysAccept    func(fd int) (int, error)
	onTransition func(fd int, to State)
}

// NewEngine opens the configured backend and returns an engine without listeners.
func NewEngine(opts ...Option) (*Engine, error) {
	options := loadOptions(opts...)
	b, err := backend.Open(options.Backend, options.Logger)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:      options,
		backend:   b,
		stats:     stats.New(),
		buffer:    make([]byte, options.ReadBufferCap),
		listeners: make(map[int]*listener),
		conns:     make(map[int]*conn),
		sysAccept: sysAccept,
	}, nil
}

// Stats returns the live counters of the engine.
func (eng *Engine) Stats() *stats.Stats {
	return eng.stats
}

// Listen creates a listener for t and registers it with the backend.
func (eng *Engine) Listen(t Target) (Endpoint, error) {
	if eng.closed {
		return Endpoint{}, errors.ErrEngineShutdown
	}
	ln, err := eng.listen(t)
	if err != nil {
		return Endpoint{}, err
	}
	_, _ = fmt.Fprintf(eng.opts.Output, "listen: %d fam: %d type: %d proto: %d host: %s service: %s\n",
		ln.fd, t.Family, t.SockType, t.Protocol, ln.host, ln.service)
	return ln.endpoint(), nil
}

// Serve runs the event loop until ctx is done, then closes every connection and
// listener as well as the backend.
func (eng *Engine) Serve(ctx context.Context) (err error) {
	if !eng.inServe.CompareAndSwap(false, true) {
		return errors.ErrEngineInServe
	}
	if eng.closed {
		return errors.ErrEngineShutdown
	}
	defer func() {
		err = multierr.Append(err, eng.Close())
	}()

	if len(eng.listeners) == 0 {
		return errors.ErrNoListeners
	}
	if err = eng.backend.RegisterTimer(eng.opts.StatsInterval, eng.report); err != nil {
		return
	}

	_, _ = fmt.Fprintf(eng.opts.Output, "backend: %s\n", eng.backend.Name())
	eng.updateGauges()
	eng.opts.Logger.Infof("serving %d listener(s) on the %s backend", len(eng.listeners), eng.backend.Name())

	return eng.backend.Run(ctx)
}

// report takes a snapshot of the counters, resets them and hands it over to the
// output, the exporter and the report hook.
func (eng *Engine) report() {
	s := eng.stats.SnapshotAndReset()
	if _, err := s.WriteTo(eng.opts.Output); err != nil {
		eng.opts.Logger.Warnf("failed to write report: %v", err)
	}
	if m := eng.opts.Metrics; m != nil {
		m.Observe(s)
	}
	eng.updateGauges()
	if eng.opts.OnReport != nil {
		eng.opts.OnReport(s)
	}
}

func (eng *Engine) updateGauges() {
	if m := eng.opts.Metrics; m != nil {
		m.SetOpenConnections(len(eng.conns))
		m.SetListeners(len(eng.listeners))
	}
}

func (eng *Engine) transition(c *conn, to State) {
	c.state = to
	if eng.onTransition != nil {
		eng.onTransition(c.fd, to)
	}
}

// Close closes every connection and listener, then the backend.
// It is called by Serve on its way out, calling it again is a no-op.
func (eng *Engine) Close() (err error) {
	if eng.closed {
		return nil
	}
	eng.closed = true
	for _, c := range eng.conns {
		err = multierr.Append(err, eng.closeConn(c))
	}
	for _, ln := range eng.listeners {
		err = multierr.Append(err, eng.closeListener(ln))
	}
	eng.updateGauges()
	return multierr.Append(err, eng.backend.Close())
}
