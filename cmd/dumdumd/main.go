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

// Command dumdumd listens on TCP and UDP, discards everything it receives and
// prints the throughput once per second.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/panjf2000/dumdum"
	"github.com/panjf2000/dumdum/pkg/backend"
	errorx "github.com/panjf2000/dumdum/pkg/errors"
	"github.com/panjf2000/dumdum/pkg/logging"
	"github.com/panjf2000/dumdum/pkg/metrics"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "1.0.0"

const envPrefix = "DUMDUMD"

const (
	exitOK        = 0
	exitFatal     = 1
	exitUsage     = 2
	exitNoBackend = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type command struct {
	prog   string
	flags  *pflag.FlagSet
	conf   *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func newCommand(prog string, stdout, stderr io.Writer) *command {
	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.StringP("backend", "B", backend.Default, "select backend: "+strings.Join(backend.Names(), ", "))
	fs.BoolP("udp", "u", false, "use UDP")
	fs.BoolP("tcp", "t", false, "use TCP, both UDP and TCP are used if none of the two is given")
	fs.BoolP("reuse-addr", "A", false, "use SO_REUSEADDR on sockets")
	fs.BoolP("reuse-port", "R", false, "use SO_REUSEPORT on sockets")
	fs.IntP("linger", "L", 0, "use SO_LINGER with the given seconds")
	fs.BoolP("help", "h", false, "print this help and exit")
	fs.BoolP("version", "V", false, "print version and exit")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	fs.String("log-level", "", "logging level: debug, info, warn or error")
	fs.String("log-file", "", "write logs to this file instead of stderr")

	conf := viper.New()
	conf.SetEnvPrefix(envPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()

	return &command{prog: prog, flags: fs, conf: conf, stdout: stdout, stderr: stderr}
}

func (cmd *command) usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "usage: %s [options] [ip] <port>\n%s", cmd.prog, cmd.flags.FlagUsages())
}

func (cmd *command) usageError(format string, args ...any) int {
	_, _ = fmt.Fprintf(cmd.stderr, "%s: %s\n", cmd.prog, fmt.Sprintf(format, args...))
	cmd.usage(cmd.stderr)
	return exitUsage
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(filepath.Base(args[0]), stdout, stderr)
	if err := cmd.flags.Parse(args[1:]); err != nil {
		return cmd.usageError("%v", err)
	}
	if err := cmd.conf.BindPFlags(cmd.flags); err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", cmd.prog, err)
		return exitFatal
	}

	if cmd.conf.GetBool("help") {
		cmd.usage(stdout)
		return exitOK
	}
	if cmd.conf.GetBool("version") {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", cmd.prog, version)
		return exitOK
	}

	names := backend.Names()
	if len(names) == 0 {
		_, _ = fmt.Fprintf(stderr, "%s: no backend support compiled in\n", cmd.prog)
		return exitNoBackend
	}
	name := cmd.conf.GetString("backend")
	if !slices.Contains(names, name) {
		return cmd.usageError("unknown backend %q", name)
	}

	linger := -1
	if cmd.conf.IsSet("linger") {
		if linger = cmd.conf.GetInt("linger"); linger < 1 {
			return cmd.usageError("linger must be a positive number of seconds")
		}
	}

	var host, service string
	switch pos := cmd.flags.Args(); len(pos) {
	case 1:
		service = pos[0]
	case 2:
		host, service = pos[0], pos[1]
	default:
		return cmd.usageError("expected [ip] <port>")
	}

	logger, flush, err := cmd.logger()
	if err != nil {
		return cmd.usageError("%v", err)
	}
	defer flush() //nolint:errcheck

	opts := []dumdum.Option{
		dumdum.WithBackend(name),
		dumdum.WithProtocols(cmd.conf.GetBool("udp"), cmd.conf.GetBool("tcp")),
		dumdum.WithReuseAddr(cmd.conf.GetBool("reuse-addr")),
		dumdum.WithReusePort(cmd.conf.GetBool("reuse-port")),
		dumdum.WithLinger(linger),
		dumdum.WithOutput(stdout),
		dumdum.WithLogger(logger),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := cmd.conf.GetString("metrics-addr"); addr != "" {
		m, done, err := startMetrics(ctx, addr, logger)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%s: %v\n", cmd.prog, err)
			return exitFatal
		}
		defer func() {
			cancel()
			<-done
		}()
		opts = append(opts, dumdum.WithMetrics(m))
	}

	targets, err := dumdum.Resolve(ctx, host, service)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", cmd.prog, err)
		return exitFatal
	}

	if err = dumdum.Run(ctx, targets, opts...); err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", cmd.prog, err)
		if errors.Is(err, errorx.ErrNoBackend) || errors.Is(err, errorx.ErrUnsupportedPlatform) {
			return exitNoBackend
		}
		return exitFatal
	}
	return exitOK
}

// logger builds the logger asked for on the command line, falling back to the
// one configured through DUMDUM_LOGGING_LEVEL and DUMDUM_LOGGING_FILE.
func (cmd *command) logger() (logging.Logger, logging.Flusher, error) {
	if !cmd.conf.IsSet("log-level") && !cmd.conf.IsSet("log-file") {
		return logging.GetDefaultLogger(), logging.GetDefaultFlusher(), nil
	}
	lvl := logging.InfoLevel
	if name := cmd.conf.GetString("log-level"); name != "" {
		var err error
		if lvl, err = logging.ParseLevel(name); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q", name)
		}
	}
	var (
		logger logging.Logger
		flush  logging.Flusher
		err    error
	)
	if path := cmd.conf.GetString("log-file"); path != "" {
		if logger, flush, err = logging.CreateLoggerAsLocalFile(path, lvl); err != nil {
			return nil, nil, err
		}
	} else {
		logger, flush = logging.CreateConsoleLogger(lvl)
	}
	// Packages logging on their own, like the poller, follow the command line too.
	logging.SetDefaultLoggerAndFlusher(logger, flush)
	return logger, flush, nil
}

// startMetrics binds addr right away so that a bad address fails the startup,
// then serves the exporter until ctx is done. done is closed once the server exits.
func startMetrics(ctx context.Context, addr string, logger logging.Logger) (*metrics.Metrics, <-chan struct{}, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics server: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegistry(reg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := metrics.ServeListener(ctx, ln, metrics.DefaultPath, reg); err != nil {
			logger.Errorf("%v", err)
		}
	}()
	logger.Infof("serving metrics on http://%s%s", ln.Addr(), metrics.DefaultPath)
	return m, done, nil
}
