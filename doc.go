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

/*
Package dumdum implements a network sink: it listens on TCP and UDP sockets,
accepts every connection and datagram, throws the payload away as fast as it can
and reports the throughput once per interval.

All sockets are driven by a single event loop provided by a pluggable backend,
see package backend. Stream connections go through three states: ACTIVE while
data is counted, DRAINING after the peer stopped sending and the write side was
shut down, CLOSED once the descriptor is released.

Running a sink on every address of the loopback interface looks like:

	package main

	import (
		"context"
		"log"

		"github.com/panjf2000/dumdum"
	)

	func main() {
		targets, err := dumdum.Resolve(context.Background(), "localhost", "9000")
		if err != nil {
			log.Fatal(err)
		}
		log.Fatal(dumdum.Run(context.Background(), targets, dumdum.WithReuseAddr(true)))
	}

Each second a line like the following is written to the output:

	accept(drop): 1 ( 0 ) conns: 1 pkts: 3 bytes 60
*/
package dumdum
