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

// State is the lifecycle state of a stream connection.
type State int32

const (
	// StateActive is the initial state, bytes read are counted.
	StateActive State = iota
	// StateDraining is entered when the peer stops sending. The write side is shut
	// down and whatever the peer still sends is discarded without being counted.
	StateDraining
	// StateClosed is terminal, the descriptor has been released.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	case StateDraining:
		return "DRAINING"
	case StateClosed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

type conn struct {
	fd    int
	ln    *listener // listener the connection was accepted on
	state State
}
