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

// Package socket resolves bind targets and creates the non-blocking listening
// sockets that the engine registers with its backend.
package socket

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"
)

// Target is one candidate bind address: an address family, a socket type and a
// protocol, like a single entry of getaddrinfo(3).
type Target struct {
	Family   int // syscall.AF_INET or syscall.AF_INET6
	SockType int // syscall.SOCK_STREAM or syscall.SOCK_DGRAM
	Protocol int // syscall.IPPROTO_TCP or syscall.IPPROTO_UDP
	IP       net.IP
	Port     int
	Zone     string
}

// IsStream tells whether t describes a stream (TCP) socket.
func (t Target) IsStream() bool {
	return t.SockType == syscall.SOCK_STREAM
}

// IsDatagram tells whether t describes a datagram (UDP) socket.
func (t Target) IsDatagram() bool {
	return t.SockType == syscall.SOCK_DGRAM
}

// Supported tells whether t is a TCP stream or a UDP datagram target, the only
// kinds a listener can be created for.
func (t Target) Supported() bool {
	return (t.IsStream() && t.Protocol == syscall.IPPROTO_TCP) ||
		(t.IsDatagram() && t.Protocol == syscall.IPPROTO_UDP)
}

// Network returns the Go network name of t, e.g. "tcp4" or "udp6".
func (t Target) Network() string {
	var network string
	switch t.Protocol {
	case syscall.IPPROTO_TCP:
		network = "tcp"
	case syscall.IPPROTO_UDP:
		network = "udp"
	default:
		return "ip:" + strconv.Itoa(t.Protocol)
	}
	if t.Family == syscall.AF_INET6 {
		return network + "6"
	}
	return network + "4"
}

// Host returns the numeric host of t.
func (t Target) Host() string {
	if t.IP == nil {
		return ""
	}
	if t.Zone != "" {
		return t.IP.String() + "%" + t.Zone
	}
	return t.IP.String()
}

// Service returns the numeric port of t.
func (t Target) Service() string {
	return strconv.Itoa(t.Port)
}

// String implements fmt.Stringer.
func (t Target) String() string {
	return t.Network() + "://" + net.JoinHostPort(t.Host(), t.Service())
}

// Resolve expands host and service into bind targets, one stream/TCP and one
// datagram/UDP target per resolved address. An empty host stands for the wildcard
// addresses: 0.0.0.0, plus :: when the host supports IPv6. The service may be a
// port number or a service name, a name known for a single protocol only yields
// targets for that protocol.
func Resolve(ctx context.Context, host, service string) ([]Target, error) {
	var addrs []net.IPAddr
	if host == "" {
		addrs = append(addrs, net.IPAddr{IP: net.IPv4zero})
		if supportsIPv6() {
			addrs = append(addrs, net.IPAddr{IP: net.IPv6unspecified})
		}
	} else {
		var err error
		if addrs, err = net.DefaultResolver.LookupIPAddr(ctx, host); err != nil {
			return nil, fmt.Errorf("resolve host %q: %w", host, err)
		}
	}

	tcpPort, tcpErr := net.DefaultResolver.LookupPort(ctx, "tcp", service)
	udpPort, udpErr := net.DefaultResolver.LookupPort(ctx, "udp", service)
	if tcpErr != nil && udpErr != nil {
		return nil, fmt.Errorf("resolve service %q: %w", service, tcpErr)
	}

	targets := make([]Target, 0, 2*len(addrs))
	for _, addr := range addrs {
		family := syscall.AF_INET6
		ip := addr.IP
		if ip4 := ip.To4(); ip4 != nil {
			family, ip = syscall.AF_INET, ip4
		}
		if tcpErr == nil {
			targets = append(targets, Target{
				Family:   family,
				SockType: syscall.SOCK_STREAM,
				Protocol: syscall.IPPROTO_TCP,
				IP:       ip,
				Port:     tcpPort,
				Zone:     addr.Zone,
			})
		}
		if udpErr == nil {
			targets = append(targets, Target{
				Family:   family,
				SockType: syscall.SOCK_DGRAM,
				Protocol: syscall.IPPROTO_UDP,
				IP:       ip,
				Port:     udpPort,
				Zone:     addr.Zone,
			})
		}
	}
	return targets, nil
}

func supportsIPv6() bool {
	ln, err := net.ListenPacket("udp6", "[::1]:0")
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}
