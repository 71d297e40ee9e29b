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

package socket

import (
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

func ipToSockaddrInet4(ip net.IP, port int) (*unix.SockaddrInet4, error) {
	if len(ip) == 0 {
		ip = net.IPv4zero
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, &net.AddrError{Err: "non-IPv4 address", Addr: ip.String()}
	}
	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip4)
	return sa, nil
}

func ipToSockaddrInet6(ip net.IP, port int, zone string) (*unix.SockaddrInet6, error) {
	if len(ip) == 0 || ip.Equal(net.IPv4zero) {
		ip = net.IPv6zero
	}
	ip6 := ip.To16()
	if ip6 == nil {
		return nil, &net.AddrError{Err: "non-IPv6 address", Addr: ip.String()}
	}
	sa := &unix.SockaddrInet6{Port: port}
	copy(sa.Addr[:], ip6)
	if zone != "" {
		if iface, err := net.InterfaceByName(zone); err == nil {
			sa.ZoneId = uint32(iface.Index)
		} else if idx, err := strconv.Atoi(zone); err == nil {
			sa.ZoneId = uint32(idx)
		}
	}
	return sa, nil
}

func ipToSockaddr(family int, ip net.IP, port int, zone string) (unix.Sockaddr, error) {
	switch family {
	case unix.AF_INET:
		return ipToSockaddrInet4(ip, port)
	case unix.AF_INET6:
		return ipToSockaddrInet6(ip, port, zone)
	}
	return nil, &net.AddrError{Err: "invalid address family", Addr: ip.String()}
}

// SockaddrToHostService converts sa into a numeric host and port,
// the equivalent of getnameinfo(3) with NI_NUMERICHOST|NI_NUMERICSERV.
// Unknown address types yield empty strings.
func SockaddrToHostService(sa unix.Sockaddr) (host, service string) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(sa.Addr[:]).String(), strconv.Itoa(sa.Port)
	case *unix.SockaddrInet6:
		host = net.IP(sa.Addr[:]).String()
		if zone := ip6ZoneToString(int(sa.ZoneId)); zone != "" {
			host += "%" + zone
		}
		return host, strconv.Itoa(sa.Port)
	}
	return "", ""
}

// ip6ZoneToString converts an IP6 Zone unix int to a net string,
// returns "" if zone is 0.
func ip6ZoneToString(zone int) string {
	if zone == 0 {
		return ""
	}
	if ifi, err := net.InterfaceByIndex(zone); err == nil {
		return ifi.Name
	}
	return strconv.Itoa(zone)
}
