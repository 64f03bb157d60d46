/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package address

import (
	"net"
	"strconv"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"
)

var (
	ErrResolveTCPAddress = errors.New("resolve tcp address")
	ErrUnknownSockaddr   = errors.New("unknown sockaddr")
)

// HostPort fills the gaps of a listen address: an empty host becomes
// 0.0.0.0 and an empty port becomes defaultPort.
func HostPort(address, defaultPort string) string {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		host, port = address, ""
	}
	if len(host) == 0 {
		host = "0.0.0.0"
	}
	if len(port) == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, port)
}

// Sockaddr resolves host:port into a raw socket address and the matching
// address family.
func Sockaddr(address string) (unix.Sockaddr, int, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, 0, errors.Wrap(err, ErrResolveTCPAddress)
	}

	if ip4 := addr.IP.To4(); ip4 != nil || addr.IP == nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return sa, unix.AF_INET, nil
	}

	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if len(addr.Zone) > 0 {
		if iface, e := net.InterfaceByName(addr.Zone); e == nil {
			sa.ZoneId = uint32(iface.Index)
		}
	}
	return sa, unix.AF_INET6, nil
}

// FromSockaddr splits a peer address into ip and port.
func FromSockaddr(sa unix.Sockaddr) (string, uint16, error) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(v.Addr[:]).String(), uint16(v.Port), nil
	case *unix.SockaddrInet6:
		return net.IP(v.Addr[:]).String(), uint16(v.Port), nil
	default:
		return "", 0, ErrUnknownSockaddr
	}
}

func String(sa unix.Sockaddr) string {
	ip, port, err := FromSockaddr(sa)
	if err != nil {
		return ""
	}
	return net.JoinHostPort(ip, strconv.Itoa(int(port)))
}

func IsValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
