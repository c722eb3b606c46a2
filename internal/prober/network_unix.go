//go:build !darwin

package prober

import "net"

// Network names for raw ICMP sockets. Adapted from the teacher's
// icmp_raw.go; on Linux and other Unix targets this requires either root
// or CAP_NET_RAW.
const (
	network4 = "ip4:icmp"
	network6 = "ip6:ipv6-icmp"
)

// wrangleAddr adapts dest for a raw IP socket, which golang.org/x/net/icmp
// expects as a *net.IPAddr. Mirrors the teacher's icmp_raw.go wrangleAddr.
func wrangleAddr(addr net.Addr) net.Addr {
	switch addr := addr.(type) {
	case *net.IPAddr:
		return addr
	case *net.UDPAddr:
		return &net.IPAddr{IP: addr.IP}
	}
	return addr
}
