//go:build darwin

package prober

import "net"

// On macOS unprivileged ICMP is available through a datagram socket, the
// same workaround the teacher's icmp_darwin.go uses.
const (
	network4 = "udp4"
	network6 = "udp6"
)

// wrangleAddr adapts dest for a datagram ICMP socket, which
// golang.org/x/net/icmp expects as a *net.UDPAddr on darwin. Mirrors the
// teacher's icmp_darwin.go wrangleAddr.
func wrangleAddr(addr net.Addr) net.Addr {
	switch addr := addr.(type) {
	case *net.UDPAddr:
		return addr
	case *net.IPAddr:
		return &net.UDPAddr{IP: addr.IP}
	}
	return addr
}
