// Package target holds the ping destination: either a literal IP address or
// a DNS name to be resolved.
package target

import (
	"net/netip"

	"github.com/knsd/ping-exporter/internal/protocol"
)

// Target is either a literal IP address or a DNS name.
type Target struct {
	addr netip.Addr
	name string
	isIP bool
}

// FromIP wraps a literal address.
func FromIP(addr netip.Addr) Target {
	return Target{addr: addr, isIP: true}
}

// FromName wraps a DNS name.
func FromName(name string) Target {
	return Target{name: name}
}

// Parse attempts a literal IP parse first, then falls back to treating s as
// a DNS name. This mirrors the teacher's NameOrIpAddr parsing rule and the
// original Rust source's NameOrIpAddr::from_str: IP literal first, name on
// failure.
func Parse(s string) (Target, error) {
	if addr, err := netip.ParseAddr(s); err == nil {
		return FromIP(addr), nil
	}
	return FromName(s), nil
}

// IsIP reports whether this target is a literal IP address.
func (t Target) IsIP() bool {
	return t.isIP
}

// IP returns the literal address. Only valid when IsIP() is true.
func (t Target) IP() netip.Addr {
	return t.addr
}

// Name returns the DNS name. Only valid when IsIP() is false.
func (t Target) Name() string {
	return t.name
}

// Protocol returns the address family forced by a literal IP target, and
// false for a DNS name (where the caller's requested protocol applies
// unmodified).
func (t Target) Protocol() (protocol.Protocol, bool) {
	if !t.isIP {
		return 0, false
	}
	if t.addr.Is4() || t.addr.Is4In6() {
		return protocol.V4, true
	}
	return protocol.V6, true
}

// String returns the underlying value: the dotted/colon address, or the
// name, unchanged.
func (t Target) String() string {
	if t.isIP {
		return t.addr.String()
	}
	return t.name
}
