// Package protocol holds the IPv4/IPv6 selection used throughout a probe
// session.
package protocol

import "fmt"

// Protocol selects which IP family a probe session resolves and pings over.
type Protocol byte

// Values for Protocol.
const (
	V4 Protocol = iota
	V6
)

// String returns "v4" or "v6".
func (p Protocol) String() string {
	switch p {
	case V4:
		return "v4"
	case V6:
		return "v6"
	default:
		return fmt.Sprintf("(unknown protocol:%d)", byte(p))
	}
}

// Parse parses "v4" or "v6". Any other value is an error.
func Parse(s string) (Protocol, error) {
	switch s {
	case "v4":
		return V4, nil
	case "v6":
		return V6, nil
	default:
		return 0, fmt.Errorf("%q is not a valid protocol, use v4 or v6", s)
	}
}
