// Package settings loads the process-wide configuration from the
// environment. Settings are read once at startup and are immutable
// afterward.
package settings

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/knsd/ping-exporter/internal/protocol"
)

const (
	envPrefix    = "PING_EXPORTER"
	envSeparator = "_"

	// DefaultListen is used when PING_EXPORTER_LISTEN is unset.
	DefaultListen = "[::]:9346"
)

// Settings is the immutable process-wide configuration.
type Settings struct {
	Listen            string
	Protocol          protocol.Protocol
	Count             uint
	MaxCount          uint
	PingTimeout       time.Duration
	MaxPingTimeout    time.Duration
	ResolveTimeout    time.Duration
	MaxResolveTimeout time.Duration
	Resolver          netip.Addr // zero value means "use system resolver config"
	HasResolver       bool
}

// String renders a human-readable summary of the settings, the way the
// original implementation logs its configuration on startup.
func (s Settings) String() string {
	return fmt.Sprintf(
		"listen address: %s, preferred protocol: %s, default number of ICMP packets: %d, "+
			"maximum number of ICMP packets: %d, timeout for each ICMP packet: %s, "+
			"maximum timeout for each ICMP packet: %s, resolve timeout: %s, maximum resolve timeout: %s.",
		s.Listen, s.Protocol, s.Count, s.MaxCount, s.PingTimeout, s.MaxPingTimeout,
		s.ResolveTimeout, s.MaxResolveTimeout,
	)
}

// FromEnv builds Settings from PING_EXPORTER_* environment variables,
// falling back to the defaults below for anything unset.
func FromEnv() (Settings, error) {
	var s Settings
	var err error

	if s.Listen, err = envStringOr("LISTEN", DefaultListen); err != nil {
		return Settings{}, err
	}

	protoStr, err := envStringOr("DEFAULT_PROTOCOL", "v4")
	if err != nil {
		return Settings{}, err
	}
	if s.Protocol, err = protocol.Parse(protoStr); err != nil {
		return Settings{}, fmt.Errorf("%s%sDEFAULT_PROTOCOL: %v", envPrefix, envSeparator, err)
	}

	var count, maxCount, pingTimeout, maxPingTimeout, resolveTimeout, maxResolveTimeout uint64
	if count, err = envUintOr("DEFAULT_COUNT", 5); err != nil {
		return Settings{}, err
	}
	if maxCount, err = envUintOr("MAX_COUNT", 30); err != nil {
		return Settings{}, err
	}
	if pingTimeout, err = envUintOr("DEFAULT_PING_TIMEOUT", 1000); err != nil {
		return Settings{}, err
	}
	if maxPingTimeout, err = envUintOr("MAX_PING_TIMEOUT", 10000); err != nil {
		return Settings{}, err
	}
	if resolveTimeout, err = envUintOr("DEFAULT_RESOLVE_TIMEOUT", 1000); err != nil {
		return Settings{}, err
	}
	if maxResolveTimeout, err = envUintOr("MAX_RESOLVE_TIMEOUT", 10000); err != nil {
		return Settings{}, err
	}

	s.Count = uint(count)
	s.MaxCount = uint(maxCount)
	s.PingTimeout = time.Duration(pingTimeout) * time.Millisecond
	s.MaxPingTimeout = time.Duration(maxPingTimeout) * time.Millisecond
	s.ResolveTimeout = time.Duration(resolveTimeout) * time.Millisecond
	s.MaxResolveTimeout = time.Duration(maxResolveTimeout) * time.Millisecond

	if raw, ok := os.LookupEnv(envName("RESOLVER")); ok {
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid environment variable type: %s", envName("RESOLVER"))
		}
		s.Resolver = addr
		s.HasResolver = true
	}

	return s, nil
}

func envName(suffix string) string {
	return envPrefix + envSeparator + suffix
}

func envStringOr(suffix, def string) (string, error) {
	v, ok := os.LookupEnv(envName(suffix))
	if !ok {
		return def, nil
	}
	return v, nil
}

func envUintOr(suffix string, def uint64) (uint64, error) {
	v, ok := os.LookupEnv(envName(suffix))
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid environment variable type: %s", envName(suffix))
	}
	return n, nil
}
