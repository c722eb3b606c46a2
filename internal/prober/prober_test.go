package prober

import (
	"context"
	"net/netip"
	"runtime"
	"syscall"
	"testing"
	"time"
)

func skipUnlessPrivileged(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "darwin" {
		return
	}
	if syscall.Getuid() != 0 {
		t.Skip("raw ICMP sockets require root on this platform")
	}
}

func TestProbeLoopback(t *testing.T) {
	skipUnlessPrivileged(t)

	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var outcomes []Outcome
	for o := range p.Probe(ctx, netip.MustParseAddr("127.0.0.1"), time.Second, 4) {
		outcomes = append(outcomes, o)
	}

	if len(outcomes) != 4 {
		t.Fatalf("got %d outcomes; want 4", len(outcomes))
	}
	for i, o := range outcomes {
		if !o.OK {
			t.Errorf("outcome %d: OK = false; want true", i)
		}
		if o.RTT <= 0 {
			t.Errorf("outcome %d: RTT = %v; want > 0", i, o.RTT)
		}
	}
}

func TestProbeLoopbackV6(t *testing.T) {
	skipUnlessPrivileged(t)

	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count := 0
	for o := range p.Probe(ctx, netip.MustParseAddr("::1"), time.Second, 3) {
		count++
		if !o.OK {
			t.Errorf("outcome %d: OK = false; want true", count)
		}
	}
	if count != 3 {
		t.Fatalf("got %d outcomes; want 3", count)
	}
}

func TestProbeEarlyBreakReleasesIdentifier(t *testing.T) {
	skipUnlessPrivileged(t)

	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for range p.Probe(ctx, netip.MustParseAddr("127.0.0.1"), time.Second, 10) {
		break
	}

	remaining := 0
	p.v4.sessions.Range(func(_, _ any) bool {
		remaining++
		return true
	})
	if remaining != 0 {
		t.Errorf("session map holds %d entries after the iterator stopped early; want 0", remaining)
	}
}

func TestProbeTimeout(t *testing.T) {
	skipUnlessPrivileged(t)

	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	// TEST-NET-1 (RFC 5737): reserved for documentation, reliably unreachable
	// and non-routed, so every packet times out rather than getting a reply.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for o := range p.Probe(ctx, netip.MustParseAddr("192.0.2.1"), 200*time.Millisecond, 1) {
		if o.OK {
			t.Error("OK = true for an unreachable test-net address; want false")
		}
	}
}
