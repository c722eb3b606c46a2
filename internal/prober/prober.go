// Package prober sends bounded ICMP echo probes and reports per-packet
// round-trip outcomes.
//
// It is grounded on the teacher's internal/backend/icmp package for packet
// construction (golang.org/x/net/icmp's icmp.Message/icmp.Echo) and on
// internal/backend/icmpbase's shared-socket demultiplexing model, adapted
// from a callback-based service to a single iter.Seq-producing Probe call.
package prober

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net"
	"net/netip"
	"time"

	"golang.org/x/net/icmp"
)

// Outcome is the result of a single ICMP echo packet. OK is false when the
// packet timed out; RTT is meaningful only when OK is true. A packet that
// could not be sent produces no Outcome at all (see Probe).
type Outcome struct {
	RTT time.Duration
	OK  bool
}

// Prober owns one shared ICMP socket per IP family. A Prober is safe for
// concurrent use by many sessions; create one per process.
type Prober struct {
	v4 *conn
	v6 *conn
}

// New opens the IPv4 and IPv6 ICMP sockets. Both must succeed; on Linux and
// most Unix targets this requires elevated privileges for raw ICMP (or, on
// macOS, none at all since it uses an unprivileged datagram socket).
func New() (*Prober, error) {
	v4, err := newConn(network4, icmpV4ProtoNum, echoTypeV4, echoReplyTypeV4)
	if err != nil {
		return nil, fmt.Errorf("prober: ipv4: %w", err)
	}
	v6, err := newConn(network6, icmpV6ProtoNum, echoTypeV6, echoReplyTypeV6)
	if err != nil {
		v4.Close()
		return nil, fmt.Errorf("prober: ipv6: %w", err)
	}
	return &Prober{v4: v4, v6: v6}, nil
}

// Close releases both sockets.
func (p *Prober) Close() error {
	err4 := p.v4.Close()
	err6 := p.v6.Close()
	return errors.Join(err4, err6)
}

// Probe sends count ICMP echo requests to addr, one at a time, and returns a
// lazy sequence of their outcomes. Each packet is given its own timeout
// window; there is no overall deadline beyond whatever the caller's ctx
// imposes. The identifier used for the whole session is drawn from a
// process-wide allocator and released when the returned sequence stops
// being iterated, whether that's because it ran to completion or because
// the caller broke out early.
func (p *Prober) Probe(ctx context.Context, addr netip.Addr, timeout time.Duration, count uint) iter.Seq[Outcome] {
	c := p.v4
	if addr.Is6() && !addr.Is4In6() {
		c = p.v6
	}
	id := c.ids.alloc()
	dest := &net.IPAddr{IP: net.IP(addr.AsSlice())}
	payload := []byte("ping-exporter")

	return func(yield func(Outcome) bool) {
		ch := c.register(id)
		defer c.unregister(id)

		for seq := 0; seq < int(count); seq++ {
			if ctx.Err() != nil {
				return
			}

			sent := time.Now()
			if err := c.writeEcho(id, seq, dest, payload); err != nil {
				// A transport-level write failure ends the session early
				// rather than padding the remaining packets as timeouts;
				// the caller sees a shorter-than-count pings slice.
				return
			}

			outcome := waitReply(ctx, ch, seq, sent, timeout)
			if !yield(outcome) {
				return
			}
		}
	}
}

// waitReply blocks until a reply matching seq arrives, the per-packet
// deadline passes, or ctx is done. Replies for earlier, already-timed-out
// packets on the same session arrive late on occasion; they are discarded
// here rather than misattributed to the current packet.
func waitReply(ctx context.Context, ch <-chan *icmp.Echo, seq int, sent time.Time, timeout time.Duration) Outcome {
	deadline := sent.Add(timeout)
	dctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for {
		select {
		case <-dctx.Done():
			return Outcome{OK: false}
		case echo := <-ch:
			if echo.Seq != seq {
				continue
			}
			return Outcome{RTT: time.Since(sent), OK: true}
		}
	}
}
