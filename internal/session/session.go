// Package session composes a resolver and a prober into one bounded probe
// session and reduces the outcome to a closed Report.
//
// Its control-flow shape - convert durations, run a deadline-bounded
// resolve, then stream probe outcomes into a result - is grounded on the
// teacher's internal/pinger/pinger.go send/receive/timeout loop, adapted
// from "ping forever with callback" to "run one bounded session and
// return a closed Report".
package session

import (
	"context"
	"errors"
	"iter"
	"net/netip"
	"time"

	"github.com/knsd/ping-exporter/internal/prober"
	"github.com/knsd/ping-exporter/internal/protocol"
	"github.com/knsd/ping-exporter/internal/resolver"
	"github.com/knsd/ping-exporter/internal/target"
)

// ReportKind is the tag of the Report sum type.
type ReportKind int

const (
	Success ReportKind = iota
	ResolveTimedOut
	ResolveNotFound
	ResolveOtherError
)

func (k ReportKind) String() string {
	switch k {
	case Success:
		return "success"
	case ResolveTimedOut:
		return "timed out"
	case ResolveNotFound:
		return "not found"
	case ResolveOtherError:
		return "internal error"
	default:
		return "unknown"
	}
}

// Ping is one packet's outcome within a Report. OK is false for a
// per-packet timeout, matching the teacher's pairing of a result type with
// a payload valid only on success.
type Ping struct {
	RTT time.Duration
	OK  bool
}

// Report is the closed outcome of one probe session. Fields other than
// Kind are meaningful only when Kind == Success.
type Report struct {
	Kind        ReportKind
	ResolveTime time.Duration
	Addr        netip.Addr
	Pings       []Ping
}

// resolverFunc and proberFunc are the narrow seams Coordinator depends on,
// the same style as the resolver package's own exchanger interface: a
// *resolver.Resolver and *prober.Prober satisfy these structurally, while
// tests can substitute fakes without touching a real socket or the network.
type resolverFunc interface {
	Resolve(ctx context.Context, tgt target.Target, proto protocol.Protocol) (time.Duration, netip.Addr, error)
}

type proberFunc interface {
	Probe(ctx context.Context, addr netip.Addr, timeout time.Duration, count uint) iter.Seq[prober.Outcome]
}

// Coordinator runs probe sessions against a shared resolver and prober.
type Coordinator struct {
	resolver resolverFunc
	prober   proberFunc
}

func New(r resolverFunc, p proberFunc) *Coordinator {
	return &Coordinator{resolver: r, prober: p}
}

// Run resolves tgt under a resolveTimeout deadline, then - on success -
// sends count ICMP echoes at pingTimeout each and collects their outcomes
// in order. ctx bounds the whole call; if it is cancelled partway through
// probing, Probe stops yielding and Run returns with whatever pings were
// collected so far rather than blocking for the rest of count. Callers
// that must not emit a response to a cancelled client should check
// ctx.Err() before using the result, since the coordinator itself does not
// suppress a partial Report.
func (c *Coordinator) Run(
	ctx context.Context,
	tgt target.Target,
	proto protocol.Protocol,
	resolveTimeout, pingTimeout time.Duration,
	count uint,
) Report {
	rctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	elapsed, addr, err := c.resolver.Resolve(rctx, tgt, proto)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return Report{Kind: ResolveTimedOut}
		case errors.Is(err, resolver.ErrNotFound):
			return Report{Kind: ResolveNotFound}
		default:
			return Report{Kind: ResolveOtherError}
		}
	}

	var pings []Ping
	for outcome := range c.prober.Probe(ctx, addr, pingTimeout, count) {
		pings = append(pings, Ping{RTT: outcome.RTT, OK: outcome.OK})
	}

	return Report{
		Kind:        Success,
		ResolveTime: elapsed,
		Addr:        addr,
		Pings:       pings,
	}
}
