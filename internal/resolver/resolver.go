// Package resolver performs asynchronous DNS resolution of ping targets.
//
// It is grounded on the DNS client usage in
// other_examples/8ed1b085_markdingo-trustydns__internal-resolver-local-resolver.go.go
// (github.com/miekg/dns's dns.Client/dns.ClientConfigFromFile), the
// ecosystem analogue of the original Rust implementation's
// trust_dns_resolver::ResolverFuture.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"

	"github.com/knsd/ping-exporter/internal/protocol"
	"github.com/knsd/ping-exporter/internal/target"
)

// Sentinel errors. NotFound means the server reported NXDOMAIN or returned
// an answer with no records of the requested family; Other covers every
// other DNS failure.
var (
	ErrNotFound = errors.New("not found")
	ErrOther    = errors.New("resolve error")
)

const resolvConfPath = "/etc/resolv.conf"

// exchanger is the subset of *dns.Client used by Resolver. It exists so
// tests can supply a fake exchanger instead of a real *dns.Client, the same
// seam the DNSClientExchanger interface provides in markdingo/trustydns's
// local resolver.
type exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error)
}

// Resolver resolves Targets to IP addresses. It is safe for concurrent use
// by many sessions at once.
type Resolver struct {
	client exchanger
	server string
}

// New builds a Resolver. If resolverIP is set, all lookups are sent to
// (resolverIP, 53)/udp; otherwise the resolver reads the system's
// /etc/resolv.conf and uses its first configured nameserver.
func New(resolverIP netip.Addr, hasResolverIP bool) (*Resolver, error) {
	server := ""
	if hasResolverIP {
		server = net.JoinHostPort(resolverIP.String(), "53")
	} else {
		cfg, err := dns.ClientConfigFromFile(resolvConfPath)
		if err != nil {
			return nil, fmt.Errorf("resolver init: %v", err)
		}
		if len(cfg.Servers) == 0 {
			return nil, errors.New("resolver init: no nameservers configured")
		}
		server = net.JoinHostPort(cfg.Servers[0], cfg.Port)
	}

	return &Resolver{
		client: &dns.Client{Net: "udp"},
		server: server,
	}, nil
}

// newWithExchanger builds a Resolver around an arbitrary exchanger, for
// testing.
func newWithExchanger(c exchanger, server string) *Resolver {
	return &Resolver{client: c, server: server}
}

// Resolve resolves tgt to a single address. For a literal IP target this is
// a no-op returning an elapsed time of zero. For a DNS name it issues a
// single A or AAAA query (per proto) and picks one answer uniformly at
// random. ctx bounds the whole call; a context deadline surfaces as
// context.DeadlineExceeded so the caller can distinguish it from ErrNotFound
// / ErrOther.
func (r *Resolver) Resolve(ctx context.Context, tgt target.Target, proto protocol.Protocol) (time.Duration, netip.Addr, error) {
	if tgt.IsIP() {
		return 0, tgt.IP(), nil
	}

	start := time.Now()

	qtype := dns.TypeA
	if proto == protocol.V6 {
		qtype = dns.TypeAAAA
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(tgt.Name()), qtype)
	msg.RecursionDesired = true

	reply, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		if ctx.Err() != nil {
			return 0, netip.Addr{}, ctx.Err()
		}
		return 0, netip.Addr{}, fmt.Errorf("%w: %v", ErrOther, err)
	}
	if reply.Rcode == dns.RcodeNameError {
		return 0, netip.Addr{}, ErrNotFound
	}
	if reply.Rcode != dns.RcodeSuccess {
		return 0, netip.Addr{}, fmt.Errorf("%w: rcode %s", ErrOther, dns.RcodeToString[reply.Rcode])
	}

	var candidates []netip.Addr
	for _, rr := range reply.Answer {
		switch rr := rr.(type) {
		case *dns.A:
			if proto == protocol.V4 {
				if addr, ok := netip.AddrFromSlice(rr.A.To4()); ok {
					candidates = append(candidates, addr)
				}
			}
		case *dns.AAAA:
			if proto == protocol.V6 {
				if addr, ok := netip.AddrFromSlice(rr.AAAA.To16()); ok {
					candidates = append(candidates, addr)
				}
			}
		}
	}

	if len(candidates) == 0 {
		return 0, netip.Addr{}, ErrNotFound
	}

	chosen := candidates[rand.Intn(len(candidates))]
	return time.Since(start), chosen, nil
}
