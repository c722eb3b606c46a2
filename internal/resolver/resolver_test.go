package resolver

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/knsd/ping-exporter/internal/protocol"
	"github.com/knsd/ping-exporter/internal/target"
)

type fakeExchanger struct {
	reply *dns.Msg
	err   error
}

func (f *fakeExchanger) ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.reply, time.Millisecond, nil
}

func TestResolveLiteralIP(t *testing.T) {
	r := newWithExchanger(&fakeExchanger{err: errors.New("must not be called")}, "8.8.8.8:53")
	addr := netip.MustParseAddr("127.0.0.1")
	tgt := target.FromIP(addr)

	elapsed, got, err := r.Resolve(context.Background(), tgt, protocol.V4)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if elapsed != 0 {
		t.Errorf("elapsed = %v; want 0", elapsed)
	}
	if got != addr {
		t.Errorf("addr = %v; want %v", got, addr)
	}
}

func TestResolveName(t *testing.T) {
	reply := new(dns.Msg)
	rr, err := dns.NewRR("example.invalid. 300 IN A 93.184.216.34")
	if err != nil {
		t.Fatalf("NewRR: %v", err)
	}
	reply.Answer = []dns.RR{rr}
	reply.Rcode = dns.RcodeSuccess

	r := newWithExchanger(&fakeExchanger{reply: reply}, "8.8.8.8:53")
	tgt, err := target.Parse("example.invalid")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	elapsed, addr, err := r.Resolve(context.Background(), tgt, protocol.V4)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if elapsed <= 0 {
		t.Errorf("elapsed = %v; want > 0", elapsed)
	}
	if addr.String() != "93.184.216.34" {
		t.Errorf("addr = %v; want 93.184.216.34", addr)
	}
}

func TestResolveNotFound(t *testing.T) {
	reply := new(dns.Msg)
	reply.Rcode = dns.RcodeSuccess

	r := newWithExchanger(&fakeExchanger{reply: reply}, "8.8.8.8:53")
	tgt, _ := target.Parse("nonexistent.invalid")

	_, _, err := r.Resolve(context.Background(), tgt, protocol.V4)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func TestResolveNXDOMAIN(t *testing.T) {
	reply := new(dns.Msg)
	reply.Rcode = dns.RcodeNameError

	r := newWithExchanger(&fakeExchanger{reply: reply}, "8.8.8.8:53")
	tgt, _ := target.Parse("nonexistent.invalid")

	_, _, err := r.Resolve(context.Background(), tgt, protocol.V4)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}

func TestResolveOtherError(t *testing.T) {
	reply := new(dns.Msg)
	reply.Rcode = dns.RcodeServerFailure

	r := newWithExchanger(&fakeExchanger{reply: reply}, "8.8.8.8:53")
	tgt, _ := target.Parse("example.invalid")

	_, _, err := r.Resolve(context.Background(), tgt, protocol.V4)
	if !errors.Is(err, ErrOther) {
		t.Errorf("err = %v; want ErrOther", err)
	}
}

func TestResolveDeadlineExceeded(t *testing.T) {
	r := newWithExchanger(&fakeExchanger{err: context.DeadlineExceeded}, "8.8.8.8:53")
	tgt, _ := target.Parse("example.invalid")

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, _, err := r.Resolve(ctx, tgt, protocol.V4)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v; want context.DeadlineExceeded", err)
	}
}
