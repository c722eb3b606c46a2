package prober

import (
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	icmpV4ProtoNum = 1
	icmpV6ProtoNum = 58
	maxMTU         = 1500
)

// conn is a shared ICMP socket for one IP family. Every session probing that
// family writes and reads through the same conn; replies are demultiplexed
// to the waiting session by echo identifier. This mirrors the single shared
// socket the teacher's internal/backend/icmpbase package reads in its own
// readLoop and fans out via sendToReceiver, generalized here to
// golang.org/x/net/icmp's message types instead of raw syscalls.
type conn struct {
	protoNum  int
	sendType  icmp.Type
	replyType icmp.Type
	pc        *icmp.PacketConn
	ids       *idGen

	sessions sync.Map // int(id) -> chan *icmp.Echo
}

func newConn(network string, protoNum int, sendType, replyType icmp.Type) (*conn, error) {
	pc, err := icmp.ListenPacket(network, "")
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", network, err)
	}
	c := &conn{
		protoNum:  protoNum,
		sendType:  sendType,
		replyType: replyType,
		pc:        pc,
		ids:       newIDGen(),
	}
	go c.readLoop()
	return c, nil
}

func (c *conn) Close() error {
	return c.pc.Close()
}

// register opens a reply channel for id. The caller must call unregister
// when done, typically via defer, so the demuxer stops routing replies to a
// session that no longer cares about them.
func (c *conn) register(id int) chan *icmp.Echo {
	ch := make(chan *icmp.Echo, 1)
	c.sessions.Store(id, ch)
	return ch
}

func (c *conn) unregister(id int) {
	c.sessions.Delete(id)
}

func (c *conn) writeEcho(id, seq int, dest net.Addr, payload []byte) error {
	wm := icmp.Message{
		Type: c.sendType,
		Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: payload},
	}
	wb, err := wm.Marshal(nil)
	if err != nil {
		return fmt.Errorf("marshal echo request: %w", err)
	}
	_, err = c.pc.WriteTo(wb, wrangleAddr(dest))
	return err
}

// readLoop continuously drains the socket and routes echo replies to
// whichever session registered their identifier. Anything else -
// unregistered identifiers, malformed packets, unrelated ICMP types, and
// (per the teacher's MacOS note) the occasional looped-back echo request -
// is silently discarded.
func (c *conn) readLoop() {
	buf := make([]byte, maxMTU)
	for {
		n, _, err := c.pc.ReadFrom(buf)
		if err != nil {
			return
		}
		rm, err := icmp.ParseMessage(c.protoNum, buf[:n])
		if err != nil {
			continue
		}
		if rm.Type != c.replyType {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok {
			continue
		}
		v, ok := c.sessions.Load(echo.ID)
		if !ok {
			continue
		}
		ch := v.(chan *icmp.Echo)
		select {
		case ch <- echo:
		default:
		}
	}
}

var (
	echoTypeV4      = ipv4.ICMPTypeEcho
	echoReplyTypeV4 = ipv4.ICMPTypeEchoReply
	echoTypeV6      = ipv6.ICMPTypeEchoRequest
	echoReplyTypeV6 = ipv6.ICMPTypeEchoReply
)
