package httpapi

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/knsd/ping-exporter/internal/protocol"
	"github.com/knsd/ping-exporter/internal/settings"
	"github.com/knsd/ping-exporter/internal/target"
)

// pingRequest is the parsed, not-yet-validated form of a /ping query
// string.
type pingRequest struct {
	rawTarget        string
	target           target.Target
	protocol         protocol.Protocol
	count            uint64
	pingTimeoutMs    uint64
	resolveTimeoutMs uint64
}

// badRequestError carries the exact plain-text reason spec.md requires in
// a 400 response body. Malformed-parameter errors get a "Bad Request: "
// prefix per spec.md §6; bounds-violation errors from validate are one of
// six fixed messages written bare, per spec.md §4.5.
type badRequestError struct {
	reason string
	bare   bool
}

func (e *badRequestError) Error() string {
	if e.bare {
		return e.reason
	}
	return "Bad Request: " + e.reason
}

func badRequest(reason string) error {
	return &badRequestError{reason: reason}
}

func badRequestBare(reason string) error {
	return &badRequestError{reason: reason, bare: true}
}

// parsePingRequest parses query into a pingRequest, applying defaults from
// s for anything absent. It returns a *badRequestError for any malformed
// parameter; it does not apply bounds validation, which validate does
// separately so that rule order (§4.5) is enforced in one place.
func parsePingRequest(query url.Values, s settings.Settings) (pingRequest, error) {
	var req pingRequest

	req.rawTarget = query.Get("target")
	if req.rawTarget == "" {
		return pingRequest{}, badRequest("missing target")
	}
	tgt, err := target.Parse(req.rawTarget)
	if err != nil {
		return pingRequest{}, badRequest(fmt.Sprintf("invalid target: %v", err))
	}
	req.target = tgt

	req.protocol = s.Protocol
	if raw := query.Get("protocol"); raw != "" {
		p, err := protocol.Parse(raw)
		if err != nil {
			return pingRequest{}, badRequest("invalid protocol")
		}
		req.protocol = p
	}
	// A literal IP target silently forces its own address family,
	// overriding whatever protocol was requested (spec.md §8 property 2/3).
	if p, ok := req.target.Protocol(); ok {
		req.protocol = p
	}

	if req.count, err = parseUintParam(query, "count", uint64(s.Count)); err != nil {
		return pingRequest{}, err
	}
	if req.pingTimeoutMs, err = parseUintParam(query, "ping_timeout", uint64(s.PingTimeout.Milliseconds())); err != nil {
		return pingRequest{}, err
	}
	if req.resolveTimeoutMs, err = parseUintParam(query, "resolve_timeout", uint64(s.ResolveTimeout.Milliseconds())); err != nil {
		return pingRequest{}, err
	}

	return req, nil
}

func parseUintParam(query url.Values, name string, def uint64) (uint64, error) {
	raw := query.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("invalid %s", name))
	}
	return v, nil
}

// validate enforces spec.md §4.5's six bounds rules in their exact,
// first-failure-wins order, including the upper-bound-is-the-configured-
// default quirk for resolve_timeout (see DESIGN.md Open Questions).
func validate(req pingRequest, s settings.Settings) error {
	switch {
	case req.count > uint64(s.MaxCount):
		return badRequestBare("Too many pings")
	case req.count < 1:
		return badRequestBare("Too few pings")
	case req.pingTimeoutMs > uint64(s.MaxPingTimeout.Milliseconds()):
		return badRequestBare("Too large ping timeout")
	case req.pingTimeoutMs < 5:
		return badRequestBare("Too small ping timeout")
	case req.resolveTimeoutMs > uint64(s.ResolveTimeout.Milliseconds()):
		return badRequestBare("Too large resolve timeout")
	case req.resolveTimeoutMs < 5:
		return badRequestBare("Too small resolve timeout")
	}
	return nil
}
