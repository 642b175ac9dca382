package server

import (
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPs resolves the address limits are keyed on. Forwarding headers
// are only believed when the direct peer is a trusted proxy. A nil
// *ClientIPs trusts no one.
type ClientIPs struct {
	trusted []netip.Prefix
}

// NewClientIPs creates a resolver trusting the given proxy prefixes.
func NewClientIPs(trusted []netip.Prefix) *ClientIPs {
	return &ClientIPs{trusted: trusted}
}

func (c *ClientIPs) isTrusted(ip string) bool {
	if c == nil {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Of returns the client IP for r. Behind trusted proxies it walks
// X-Forwarded-For from the right and stops at the first untrusted hop.
func (c *ClientIPs) Of(r *http.Request) string {
	peer := extractIP(r.RemoteAddr)
	if !c.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !c.isTrusted(hop) || i == 0 {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}
