package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// HostOnly strips an optional port from "host:port", "[v6]:port" or "host".
func HostOnly(s string) string {
	s = strings.TrimSpace(s)
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
}

// FirstHop returns the left-most entry of a comma separated proxy header
// (X-Forwarded-For, X-Forwarded-Host, X-Forwarded-Proto).
func FirstHop(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// proxyHeaders are consulted in order when the proxy is trusted.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ClientIP resolves the caller address. Proxy headers are only read when
// trustProxy is set, and only values that parse as an IP are accepted.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, h := range proxyHeaders {
			if addr, ok := parseAddr(FirstHop(r.Header.Get(h))); ok {
				return addr.String()
			}
		}
	}
	if addr, ok := parseAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return HostOnly(r.RemoteAddr)
}

func parseAddr(s string) (netip.Addr, bool) {
	if s == "" {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(HostOnly(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// AddrSet matches client addresses against single IPs and CIDR prefixes.
type AddrSet struct {
	prefixes []netip.Prefix
}

// NewAddrSet parses entries such as "10.0.0.0/8" or "::1". Unparseable
// entries are returned so the caller can report them.
func NewAddrSet(list []string) (*AddrSet, []string) {
	s := &AddrSet{}
	var invalid []string
	for _, raw := range list {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if p, err := netip.ParsePrefix(v); err == nil {
			s.prefixes = append(s.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(v); err == nil {
			a = a.Unmap()
			s.prefixes = append(s.prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		invalid = append(invalid, v)
	}
	return s, invalid
}

func (s *AddrSet) Empty() bool { return len(s.prefixes) == 0 }

// Contains reports whether ip falls in any entry. Non-IP input never matches.
func (s *AddrSet) Contains(ip string) bool {
	addr, ok := parseAddr(ip)
	if !ok {
		return false
	}
	for _, p := range s.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
