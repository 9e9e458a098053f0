// Package ipaddr wraps IP parsing and CIDR containment checks for the
// IpAddress/NotIpAddress condition operators and client-IP handling.
package ipaddr

import (
	"github.com/bluele/gcache"
	sockaddr "github.com/hashicorp/go-sockaddr"
)

// Parsing is pure, so results can be memoized. The cache is bounded to keep
// adversarial input diversity from growing memory without limit.
const parseCacheSize = 4096

var parseCache = gcache.New(parseCacheSize).LRU().Build()

// Parse returns the parsed form of ip, or nil when ip is not a valid IPv4 or
// IPv6 address.
func Parse(ip string) sockaddr.IPAddr {
	if entry, err := parseCache.Get(ip); err == nil {
		addr, _ := entry.(sockaddr.IPAddr)
		return addr
	}

	addr, err := sockaddr.NewIPAddr(ip)
	if err != nil {
		_ = parseCache.Set(ip, nil)
		return nil
	}
	_ = parseCache.Set(ip, addr)
	return addr
}

// MatchCIDR reports whether addr equals or falls within the given CIDR (or
// plain address). An unparsable CIDR never matches.
func MatchCIDR(cidr string, addr sockaddr.IPAddr) bool {
	if addr == nil {
		return false
	}
	ipRange, err := sockaddr.NewIPAddr(cidr)
	if err != nil {
		return false
	}
	return ipRange.Contains(addr) || ipRange.Equal(addr)
}

// MatchesAny reports whether ip equals or falls within any of the given
// CIDRs. An unparsable ip never matches.
func MatchesAny(cidrs []string, ip string) bool {
	addr := Parse(ip)
	if addr == nil {
		return false
	}
	for _, cidr := range cidrs {
		if MatchCIDR(cidr, addr) {
			return true
		}
	}
	return false
}
