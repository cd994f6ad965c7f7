// Package netaddr parses catalog addresses and classifies them as globally
// routable or not.
package netaddr

import (
	"errors"
	"fmt"
	"net/netip"

	"go4.org/netipx"
)

var ErrInvalidAddress = errors.New("invalid IP address")

// Ranges that are not reachable on the public internet. Multicast and the
// deprecated site-local block are listed as well.
var nonGlobalPrefixes = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"255.255.255.255/32",

	"::/128",
	"::1/128",
	"::ffff:0:0/96",
	"64:ff9b:1::/48",
	"100::/64",
	"2001::/23",
	"2001:db8::/32",
	"2002::/16",
	"3fff::/20",
	"fc00::/7",
	"fe80::/10",
	"fec0::/10",
	"ff00::/8",
}

// Globally reachable holes inside the blocks above.
var globalExceptions = []string{
	"192.0.0.9/32",
	"192.0.0.10/32",
	"2001:1::1/128",
	"2001:1::2/128",
	"2001:3::/32",
	"2001:4:112::/48",
	"2001:20::/28",
	"2001:30::/28",
}

var nonGlobal = mustBuildSet(nonGlobalPrefixes, globalExceptions)

func mustBuildSet(include, exclude []string) *netipx.IPSet {
	var builder netipx.IPSetBuilder
	for _, raw := range include {
		builder.AddPrefix(netip.MustParsePrefix(raw))
	}
	for _, raw := range exclude {
		builder.RemovePrefix(netip.MustParsePrefix(raw))
	}
	set, err := builder.IPSet()
	if err != nil {
		panic(fmt.Sprintf("netaddr: build non-global set: %v", err))
	}
	return set
}

// ParseAddr parses an IPv4 or IPv6 address. Scoped (zoned) addresses are
// rejected because the scope has no meaning outside the local host.
func ParseAddr(raw string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w %q", ErrInvalidAddress, raw)
	}
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("%w %q: scoped addresses are not supported", ErrInvalidAddress, raw)
	}
	return addr, nil
}

// IsGlobal reports whether addr is routable on the public internet.
func IsGlobal(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	return !nonGlobal.Contains(addr.WithZone(""))
}

// Version returns 4 or 6. IPv4-mapped IPv6 addresses are version 6.
func Version(addr netip.Addr) int {
	if addr.Is4() {
		return 4
	}
	return 6
}
