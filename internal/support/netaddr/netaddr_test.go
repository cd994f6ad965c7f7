package netaddr

import (
	"errors"
	"net/netip"
	"testing"
)

func TestParseAddr(t *testing.T) {
	t.Run("canonicalises ipv6", func(t *testing.T) {
		addr, err := ParseAddr("2001:DB8:0:0::1")
		if err != nil {
			t.Fatalf("ParseAddr returned error: %v", err)
		}
		if got := addr.String(); got != "2001:db8::1" {
			t.Fatalf("ParseAddr returned %s, want 2001:db8::1", got)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, raw := range []string{"", "not.an.ip", "10.0.0.256", "10.0.0.0/24", " 10.0.0.1"} {
			if _, err := ParseAddr(raw); !errors.Is(err, ErrInvalidAddress) {
				t.Fatalf("ParseAddr(%q) error = %v, want ErrInvalidAddress", raw, err)
			}
		}
	})

	t.Run("rejects zones", func(t *testing.T) {
		if _, err := ParseAddr("fe80::1%eth0"); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("ParseAddr error = %v, want ErrInvalidAddress", err)
		}
	})
}

func TestIsGlobal(t *testing.T) {
	cases := map[string]bool{
		"8.8.8.8":              true,
		"1.1.1.1":              true,
		"10.1.2.3":             false,
		"172.16.5.4":           false,
		"192.168.1.1":          false,
		"127.0.0.1":            false,
		"169.254.10.10":        false,
		"100.64.0.1":           false,
		"224.0.0.251":          false,
		"255.255.255.255":      false,
		"192.0.0.9":            true,
		"2606:4700:4700::1111": true,
		"::1":                  false,
		"fe80::1":              false,
		"fd00::1":              false,
		"ff02::1":              false,
		"2001:db8::1":          false,
		"2001:3::1":            true,
		"::ffff:8.8.8.8":       false,
	}

	for raw, want := range cases {
		if got := IsGlobal(netip.MustParseAddr(raw)); got != want {
			t.Errorf("IsGlobal(%s) = %v, want %v", raw, got, want)
		}
	}

	if IsGlobal(netip.Addr{}) {
		t.Fatal("IsGlobal returned true for the zero address")
	}
}

func TestVersion(t *testing.T) {
	if got := Version(netip.MustParseAddr("10.0.0.1")); got != 4 {
		t.Fatalf("Version returned %d, want 4", got)
	}
	if got := Version(netip.MustParseAddr("::ffff:10.0.0.1")); got != 6 {
		t.Fatalf("Version returned %d, want 6", got)
	}
}
