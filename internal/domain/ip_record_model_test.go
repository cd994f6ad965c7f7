package domain

import (
	"net/netip"
	"testing"
)

func TestIPRecordAddr(t *testing.T) {
	record := IPRecord{IP: "2001:db8::1"}
	addr, err := record.Addr()
	if err != nil {
		t.Fatalf("Addr returned error: %v", err)
	}
	if addr != netip.MustParseAddr("2001:db8::1") {
		t.Fatalf("Addr returned %s, want 2001:db8::1", addr)
	}

	if _, err := (IPRecord{IP: "not.an.ip"}).Addr(); err == nil {
		t.Fatal("expected error for invalid stored key, got nil")
	}
}

func TestStringValue(t *testing.T) {
	if got := StringValue(nil, "NA"); got != "NA" {
		t.Fatalf("StringValue(nil) returned %s, want NA", got)
	}
	if got := StringValue(StringPtr("AS15169"), "NA"); got != "AS15169" {
		t.Fatalf("StringValue returned %s, want AS15169", got)
	}
}

func TestNetworkSummaryTotal(t *testing.T) {
	summary := NetworkSummary{Counts: [BucketCount]int{1, 0, 2, 3}}
	if got := summary.Total(); got != 6 {
		t.Fatalf("Total returned %d, want 6", got)
	}
}
