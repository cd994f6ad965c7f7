package reputation

import (
	"errors"
	"net/netip"
	"testing"

	"ipcatalog/internal/domain"
)

func records(pairs ...any) []domain.IPRecord {
	out := make([]domain.IPRecord, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.IPRecord{IP: pairs[i].(string), Score: pairs[i+1].(int)})
	}
	return out
}

func TestAggregateGroupsBySupernet(t *testing.T) {
	input := records(
		"10.0.0.1", 3,
		"10.0.0.2", -3,
		"10.0.0.5", 1,
	)

	got, err := Aggregate(input, 24, 4)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Aggregate returned %d networks, want 1", len(got))
	}

	summary := got[0]
	if summary.Network != netip.MustParsePrefix("10.0.0.0/24") {
		t.Fatalf("network = %s, want 10.0.0.0/24", summary.Network)
	}
	if summary.Score != 1 {
		t.Fatalf("score = %d, want 1", summary.Score)
	}
	if want := [domain.BucketCount]int{1, 0, 1, 1}; summary.Counts != want {
		t.Fatalf("counts = %v, want %v", summary.Counts, want)
	}
}

func TestAggregateOrdersByScoreDescending(t *testing.T) {
	input := records(
		"10.0.0.1", 3,
		"10.0.0.2", -3,
		"10.0.0.5", 1,
		"10.0.1.1", 3,
		"10.0.1.2", 1,
		"10.0.2.1", -1,
		"10.0.3.1", -3,
		"10.0.3.2", -3,
	)

	got, err := Aggregate(input, 24, 4)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	wantOrder := []string{"10.0.1.0/24", "10.0.0.0/24", "10.0.2.0/24", "10.0.3.0/24"}
	wantScores := []int{4, 1, -1, -6}
	if len(got) != len(wantOrder) {
		t.Fatalf("Aggregate returned %d networks, want %d", len(got), len(wantOrder))
	}
	for i := range got {
		if got[i].Network.String() != wantOrder[i] || got[i].Score != wantScores[i] {
			t.Fatalf("position %d = %s (%d), want %s (%d)", i, got[i].Network, got[i].Score, wantOrder[i], wantScores[i])
		}
	}
}

func TestAggregateFiltersByVersion(t *testing.T) {
	input := records(
		"10.0.0.1", 3,
		"2001:db8::1", 3,
		"2001:db8::2", -1,
		"::ffff:10.0.0.9", 1,
	)

	report, err := AggregateReport(input, 16, 4)
	if err != nil {
		t.Fatalf("AggregateReport returned error: %v", err)
	}
	if len(report.Networks) != 1 || report.Networks[0].Network.String() != "10.0.0.0/16" {
		t.Fatalf("v4 networks = %v, want only 10.0.0.0/16", report.Networks)
	}
	if report.Skipped != 3 {
		t.Fatalf("Skipped = %d, want 3", report.Skipped)
	}

	v6, err := Aggregate(input, 32, 6)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	for _, summary := range v6 {
		if summary.Network.Addr().Is4() {
			t.Fatalf("IPv4 network %s leaked into IPv6 aggregation", summary.Network)
		}
	}
	if len(v6) != 2 {
		t.Fatalf("v6 networks = %v, want 2", v6)
	}
	if v6[0].Network.String() != "2001:db8::/32" || v6[0].Score != 2 {
		t.Fatalf("first v6 network = %s (%d), want 2001:db8::/32 (2)", v6[0].Network, v6[0].Score)
	}
}

func TestAggregatePrefixBounds(t *testing.T) {
	input := records("10.0.0.1", 3, "2001:db8::1", -3)

	all, err := Aggregate(input, 0, 4)
	if err != nil {
		t.Fatalf("Aggregate(0) returned error: %v", err)
	}
	if len(all) != 1 || all[0].Network.String() != "0.0.0.0/0" {
		t.Fatalf("Aggregate(0) = %v, want 0.0.0.0/0", all)
	}

	hosts, err := Aggregate(input, 128, 6)
	if err != nil {
		t.Fatalf("Aggregate(128) returned error: %v", err)
	}
	if len(hosts) != 1 || hosts[0].Network.String() != "2001:db8::1/128" {
		t.Fatalf("Aggregate(128) = %v, want 2001:db8::1/128", hosts)
	}

	invalid := []struct{ version, length int }{
		{4, -1}, {4, 33}, {6, -1}, {6, 129}, {5, 8},
	}
	for _, tc := range invalid {
		_, err := Aggregate(input, tc.length, tc.version)
		if !errors.Is(err, ErrInvalidPrefixLength) {
			t.Fatalf("Aggregate(%d, v%d) error = %v, want ErrInvalidPrefixLength", tc.length, tc.version, err)
		}
	}
}

func TestAggregateCountsUnparseableKeys(t *testing.T) {
	report, err := AggregateReport(records("garbage", 3, "10.0.0.1", 1), 8, 4)
	if err != nil {
		t.Fatalf("AggregateReport returned error: %v", err)
	}
	if report.Unparseable != 1 {
		t.Fatalf("Unparseable = %d, want 1", report.Unparseable)
	}
	if len(report.Networks) != 1 || report.Networks[0].Score != 1 {
		t.Fatalf("Networks = %v, want one network scored 1", report.Networks)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got, err := Aggregate(nil, 24, 4)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Aggregate returned %v, want no networks", got)
	}
}
