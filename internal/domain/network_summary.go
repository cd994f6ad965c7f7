package domain

import "net/netip"

// Bucket indexes into NetworkSummary.Counts.
const (
	BucketBenign = iota
	BucketProbablyBenign
	BucketSuspicious
	BucketMalicious
	BucketCount
)

// NetworkSummary rolls the records of one supernet up into a signed score
// and one member count per classification.
type NetworkSummary struct {
	Network netip.Prefix
	Score   int
	Counts  [BucketCount]int
}

// Total returns the number of member records counted in the buckets.
func (summary NetworkSummary) Total() int {
	total := 0
	for _, count := range summary.Counts {
		total += count
	}
	return total
}
