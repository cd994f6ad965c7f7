package reputation

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"

	"ipcatalog/internal/domain"
)

var ErrInvalidPrefixLength = errors.New("invalid prefix length")

type InvalidPrefixLengthError struct {
	Version      int
	PrefixLength int
}

func (e *InvalidPrefixLengthError) Error() string {
	switch e.Version {
	case 4:
		return fmt.Sprintf("prefix length %d out of range, must be an integer between 0 and 32", e.PrefixLength)
	case 6:
		return fmt.Sprintf("prefix length %d out of range, must be an integer between 0 and 128", e.PrefixLength)
	default:
		return fmt.Sprintf("unsupported IP version %d", e.Version)
	}
}

func (e *InvalidPrefixLengthError) Is(target error) bool {
	return target == ErrInvalidPrefixLength
}

// Report is the ranked output of one aggregation run.
type Report struct {
	Version      int
	PrefixLength int
	Networks     []domain.NetworkSummary

	// Skipped counts records of the other IP version.
	Skipped int
	// Unparseable counts stored keys that are not valid addresses.
	Unparseable int
}

// ValidatePrefixLength checks prefixLength against the bit length of version.
func ValidatePrefixLength(version, prefixLength int) error {
	var bits int
	switch version {
	case 4:
		bits = 32
	case 6:
		bits = 128
	default:
		return &InvalidPrefixLengthError{Version: version, PrefixLength: prefixLength}
	}
	if prefixLength < 0 || prefixLength > bits {
		return &InvalidPrefixLengthError{Version: version, PrefixLength: prefixLength}
	}
	return nil
}

// Aggregate groups records of the given IP version by their supernet of
// prefixLength bits and returns one summary per network, highest score first.
func Aggregate(records []domain.IPRecord, prefixLength, version int) ([]domain.NetworkSummary, error) {
	report, err := AggregateReport(records, prefixLength, version)
	if err != nil {
		return nil, err
	}
	return report.Networks, nil
}

func AggregateReport(records []domain.IPRecord, prefixLength, version int) (Report, error) {
	if err := ValidatePrefixLength(version, prefixLength); err != nil {
		return Report{}, err
	}

	report := Report{Version: version, PrefixLength: prefixLength}
	index := make(map[netip.Prefix]int)

	for _, record := range records {
		addr, err := record.Addr()
		if err != nil {
			report.Unparseable++
			continue
		}
		if (version == 4) != addr.Is4() {
			report.Skipped++
			continue
		}

		network, err := addr.Prefix(prefixLength)
		if err != nil {
			return Report{}, fmt.Errorf("supernet of %s: %w", record.IP, err)
		}

		idx, found := index[network]
		if !found {
			idx = len(report.Networks)
			index[network] = idx
			report.Networks = append(report.Networks, domain.NetworkSummary{Network: network})
		}

		summary := &report.Networks[idx]
		summary.Score += record.Score
		if bucket, ok := Score(record.Score).bucket(); ok {
			summary.Counts[bucket]++
		}
	}

	sort.SliceStable(report.Networks, func(i, j int) bool {
		return report.Networks[i].Score > report.Networks[j].Score
	})

	return report, nil
}
