package enrichment

import (
	"errors"
	"fmt"
	"strings"

	"ipcatalog/internal/domain"
)

const fieldCount = 7

// Positions inside a bgp.tools response line. Fields 1 (the queried IP) and
// 5 (allocation date) are not used.
const (
	fieldASN      = 0
	fieldPrefix   = 2
	fieldCountry  = 3
	fieldRegistry = 4
	fieldISP      = 6
)

var ErrCorruptResponse = errors.New("enrichment: corrupt response")

// Metadata is the routing information resolved for one address. A nil field
// was not resolved.
type Metadata struct {
	ASN         *string `json:"asn,omitempty"`
	Prefix      *string `json:"prefix,omitempty"`
	CountryCode *string `json:"cc,omitempty"`
	Registry    *string `json:"rir,omitempty"`
	ISP         *string `json:"isp,omitempty"`
}

func (m Metadata) Empty() bool {
	return m.ASN == nil && m.Prefix == nil && m.CountryCode == nil && m.Registry == nil && m.ISP == nil
}

// Apply copies the metadata onto record, replacing whatever it held.
func (m Metadata) Apply(record *domain.IPRecord) {
	record.ASN = m.ASN
	record.Prefix = m.Prefix
	record.CountryCode = m.CountryCode
	record.Registry = m.Registry
	record.ISP = m.ISP
}

// ParseResponse decodes a single pipe-delimited response line of exactly
// seven fields.
func ParseResponse(raw string) (Metadata, error) {
	fields := strings.Split(raw, "|")
	if len(fields) != fieldCount {
		return Metadata{}, fmt.Errorf("%w: got %d fields, want %d", ErrCorruptResponse, len(fields), fieldCount)
	}

	value := func(idx int) *string {
		return domain.StringPtr(strings.TrimSpace(fields[idx]))
	}

	return Metadata{
		ASN:         value(fieldASN),
		Prefix:      value(fieldPrefix),
		CountryCode: value(fieldCountry),
		Registry:    value(fieldRegistry),
		ISP:         value(fieldISP),
	}, nil
}
