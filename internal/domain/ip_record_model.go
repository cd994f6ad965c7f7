package domain

import "net/netip"

// IPRecord is one catalog entry keyed by the canonical text form of the address.
// Enrichment and reverse-DNS columns are nil when they were not resolved.
type IPRecord struct {
	IP string `gorm:"column:ip;primaryKey;size:45"`

	ASN         *string `gorm:"column:asn"`
	Prefix      *string `gorm:"column:prefix"`
	CountryCode *string `gorm:"column:cc"`
	Registry    *string `gorm:"column:rir"`
	ISP         *string `gorm:"column:isp"`
	ReverseDNS  *string `gorm:"column:rdns"`

	Score  int  `gorm:"column:score;not null;check:score IN (-3,-1,1,3)"`
	Global bool `gorm:"column:global;not null"`
}

func (IPRecord) TableName() string {
	return "ipaddress"
}

// Addr parses the stored key back into an address.
func (record IPRecord) Addr() (netip.Addr, error) {
	return netip.ParseAddr(record.IP)
}

// StringValue dereferences an optional column, returning fallback for nil.
func StringValue(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

// StringPtr returns a pointer to a copy of value.
func StringPtr(value string) *string {
	return &value
}
