package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"ipcatalog/internal/domain"
)

const notAvailable = "NA"

const subnetHeader = "Subnet: Score  B/PB/S/M"

// Column widths of a get row: ip, asn, cc, isp, rdns, score.
var recordWidths = [...]int{20, 10, 2, 16, 25, 2}

// fixedWidth left-justifies value in a field of width runes, cutting off
// whatever does not fit.
func fixedWidth(value string, width int) string {
	count := utf8.RuneCountInString(value)
	if count < width {
		return value + strings.Repeat(" ", width-count)
	}
	if count == width {
		return value
	}
	runes := []rune(value)
	return string(runes[:width])
}

func FormatRecord(record domain.IPRecord) string {
	fields := [len(recordWidths)]string{
		record.IP,
		domain.StringValue(record.ASN, notAvailable),
		domain.StringValue(record.CountryCode, notAvailable),
		domain.StringValue(record.ISP, notAvailable),
		domain.StringValue(record.ReverseDNS, notAvailable),
		strconv.Itoa(record.Score),
	}

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(fixedWidth(field, recordWidths[i]))
	}
	return b.String()
}

func WriteRecords(w io.Writer, records []domain.IPRecord) error {
	for _, record := range records {
		if _, err := fmt.Fprintln(w, FormatRecord(record)); err != nil {
			return err
		}
	}
	return nil
}

func FormatNetwork(summary domain.NetworkSummary) string {
	return fmt.Sprintf("%s: Score %d  %d/%d/%d/%d",
		summary.Network,
		summary.Score,
		summary.Counts[domain.BucketBenign],
		summary.Counts[domain.BucketProbablyBenign],
		summary.Counts[domain.BucketSuspicious],
		summary.Counts[domain.BucketMalicious],
	)
}

// WriteNetworks prints the subnet header followed by one line per network,
// in the order given.
func WriteNetworks(w io.Writer, networks []domain.NetworkSummary) error {
	if _, err := fmt.Fprintln(w, subnetHeader); err != nil {
		return err
	}
	for _, summary := range networks {
		if _, err := fmt.Fprintln(w, FormatNetwork(summary)); err != nil {
			return err
		}
	}
	return nil
}

func formatReverseDNS(record domain.IPRecord) string {
	return "rDNS: " + domain.StringValue(record.ReverseDNS, "None")
}
