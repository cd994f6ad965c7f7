// Package catalog implements the operations behind the shell: add, delete,
// get and subnet aggregation over the record store.
package catalog

import (
	"context"
	"errors"
	"net/netip"
	"strings"

	"github.com/charmbracelet/log"

	"ipcatalog/internal/domain"
	"ipcatalog/internal/enrichment"
	"ipcatalog/internal/rdns"
	"ipcatalog/internal/support/netaddr"
	"ipcatalog/internal/support/reputation"
)

// MatchAll is the pattern used by Get when none is given.
const MatchAll = "%"

var (
	ErrInvalidAddress        = netaddr.ErrInvalidAddress
	ErrInvalidClassification = reputation.ErrInvalidClassification
	ErrInvalidPrefixLength   = reputation.ErrInvalidPrefixLength
	ErrEmptyPattern          = errors.New("a pattern is required")
)

type Store interface {
	Upsert(ctx context.Context, record domain.IPRecord) error
	Delete(ctx context.Context, pattern string) (int64, error)
	Query(ctx context.Context, pattern string) ([]domain.IPRecord, error)
	All(ctx context.Context) ([]domain.IPRecord, error)
}

type Enricher interface {
	Enrich(ctx context.Context, addr netip.Addr) (enrichment.Metadata, error)
}

type Resolver interface {
	Resolve(ctx context.Context, addr netip.Addr) (string, bool)
}

type Catalog struct {
	store    Store
	enricher Enricher
	resolver Resolver

	enrich     bool
	reverseDNS bool
}

type Option func(*Catalog)

func WithEnricher(enricher Enricher) Option {
	return func(c *Catalog) {
		c.enricher = enricher
	}
}

func WithResolver(resolver Resolver) Option {
	return func(c *Catalog) {
		c.resolver = resolver
	}
}

// WithEnrichment toggles routing lookups for global addresses.
func WithEnrichment(enabled bool) Option {
	return func(c *Catalog) {
		c.enrich = enabled
	}
}

// WithReverseDNS toggles reverse lookups.
func WithReverseDNS(enabled bool) Option {
	return func(c *Catalog) {
		c.reverseDNS = enabled
	}
}

func New(store Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:      store,
		enrich:     true,
		reverseDNS: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.enricher == nil {
		c.enricher = enrichment.NewClient()
	}
	if c.resolver == nil {
		c.resolver = rdns.NewSystemResolver()
	}
	return c
}

// ReverseDNSEnabled reports whether Add performs reverse lookups.
func (c *Catalog) ReverseDNSEnabled() bool {
	return c.reverseDNS
}

// Add validates the address and classification, gathers metadata and writes
// the record, replacing any earlier judgment of the same address. Lookup
// failures only leave the corresponding columns empty.
func (c *Catalog) Add(ctx context.Context, rawIP, token string) (domain.IPRecord, error) {
	addr, err := netaddr.ParseAddr(rawIP)
	if err != nil {
		return domain.IPRecord{}, err
	}

	score, err := reputation.Classify(token)
	if err != nil {
		return domain.IPRecord{}, err
	}

	record := domain.IPRecord{
		IP:     addr.String(),
		Score:  int(score),
		Global: netaddr.IsGlobal(addr),
	}

	if c.ReverseDNSEnabled() {
		if name, ok := c.resolver.Resolve(ctx, addr); ok {
			record.ReverseDNS = domain.StringPtr(name)
		}
	}

	if c.enrich && record.Global && c.enricher != nil {
		c.lookupMetadata(ctx, addr).Apply(&record)
	}

	if err := c.store.Upsert(ctx, record); err != nil {
		return domain.IPRecord{}, err
	}

	log.Debug("Catalog entry stored", "ip", record.IP, "classification", score.Label(), "global", record.Global)
	return record, nil
}

func (c *Catalog) lookupMetadata(ctx context.Context, addr netip.Addr) enrichment.Metadata {
	metadata, err := c.enricher.Enrich(ctx, addr)
	switch {
	case err == nil:
		return metadata
	case errors.Is(err, enrichment.ErrTimeout):
		log.Warn("Timed out when contacting the enrichment service", "ip", addr, "error", err)
	case errors.Is(err, enrichment.ErrCorruptResponse):
		log.Warn("Enrichment service returned a corrupt response", "ip", addr, "error", err)
	default:
		log.Warn("Enrichment lookup failed", "ip", addr, "error", err)
	}
	return enrichment.Metadata{}
}

// Delete removes every record matching the wildcard pattern.
func (c *Catalog) Delete(ctx context.Context, pattern string) (int64, error) {
	if strings.TrimSpace(pattern) == "" {
		return 0, ErrEmptyPattern
	}

	removed, err := c.store.Delete(ctx, pattern)
	if err != nil {
		return 0, err
	}

	log.Debug("Catalog entries removed", "pattern", pattern, "count", removed)
	return removed, nil
}

// Get returns the records matching pattern; a blank pattern matches all.
func (c *Catalog) Get(ctx context.Context, pattern string) ([]domain.IPRecord, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = MatchAll
	}
	return c.store.Query(ctx, pattern)
}

// Subnet aggregates every stored record of version into supernets of
// prefixLength bits, ranked by aggregate score.
func (c *Catalog) Subnet(ctx context.Context, prefixLength, version int) (reputation.Report, error) {
	if err := reputation.ValidatePrefixLength(version, prefixLength); err != nil {
		return reputation.Report{}, err
	}

	records, err := c.store.All(ctx)
	if err != nil {
		return reputation.Report{}, err
	}

	report, err := reputation.AggregateReport(records, prefixLength, version)
	if err != nil {
		return reputation.Report{}, err
	}

	if report.Unparseable > 0 {
		log.Warn("Skipped stored entries that are not valid addresses", "count", report.Unparseable)
	}
	if report.Skipped > 0 {
		log.Debug("Skipped entries of the other IP version", "version", version, "count", report.Skipped)
	}

	return report, nil
}

func (c *Catalog) Subnet4(ctx context.Context, prefixLength int) (reputation.Report, error) {
	return c.Subnet(ctx, prefixLength, 4)
}

func (c *Catalog) Subnet6(ctx context.Context, prefixLength int) (reputation.Report, error) {
	return c.Subnet(ctx, prefixLength, 6)
}
