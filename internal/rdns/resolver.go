// Package rdns performs best-effort reverse lookups. A failed lookup is
// reported as "no name", never as an error.
package rdns

import (
	"context"
	"net"
	"net/netip"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/miekg/dns"
)

type Resolver interface {
	Resolve(ctx context.Context, addr netip.Addr) (string, bool)
}

// SystemResolver uses the platform resolver with its default timeouts.
type SystemResolver struct {
	resolver *net.Resolver
}

func NewSystemResolver() *SystemResolver {
	return &SystemResolver{resolver: net.DefaultResolver}
}

func (r *SystemResolver) Resolve(ctx context.Context, addr netip.Addr) (string, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	names, err := r.resolver.LookupAddr(ctx, addr.String())
	if err != nil || len(names) == 0 {
		log.Debug("Reverse lookup returned no name", "ip", addr, "error", err)
		return "", false
	}
	return firstName(names)
}

// ServerResolver sends PTR queries straight to one DNS server.
type ServerResolver struct {
	server string
	client *dns.Client
}

// NewServerResolver targets server, given as host or host:port (port 53 is
// assumed when missing).
func NewServerResolver(server string) *ServerResolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &ServerResolver{
		server: server,
		client: new(dns.Client),
	}
}

func (r *ServerResolver) Resolve(ctx context.Context, addr netip.Addr) (string, bool) {
	if ctx == nil {
		ctx = context.Background()
	}

	arpa, err := dns.ReverseAddr(addr.String())
	if err != nil {
		log.Debug("Reverse lookup skipped", "ip", addr, "error", err)
		return "", false
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		log.Debug("Reverse lookup failed", "ip", addr, "server", r.server, "error", err)
		return "", false
	}
	if resp.Rcode != dns.RcodeSuccess {
		log.Debug("Reverse lookup returned no name", "ip", addr, "rcode", dns.RcodeToString[resp.Rcode])
		return "", false
	}

	names := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, ptr.Ptr)
		}
	}
	return firstName(names)
}

func firstName(names []string) (string, bool) {
	for _, name := range names {
		if trimmed := strings.TrimSuffix(name, "."); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// Disabled never resolves anything.
type Disabled struct{}

func (Disabled) Resolve(context.Context, netip.Addr) (string, bool) {
	return "", false
}
