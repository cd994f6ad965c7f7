// Package enrichment resolves routing metadata for an address from a
// whois-style TCP service (bgp.tools by default).
package enrichment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"ipcatalog/internal/support/netaddr"
)

const (
	DefaultAddress = "bgp.tools:43"
	DefaultTimeout = 5 * time.Second

	chunkSize = 4096
)

var (
	ErrTimeout     = errors.New("enrichment: timed out")
	ErrUnavailable = errors.New("enrichment: service unavailable")
)

// Cache stores successful lookups keyed by address.
type Cache interface {
	Get(ctx context.Context, addr netip.Addr) (Metadata, bool, error)
	Set(ctx context.Context, addr netip.Addr, metadata Metadata) error
}

type Client struct {
	address string
	timeout time.Duration
	dialer  *net.Dialer
	cache   Cache
}

type Option func(*Client)

func WithAddress(address string) Option {
	return func(c *Client) {
		if address != "" {
			c.address = address
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		address: DefaultAddress,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.dialer = &net.Dialer{Timeout: c.timeout}
	return c
}

// Enrich looks up routing metadata for addr. Non-global addresses resolve to
// empty metadata without touching the network.
func (c *Client) Enrich(ctx context.Context, addr netip.Addr) (Metadata, error) {
	if !netaddr.IsGlobal(addr) {
		return Metadata{}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if c.cache != nil {
		cached, found, err := c.cache.Get(ctx, addr)
		if err != nil {
			log.Warn("Enrichment cache read failed", "ip", addr, "error", err)
		} else if found {
			log.Debug("Enrichment cache hit", "ip", addr)
			return cached, nil
		}
	}

	raw, err := c.query(ctx, addr)
	if err != nil {
		return Metadata{}, err
	}

	metadata, err := ParseResponse(raw)
	if err != nil {
		return Metadata{}, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, addr, metadata); err != nil {
			log.Warn("Enrichment cache write failed", "ip", addr, "error", err)
		}
	}

	return metadata, nil
}

func (c *Client) query(ctx context.Context, addr netip.Addr) (string, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return "", c.wrapNetError(err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", c.wrapNetError(err)
	}
	if _, err := conn.Write(Request(addr)); err != nil {
		return "", c.wrapNetError(err)
	}

	// The service signals the end of a response with a short read.
	var response bytes.Buffer
	buf := make([]byte, chunkSize)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return "", c.wrapNetError(err)
		}
		n, err := conn.Read(buf)
		response.Write(buf[:n])
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", c.wrapNetError(err)
		}
		if n < chunkSize {
			break
		}
	}

	if !utf8.Valid(response.Bytes()) {
		return "", fmt.Errorf("%w: response is not valid UTF-8", ErrCorruptResponse)
	}
	return response.String(), nil
}

// Request renders the bulk-mode query for a single address.
func Request(addr netip.Addr) []byte {
	return []byte("begin\n" + addr.String() + "\nend\n")
}

func (c *Client) wrapNetError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w contacting %s after %s: %v", ErrTimeout, c.address, c.timeout, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, c.address, err)
}
