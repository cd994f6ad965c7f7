package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"ipcatalog/internal/config"
	"ipcatalog/internal/domain"
)

type closeCounter struct {
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func executeRoot(t *testing.T, cfg config.Config, open Opener, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(cfg, open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootAppliesFlags(t *testing.T) {
	cfg := config.Config{}
	cfg.Database.DSN = "ipcatalog.db"
	cfg.Enrichment.Enabled = true
	cfg.ReverseDNS.Enabled = true
	cfg.Log.Level = "info"

	var seen config.Config
	closer := &closeCounter{}
	open := func(_ context.Context, cfg config.Config) (Service, io.Closer, error) {
		seen = cfg
		return &recordingService{}, closer, nil
	}

	_, err := executeRoot(t, cfg, open, "--db", "other.db", "--no-enrich", "--no-rdns", "--log-level", "warn", "get")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}

	if seen.Database.DSN != "other.db" {
		t.Fatalf("DSN = %q, want other.db", seen.Database.DSN)
	}
	if seen.Enrichment.Enabled || seen.ReverseDNS.Enabled {
		t.Fatalf("lookups still enabled: enrichment=%v rdns=%v", seen.Enrichment.Enabled, seen.ReverseDNS.Enabled)
	}
	if seen.Log.Level != "warn" {
		t.Fatalf("log level = %q, want warn", seen.Log.Level)
	}
	if closer.closed != 1 {
		t.Fatalf("closer closed %d times, want 1", closer.closed)
	}
}

func TestRootKeepsConfigWithoutFlags(t *testing.T) {
	cfg := config.Config{}
	cfg.Database.DSN = "from-env.db"
	cfg.Enrichment.Enabled = true

	var seen config.Config
	open := func(_ context.Context, cfg config.Config) (Service, io.Closer, error) {
		seen = cfg
		return &recordingService{}, nil, nil
	}

	if _, err := executeRoot(t, cfg, open, "get"); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if seen.Database.DSN != "from-env.db" || !seen.Enrichment.Enabled {
		t.Fatalf("config changed without flags: %+v", seen)
	}
}

func TestRootSubcommandOutput(t *testing.T) {
	service := &recordingService{rdns: true, record: domain.IPRecord{ReverseDNS: domain.StringPtr("dns.google")}}
	open := func(context.Context, config.Config) (Service, io.Closer, error) {
		return service, nil, nil
	}

	out, err := executeRoot(t, config.Config{}, open, "add", "8.8.8.8", "m")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if out != "rDNS: dns.google\n" {
		t.Fatalf("add printed %q, want rDNS line", out)
	}

	out, err = executeRoot(t, config.Config{}, open, "subnet4", "24")
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if out != subnetHeader+"\n" {
		t.Fatalf("subnet4 printed %q, want only the header", out)
	}
}

func TestRootReturnsCommandErrors(t *testing.T) {
	closer := &closeCounter{}
	open := func(context.Context, config.Config) (Service, io.Closer, error) {
		return &recordingService{}, closer, nil
	}

	if _, err := executeRoot(t, config.Config{}, open, "subnet6", "many"); err == nil {
		t.Fatal("execute returned nil error for a non-numeric prefix length")
	}
	if closer.closed != 1 {
		t.Fatalf("closer closed %d times after a failure, want 1", closer.closed)
	}
}

func TestRootOpenFailure(t *testing.T) {
	wantErr := errors.New("disk full")
	open := func(context.Context, config.Config) (Service, io.Closer, error) {
		return nil, nil, wantErr
	}

	_, err := executeRoot(t, config.Config{}, open, "get")
	if !errors.Is(err, wantErr) {
		t.Fatalf("execute returned %v, want %v", err, wantErr)
	}
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	opened := false
	open := func(context.Context, config.Config) (Service, io.Closer, error) {
		opened = true
		return &recordingService{}, nil, nil
	}

	if _, err := executeRoot(t, config.Config{}, open, "--log-level", "loud", "get"); err == nil {
		t.Fatal("execute returned nil error for an unknown log level")
	}
	if opened {
		t.Fatal("catalog opened despite invalid logging configuration")
	}
}
