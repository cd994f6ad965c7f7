package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		envDBDriver, envDBDSN, envEnrichment, envEnrichmentAddr, envEnrichmentTimeout,
		envReverseDNS, envDNSServer, envRedisURL, envCacheTTL, envLogLevel, envLogFile,
	} {
		// blank counts as unset
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "ipcatalog.db" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if !cfg.Enrichment.Enabled || cfg.Enrichment.Address != "bgp.tools:43" {
		t.Fatalf("enrichment = %+v", cfg.Enrichment)
	}
	if cfg.Enrichment.Timeout != 5*time.Second {
		t.Fatalf("enrichment timeout = %s, want 5s", cfg.Enrichment.Timeout)
	}
	if cfg.Enrichment.CacheTTL != 24*time.Hour {
		t.Fatalf("cache ttl = %s, want 24h", cfg.Enrichment.CacheTTL)
	}
	if !cfg.ReverseDNS.Enabled || cfg.ReverseDNS.Server != "" {
		t.Fatalf("reverse dns = %+v", cfg.ReverseDNS)
	}
	if cfg.Log.Level != "info" || cfg.Log.File != "" {
		t.Fatalf("log = %+v", cfg.Log)
	}
	if cfg.Log.MaxSizeMB != 10 || cfg.Log.MaxBackups != 3 {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envDBDriver, "postgres")
	t.Setenv(envDBDSN, "host=db user=catalog")
	t.Setenv(envEnrichment, "false")
	t.Setenv(envEnrichmentAddr, "whois.example:4343")
	t.Setenv(envEnrichmentTimeout, "2s")
	t.Setenv(envReverseDNS, "0")
	t.Setenv(envDNSServer, "9.9.9.9")
	t.Setenv(envRedisURL, "redis://localhost:6379/2")
	t.Setenv(envCacheTTL, "1h")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogFile, "/tmp/ipcatalog.log")

	cfg := Load()

	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "host=db user=catalog" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Enrichment.Enabled || cfg.Enrichment.Address != "whois.example:4343" || cfg.Enrichment.Timeout != 2*time.Second {
		t.Fatalf("enrichment = %+v", cfg.Enrichment)
	}
	if cfg.Enrichment.RedisURL != "redis://localhost:6379/2" || cfg.Enrichment.CacheTTL != time.Hour {
		t.Fatalf("cache = %+v", cfg.Enrichment)
	}
	if cfg.ReverseDNS.Enabled || cfg.ReverseDNS.Server != "9.9.9.9" {
		t.Fatalf("reverse dns = %+v", cfg.ReverseDNS)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/ipcatalog.log" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}
