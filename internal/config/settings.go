package config

import (
	"time"

	"ipcatalog/internal/database"
	"ipcatalog/internal/enrichment"
	"ipcatalog/internal/support"
)

const (
	envDBDriver           = "IPCATALOG_DB_DRIVER"
	envDBDSN              = "IPCATALOG_DB_DSN"
	envEnrichment         = "IPCATALOG_ENRICHMENT"
	envEnrichmentAddr     = "IPCATALOG_ENRICHMENT_ADDR"
	envEnrichmentTimeout  = "IPCATALOG_ENRICHMENT_TIMEOUT"
	envReverseDNS         = "IPCATALOG_RDNS"
	envDNSServer          = "IPCATALOG_DNS_SERVER"
	envRedisURL           = "IPCATALOG_REDIS_URL"
	envCacheTTL           = "IPCATALOG_CACHE_TTL"
	envLogLevel           = "IPCATALOG_LOG_LEVEL"
	envLogFile            = "IPCATALOG_LOG_FILE"
	envLogFileMaxSizeMB   = "IPCATALOG_LOG_MAX_SIZE_MB"
	envLogFileMaxBackups  = "IPCATALOG_LOG_MAX_BACKUPS"
	envLogFileCompression = "IPCATALOG_LOG_COMPRESS"
)

type Config struct {
	Database struct {
		Driver string
		DSN    string
	}

	Enrichment struct {
		Enabled  bool
		Address  string
		Timeout  time.Duration
		RedisURL string
		CacheTTL time.Duration
	}

	ReverseDNS struct {
		Enabled bool
		// Server switches from the system resolver to direct PTR queries.
		Server string
	}

	Log support.LogConfig
}

// Load reads the configuration from the environment. Call godotenv.Load
// first to pick up a .env file.
func Load() Config {
	var cfg Config

	cfg.Database.Driver = support.GetEnv(envDBDriver, database.DriverSQLite)
	cfg.Database.DSN = support.GetEnv(envDBDSN, database.DefaultDSN)

	cfg.Enrichment.Enabled = support.GetEnvBool(envEnrichment, true)
	cfg.Enrichment.Address = support.GetEnv(envEnrichmentAddr, enrichment.DefaultAddress)
	cfg.Enrichment.Timeout = support.GetEnvDuration(envEnrichmentTimeout, enrichment.DefaultTimeout)
	cfg.Enrichment.RedisURL = support.GetEnv(envRedisURL, "")
	cfg.Enrichment.CacheTTL = support.GetEnvDuration(envCacheTTL, enrichment.DefaultCacheTTL)

	cfg.ReverseDNS.Enabled = support.GetEnvBool(envReverseDNS, true)
	cfg.ReverseDNS.Server = support.GetEnv(envDNSServer, "")

	cfg.Log = support.LogConfig{
		Level:      support.GetEnv(envLogLevel, "info"),
		File:       support.GetEnv(envLogFile, ""),
		MaxSizeMB:  support.GetEnvInt(envLogFileMaxSizeMB, 10),
		MaxBackups: support.GetEnvInt(envLogFileMaxBackups, 3),
		Compress:   support.GetEnvBool(envLogFileCompression, false),
	}

	return cfg
}
