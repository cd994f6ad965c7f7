package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ipcatalog/internal/domain"

	"github.com/charmbracelet/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultDSN = "ipcatalog.db"
)

// Store is an open handle on the catalog table. Close releases the
// underlying connection pool.
type Store struct {
	db *gorm.DB
}

type Config struct {
	ExistingDB  *gorm.DB
	Dialector   gorm.Dialector
	Logger      logger.Interface
	AutoMigrate bool
}

type Option func(*Config)

// StoreError wraps a failure of the backing database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Open connects to the backing database and provisions the schema. The
// schema step is idempotent.
func Open(opts ...Option) (*Store, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var db *gorm.DB
	switch {
	case cfg.ExistingDB != nil:
		db = cfg.ExistingDB
	case cfg.Dialector != nil:
		gormCfg := &gorm.Config{}
		if cfg.Logger != nil {
			gormCfg.Logger = cfg.Logger
		}
		opened, err := gorm.Open(cfg.Dialector, gormCfg)
		if err != nil {
			return nil, storeError("open connection", err)
		}
		db = opened
		configureConnectionPool(db)
	default:
		return nil, storeError("open connection", errors.New("no dialector or existing connection provided"))
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&domain.IPRecord{}); err != nil {
			return nil, storeError("auto migrate", err)
		}
		log.Debug("Catalog schema ready.")
	}

	return &Store{db: db}, nil
}

func defaultConfig() Config {
	return Config{
		Dialector:   sqlite.Open(DefaultDSN),
		Logger:      silentLogger(),
		AutoMigrate: true,
	}
}

// DialectorFor returns the gorm dialector for a configured driver name.
func DialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = DefaultDSN
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("database: postgres requires a DSN")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}
}

func silentLogger() logger.Interface {
	return logger.New(
		log.Default(),
		logger.Config{LogLevel: logger.Silent},
	)
}

func WithExistingDB(db *gorm.DB) Option {
	return func(cfg *Config) {
		cfg.ExistingDB = db
	}
}

func WithDialector(d gorm.Dialector) Option {
	return func(cfg *Config) {
		cfg.Dialector = d
	}
}

func WithLogger(l logger.Interface) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

func WithAutoMigrate(enabled bool) Option {
	return func(cfg *Config) {
		cfg.AutoMigrate = enabled
	}
}

// SQLite allows a single writer; keep one connection so writes never
// contend with each other inside the process.
func configureConnectionPool(db *gorm.DB) {
	if db == nil || db.Dialector.Name() != DriverSQLite {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("database: get sql.DB", "error", err)
		return
	}
	sqlDB.SetMaxOpenConns(1)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeError("close", err)
	}
	return storeError("close", sqlDB.Close())
}

func (s *Store) withContext(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.db.WithContext(ctx)
}
