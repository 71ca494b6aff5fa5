package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-showcase/pkg/interfaces"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrDriverUnsupported = errors.New("storage: unsupported driver")
	ErrDSNRequired       = errors.New("storage: dsn is required")
)

// Config captures what is needed to open a bun database.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	PingTimeout  time.Duration
}

// NormalizeDriver maps driver aliases onto the supported names.
func NormalizeDriver(driver string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite, true
	case "postgres", "postgresql", "pg":
		return DriverPostgres, true
	default:
		return "", false
	}
}

// Open connects to the configured database, verifies it answers a ping and
// wraps it with the matching bun dialect.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	driver, ok := NormalizeDriver(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDriverUnsupported, cfg.Driver)
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch driver {
	case DriverSQLite:
		sqlDB, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case DriverPostgres:
		sqlDB, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NewQueryLogger returns a bun hook that logs every query at debug level and
// failed queries at warn level.
func NewQueryLogger(logger interfaces.Logger) bun.QueryHook {
	return &queryLogger{logger: logger}
}

type queryLogger struct {
	logger interfaces.Logger
}

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{
		"operation", event.Operation(),
		"duration_ms", time.Since(event.StartTime).Milliseconds(),
		"query", event.Query,
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Warn("query failed", append(args, "error", event.Err)...)
		return
	}
	h.logger.Debug("query", args...)
}
