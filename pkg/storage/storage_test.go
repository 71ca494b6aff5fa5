package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-showcase/pkg/interfaces"
)

func TestNormalizeDriver(t *testing.T) {
	cases := map[string]string{
		"sqlite":     DriverSQLite,
		"SQLite3":    DriverSQLite,
		"postgres":   DriverPostgres,
		" pg ":       DriverPostgres,
		"postgresql": DriverPostgres,
	}
	for input, expected := range cases {
		got, ok := NormalizeDriver(input)
		if !ok || got != expected {
			t.Fatalf("NormalizeDriver(%q) = %q, %v", input, got, ok)
		}
	}
	if _, ok := NormalizeDriver("mysql"); ok {
		t.Fatal("mysql should not be supported")
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"}); !errors.Is(err, ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
	if _, err := Open(context.Background(), Config{Driver: "sqlite"}); !errors.Is(err, ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var one int
	if err := db.NewRaw("SELECT 1").Scan(context.Background(), &one); err != nil {
		t.Fatalf("select: %v", err)
	}
	if one != 1 {
		t.Fatalf("expected 1, got %d", one)
	}
}

type recordingLogger struct {
	debug []string
	warn  []string
}

func (l *recordingLogger) Trace(string, ...any)                          {}
func (l *recordingLogger) Debug(msg string, _ ...any)                    { l.debug = append(l.debug, msg) }
func (l *recordingLogger) Info(string, ...any)                           {}
func (l *recordingLogger) Warn(msg string, _ ...any)                     { l.warn = append(l.warn, msg) }
func (l *recordingLogger) Error(string, ...any)                          {}
func (l *recordingLogger) Fatal(string, ...any)                          {}
func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func TestQueryLoggerRecordsQueries(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	logger := &recordingLogger{}
	db.AddQueryHook(NewQueryLogger(logger))

	var one int
	if err := db.NewRaw("SELECT 1").Scan(context.Background(), &one); err != nil {
		t.Fatalf("select: %v", err)
	}
	_, _ = db.NewRaw("SELECT * FROM missing_table").Exec(context.Background())

	if len(logger.debug) == 0 {
		t.Fatal("expected debug entry for successful query")
	}
	if len(logger.warn) == 0 {
		t.Fatal("expected warn entry for failed query")
	}
}
