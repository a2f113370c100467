package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                   { return nil }
func (nopStmt) NumInput() int                                  { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

// flakyDriver fails the first failures opens, then behaves like nopDriver.
type flakyDriver struct {
	mu       sync.Mutex
	failures int
	opens    int
}

func (d *flakyDriver) Open(name string) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if d.opens <= d.failures {
		return nil, errors.New("the database system is starting up")
	}
	return nopConn{}, nil
}

func useDriver(t *testing.T, d driver.Driver) {
	t.Helper()
	connector := driverConnector{d: d}
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.OpenDB(connector), nil
	}
	t.Cleanup(func() { openDB = prev })
}

type driverConnector struct{ d driver.Driver }

func (c driverConnector) Connect(context.Context) (driver.Conn, error) { return c.d.Open("") }
func (c driverConnector) Driver() driver.Driver                       { return c.d }

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	useDriver(t, nopDriver{})

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")
	t.Setenv("DB_PING_ATTEMPTS", "not-a-number")

	opts := OptionsFromEnv(DefaultServerOptions())
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	stats := db.Stats()
	if stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 {
		t.Fatalf("expected MaxIdleConns=3, got %d", opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("expected ConnMaxLifetime=20m, got %s", opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("expected ConnMaxIdleTime=45s, got %s", opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
	if opts.PingAttempts != DefaultServerOptions().PingAttempts {
		t.Fatalf("expected malformed DB_PING_ATTEMPTS to be ignored, got %d", opts.PingAttempts)
	}
}

func TestConnectRetriesPing(t *testing.T) {
	d := &flakyDriver{failures: 2}
	useDriver(t, d)

	opts := DefaultServerOptions()
	opts.PingAttempts = 3
	opts.PingBackoff = time.Millisecond
	pool, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer pool.Close()
	if d.opens != 3 {
		t.Fatalf("expected 3 connection attempts, got %d", d.opens)
	}
}

func TestConnectGivesUpAfterAttempts(t *testing.T) {
	d := &flakyDriver{failures: 10}
	useDriver(t, d)

	opts := DefaultMigrateOptions()
	opts.PingAttempts = 2
	opts.PingBackoff = time.Millisecond
	if _, err := Connect(context.Background(), "postgres://ignored", opts); err == nil {
		t.Fatalf("expected ping failure")
	}
	if d.opens != 2 {
		t.Fatalf("expected 2 connection attempts, got %d", d.opens)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
}

func TestConnectWrapsOpenFailure(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return nil, driver.ErrBadConn
	}
	defer func() {
		openDB = prev
	}()

	_, err := Connect(context.Background(), "postgres://ignored", DefaultMigrateOptions())
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one migration")
	}
	if RunMigrations(context.Background(), nil) != nil {
		t.Fatalf("expected nil database to be a no-op")
	}
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	useDriver(t, nopDriver{})
	pool, _ := openDB("pgx", "ignored")
	defer pool.Close()

	if err := Migrate(context.Background(), pool, "sideways"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if err := Migrate(context.Background(), nil, "up"); err == nil {
		t.Fatalf("expected error without a database")
	}
}
