// internal/adapters/db/oracle.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/insuretech-labs/oipa-mcp/internal/core/domain"
)

// ConnectionStrategy selects how the pool reaches Oracle. Exactly one
// strategy is configured per Database; the two are mutually exclusive.
type ConnectionStrategy interface {
	// ConnectString produces the go-ora connect string for this strategy.
	ConnectString(username, password string) (string, error)
	// Name identifies the strategy in logs.
	Name() string
}

// DirectStrategy connects with host, port, and service name. go-ora is a
// pure-Go driver, so no native client library is involved in either strategy;
// the thick-mode fallback of older stacks does not apply here.
type DirectStrategy struct {
	Host    string
	Port    int
	Service string
}

func (s DirectStrategy) ConnectString(username, password string) (string, error) {
	if s.Host == "" || s.Service == "" {
		return "", fmt.Errorf("direct connection requires host and service name")
	}
	port := s.Port
	if port == 0 {
		port = 1521
	}
	return go_ora.BuildUrl(s.Host, port, s.Service, username, password, nil), nil
}

func (s DirectStrategy) Name() string { return "direct" }

// WalletStrategy connects through an Oracle Cloud wallet directory. Wallet
// connections are always made in the driver's transparent mode; bundle-based
// connections do not work with a native client.
type WalletStrategy struct {
	Host     string
	Port     int
	Service  string
	Location string
	// Passphrase unlocks an encrypted wallet (ewallet.p12). Empty means an
	// auto-login wallet (cwallet.sso).
	Passphrase string
}

func (s WalletStrategy) ConnectString(username, password string) (string, error) {
	if s.Location == "" {
		return "", fmt.Errorf("wallet connection requires a wallet location")
	}
	if info, err := os.Stat(s.Location); err != nil || !info.IsDir() {
		return "", fmt.Errorf("wallet location %s is not a readable directory", s.Location)
	}

	// Some tooling in the connection path still honors these.
	os.Setenv("TNS_ADMIN", s.Location)
	os.Setenv("WALLET_LOCATION", s.Location)

	port := s.Port
	if port == 0 {
		port = 1522
	}

	options := map[string]string{
		"SSL":        "TRUE",
		"SSL VERIFY": "FALSE",
		"WALLET":     s.Location,
	}
	if s.Passphrase != "" {
		options["WALLET PASSWORD"] = s.Passphrase
	}

	return go_ora.BuildUrl(s.Host, port, s.Service, username, password, options), nil
}

func (s WalletStrategy) Name() string { return "wallet" }

// Config holds connection manager configuration.
type Config struct {
	Strategy ConnectionStrategy
	Username string
	Password string

	// DefaultSchema, when set, is applied per acquired connection with an
	// ALTER SESSION statement.
	DefaultSchema string

	PoolMaxSize     int
	PoolMinSize     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
	QueryTimeout    time.Duration
	RetryCount      int
	RetryDelay      time.Duration

	// DefaultMaxRows caps multi-row results when the caller supplies no cap.
	// MaxQueryResults is the hard ceiling applied to every cap.
	DefaultMaxRows  int
	MaxQueryResults int

	// LogBindParams controls whether bind values appear in failure logs.
	// They can carry personal data (tax ids, names), so this is off outside
	// development; with it off only the bind names are logged.
	LogBindParams bool
}

// DefaultConfig returns default connection manager configuration.
func DefaultConfig() *Config {
	return &Config{
		PoolMaxSize:     10,
		PoolMinSize:     1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
		ConnectTimeout:  30 * time.Second,
		QueryTimeout:    30 * time.Second,
		RetryCount:      3,
		RetryDelay:      time.Second,
		DefaultMaxRows:  1000,
		MaxQueryResults: 1000,
	}
}

// schemaNamePattern bounds what DefaultSchema may contain. The ALTER SESSION
// statement cannot take bind variables, so the name is validated instead.
var schemaNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*$`)

// PoolStats is a point-in-time snapshot of the pool for observability.
type PoolStats struct {
	Status       string        `json:"status"`
	Open         int           `json:"open"`
	Busy         int           `json:"busy"`
	Idle         int           `json:"idle"`
	MaxOpen      int           `json:"max_open"`
	WaitCount    int64         `json:"wait_count"`
	WaitDuration time.Duration `json:"wait_duration"`
}

// Database wraps the Oracle connection pool and is the sole execution
// surface for SQL in this process. Construct it once at the composition
// point and inject it; it is safe for concurrent use.
type Database struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
	closed atomic.Bool
}

// NewDatabase opens the connection pool for the configured strategy and
// verifies connectivity, retrying the initial ping RetryCount times. A
// missing wallet or an unreachable listener is fatal here; per-query errors
// later only fail their own operation.
func NewDatabase(ctx context.Context, config *Config, logger *slog.Logger) (*Database, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Strategy == nil {
		return nil, fmt.Errorf("no connection strategy configured")
	}
	if config.DefaultSchema != "" && !schemaNamePattern.MatchString(config.DefaultSchema) {
		return nil, fmt.Errorf("invalid default schema name %q", config.DefaultSchema)
	}

	connStr, err := config.Strategy.ConnectString(config.Username, config.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to build connect string: %w", err)
	}

	pool, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	pool.SetMaxOpenConns(config.PoolMaxSize)
	pool.SetMaxIdleConns(config.PoolMinSize)
	pool.SetConnMaxLifetime(config.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := pingWithRetry(ctx, pool, config, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{
		db:     pool,
		config: config,
		logger: logger,
	}

	logger.Info("database pool initialized",
		slog.String("strategy", config.Strategy.Name()),
		slog.Int("pool_min", config.PoolMinSize),
		slog.Int("pool_max", config.PoolMaxSize),
	)

	return database, nil
}

// NewWithDB wraps an already-open *sql.DB. Used by tests to substitute a
// mock driver for the Oracle one.
func NewWithDB(pool *sql.DB, config *Config, logger *slog.Logger) *Database {
	if config == nil {
		config = DefaultConfig()
	}
	return &Database{db: pool, config: config, logger: logger}
}

func pingWithRetry(ctx context.Context, pool *sql.DB, config *Config, logger *slog.Logger) error {
	attempts := config.RetryCount + 1
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx := ctx
		var cancel context.CancelFunc
		if config.ConnectTimeout > 0 {
			pingCtx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		}
		err = pool.PingContext(pingCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}

		if attempt < attempts {
			logger.Warn("database ping failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(config.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

// WithConn acquires one connection from the pool, applies the default schema
// override when configured, runs fn with exclusive use of the connection,
// and returns it to the pool on every exit path. A failing schema override
// is logged as a warning and does not fail the acquisition.
func (d *Database) WithConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if schema := d.config.DefaultSchema; schema != "" {
		// Schema names cannot be bound; the value was validated at init.
		stmt := "ALTER SESSION SET CURRENT_SCHEMA = " + schema
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			d.logger.WarnContext(ctx, "failed to set default schema",
				slog.String("schema", schema),
				slog.String("error", err.Error()),
			)
		}
	}

	return fn(conn)
}

// queryOptions carries per-call execution settings.
type queryOptions struct {
	maxRows    int
	maxRowsSet bool
}

// QueryOption adjusts a single query execution.
type QueryOption func(*queryOptions)

// WithMaxRows caps the number of rows a query returns. Zero means no rows at
// all; the configured MaxQueryResults ceiling applies regardless.
func WithMaxRows(n int) QueryOption {
	return func(o *queryOptions) {
		o.maxRows = n
		o.maxRowsSet = true
	}
}

// ExecuteQuery runs a SELECT and returns its rows as mappings from
// lower-cased column name to value, in result order.
func (d *Database) ExecuteQuery(ctx context.Context, sqlText string, params map[string]any, opts ...QueryOption) ([]domain.Row, error) {
	rows, _, err := d.execute(ctx, sqlText, params, opts...)
	return rows, err
}

// ExecuteSingle runs a query expected to produce at most one row. It returns
// nil when there is no row.
func (d *Database) ExecuteSingle(ctx context.Context, sqlText string, params map[string]any) (domain.Row, error) {
	rows, _, err := d.execute(ctx, sqlText, params, WithMaxRows(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ExecuteScalar runs a query and returns the first column of its first row,
// or nil when there is no row.
func (d *Database) ExecuteScalar(ctx context.Context, sqlText string, params map[string]any) (any, error) {
	rows, columns, err := d.execute(ctx, sqlText, params, WithMaxRows(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(columns) == 0 {
		return nil, nil
	}
	return rows[0][columns[0]], nil
}

func (d *Database) execute(ctx context.Context, sqlText string, params map[string]any, opts ...QueryOption) ([]domain.Row, []string, error) {
	options := queryOptions{maxRows: d.config.DefaultMaxRows}
	for _, opt := range opts {
		opt(&options)
	}

	if options.maxRowsSet && options.maxRows == 0 {
		return []domain.Row{}, nil, nil
	}

	// A missing or non-positive cap falls back to the global ceiling, so
	// result sets are always bounded.
	limit := options.maxRows
	if ceiling := d.config.MaxQueryResults; ceiling > 0 && (limit <= 0 || limit > ceiling) {
		limit = ceiling
	}

	if d.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.QueryTimeout)
		defer cancel()
	}

	var results []domain.Row
	var columns []string

	err := d.WithConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, sqlText, namedArgs(params)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		columns = make([]string, len(cols))
		for i, col := range cols {
			columns[i] = strings.ToLower(col)
		}

		results = make([]domain.Row, 0)
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}

		for rows.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			if err := rows.Scan(scanTargets...); err != nil {
				return err
			}
			row := make(domain.Row, len(columns))
			for i, col := range columns {
				row[col] = normalizeValue(values[i])
			}
			results = append(results, row)
		}
		return rows.Err()
	})

	if err != nil {
		d.logQueryFailure(ctx, sqlText, params, err)
		return nil, nil, fmt.Errorf("query execution failed: %w", err)
	}

	d.logger.DebugContext(ctx, "query executed",
		slog.Int("rows", len(results)))

	return results, columns, nil
}

// ExecuteMany runs one statement against a sequence of parameter sets inside
// a single transaction. Either every set commits or none does.
func (d *Database) ExecuteMany(ctx context.Context, sqlText string, paramSets []map[string]any) error {
	if len(paramSets) == 0 {
		return nil
	}

	if d.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.QueryTimeout)
		defer cancel()
	}

	err := d.WithConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, sqlText)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, params := range paramSets {
			if _, err := stmt.ExecContext(ctx, namedArgs(params)...); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("batch item %d failed: %w", i, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit batch: %w", err)
		}
		return nil
	})

	if err != nil {
		d.logQueryFailure(ctx, sqlText, nil, err)
		return err
	}

	d.logger.DebugContext(ctx, "batch executed",
		slog.Int("param_sets", len(paramSets)))
	return nil
}

// TestConnection probes the database with a trivial query and reports the
// outcome as a boolean. It never returns an error; failures are logged.
func (d *Database) TestConnection(ctx context.Context) bool {
	start := time.Now()
	value, err := d.ExecuteScalar(ctx, "SELECT 1 FROM DUAL", nil)
	if err != nil {
		d.logger.ErrorContext(ctx, "database connection test failed",
			slog.String("error", err.Error()))
		return false
	}
	if !scalarIsOne(value) {
		d.logger.ErrorContext(ctx, "database connection test returned unexpected result")
		return false
	}

	d.logger.InfoContext(ctx, "database connection test successful",
		slog.Duration("round_trip", time.Since(start)))
	return true
}

// Stats returns a snapshot of the pool, or an uninitialized marker after
// Close.
func (d *Database) Stats() PoolStats {
	if d.db == nil || d.closed.Load() {
		return PoolStats{Status: "uninitialized"}
	}
	s := d.db.Stats()
	return PoolStats{
		Status:       "active",
		Open:         s.OpenConnections,
		Busy:         s.InUse,
		Idle:         s.Idle,
		MaxOpen:      s.MaxOpenConnections,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration,
	}
}

// Close releases the pool. Safe to call more than once.
func (d *Database) Close() {
	if d.closed.Swap(true) {
		return
	}
	if d.db != nil {
		d.db.Close()
	}
	d.logger.Info("database pool closed")
}

func (d *Database) logQueryFailure(ctx context.Context, sqlText string, params map[string]any, err error) {
	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("sql", sqlText),
	}
	if d.config.LogBindParams {
		attrs = append(attrs, slog.Any("params", params))
	} else {
		attrs = append(attrs, slog.Any("param_names", paramNames(params)))
	}
	d.logger.ErrorContext(ctx, "query execution error", attrs...)
}

// namedArgs converts a bind map into driver arguments, sorted by name so
// argument order is deterministic.
func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, sql.Named(name, params[name]))
	}
	return args
}

func paramNames(params map[string]any) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeValue flattens driver byte slices to strings; everything else is
// kept as delivered.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func scalarIsOne(v any) bool {
	switch t := v.(type) {
	case int64:
		return t == 1
	case int:
		return t == 1
	case float64:
		return t == 1
	case string:
		return strings.TrimSpace(t) == "1"
	default:
		return false
	}
}
