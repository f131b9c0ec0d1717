package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

// PostgreSQL error codes the stores react to.
const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

type DB struct {
	*sql.DB
}

// Querier is satisfied by *sql.DB, *sql.Tx and DB, so store code runs the
// same way inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq keyword/value connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Validate reports the first missing connection setting.
func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("database host is required")
	case c.Port == "":
		return fmt.Errorf("database port is required")
	case c.User == "":
		return fmt.Errorf("database user is required")
	case c.DBName == "":
		return fmt.Errorf("database name is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("database port %q is not a number", c.Port)
	}
	return nil
}

func (c Config) withPoolDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	return c
}

func NewConnection(ctx context.Context, config Config) (*DB, error) {
	return open(ctx, config, false)
}

// NewInstrumentedConnection opens the pool through otelsql so every query is traced.
func NewInstrumentedConnection(ctx context.Context, config Config) (*DB, error) {
	return open(ctx, config, true)
}

func open(ctx context.Context, config Config, instrumented bool) (*DB, error) {
	config = config.withPoolDefaults()
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"host":            config.Host,
		"port":            config.Port,
		"database":        config.DBName,
		"ssl_mode":        config.SSLMode,
		"operation":       "database_connection",
		"instrumentation": instrumented,
	})

	logger.Info("Establishing database connection")

	var (
		db  *sql.DB
		err error
	)
	if instrumented {
		port, _ := strconv.Atoi(config.Port)
		db, err = telemetry.InstrumentDatabase(config.DSN(), config.DBName, config.Host, port)
	} else {
		db, err = sql.Open("postgres", config.DSN())
	}
	if err != nil {
		logger.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established successfully")
	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) Health(ctx context.Context) error {
	err := db.PingContext(ctx)
	if err != nil {
		telemetry.GetContextualLogger(ctx).
			WithField("operation", "database_health_check").
			WithError(err).
			Error("Database health check failed")
	}
	return err
}

// WithTransaction runs fn inside a transaction. fn's error or a panic rolls
// back; otherwise the commit error, if any, is returned.
func (db *DB) WithTransaction(ctx context.Context, opts *sql.TxOptions, fn func(*sql.Tx) error) (err error) {
	logger := telemetry.GetContextualLogger(ctx).WithField("operation", "database_transaction")

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		logger.WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			logger.WithField("panic", p).Error("Transaction panicked, rolling back")
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			logger.WithError(err).Debug("Transaction failed, rolling back")
			if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
				logger.WithError(rbErr).Error("Failed to roll back transaction")
			}
			return
		}
		if err = tx.Commit(); err != nil {
			logger.WithError(err).Error("Failed to commit transaction")
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()

	return fn(tx)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint failure.
func IsUniqueViolation(err error) bool {
	return hasPQCode(err, pqUniqueViolation)
}

// IsForeignKeyViolation reports a reference to a row that does not exist.
func IsForeignKeyViolation(err error) bool {
	return hasPQCode(err, pqForeignKeyViolation)
}

// IsRetryable reports serialization failures and deadlocks, both of which are
// safe to retry from the start of the transaction.
func IsRetryable(err error) bool {
	return hasPQCode(err, pqSerializationFailure) || hasPQCode(err, pqDeadlockDetected)
}

func hasPQCode(err error, code string) bool {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}
